package crs

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/machbase/neo-crs/mods/crs/source"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func TestTransverseMercatorTransformer(t *testing.T) {
	p := testProvider(t)

	cs, err := p.GetCoordinateSystem("EPSG:32632")
	require.NoError(t, err)
	tr, ok := cs.(*ProjectedCRS).Projection.(Transformer)
	require.True(t, ok)
	fn, err := tr.Transformer()
	require.NoError(t, err)

	lon, lat, _ := fn(500000, 0, 0)
	require.InDelta(t, 9.0, lon, 1e-6)
	require.InDelta(t, 0.0, lat, 1e-6)

	// north of the origin on the central meridian
	lon, lat, _ = fn(500000, 5000000, 0)
	require.InDelta(t, 9.0, lon, 1e-6)
	require.Greater(t, lat, 45.0)
	require.Less(t, lat, 45.2)

	south, err := p.GetCoordinateSystem("UTM_32S")
	require.NoError(t, err)
	fn, err = south.(*ProjectedCRS).Projection.(Transformer).Transformer()
	require.NoError(t, err)
	lon, lat, _ = fn(500000, 10000000, 0)
	require.InDelta(t, 9.0, lon, 1e-6)
	require.InDelta(t, 0.0, lat, 1e-6)
	_, lat, _ = fn(500000, 5000000, 0)
	require.Less(t, lat, -45.0)
}

func TestTransverseMercatorTransformerErrors(t *testing.T) {
	tm := &TransverseMercator{ProjectionParams: ProjectionParams{ScaleFactor: 1}}
	_, err := tm.Transformer()
	require.Error(t, err)

	p := testProvider(t)
	geo, err := p.GetCoordinateSystem("EPSG:4326")
	require.NoError(t, err)
	tm = &TransverseMercator{ProjectionParams: ProjectionParams{Geographic: geo.(*GeographicCRS)}}
	_, err = tm.Transformer()
	require.Error(t, err)
}

func TestMercatorTransformer(t *testing.T) {
	p := testProvider(t)
	cs, err := p.GetCoordinateSystem("EPSG:3857")
	require.NoError(t, err)
	fn, err := cs.(*ProjectedCRS).Projection.(Transformer).Transformer()
	require.NoError(t, err)

	lon, lat, h := fn(0, 0, 12.5)
	require.InDelta(t, 0.0, lon, 1e-12)
	require.InDelta(t, 0.0, lat, 1e-12)
	require.Equal(t, 12.5, h)

	lon, lat, _ = fn(20037508.342789244, 20037508.342789244, 0)
	require.InDelta(t, 180.0, lon, 1e-9)
	require.InDelta(t, 85.0511287798066, lat, 1e-9)

	_, err = (&Mercator{}).Transformer()
	require.Error(t, err)
}

type obliqueMercator struct {
	ProjectionParams
	Azimuth float64
}

func (*obliqueMercator) Kind() string { return "obliqueMercator" }

func obliqueMercatorBuilder(geo *GeographicCRS, falseNorthing, falseEasting float64, origin orb.Point, unit *Unit, scaleFactor float64, extras []*source.Element) (Projection, error) {
	ret := &obliqueMercator{
		ProjectionParams: ProjectionParams{
			Geographic:    geo,
			FalseNorthing: falseNorthing,
			FalseEasting:  falseEasting,
			NaturalOrigin: origin,
			Unit:          unit,
			ScaleFactor:   scaleFactor,
		},
	}
	for _, e := range extras {
		if e.Tag != "azimuth" {
			return nil, fmt.Errorf("unexpected parameter %s", e.Tag)
		}
		v, err := strconv.ParseFloat(e.Text(), 64)
		if err != nil {
			return nil, err
		}
		ret.Azimuth = ToRadians(v)
	}
	return ret, nil
}

func TestLateBoundProjection(t *testing.T) {
	reg := NewRegistry()
	require.True(t, reg.RegisterProjection("com.example.ObliqueMercator", obliqueMercatorBuilder))
	p := testProvider(t, WithRegistry(reg))
	require.Same(t, reg, p.Registry())

	cs, err := p.GetCoordinateSystem("LATE_BOUND")
	require.NoError(t, err)
	om, ok := cs.(*ProjectedCRS).Projection.(*obliqueMercator)
	require.True(t, ok)
	require.InDelta(t, ToRadians(323.0257905), om.Azimuth, 1e-12)
	require.InDelta(t, ToRadians(102.25), om.NaturalOrigin.Lon(), 1e-12)
	require.InDelta(t, ToRadians(4), om.NaturalOrigin.Lat(), 1e-12)
	require.Equal(t, 0.99984, om.ScaleFactor)
	require.Equal(t, 804671.0, om.FalseEasting)
	require.Same(t, Degree, om.Unit)

	geo, err := p.GetCoordinateSystem("EPSG:4326")
	require.NoError(t, err)
	require.Same(t, geo, om.Geographic)
}

func TestLateBoundProjectionUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		builder ProjectionBuilder
		message string
	}{
		{"unregistered", nil, "no builder registered"},
		{"failing", func(*GeographicCRS, float64, float64, orb.Point, *Unit, float64, []*source.Element) (Projection, error) {
			return nil, errors.New("azimuth out of range")
		}, "azimuth out of range"},
		{"panicking", func(*GeographicCRS, float64, float64, orb.Point, *Unit, float64, []*source.Element) (Projection, error) {
			panic("boom")
		}, "builder panic, boom"},
		{"empty", func(*GeographicCRS, float64, float64, orb.Point, *Unit, float64, []*source.Element) (Projection, error) {
			return nil, nil
		}, "builder returned no projection"},
	}
	for _, tt := range tests {
		reg := NewRegistry()
		if tt.builder != nil {
			require.True(t, reg.RegisterProjection("com.example.ObliqueMercator", tt.builder), tt.name)
		}
		p := testProvider(t, WithRegistry(reg))
		cs, err := p.GetCoordinateSystem("LATE_BOUND")
		require.Nil(t, cs, tt.name)
		require.ErrorIs(t, err, ErrProjectionUnavailable, tt.name)
		require.ErrorIs(t, err, ErrLateBoundTypeUnavailable, tt.name)
		require.Contains(t, err.Error(), "com.example.ObliqueMercator", tt.name)
		require.Contains(t, err.Error(), tt.message, tt.name)
		require.False(t, p.Cache().systems.Has("LATE_BOUND"), tt.name)
	}

	p := testProvider(t, WithRegistry(NewRegistry()))
	_, err := p.GetCoordinateSystem("LATE_BOUND_MISSING")
	require.ErrorIs(t, err, ErrProjectionUnavailable)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.True(t, reg.RegisterProjection("com.example.A", obliqueMercatorBuilder))
	require.False(t, reg.RegisterProjection(" com.example.A ", obliqueMercatorBuilder), "first registration wins")
	require.False(t, reg.RegisterProjection("", obliqueMercatorBuilder))
	require.False(t, reg.RegisterProjection("com.example.B", nil))

	affine := func(x, y []float64, target string) (Transformation, error) {
		return NewLeastSquareApproximation(x, y, target, 1, 1), nil
	}
	require.True(t, reg.RegisterTransformation("com.example.Affine", affine))
	require.False(t, reg.RegisterTransformation("com.example.Affine", affine))

	projections, transformations := reg.Names()
	require.Equal(t, []string{"com.example.A"}, projections)
	require.Equal(t, []string{"com.example.Affine"}, transformations)

	reg.UnregisterProjection("com.example.A")
	reg.UnregisterTransformation("com.example.Affine")
	projections, transformations = reg.Names()
	require.Empty(t, projections)
	require.Empty(t, transformations)
	require.True(t, reg.RegisterProjection("com.example.A", obliqueMercatorBuilder))
}

func TestSupportedProjections(t *testing.T) {
	names := SupportedProjections()
	require.Equal(t, []string{
		KindLambertAzimuthalEqualArea,
		KindLambertConformalConic,
		KindMercator,
		KindStereographicAlternative,
		KindStereographicAzimuthal,
		KindTransverseMercator,
	}, names)
	require.Len(t, builtinProjections, len(names))
}
