package crs

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/machbase/neo-crs/mods/crs/source"
	"github.com/machbase/neo-crs/mods/logging"
	"github.com/stretchr/testify/require"
)

const testDefinitions = "./testdata/definitions.xml"

func testProvider(t *testing.T, opts ...Option) *Provider {
	t.Helper()
	src, err := source.ParseFile(testDefinitions)
	require.NoError(t, err)
	return New(src, opts...)
}

func relDiff(a, b float64) float64 {
	if a == b {
		return 0
	}
	return math.Abs(a-b) / math.Max(math.Abs(a), math.Abs(b))
}

func TestEllipsoidIdentities(t *testing.T) {
	p := testProvider(t)
	tests := []struct {
		code   string
		sphere bool
	}{
		{"EPSG:7030", false},  // inverse flattening
		{"BESSEL_ECC", false}, // eccentricity
		{"CLARKE_IGN", false}, // semi-minor axis
		{"GRS80_ELL", false},
		{"SPHERE", true},
	}
	for _, tt := range tests {
		ell, err := p.Ellipsoid(tt.code)
		require.NoError(t, err, tt.code)
		require.Equal(t, tt.sphere, ell.IsSphere(), tt.code)
		a, b := ell.SemiMajorAxis, ell.SemiMinorAxis
		if tt.sphere {
			require.Equal(t, a, b)
			require.Equal(t, 0.0, ell.InverseFlattening)
			require.Equal(t, 0.0, ell.Eccentricity)
			continue
		}
		f := ell.Flattening()
		require.Less(t, relDiff(b, a*(1-f)), 1e-9, tt.code)
		require.Less(t, relDiff(ell.Eccentricity*ell.Eccentricity, 2*f-f*f), 1e-9, tt.code)
		require.Less(t, relDiff(ell.InverseFlattening, a/(a-b)), 1e-9, tt.code)
	}

	wgs84, err := p.Ellipsoid("wgs84_ell")
	require.NoError(t, err)
	require.InDelta(t, 298.257223563, wgs84.InverseFlattening, 1e-12)
	require.InDelta(t, 6356752.314245, wgs84.SemiMinorAxis, 1e-6)
	require.Equal(t, []string{"EPSG:7030", "WGS84_ELL"}, wgs84.Codes)
	require.Equal(t, "WGS 84", wgs84.Name())
	require.Equal(t, Metre, wgs84.Unit)

	km, err := p.Ellipsoid("KM_ELL")
	require.NoError(t, err)
	require.Equal(t, Kilometre, km.Unit)
	require.InDelta(t, 6378.137, km.SemiMajorAxis, 1e-12)
	require.InDelta(t, 6378137.0, km.A(), 1e-6)
	require.Equal(t, km.InverseFlattening, km.Fi())
}

func TestEllipsoidErrors(t *testing.T) {
	p := testProvider(t)

	_, err := p.Ellipsoid("BROKEN_ELL")
	require.ErrorIs(t, err, ErrEllipsoidMissingParameter)

	_, err = p.Ellipsoid("NOAXIS_ELL")
	require.ErrorIs(t, err, ErrMissingRequiredField)
	var de *DefinitionError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "semiMajorAxis", de.Field)
	require.Equal(t, "NOAXIS_ELL", de.Code)

	_, err = p.Ellipsoid("NO_SUCH_ELL")
	require.ErrorIs(t, err, ErrUnresolvedReference)
	require.True(t, IsDefinitionError(err))

	// a datum code is not an ellipsoid
	_, err = p.Ellipsoid("WGS84_DATUM")
	require.ErrorIs(t, err, ErrUnresolvedReference)

	require.False(t, p.Cache().ellipsoids.Has("BROKEN_ELL"))
}

func TestEllipsoidOutOfRange(t *testing.T) {
	src, err := source.Parse([]byte(`<definitions version="0.5.0">
  <ellipsoid><id>ECC_TOO_BIG</id><semiMajorAxis>6378137</semiMajorAxis><eccentricity>1.5</eccentricity></ellipsoid>
  <ellipsoid><id>ECC_NEGATIVE</id><semiMajorAxis>6378137</semiMajorAxis><eccentricity>-0.1</eccentricity></ellipsoid>
  <ellipsoid><id>B_OVER_A</id><semiMajorAxis>6378137</semiMajorAxis><semiMinorAxis>6400000</semiMinorAxis></ellipsoid>
  <ellipsoid><id>B_ZERO</id><semiMajorAxis>6378137</semiMajorAxis><semiMinorAxis>0</semiMinorAxis></ellipsoid>
  <ellipsoid><id>A_ZERO</id><semiMajorAxis>0</semiMajorAxis><inverseFlattening>298.257223563</inverseFlattening></ellipsoid>
  <ellipsoid><id>A_NEGATIVE</id><semiMajorAxis>-6378137</semiMajorAxis><inverseFlattening>298.257223563</inverseFlattening></ellipsoid>
  <ellipsoid><id>INVF_NEGATIVE</id><semiMajorAxis>6378137</semiMajorAxis><inverseFlattening>-298</inverseFlattening></ellipsoid>
  <ellipsoid><id>INVF_HALF</id><semiMajorAxis>6378137</semiMajorAxis><inverseFlattening>0.5</inverseFlattening></ellipsoid>
  <ellipsoid><id>INVF_NAN</id><semiMajorAxis>6378137</semiMajorAxis><inverseFlattening>NaN</inverseFlattening></ellipsoid>
  <ellipsoid><id>INVF_ZERO</id><semiMajorAxis>6370997</semiMajorAxis><inverseFlattening>0</inverseFlattening></ellipsoid>
  <ellipsoid><id>ECC_ZERO</id><semiMajorAxis>6370997</semiMajorAxis><eccentricity>0</eccentricity></ellipsoid>
</definitions>`))
	require.NoError(t, err)
	p := New(src)

	for _, code := range []string{
		"ECC_TOO_BIG", "ECC_NEGATIVE", "B_OVER_A", "B_ZERO",
		"A_ZERO", "A_NEGATIVE", "INVF_NEGATIVE", "INVF_HALF", "INVF_NAN",
	} {
		ell, err := p.Ellipsoid(code)
		require.Nil(t, ell, code)
		require.ErrorIs(t, err, ErrDefinitionParse, code)
		var de *DefinitionError
		require.True(t, errors.As(err, &de), code)
		require.Equal(t, code, de.Code)
		require.False(t, p.Cache().ellipsoids.Has(code), code)
	}

	for _, code := range []string{"INVF_ZERO", "ECC_ZERO"} {
		ell, err := p.Ellipsoid(code)
		require.NoError(t, err, code)
		require.True(t, ell.IsSphere(), code)
		require.Equal(t, ell.SemiMajorAxis, ell.SemiMinorAxis, code)
		require.False(t, math.IsNaN(ell.Eccentricity), code)
	}
}

func TestPrimeMeridianAngles(t *testing.T) {
	p := testProvider(t)

	deg, err := p.PrimeMeridian("PM_DEG45")
	require.NoError(t, err)
	require.InDelta(t, math.Pi/4, deg.Longitude, 1e-12)
	require.Equal(t, Degree, deg.Unit)

	rad, err := p.PrimeMeridian("PM_RAD")
	require.NoError(t, err)
	require.Equal(t, 45.0, rad.Longitude)
	require.Equal(t, Radian, rad.Unit)

	paris, err := p.PrimeMeridian("epsg:8903")
	require.NoError(t, err)
	require.InDelta(t, ToRadians(2.33722917), paris.Longitude, 1e-12)
	again, err := p.PrimeMeridian("PARIS")
	require.NoError(t, err)
	require.Same(t, paris, again)

	def, err := p.PrimeMeridian("  ")
	require.NoError(t, err)
	require.Same(t, Greenwich, def)

	_, err = p.PrimeMeridian("NO_SUCH_PM")
	require.ErrorIs(t, err, ErrUnresolvedReference)
}

func TestDatum(t *testing.T) {
	p := testProvider(t)

	wgs84, err := p.Datum("WGS84_DATUM")
	require.NoError(t, err)
	require.Nil(t, wgs84.ToWGS84)
	require.Same(t, Greenwich, wgs84.PrimeMeridian)
	ell, err := p.Ellipsoid("EPSG:7030")
	require.NoError(t, err)
	require.Same(t, ell, wgs84.Ellipsoid)

	dhdn, err := p.Datum("EPSG:6314")
	require.NoError(t, err)
	require.NotNil(t, dhdn.ToWGS84)
	require.Equal(t, []float64{598.1, 73.7, 418.2, 0.202, 0.045, -2.455, 6.7}, dhdn.ToWGS84.Params())
	require.False(t, dhdn.ToWGS84.IsIdentity())
	require.Equal(t, "DHDN_TO_WGS84", dhdn.ToWGS84.Code())

	ntf, err := p.Datum("NTF_DATUM")
	require.NoError(t, err)
	require.Equal(t, "EPSG:8903", ntf.PrimeMeridian.Code())
	require.Equal(t, "EPSG:7011", ntf.Ellipsoid.Code())
}

func TestDatumDegraded(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logging.NewLog("crs-test", buf)
	log.SetLevel(logging.LevelWarn)
	p := testProvider(t, WithLogger(log))

	d, err := p.Datum("DEGRADED_DATUM")
	require.NoError(t, err)
	require.Same(t, Greenwich, d.PrimeMeridian)
	require.Nil(t, d.ToWGS84)
	require.Contains(t, buf.String(), "NO_SUCH_PM")
	require.Contains(t, buf.String(), "NO_SUCH_HELMERT")

	cs, err := p.GetCoordinateSystem("DEGRADED_GEO")
	require.NoError(t, err)
	require.Same(t, d, Datum(cs))
}

func TestDatumErrors(t *testing.T) {
	p := testProvider(t)

	_, err := p.Datum("BROKEN_DATUM")
	require.ErrorIs(t, err, ErrEllipsoidMissingParameter)

	_, err = p.Datum("EMPTY_REF_DATUM")
	require.ErrorIs(t, err, ErrReferenceIsEmpty)
	var de *DefinitionError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "usedEllipsoid", de.Field)

	_, err = p.Datum("NO_SUCH_DATUM")
	require.ErrorIs(t, err, ErrUnresolvedReference)

	require.False(t, p.Cache().datums.Has("BROKEN_DATUM"))
}

func TestUnit(t *testing.T) {
	p := testProvider(t)
	tests := []struct {
		token  string
		expect *Unit
	}{
		{"metre", Metre},
		{" Meter ", Metre},
		{"m", Metre},
		{"km", Kilometre},
		{"ft", Foot},
		{"us-ft", USFoot},
		{"DEGREE", Degree},
		{"rad", Radian},
		{"gon", Grad},
		{"arc-second", ArcSecond},
		{"unity", Unity},
	}
	for _, tt := range tests {
		u, err := p.Unit(tt.token)
		require.NoError(t, err, tt.token)
		require.Same(t, tt.expect, u, tt.token)
	}
	_, err := p.Unit("furlong")
	require.ErrorIs(t, err, ErrUnknownUnit)
	require.False(t, p.Cache().units.Has("furlong"))
	require.True(t, p.Cache().units.Has("metre"))

	require.InDelta(t, math.Pi/4, Degree.ToBase(45), 1e-15)
	require.InDelta(t, 45, Degree.FromBase(math.Pi/4), 1e-12)
	require.True(t, Grad.IsAngular())
	require.True(t, Foot.IsLinear())
}
