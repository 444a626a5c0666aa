package crs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/machbase/neo-crs/mods/logging"
	"github.com/stretchr/testify/require"
)

func TestLeastSquareApproximation(t *testing.T) {
	p := testProvider(t)
	cs, err := p.GetCoordinateSystem("EPSG:4326")
	require.NoError(t, err)

	// the unknown kind and the one without yParameters are left out
	trs := cs.Transformations()
	require.Len(t, trs, 1)
	ls, ok := trs[0].(*LeastSquareApproximation)
	require.True(t, ok)
	require.Equal(t, KindLeastSquareApproximation, ls.Kind())
	require.Equal(t, "EPSG:4258", ls.TargetCode())
	require.Equal(t, []float64{0.5, 1, 0}, ls.Polynomial().XParameters)
	require.Equal(t, []float64{-0.25, 0, 1}, ls.Polynomial().YParameters)
	require.Equal(t, 2.0, ls.ScaleX)
	require.Equal(t, 1.0, ls.ScaleY)
	require.Equal(t, "leastSquareApproximation -> EPSG:4258 (3, 3)", ls.String())

	x, y := ls.Apply(1, 3)
	require.InDelta(t, 2.5, x, 1e-12)
	require.InDelta(t, 2.75, y, 1e-12)
}

func TestPolynomialTerms(t *testing.T) {
	require.Equal(t, []float64{1}, polynomialTerms(2, 3, 1))
	require.Equal(t, []float64{1, 2, 3, 4, 6, 9}, polynomialTerms(2, 3, 6))
	require.Equal(t, []float64{1, 2, 3, 4, 6, 9, 8, 12}, polynomialTerms(2, 3, 8))

	// second degree in x only
	ls := NewLeastSquareApproximation([]float64{0, 0, 0, 1}, []float64{1}, "T", 1, 1)
	x, y := ls.Apply(3, 7)
	require.Equal(t, 9.0, x)
	require.Equal(t, 1.0, y)
}

func TestLateBoundTransformation(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logging.NewLog("crs-test", buf)
	log.SetLevel(logging.LevelWarn)

	// without a builder the transformation is dropped, the CRS still resolves
	p := testProvider(t, WithRegistry(NewRegistry()), WithLogger(log))
	cs, err := p.GetCoordinateSystem("EPSG:4314")
	require.NoError(t, err)
	require.Empty(t, cs.Transformations())
	require.Contains(t, buf.String(), "com.example.Affine")

	reg := NewRegistry()
	reg.RegisterTransformation("com.example.Affine", func(x, y []float64, target string) (Transformation, error) {
		return &affine{PolynomialTransformation{Target: target, XParameters: x, YParameters: y}}, nil
	})
	p = testProvider(t, WithRegistry(reg))
	cs, err = p.GetCoordinateSystem("EPSG:4314")
	require.NoError(t, err)
	require.Len(t, cs.Transformations(), 1)
	tr := cs.Transformations()[0]
	require.Equal(t, "affine", tr.Kind())
	require.Equal(t, "EPSG:4326", tr.TargetCode())
	require.Equal(t, []float64{1, 2, 3}, tr.Polynomial().XParameters)
	require.Equal(t, []float64{4, 5, 6}, tr.Polynomial().YParameters)

	reg = NewRegistry()
	reg.RegisterTransformation("com.example.Affine", func(x, y []float64, target string) (Transformation, error) {
		return nil, errors.New("singular matrix")
	})
	p = testProvider(t, WithRegistry(reg))
	cs, err = p.GetCoordinateSystem("EPSG:4314")
	require.NoError(t, err)
	require.Empty(t, cs.Transformations())
}

type affine struct {
	PolynomialTransformation
}

func (*affine) Kind() string { return "affine" }

var _ Transformation = (*affine)(nil)
