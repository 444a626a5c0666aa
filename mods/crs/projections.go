package crs

import (
	"errors"
	"math"
	"sort"

	"github.com/machbase/neo-crs/mods/crs/source"
	"github.com/wroge/wgs84"
)

const (
	KindTransverseMercator        = "transverseMercator"
	KindLambertAzimuthalEqualArea = "lambertAzimuthalEqualArea"
	KindLambertConformalConic     = "lambertConformalConic"
	KindStereographicAzimuthal    = "stereographicAzimuthal"
	KindStereographicAlternative  = "stereographicAlternative"
	KindMercator                  = "mercator"
)

type builtinProjection func(r *resolver, elem *source.Element, p ProjectionParams) (Projection, error)

// keyed by lower-cased kind name
var builtinProjections = map[string]builtinProjection{
	"transversemercator":        buildTransverseMercator,
	"lambertazimuthalequalarea": buildLambertAzimuthalEqualArea,
	"lambertconformalconic":     buildLambertConformalConic,
	"stereographicazimuthal":    buildStereographicAzimuthal,
	"stereographicalternative":  buildStereographicAlternative,
	"mercator":                  buildMercator,
}

// SupportedProjections returns the names of the built-in projection kinds.
func SupportedProjections() []string {
	ret := []string{
		KindTransverseMercator,
		KindLambertAzimuthalEqualArea,
		KindLambertConformalConic,
		KindStereographicAzimuthal,
		KindStereographicAlternative,
		KindMercator,
	}
	sort.Strings(ret)
	return ret
}

type TransverseMercator struct {
	ProjectionParams
	Northern bool `json:"northernHemisphere"`
}

func (*TransverseMercator) Kind() string { return KindTransverseMercator }

var _ Transformer = (*TransverseMercator)(nil)

// Transformer converts easting/northing in metres to WGS84 longitude/latitude
// degrees. The datum shift to WGS84 is not applied.
func (tm *TransverseMercator) Transformer() (func(a, b, c float64) (a2, b2, c2 float64), error) {
	if tm.Geographic == nil || tm.Geographic.Datum == nil {
		return nil, errors.New("transverse mercator without geographic datum")
	}
	if tm.ScaleFactor == 0 {
		return nil, errors.New("transverse mercator without scale factor")
	}
	datum := wgs84.Datum{
		Spheroid: tm.Geographic.Datum.Ellipsoid,
	}
	lon0 := ToDegrees(tm.NaturalOrigin.Lon() + tm.Geographic.Datum.PrimeMeridian.Longitude)
	lat0 := ToDegrees(tm.NaturalOrigin.Lat())
	northing := tm.FalseNorthing
	if !tm.Northern {
		// false northing of the southern hemisphere zones
		northing += 10000000
	}
	proj := datum.TransverseMercator(lon0, lat0, tm.ScaleFactor, tm.FalseEasting, northing)
	return wgs84.Transform(proj, wgs84.WGS84().LonLat()), nil
}

func buildTransverseMercator(r *resolver, elem *source.Element, p ProjectionParams) (Projection, error) {
	northern, err := r.boolOr(elem, "northernHemisphere", true)
	if err != nil {
		return nil, err
	}
	return &TransverseMercator{ProjectionParams: p, Northern: northern}, nil
}

type LambertAzimuthalEqualArea struct {
	ProjectionParams
}

func (*LambertAzimuthalEqualArea) Kind() string { return KindLambertAzimuthalEqualArea }

func buildLambertAzimuthalEqualArea(r *resolver, elem *source.Element, p ProjectionParams) (Projection, error) {
	return &LambertAzimuthalEqualArea{ProjectionParams: p}, nil
}

type LambertConformalConic struct {
	ProjectionParams
	// standard parallels in radians
	FirstParallel  float64 `json:"firstParallelLatitude"`
	SecondParallel float64 `json:"secondParallelLatitude"`
}

func (*LambertConformalConic) Kind() string { return KindLambertConformalConic }

func buildLambertConformalConic(r *resolver, elem *source.Element, p ProjectionParams) (Projection, error) {
	first, err := r.angle(elem, "firstParallelLatitude")
	if err != nil {
		return nil, err
	}
	second, err := r.angle(elem, "secondParallelLatitude")
	if err != nil {
		return nil, err
	}
	return &LambertConformalConic{ProjectionParams: p, FirstParallel: first, SecondParallel: second}, nil
}

type StereographicAzimuthal struct {
	ProjectionParams
	TrueScaleLatitude float64 `json:"trueScaleLatitude"`
}

func (*StereographicAzimuthal) Kind() string { return KindStereographicAzimuthal }

func buildStereographicAzimuthal(r *resolver, elem *source.Element, p ProjectionParams) (Projection, error) {
	ts, err := r.angle(elem, "trueScaleLatitude")
	if err != nil {
		return nil, err
	}
	return &StereographicAzimuthal{ProjectionParams: p, TrueScaleLatitude: ts}, nil
}

type StereographicAlternative struct {
	ProjectionParams
}

func (*StereographicAlternative) Kind() string { return KindStereographicAlternative }

func buildStereographicAlternative(r *resolver, elem *source.Element, p ProjectionParams) (Projection, error) {
	return &StereographicAlternative{ProjectionParams: p}, nil
}

type Mercator struct {
	ProjectionParams
}

func (*Mercator) Kind() string { return KindMercator }

var _ Transformer = (*Mercator)(nil)

// Transformer converts easting/northing to longitude/latitude degrees on the
// sphere of the semi-major axis, as web maps do. The third coordinate passes
// through.
func (m *Mercator) Transformer() (func(a, b, c float64) (a2, b2, c2 float64), error) {
	if m.Geographic == nil || m.Geographic.Datum == nil {
		return nil, errors.New("mercator without geographic datum")
	}
	k := m.ScaleFactor
	if k == 0 {
		k = 1
	}
	radius := m.Geographic.Datum.Ellipsoid.A() * k
	lon0 := m.NaturalOrigin.Lon() + m.Geographic.Datum.PrimeMeridian.Longitude
	fe, fn := m.FalseEasting, m.FalseNorthing
	return func(x, y, z float64) (float64, float64, float64) {
		lon := lon0 + (x-fe)/radius
		lat := 2*math.Atan(math.Exp((y-fn)/radius)) - math.Pi/2
		return ToDegrees(lon), ToDegrees(lat), z
	}, nil
}

func buildMercator(r *resolver, elem *source.Element, p ProjectionParams) (Projection, error) {
	return &Mercator{ProjectionParams: p}, nil
}
