package crs

import (
	"fmt"
)

// local names of the definition elements
const (
	kindEllipsoid      = "ellipsoid"
	kindPrimeMeridian  = "primeMeridian"
	kindHelmert        = "wgs84Transformation"
	kindDatum          = "geodeticDatum"
	kindGeographicCRS  = "geographicCRS"
	kindGeocentricCRS  = "geocentricCRS"
	kindProjectedCRS   = "projectedCRS"
	kindCompoundCRS    = "compoundCRS"
	kindTransformation = "polynomialTransformation"
	kindProjection     = "projection"
)

var coordinateSystemKinds = []string{kindGeographicCRS, kindGeocentricCRS, kindProjectedCRS, kindCompoundCRS}

type Kind int

const (
	Geographic Kind = iota + 1
	Projected
	Geocentric
	Compound
)

func (k Kind) String() string {
	switch k {
	case Geographic:
		return "geographic"
	case Projected:
		return "projected"
	case Geocentric:
		return "geocentric"
	case Compound:
		return "compound"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// CoordinateSystem is implemented by GeographicCRS, ProjectedCRS,
// GeocentricCRS and CompoundCRS only.
type CoordinateSystem interface {
	Kind() Kind
	Identity() *Identifiable
	Axes() []*Axis
	Transformations() []Transformation
	coordinateSystem()
}

type base struct {
	*Identifiable
	AxisList   []*Axis          `json:"axes"`
	Transforms []Transformation `json:"transformations,omitempty"`
}

func (b *base) Identity() *Identifiable           { return b.Identifiable }
func (b *base) Axes() []*Axis                     { return b.AxisList }
func (b *base) Transformations() []Transformation { return b.Transforms }
func (b *base) coordinateSystem()                 {}

type GeographicCRS struct {
	base
	Datum *GeodeticDatum `json:"datum"`
}

func (*GeographicCRS) Kind() Kind { return Geographic }

type GeocentricCRS struct {
	base
	Datum *GeodeticDatum `json:"datum"`
}

func (*GeocentricCRS) Kind() Kind { return Geocentric }

type ProjectedCRS struct {
	base
	Datum      *GeodeticDatum `json:"datum"`
	Geographic *GeographicCRS `json:"geographicCRS"`
	Projection Projection     `json:"projection"`
}

func (*ProjectedCRS) Kind() Kind { return Projected }

type CompoundCRS struct {
	base
	// Underlying is either a *GeographicCRS or a *ProjectedCRS.
	Underlying    CoordinateSystem `json:"underlying"`
	HeightAxis    *Axis            `json:"heightAxis"`
	DefaultHeight float64          `json:"defaultHeight"`
}

func (*CompoundCRS) Kind() Kind { return Compound }

// Datum returns the geodetic datum of cs, nil if cs has none.
func Datum(cs CoordinateSystem) *GeodeticDatum {
	switch c := cs.(type) {
	case *GeographicCRS:
		return c.Datum
	case *GeocentricCRS:
		return c.Datum
	case *ProjectedCRS:
		return c.Datum
	case *CompoundCRS:
		return Datum(c.Underlying)
	}
	return nil
}
