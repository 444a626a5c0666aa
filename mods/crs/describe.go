package crs

// Description is a flat, serializable summary of a coordinate system.
// Angles are in degrees.
type Description struct {
	Code            string                 `json:"code" yaml:"code"`
	Codes           []string               `json:"codes" yaml:"codes"`
	Name            string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Kind            string                 `json:"kind" yaml:"kind"`
	Axes            []AxisDescription      `json:"axes" yaml:"axes"`
	Datum           *DatumDescription      `json:"datum,omitempty" yaml:"datum,omitempty"`
	Underlying      string                 `json:"underlying,omitempty" yaml:"underlying,omitempty"`
	Projection      *ProjectionDescription `json:"projection,omitempty" yaml:"projection,omitempty"`
	DefaultHeight   *float64               `json:"defaultHeight,omitempty" yaml:"defaultHeight,omitempty"`
	Transformations []TransformDescription `json:"transformations,omitempty" yaml:"transformations,omitempty"`
}

type AxisDescription struct {
	Name        string `json:"name" yaml:"name"`
	Orientation string `json:"orientation" yaml:"orientation"`
	Unit        string `json:"unit" yaml:"unit"`
}

type DatumDescription struct {
	Code              string    `json:"code" yaml:"code"`
	Ellipsoid         string    `json:"ellipsoid" yaml:"ellipsoid"`
	SemiMajorAxis     float64   `json:"semiMajorAxis" yaml:"semiMajorAxis"`
	InverseFlattening float64   `json:"inverseFlattening" yaml:"inverseFlattening"`
	PrimeMeridian     string    `json:"primeMeridian" yaml:"primeMeridian"`
	Longitude         float64   `json:"longitude" yaml:"longitude"`
	ToWGS84           []float64 `json:"toWGS84,omitempty" yaml:"toWGS84,omitempty"`
}

type ProjectionDescription struct {
	Kind          string  `json:"kind" yaml:"kind"`
	Latitude      float64 `json:"latitudeOfNaturalOrigin" yaml:"latitudeOfNaturalOrigin"`
	Longitude     float64 `json:"longitudeOfNaturalOrigin" yaml:"longitudeOfNaturalOrigin"`
	ScaleFactor   float64 `json:"scaleFactor" yaml:"scaleFactor"`
	FalseEasting  float64 `json:"falseEasting" yaml:"falseEasting"`
	FalseNorthing float64 `json:"falseNorthing" yaml:"falseNorthing"`
	Unit          string  `json:"unit,omitempty" yaml:"unit,omitempty"`
}

type TransformDescription struct {
	Kind        string    `json:"kind" yaml:"kind"`
	Target      string    `json:"targetCRS" yaml:"targetCRS"`
	XParameters []float64 `json:"xParameters" yaml:"xParameters"`
	YParameters []float64 `json:"yParameters" yaml:"yParameters"`
}

func Describe(cs CoordinateSystem) *Description {
	id := cs.Identity()
	ret := &Description{
		Code:  id.Code(),
		Codes: id.Codes,
		Name:  id.Name(),
		Kind:  cs.Kind().String(),
	}
	for _, a := range cs.Axes() {
		ret.Axes = append(ret.Axes, AxisDescription{Name: a.Name, Orientation: a.Orientation, Unit: a.Unit.Name})
	}
	if d := Datum(cs); d != nil {
		ret.Datum = describeDatum(d)
	}
	switch c := cs.(type) {
	case *ProjectedCRS:
		ret.Underlying = c.Geographic.Code()
		p := c.Projection.Params()
		ret.Projection = &ProjectionDescription{
			Kind:          c.Projection.Kind(),
			Latitude:      ToDegrees(p.NaturalOrigin.Lat()),
			Longitude:     ToDegrees(p.NaturalOrigin.Lon()),
			ScaleFactor:   p.ScaleFactor,
			FalseEasting:  p.FalseEasting,
			FalseNorthing: p.FalseNorthing,
		}
		if p.Unit != nil {
			ret.Projection.Unit = p.Unit.Name
		}
	case *CompoundCRS:
		ret.Underlying = c.Underlying.Identity().Code()
		h := c.DefaultHeight
		ret.DefaultHeight = &h
	}
	for _, t := range cs.Transformations() {
		poly := t.Polynomial()
		ret.Transformations = append(ret.Transformations, TransformDescription{
			Kind:        t.Kind(),
			Target:      t.TargetCode(),
			XParameters: poly.XParameters,
			YParameters: poly.YParameters,
		})
	}
	return ret
}

func describeDatum(d *GeodeticDatum) *DatumDescription {
	ret := &DatumDescription{
		Code:              d.Code(),
		Ellipsoid:         d.Ellipsoid.Code(),
		SemiMajorAxis:     d.Ellipsoid.A(),
		InverseFlattening: d.Ellipsoid.InverseFlattening,
		PrimeMeridian:     d.PrimeMeridian.Code(),
		Longitude:         ToDegrees(d.PrimeMeridian.Longitude),
	}
	if d.ToWGS84 != nil {
		ret.ToWGS84 = d.ToWGS84.Params()
	}
	return ret
}
