package crs

import (
	"slices"
	"strings"

	"github.com/machbase/neo-crs/mods/crs/source"
	"github.com/paulmach/orb"
)

// Projection is a parameterized mapping from a geographic CRS to the plane.
// The mathematics of each kind is not part of this package; a kind may offer
// it through the Transformer interface.
type Projection interface {
	Kind() string
	Params() *ProjectionParams
}

// Transformer is implemented by projections able to convert projected
// coordinates to WGS84 longitude/latitude in degrees.
type Transformer interface {
	Transformer() (func(a, b, c float64) (a2, b2, c2 float64), error)
}

type ProjectionParams struct {
	Geographic    *GeographicCRS `json:"-"`
	FalseEasting  float64        `json:"falseEasting"`
	FalseNorthing float64        `json:"falseNorthing"`
	// NaturalOrigin is (longitude, latitude) in radians.
	NaturalOrigin orb.Point `json:"naturalOrigin"`
	Unit          *Unit     `json:"unit"`
	ScaleFactor   float64   `json:"scaleFactor"`
}

func (p *ProjectionParams) Params() *ProjectionParams { return p }

const (
	elemProjection               = "projection"
	elemLatitudeOfNaturalOrigin  = "latitudeOfNaturalOrigin"
	elemLongitudeOfNaturalOrigin = "longitudeOfNaturalOrigin"
	elemScaleFactor              = "scaleFactor"
	elemFalseEasting             = "falseEasting"
	elemFalseNorthing            = "falseNorthing"
	attrClass                    = "class"
)

var commonProjectionParams = []string{
	elemLatitudeOfNaturalOrigin,
	elemLongitudeOfNaturalOrigin,
	elemScaleFactor,
	elemFalseEasting,
	elemFalseNorthing,
}

// resolveProjection builds the projection of the kind element (the child of
// <projection>). The result is not cached.
func (r *resolver) resolveProjection(kindElem *source.Element, ownerCode string, geo *GeographicCRS, unit *Unit) (Projection, error) {
	params, err := r.projectionParams(kindElem, geo, unit)
	if err != nil {
		return nil, ErrorDefinitionParse(kindProjectedCRS, ownerCode, err)
	}

	if class, ok := r.src.Attr(kindElem, attrClass); ok && class != "" {
		var extras []*source.Element
		for _, child := range kindElem.ChildElements() {
			if !slices.Contains(commonProjectionParams, child.Tag) {
				extras = append(extras, child)
			}
		}
		proj, err := r.registry.buildProjection(class, params, extras)
		if err != nil {
			cause := ErrorLateBoundTypeUnavailable(kindProjection, class, err)
			r.log.Warnf("projection of %s could not be built, %s", ownerCode, cause.Error())
			return nil, &DefinitionError{Kind: ErrProjectionUnavailable, ElementKind: kindProjectedCRS, Code: ownerCode, Field: elemProjection, Cause: cause}
		}
		return proj, nil
	}

	build, ok := builtinProjections[strings.ToLower(kindElem.Tag)]
	if !ok {
		return nil, ErrorUnknownProjectionKind(ownerCode, kindElem.Tag, SupportedProjections())
	}
	proj, err := build(r, kindElem, params)
	if err != nil {
		return nil, ErrorDefinitionParse(kindProjectedCRS, ownerCode, err)
	}
	return proj, nil
}

func (r *resolver) projectionParams(elem *source.Element, geo *GeographicCRS, unit *Unit) (ProjectionParams, error) {
	ret := ProjectionParams{Geographic: geo, Unit: unit}
	lat, err := r.angle(elem, elemLatitudeOfNaturalOrigin)
	if err != nil {
		return ret, err
	}
	lon, err := r.angle(elem, elemLongitudeOfNaturalOrigin)
	if err != nil {
		return ret, err
	}
	ret.NaturalOrigin = orb.Point{lon, lat}
	if ret.ScaleFactor, err = r.floatOr(elem, elemScaleFactor, 0); err != nil {
		return ret, err
	}
	if ret.FalseEasting, err = r.floatOr(elem, elemFalseEasting, 0); err != nil {
		return ret, err
	}
	if ret.FalseNorthing, err = r.floatOr(elem, elemFalseNorthing, 0); err != nil {
		return ret, err
	}
	return ret, nil
}
