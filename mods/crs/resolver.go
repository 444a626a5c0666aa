package crs

import (
	"fmt"
	"slices"
	"strings"

	"github.com/machbase/neo-crs/mods/crs/source"
	"github.com/machbase/neo-crs/mods/logging"
)

// resolver materializes definitions of one source into the shared cache.
// A resolver lives for a single top-level resolution; chain holds the codes
// of the coordinate systems being resolved on the way down.
type resolver struct {
	src      source.Source
	cache    *Cache
	registry *Registry
	log      logging.Log
	chain    []string
}

func newResolver(src source.Source, cache *Cache, registry *Registry, log logging.Log) *resolver {
	return &resolver{
		src:      src,
		cache:    cache,
		registry: registry,
		log:      log,
	}
}

const (
	elemUsedGeographicCRS = "usedGeographicCRS"
	elemUsedCRS           = "usedCRS"
	elemDefaultHeight     = "defaultHeight"
)

// ResolveCoordinateSystem returns nil and no error when code does not
// identify a coordinate system definition.
func (r *resolver) ResolveCoordinateSystem(code string) (CoordinateSystem, error) {
	code = source.NormalizeCode(code)
	if cs, ok := r.cache.systems.Lookup(code); ok {
		return cs, nil
	}
	elem := r.src.Lookup(code, coordinateSystemKinds...)
	if elem == nil {
		return nil, nil
	}
	if slices.Contains(r.chain, code) {
		return nil, ErrorCyclicReference(elem.Tag, code, r.chain)
	}
	r.chain = append(r.chain, code)
	defer func() { r.chain = r.chain[:len(r.chain)-1] }()

	if r.log.TraceEnabled() {
		r.log.Tracef("resolve %s %s", elem.Tag, code)
	}

	id, err := r.resolveIdentity(elem)
	if err != nil {
		return nil, err
	}

	var cs CoordinateSystem
	switch strings.ToLower(elem.Tag) {
	case strings.ToLower(kindGeographicCRS):
		cs, err = r.resolveGeographic(elem, id)
	case strings.ToLower(kindGeocentricCRS):
		cs, err = r.resolveGeocentric(elem, id)
	case strings.ToLower(kindProjectedCRS):
		cs, err = r.resolveProjected(elem, id)
	case strings.ToLower(kindCompoundCRS):
		cs, err = r.resolveCompound(elem, id)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// another resolution may have finished first
	if exist, ok := r.cache.systems.Peek(id.Code()); ok {
		return exist, nil
	}
	return r.cache.systems.StoreAll(id.Codes, cs), nil
}

func (r *resolver) resolveBase(elem *source.Element, id *Identifiable) (base, error) {
	axes, err := r.resolveAxes(elem, id.Code())
	if err != nil {
		return base{}, err
	}
	return base{
		Identifiable: id,
		AxisList:     axes,
		Transforms:   r.resolveTransformations(elem, id.Code()),
	}, nil
}

func (r *resolver) resolveGeographic(elem *source.Element, id *Identifiable) (*GeographicCRS, error) {
	b, err := r.resolveBase(elem, id)
	if err != nil {
		return nil, err
	}
	datum, err := r.resolveDatumOf(elem, id.Code())
	if err != nil {
		return nil, err
	}
	return &GeographicCRS{base: b, Datum: datum}, nil
}

func (r *resolver) resolveGeocentric(elem *source.Element, id *Identifiable) (*GeocentricCRS, error) {
	b, err := r.resolveBase(elem, id)
	if err != nil {
		return nil, err
	}
	datum, err := r.resolveDatumOf(elem, id.Code())
	if err != nil {
		return nil, err
	}
	return &GeocentricCRS{base: b, Datum: datum}, nil
}

func (r *resolver) resolveProjected(elem *source.Element, id *Identifiable) (*ProjectedCRS, error) {
	code := id.Code()
	b, err := r.resolveBase(elem, id)
	if err != nil {
		return nil, err
	}
	geoCode, err := r.reference(elem, kindProjectedCRS, code, elemUsedGeographicCRS)
	if err != nil {
		return nil, err
	}
	underlying, err := r.ResolveCoordinateSystem(geoCode)
	if err != nil {
		return nil, err
	}
	if underlying == nil {
		return nil, ErrorUnresolvedReference(kindProjectedCRS, code, geoCode)
	}
	geo, ok := underlying.(*GeographicCRS)
	if !ok {
		return nil, ErrorIncompatibleReference(kindProjectedCRS, code, geoCode, underlying.Kind())
	}

	projElem := r.src.Find(elem, elemProjection)
	if projElem == nil {
		return nil, ErrorMissingRequiredField(kindProjectedCRS, code, elemProjection)
	}
	kinds := projElem.ChildElements()
	if len(kinds) == 0 {
		return nil, ErrorMissingRequiredField(kindProjectedCRS, code, elemProjection)
	}
	if len(kinds) > 1 {
		r.log.Warnf("%s has %d projections, only %s is used", code, len(kinds), kinds[0].Tag)
	}
	unit := Degree
	if axes := geo.Axes(); len(axes) > 0 {
		unit = axes[0].Unit
	}
	proj, err := r.resolveProjection(kinds[0], code, geo, unit)
	if err != nil {
		return nil, err
	}
	return &ProjectedCRS{base: b, Datum: geo.Datum, Geographic: geo, Projection: proj}, nil
}

func (r *resolver) resolveCompound(elem *source.Element, id *Identifiable) (*CompoundCRS, error) {
	code := id.Code()
	refCode, err := r.reference(elem, kindCompoundCRS, code, elemUsedCRS)
	if err != nil {
		return nil, err
	}
	underlying, err := r.ResolveCoordinateSystem(refCode)
	if err != nil {
		return nil, err
	}
	if underlying == nil {
		return nil, ErrorUnresolvedReference(kindCompoundCRS, code, refCode)
	}
	if k := underlying.Kind(); k != Geographic && k != Projected {
		return nil, ErrorIncompatibleReference(kindCompoundCRS, code, refCode, k)
	}

	heightElem := r.src.Find(elem, elemHeightAxis)
	if heightElem == nil {
		return nil, ErrorMissingRequiredField(kindCompoundCRS, code, elemHeightAxis)
	}
	name, err := r.src.RequiredAttr(heightElem, attrAxisName)
	if err != nil {
		return nil, ErrorDefinitionParse(kindCompoundCRS, code, fmt.Errorf("%s: %w", elemHeightAxis, err))
	}
	height, err := r.resolveAxis(heightElem, name, kindCompoundCRS, code)
	if err != nil {
		return nil, err
	}
	defaultHeight, err := r.floatOr(elem, elemDefaultHeight, 0)
	if err != nil {
		return nil, ErrorDefinitionParse(kindCompoundCRS, code, err)
	}

	axes := append(slices.Clone(underlying.Axes()), height)
	return &CompoundCRS{
		base: base{
			Identifiable: id,
			AxisList:     axes,
		},
		Underlying:    underlying,
		HeightAxis:    height,
		DefaultHeight: defaultHeight,
	}, nil
}
