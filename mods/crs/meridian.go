package crs

import (
	"github.com/machbase/neo-crs/mods/crs/source"
)

type PrimeMeridian struct {
	*Identifiable
	Unit *Unit `json:"unit"`
	// Longitude from Greenwich in radians.
	Longitude float64 `json:"longitude"`
}

var Greenwich = &PrimeMeridian{
	Identifiable: &Identifiable{
		Codes: []string{"EPSG:8901", "URN:OGC:DEF:MERIDIAN:EPSG::8901"},
		Names: []string{"Greenwich"},
	},
	Unit:      Degree,
	Longitude: 0,
}

const elemLongitude = "longitude"

// ResolvePrimeMeridian returns def when code is blank.
func (r *resolver) ResolvePrimeMeridian(code string, def *PrimeMeridian) (*PrimeMeridian, error) {
	code = source.NormalizeCode(code)
	if code == "" {
		return def, nil
	}
	if pm, ok := r.cache.meridians.Lookup(code); ok {
		return pm, nil
	}
	elem := r.src.Lookup(code, kindPrimeMeridian)
	if elem == nil {
		return nil, ErrorUnresolvedReference(kindPrimeMeridian, code, code)
	}
	id, err := r.resolveIdentity(elem)
	if err != nil {
		return nil, err
	}
	unit, err := r.unit(elem, Degree)
	if err != nil {
		return nil, ErrorDefinitionParse(kindPrimeMeridian, id.Code(), err)
	}
	lon, err := r.angle(elem, elemLongitude)
	if err != nil {
		return nil, ErrorDefinitionParse(kindPrimeMeridian, id.Code(), err)
	}
	pm := &PrimeMeridian{Identifiable: id, Unit: unit, Longitude: lon}
	return r.cache.meridians.StoreAll(id.Codes, pm), nil
}
