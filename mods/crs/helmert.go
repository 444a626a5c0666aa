package crs

import (
	"github.com/machbase/neo-crs/mods/crs/source"
)

// Helmert is the seven parameter conversion of a datum to WGS84.
// Translations in metres, rotations in arc-seconds, scale in ppm.
type Helmert struct {
	*Identifiable
	Dx  float64 `json:"dx"`
	Dy  float64 `json:"dy"`
	Dz  float64 `json:"dz"`
	Ex  float64 `json:"ex"`
	Ey  float64 `json:"ey"`
	Ez  float64 `json:"ez"`
	Ppm float64 `json:"ppm"`
}

func (h *Helmert) IsIdentity() bool {
	return h.Dx == 0 && h.Dy == 0 && h.Dz == 0 && h.Ex == 0 && h.Ey == 0 && h.Ez == 0 && h.Ppm == 0
}

// Params returns the parameters in the proj towgs84 order.
func (h *Helmert) Params() []float64 {
	return []float64{h.Dx, h.Dy, h.Dz, h.Ex, h.Ey, h.Ez, h.Ppm}
}

var helmertFields = []string{
	"xAxisTranslation", "yAxisTranslation", "zAxisTranslation",
	"xAxisRotation", "yAxisRotation", "zAxisRotation",
	"scaleDifference",
}

func (r *resolver) ResolveHelmert(code string) (*Helmert, error) {
	code = source.NormalizeCode(code)
	if h, ok := r.cache.helmerts.Lookup(code); ok {
		return h, nil
	}
	elem := r.src.Lookup(code, kindHelmert)
	if elem == nil {
		return nil, ErrorUnresolvedReference(kindHelmert, code, code)
	}
	id, err := r.resolveIdentity(elem)
	if err != nil {
		return nil, err
	}
	var values [7]float64
	for i, field := range helmertFields {
		if values[i], err = r.floatOr(elem, field, 0); err != nil {
			return nil, ErrorDefinitionParse(kindHelmert, id.Code(), err)
		}
	}
	h := &Helmert{
		Identifiable: id,
		Dx:           values[0],
		Dy:           values[1],
		Dz:           values[2],
		Ex:           values[3],
		Ey:           values[4],
		Ez:           values[5],
		Ppm:          values[6],
	}
	return r.cache.helmerts.StoreAll(id.Codes, h), nil
}
