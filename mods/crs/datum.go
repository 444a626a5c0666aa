package crs

import (
	"github.com/machbase/neo-crs/mods/crs/source"
)

type GeodeticDatum struct {
	*Identifiable
	Ellipsoid     *Ellipsoid     `json:"ellipsoid"`
	PrimeMeridian *PrimeMeridian `json:"primeMeridian"`
	// ToWGS84 is nil when the datum has no conversion.
	ToWGS84 *Helmert `json:"toWGS84,omitempty"`
}

const (
	elemUsedDatum         = "usedDatum"
	elemUsedEllipsoid     = "usedEllipsoid"
	elemUsedPrimeMeridian = "usedPrimeMeridian"
	elemUsedConversion    = "usedWGS84ConversionInfo"
)

// reference reads a required code reference under elem.
func (r *resolver) reference(elem *source.Element, elementKind, ownerCode, field string) (string, error) {
	e := r.src.Find(elem, field)
	if e == nil {
		return "", ErrorMissingRequiredField(elementKind, ownerCode, field)
	}
	txt, _ := r.src.Text(e)
	code := source.NormalizeCode(txt)
	if code == "" {
		return "", ErrorReferenceIsEmpty(elementKind, ownerCode, field)
	}
	return code, nil
}

// resolveDatumOf resolves the datum used by the coordinate system element.
func (r *resolver) resolveDatumOf(crsElem *source.Element, ownerCode string) (*GeodeticDatum, error) {
	code, err := r.reference(crsElem, crsElem.Tag, ownerCode, elemUsedDatum)
	if err != nil {
		return nil, err
	}
	return r.ResolveDatum(code)
}

func (r *resolver) ResolveDatum(code string) (*GeodeticDatum, error) {
	code = source.NormalizeCode(code)
	if d, ok := r.cache.datums.Lookup(code); ok {
		return d, nil
	}
	elem := r.src.Lookup(code, kindDatum)
	if elem == nil {
		return nil, ErrorUnresolvedReference(kindDatum, code, code)
	}
	id, err := r.resolveIdentity(elem)
	if err != nil {
		return nil, err
	}
	ellCode, err := r.reference(elem, kindDatum, id.Code(), elemUsedEllipsoid)
	if err != nil {
		return nil, err
	}
	ell, err := r.ResolveEllipsoid(ellCode)
	if err != nil {
		return nil, err
	}

	pm := Greenwich
	if pmCode, ok := r.src.ChildText(elem, elemUsedPrimeMeridian); ok && pmCode != "" {
		if resolved, err := r.ResolvePrimeMeridian(pmCode, Greenwich); err != nil {
			r.log.Warnf("datum %s prime meridian %q ignored, %s", id.Code(), pmCode, err.Error())
		} else {
			pm = resolved
		}
	}

	var conv *Helmert
	if convCode, ok := r.src.ChildText(elem, elemUsedConversion); ok && convCode != "" {
		if resolved, err := r.ResolveHelmert(convCode); err != nil {
			r.log.Warnf("datum %s wgs84 conversion %q ignored, %s", id.Code(), convCode, err.Error())
		} else {
			conv = resolved
		}
	}

	datum := &GeodeticDatum{
		Identifiable:  id,
		Ellipsoid:     ell,
		PrimeMeridian: pm,
		ToWGS84:       conv,
	}
	return r.cache.datums.StoreAll(id.Codes, datum), nil
}
