package crs

import (
	"fmt"
	"math"

	"github.com/machbase/neo-crs/mods/crs/source"
)

// Ellipsoid keeps all three shape parameters, derived from whichever one was
// defined. A sphere has InverseFlattening 0.
type Ellipsoid struct {
	*Identifiable
	Unit              *Unit   `json:"unit"`
	SemiMajorAxis     float64 `json:"semiMajorAxis"`
	SemiMinorAxis     float64 `json:"semiMinorAxis"`
	InverseFlattening float64 `json:"inverseFlattening"`
	Eccentricity      float64 `json:"eccentricity"`
}

func NewEllipsoidInverseFlattening(id *Identifiable, unit *Unit, a, invF float64) *Ellipsoid {
	ret := &Ellipsoid{Identifiable: id, Unit: unit, SemiMajorAxis: a, InverseFlattening: invF}
	if invF == 0 || math.IsInf(invF, 0) {
		ret.InverseFlattening = 0
		ret.SemiMinorAxis = a
		return ret
	}
	f := 1 / invF
	ret.Eccentricity = math.Sqrt(2*f - f*f)
	ret.SemiMinorAxis = a * (1 - f)
	return ret
}

func NewEllipsoidEccentricity(id *Identifiable, unit *Unit, a, e float64) *Ellipsoid {
	ret := &Ellipsoid{Identifiable: id, Unit: unit, SemiMajorAxis: a, Eccentricity: e}
	ret.SemiMinorAxis = a * math.Sqrt(1-e*e)
	if f := 1 - math.Sqrt(1-e*e); f != 0 {
		ret.InverseFlattening = 1 / f
	}
	return ret
}

func NewEllipsoidSemiMinorAxis(id *Identifiable, unit *Unit, a, b float64) *Ellipsoid {
	ret := &Ellipsoid{Identifiable: id, Unit: unit, SemiMajorAxis: a, SemiMinorAxis: b}
	if a != b {
		ret.InverseFlattening = a / (a - b)
		ret.Eccentricity = math.Sqrt(1 - (b*b)/(a*a))
	}
	return ret
}

func (e *Ellipsoid) Flattening() float64 {
	if e.InverseFlattening == 0 {
		return 0
	}
	return 1 / e.InverseFlattening
}

func (e *Ellipsoid) IsSphere() bool { return e.InverseFlattening == 0 }

// A returns the semi-major axis in metres.
func (e *Ellipsoid) A() float64 { return e.Unit.ToBase(e.SemiMajorAxis) }

// Fi returns the inverse flattening.
func (e *Ellipsoid) Fi() float64 { return e.InverseFlattening }

const (
	elemSemiMajorAxis     = "semiMajorAxis"
	elemSemiMinorAxis     = "semiMinorAxis"
	elemInverseFlattening = "inverseFlattening"
	elemEccentricity      = "eccentricity"
)

func (r *resolver) ResolveEllipsoid(code string) (*Ellipsoid, error) {
	code = source.NormalizeCode(code)
	if ell, ok := r.cache.ellipsoids.Lookup(code); ok {
		return ell, nil
	}
	elem := r.src.Lookup(code, kindEllipsoid)
	if elem == nil {
		return nil, ErrorUnresolvedReference(kindEllipsoid, code, code)
	}
	id, err := r.resolveIdentity(elem)
	if err != nil {
		return nil, err
	}
	unit, err := r.unit(elem, Metre)
	if err != nil {
		return nil, ErrorDefinitionParse(kindEllipsoid, id.Code(), err)
	}
	a, ok, err := r.float(elem, elemSemiMajorAxis)
	if err != nil {
		return nil, ErrorDefinitionParse(kindEllipsoid, id.Code(), err)
	}
	if !ok {
		return nil, ErrorMissingRequiredField(kindEllipsoid, id.Code(), elemSemiMajorAxis)
	}
	invF, hasInvF, err := r.float(elem, elemInverseFlattening)
	if err != nil {
		return nil, ErrorDefinitionParse(kindEllipsoid, id.Code(), err)
	}
	ecc, hasEcc, err := r.float(elem, elemEccentricity)
	if err != nil {
		return nil, ErrorDefinitionParse(kindEllipsoid, id.Code(), err)
	}
	b, hasB, err := r.float(elem, elemSemiMinorAxis)
	if err != nil {
		return nil, ErrorDefinitionParse(kindEllipsoid, id.Code(), err)
	}

	if err := checkShape(a, invF, hasInvF, ecc, hasEcc, b, hasB); err != nil {
		return nil, ErrorDefinitionParse(kindEllipsoid, id.Code(), err)
	}

	var ell *Ellipsoid
	switch {
	case hasInvF:
		ell = NewEllipsoidInverseFlattening(id, unit, a, invF)
	case hasEcc:
		ell = NewEllipsoidEccentricity(id, unit, a, ecc)
	case hasB:
		ell = NewEllipsoidSemiMinorAxis(id, unit, a, b)
	default:
		return nil, ErrorEllipsoidMissingParameter(id.Code())
	}
	return r.cache.ellipsoids.StoreAll(id.Codes, ell), nil
}

// checkShape rejects parameters that describe no ellipsoid. Only the
// parameter that will be used is checked.
func checkShape(a, invF float64, hasInvF bool, ecc float64, hasEcc bool, b float64, hasB bool) error {
	if !(a > 0) || math.IsInf(a, 0) {
		return fmt.Errorf("%s %v is not positive", elemSemiMajorAxis, a)
	}
	switch {
	case hasInvF:
		// 0 and +Inf are spheres
		if math.IsNaN(invF) || (invF != 0 && !math.IsInf(invF, 1) && invF <= 1) {
			return fmt.Errorf("%s %v is out of range", elemInverseFlattening, invF)
		}
	case hasEcc:
		if !(ecc >= 0 && ecc < 1) {
			return fmt.Errorf("%s %v is not in [0, 1)", elemEccentricity, ecc)
		}
	case hasB:
		if !(b > 0 && b <= a) {
			return fmt.Errorf("%s %v is not in (0, %v]", elemSemiMinorAxis, b, a)
		}
	}
	return nil
}
