package crs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingRequiredField              = errors.New("missing required field")
	ErrReferenceIsEmpty                  = errors.New("reference is empty")
	ErrUnresolvedReference               = errors.New("unresolved reference")
	ErrUnknownUnit                       = errors.New("unknown unit")
	ErrEllipsoidMissingParameter         = errors.New("ellipsoid requires inverseFlattening, eccentricity or semiMinorAxis")
	ErrUnknownProjectionKind             = errors.New("unknown projection kind")
	ErrTransformationMissingCoefficients = errors.New("transformation missing coefficients")
	ErrIncompatibleReference             = errors.New("incompatible reference")
	ErrLateBoundTypeUnavailable          = errors.New("late-bound type unavailable")
	ErrProjectionUnavailable             = errors.New("projection unavailable")
	ErrDefinitionParse                   = errors.New("definition parse error")
	ErrMissingIdentifier                 = errors.New("missing identifier")
	ErrCyclicReference                   = errors.New("cyclic reference")
	ErrNotFound                          = errors.New("coordinate system not found")
	ErrIncompatibleVersion               = errors.New("incompatible definition version")
)

// DefinitionError carries the definition element kind, the code of the
// offending definition and the field that failed.
type DefinitionError struct {
	Kind        error
	ElementKind string
	Code        string
	Field       string
	Detail      string
	Cause       error
}

func (e *DefinitionError) Error() string {
	sb := &strings.Builder{}
	sb.WriteString(e.Kind.Error())
	if e.Field != "" {
		fmt.Fprintf(sb, " %q", e.Field)
	}
	if e.Detail != "" {
		sb.WriteString(", ")
		sb.WriteString(e.Detail)
	}
	if e.ElementKind != "" || e.Code != "" {
		fmt.Fprintf(sb, " (%s %s)", e.ElementKind, e.Code)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *DefinitionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}

var ErrorMissingRequiredField = func(elementKind, code, field string) error {
	return &DefinitionError{Kind: ErrMissingRequiredField, ElementKind: elementKind, Code: code, Field: field}
}

var ErrorReferenceIsEmpty = func(elementKind, code, field string) error {
	return &DefinitionError{Kind: ErrReferenceIsEmpty, ElementKind: elementKind, Code: code, Field: field}
}

var ErrorUnresolvedReference = func(elementKind, code, ref string) error {
	return &DefinitionError{Kind: ErrUnresolvedReference, ElementKind: elementKind, Code: code, Detail: fmt.Sprintf("no definition for %q", ref)}
}

var ErrorUnknownUnit = func(token string) error {
	return &DefinitionError{Kind: ErrUnknownUnit, ElementKind: "unit", Detail: fmt.Sprintf("%q", token)}
}

var ErrorEllipsoidMissingParameter = func(code string) error {
	return &DefinitionError{Kind: ErrEllipsoidMissingParameter, ElementKind: kindEllipsoid, Code: code}
}

var ErrorUnknownProjectionKind = func(code, name string, supported []string) error {
	return &DefinitionError{Kind: ErrUnknownProjectionKind, ElementKind: kindProjectedCRS, Code: code,
		Detail: fmt.Sprintf("%q, supported: %s", name, strings.Join(supported, ", "))}
}

var ErrorTransformationMissingCoefficients = func(code, field string) error {
	return &DefinitionError{Kind: ErrTransformationMissingCoefficients, ElementKind: kindTransformation, Code: code, Field: field}
}

var ErrorIncompatibleReference = func(elementKind, code, ref string, kind Kind) error {
	return &DefinitionError{Kind: ErrIncompatibleReference, ElementKind: elementKind, Code: code,
		Detail: fmt.Sprintf("%q is %s", ref, kind)}
}

var ErrorLateBoundTypeUnavailable = func(elementKind, className string, cause error) error {
	return &DefinitionError{Kind: ErrLateBoundTypeUnavailable, ElementKind: elementKind, Detail: fmt.Sprintf("class %q", className), Cause: cause}
}

var ErrorDefinitionParse = func(elementKind, code string, cause error) error {
	return &DefinitionError{Kind: ErrDefinitionParse, ElementKind: elementKind, Code: code, Cause: cause}
}

var ErrorCyclicReference = func(elementKind, code string, chain []string) error {
	return &DefinitionError{Kind: ErrCyclicReference, ElementKind: elementKind, Code: code,
		Detail: strings.Join(append(append([]string{}, chain...), code), " -> ")}
}
