package crs

import (
	"fmt"
	"strings"

	"github.com/machbase/neo-crs/mods/crs/source"
	"gonum.org/v1/gonum/floats"
)

// Transformation is an empirically fitted transformation from the owning
// coordinate system to the target one.
type Transformation interface {
	Kind() string
	TargetCode() string
	Polynomial() *PolynomialTransformation
}

type PolynomialTransformation struct {
	// Target is the code of the target coordinate system, it is not resolved.
	Target      string    `json:"targetCRS"`
	XParameters []float64 `json:"xParameters"`
	YParameters []float64 `json:"yParameters"`
}

func (p *PolynomialTransformation) TargetCode() string                    { return p.Target }
func (p *PolynomialTransformation) Polynomial() *PolynomialTransformation { return p }

const KindLeastSquareApproximation = "leastSquareApproximation"

// LeastSquareApproximation evaluates a bivariate polynomial whose coefficients
// are ordered by degree: 1, x, y, x², xy, y², x³, ...
type LeastSquareApproximation struct {
	PolynomialTransformation
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
}

func (*LeastSquareApproximation) Kind() string { return KindLeastSquareApproximation }

var _ Transformation = (*LeastSquareApproximation)(nil)

func NewLeastSquareApproximation(xParams, yParams []float64, target string, scaleX, scaleY float64) *LeastSquareApproximation {
	return &LeastSquareApproximation{
		PolynomialTransformation: PolynomialTransformation{
			Target:      target,
			XParameters: xParams,
			YParameters: yParams,
		},
		ScaleX: scaleX,
		ScaleY: scaleY,
	}
}

// Apply transforms (x, y) scaled by ScaleX and ScaleY.
func (ls *LeastSquareApproximation) Apply(x, y float64) (float64, float64) {
	xs, ys := x*ls.ScaleX, y*ls.ScaleY
	return floats.Dot(ls.XParameters, polynomialTerms(xs, ys, len(ls.XParameters))),
		floats.Dot(ls.YParameters, polynomialTerms(xs, ys, len(ls.YParameters)))
}

func polynomialTerms(x, y float64, n int) []float64 {
	ret := make([]float64, 0, n)
	for degree := 0; len(ret) < n; degree++ {
		for j := 0; j <= degree && len(ret) < n; j++ {
			term := 1.0
			for i := 0; i < degree-j; i++ {
				term *= x
			}
			for i := 0; i < j; i++ {
				term *= y
			}
			ret = append(ret, term)
		}
	}
	return ret
}

const (
	elemUsedTransformation = "usedTransformation"
	elemTargetCRS          = "targetCRS"
	elemXParameters        = "xParameters"
	elemYParameters        = "yParameters"
	elemScaleX             = "scaleX"
	elemScaleY             = "scaleY"
)

// resolveTransformations returns the transformations declared under the
// coordinate system element. A transformation that fails is logged and left
// out; the coordinate system itself never fails because of one.
func (r *resolver) resolveTransformations(crsElem *source.Element, ownerCode string) []Transformation {
	var ret []Transformation
	for _, elem := range r.src.FindAll(crsElem, kindTransformation) {
		t, err := r.resolveTransformation(elem, ownerCode)
		if err != nil {
			r.log.Warnf("%s transformation ignored, %s", ownerCode, err.Error())
			continue
		}
		if t == nil {
			continue
		}
		ret = append(ret, t)
	}
	return ret
}

func (r *resolver) resolveTransformation(elem *source.Element, ownerCode string) (Transformation, error) {
	children := elem.ChildElements()
	if len(children) == 0 {
		return nil, ErrorMissingRequiredField(kindTransformation, ownerCode, elemUsedTransformation)
	}
	kindElem := children[0]

	target, ok := r.src.ChildText(kindElem, elemTargetCRS)
	target = source.NormalizeCode(target)
	if !ok || target == "" {
		return nil, ErrorMissingRequiredField(kindTransformation, ownerCode, elemTargetCRS)
	}
	xParams, err := r.coefficients(kindElem, ownerCode, elemXParameters)
	if err != nil {
		return nil, err
	}
	yParams, err := r.coefficients(kindElem, ownerCode, elemYParameters)
	if err != nil {
		return nil, err
	}

	if class, ok := r.src.Attr(kindElem, attrClass); ok && class != "" {
		t, err := r.registry.buildTransformation(class, xParams, yParams, target)
		if err != nil {
			return nil, ErrorLateBoundTypeUnavailable(kindTransformation, class, err)
		}
		return t, nil
	}

	switch strings.ToLower(kindElem.Tag) {
	case strings.ToLower(KindLeastSquareApproximation):
		scaleX, err := r.floatOr(kindElem, elemScaleX, 1)
		if err != nil {
			return nil, ErrorDefinitionParse(kindTransformation, ownerCode, err)
		}
		scaleY, err := r.floatOr(kindElem, elemScaleY, 1)
		if err != nil {
			return nil, ErrorDefinitionParse(kindTransformation, ownerCode, err)
		}
		return NewLeastSquareApproximation(xParams, yParams, target, scaleX, scaleY), nil
	default:
		r.log.Debugf("%s transformation kind %q is not known", ownerCode, kindElem.Tag)
		return nil, nil
	}
}

func (r *resolver) coefficients(elem *source.Element, ownerCode, field string) ([]float64, error) {
	txt, _ := r.src.ChildText(elem, field)
	ret := parseFloats(txt)
	if len(ret) == 0 {
		return nil, ErrorTransformationMissingCoefficients(ownerCode, field)
	}
	return ret, nil
}

func (t *LeastSquareApproximation) String() string {
	return fmt.Sprintf("%s -> %s (%d, %d)", t.Kind(), t.Target, len(t.XParameters), len(t.YParameters))
}
