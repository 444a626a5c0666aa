package crs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/machbase/neo-crs/mods/crs/source"
)

const (
	elemUnits    = "units"
	attrInDegree = "inDegrees"
)

// float reads the text of path under elem. A missing element is not an error,
// a present one that does not parse is.
func (r *resolver) float(elem *source.Element, path string) (float64, bool, error) {
	txt, ok := r.src.ChildText(elem, path)
	if !ok || txt == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(txt, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %q is not a number", path, txt)
	}
	return v, true, nil
}

func (r *resolver) floatOr(elem *source.Element, path string, def float64) (float64, error) {
	v, ok, err := r.float(elem, path)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func (r *resolver) boolOr(elem *source.Element, path string, def bool) (bool, error) {
	txt, ok := r.src.ChildText(elem, path)
	if !ok || txt == "" {
		return def, nil
	}
	return parseBool(path, txt)
}

func parseBool(name, txt string) (bool, error) {
	v, err := strconv.ParseBool(strings.ToLower(txt))
	if err != nil {
		return false, fmt.Errorf("%s: %q is not a boolean", name, txt)
	}
	return v, nil
}

// angle reads an angle under elem, converting degrees to radians when the
// element's inDegrees attribute (default true) says so and the value is non-zero.
func (r *resolver) angle(elem *source.Element, path string) (float64, error) {
	e := r.src.Find(elem, path)
	if e == nil {
		return 0, nil
	}
	txt, _ := r.src.Text(e)
	if txt == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(txt, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", path, txt)
	}
	inDegrees := true
	if attr, ok := r.src.Attr(e, attrInDegree); ok && attr != "" {
		if inDegrees, err = parseBool(path+"@"+attrInDegree, attr); err != nil {
			return 0, err
		}
	}
	if inDegrees && v != 0 {
		v = ToRadians(v)
	}
	return v, nil
}

// unit resolves the units child of elem, def when absent.
func (r *resolver) unit(elem *source.Element, def *Unit) (*Unit, error) {
	txt, ok := r.src.ChildText(elem, elemUnits)
	if !ok || txt == "" {
		return def, nil
	}
	return r.ResolveUnit(txt)
}

// floats parses a whitespace separated list, skipping tokens that are not numbers.
func parseFloats(txt string) []float64 {
	var ret []float64
	for _, tok := range strings.Fields(txt) {
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			ret = append(ret, v)
		}
	}
	return ret
}

func ToRadians(deg float64) float64 { return deg * math.Pi / 180 }
func ToDegrees(rad float64) float64 { return rad * 180 / math.Pi }
