package crs

import (
	"fmt"
	"strings"

	"github.com/machbase/neo-crs/mods/crs/source"
)

type Axis struct {
	Name        string `json:"name"`
	Orientation string `json:"orientation"`
	Unit        *Unit  `json:"unit"`
}

func (a *Axis) String() string {
	return fmt.Sprintf("%s(%s, %s)", a.Name, a.Orientation, a.Unit)
}

const (
	OrientationNorth = "north"
	OrientationSouth = "south"
	OrientationEast  = "east"
	OrientationWest  = "west"
	OrientationUp    = "up"
	OrientationDown  = "down"
	OrientationFront = "front"
	OrientationBack  = "back"
	OrientationOther = "other"
)

var orientations = []string{
	OrientationNorth, OrientationSouth, OrientationEast, OrientationWest,
	OrientationUp, OrientationDown, OrientationFront, OrientationBack, OrientationOther,
}

func normalizeOrientation(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "axis_")
	for _, o := range orientations {
		if s == o {
			return o, true
		}
	}
	return "", false
}

const (
	elemAxisOrder       = "axisOrder"
	elemAxis            = "axis"
	elemHeightAxis      = "heightAxis"
	elemAxisOrientation = "axisOrientation"
	attrAxisName        = "name"
)

// resolveAxes returns the axes of the coordinate system element in the order
// given by its axisOrder field, which is not necessarily document order.
func (r *resolver) resolveAxes(crsElem *source.Element, ownerCode string) ([]*Axis, error) {
	order, ok := r.src.ChildText(crsElem, elemAxisOrder)
	if !ok || order == "" {
		return nil, ErrorMissingRequiredField(crsElem.Tag, ownerCode, elemAxisOrder)
	}
	candidates := r.src.FindAll(crsElem, elemAxis)
	var ret []*Axis
	for _, name := range strings.Split(order, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrorDefinitionParse(crsElem.Tag, ownerCode, fmt.Errorf("%s %q has an empty axis name", elemAxisOrder, order))
		}
		var matched []*source.Element
		for _, c := range candidates {
			if n, _ := r.src.Attr(c, attrAxisName); n == name {
				matched = append(matched, c)
			}
		}
		switch len(matched) {
		case 0:
			return nil, ErrorUnresolvedReference(crsElem.Tag, ownerCode, name)
		case 1:
		default:
			return nil, ErrorDefinitionParse(crsElem.Tag, ownerCode, fmt.Errorf("axis %q defined %d times", name, len(matched)))
		}
		axis, err := r.resolveAxis(matched[0], name, crsElem.Tag, ownerCode)
		if err != nil {
			return nil, err
		}
		ret = append(ret, axis)
	}
	return ret, nil
}

func (r *resolver) resolveAxis(elem *source.Element, name string, elementKind string, ownerCode string) (*Axis, error) {
	orientation, ok := r.src.ChildText(elem, elemAxisOrientation)
	if !ok || orientation == "" {
		return nil, ErrorMissingRequiredField(elementKind, ownerCode, name+"/"+elemAxisOrientation)
	}
	o, ok := normalizeOrientation(orientation)
	if !ok {
		return nil, ErrorDefinitionParse(elementKind, ownerCode, fmt.Errorf("axis %q unknown orientation %q", name, orientation))
	}
	token, ok := r.src.ChildText(elem, elemUnits)
	if !ok || token == "" {
		return nil, ErrorMissingRequiredField(elementKind, ownerCode, name+"/"+elemUnits)
	}
	unit, err := r.ResolveUnit(token)
	if err != nil {
		return nil, err
	}
	return &Axis{Name: name, Orientation: o, Unit: unit}, nil
}
