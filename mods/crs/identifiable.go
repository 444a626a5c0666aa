package crs

import (
	"fmt"
	"slices"

	"github.com/machbase/neo-crs/mods/crs/source"
)

// Identifiable is the identity envelope shared by every definition.
type Identifiable struct {
	Codes        []string `json:"codes"`
	Names        []string `json:"names,omitempty"`
	Versions     []string `json:"versions,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
	AreasOfUse   []string `json:"areasOfUse,omitempty"`
}

func NewIdentifiable(codes ...string) *Identifiable {
	ret := &Identifiable{}
	for _, c := range codes {
		ret.addCode(c)
	}
	return ret
}

func (id *Identifiable) addCode(code string) {
	c := source.NormalizeCode(code)
	if c == "" || slices.Contains(id.Codes, c) {
		return
	}
	id.Codes = append(id.Codes, c)
}

// Code returns the first code, which is the cache key of the definition.
func (id *Identifiable) Code() string {
	if id == nil || len(id.Codes) == 0 {
		return ""
	}
	return id.Codes[0]
}

func (id *Identifiable) Name() string {
	if id == nil || len(id.Names) == 0 {
		return ""
	}
	return id.Names[0]
}

func (id *Identifiable) HasCode(code string) bool {
	if id == nil {
		return false
	}
	return slices.Contains(id.Codes, source.NormalizeCode(code))
}

func (id *Identifiable) String() string {
	if name := id.Name(); name != "" {
		return fmt.Sprintf("%s (%s)", id.Code(), name)
	}
	return id.Code()
}

const (
	elemName        = "name"
	elemVersion     = "version"
	elemDescription = "description"
	elemAreaOfUse   = "areaOfUse"
)

func (r *resolver) resolveIdentity(elem *source.Element) (*Identifiable, error) {
	ret := &Identifiable{}
	for _, e := range r.src.FindAll(elem, source.IdElement) {
		if txt, ok := r.src.Text(e); ok {
			ret.addCode(txt)
		}
	}
	if len(ret.Codes) == 0 {
		return nil, ErrorDefinitionParse(elem.Tag, "", ErrMissingIdentifier)
	}
	ret.Names = r.texts(elem, elemName)
	ret.Versions = r.texts(elem, elemVersion)
	ret.Descriptions = r.texts(elem, elemDescription)
	ret.AreasOfUse = r.texts(elem, elemAreaOfUse)
	return ret, nil
}

func (r *resolver) texts(elem *source.Element, path string) []string {
	var ret []string
	for _, e := range r.src.FindAll(elem, path) {
		if txt, ok := r.src.Text(e); ok && txt != "" {
			ret = append(ret, txt)
		}
	}
	return ret
}
