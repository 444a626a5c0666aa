// Package source exposes a parsed CRS definition document as an element tree
// with a document-wide identifier index.
//
// Element names are matched by local name, namespace prefixes are ignored.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Element = etree.Element

var (
	ErrElementNotFound   = errors.New("element not found")
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrInvalidDocument   = errors.New("invalid definition document")
)

// IdElement is the local name of the identity code element every definition carries.
const IdElement = "id"

type Source interface {
	Root() *Element
	Version() string

	Find(scope *Element, path string) *Element
	FindRequired(scope *Element, path string) (*Element, error)
	FindAll(scope *Element, path string) []*Element

	Attr(elem *Element, name string) (string, bool)
	RequiredAttr(elem *Element, name string) (string, error)
	Text(elem *Element) (string, bool)
	ChildText(scope *Element, path string) (string, bool)
	RequiredText(scope *Element, path string) (string, error)

	// Lookup returns the definition element carrying the code, restricted to
	// the given kinds (element local names, case-insensitive) when any are given.
	Lookup(code string, kinds ...string) *Element
	// Definitions returns every element carrying at least one id, in document order.
	Definitions(kinds ...string) []*Element
}

type document struct {
	doc     *etree.Document
	root    *Element
	index   map[string][]*Element
	defs    []*Element
	pathsMu sync.Mutex
	paths   map[string]etree.Path
}

var _ Source = (*document)(nil)

func Parse(content []byte) (Source, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, fmt.Errorf("%w, %s", ErrInvalidDocument, err.Error())
	}
	return newDocument(doc)
}

func ParseReader(r io.Reader) (Source, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w, %s", ErrInvalidDocument, err.Error())
	}
	return newDocument(doc)
}

func ParseFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseReader(f)
}

func newDocument(doc *etree.Document) (*document, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w, no root element", ErrInvalidDocument)
	}
	ret := &document{
		doc:   doc,
		root:  root,
		index: make(map[string][]*Element),
		paths: make(map[string]etree.Path),
	}
	ret.buildIndex(root)
	return ret, nil
}

func (d *document) buildIndex(elem *Element) {
	codes := Codes(elem)
	if len(codes) > 0 {
		d.defs = append(d.defs, elem)
		for _, c := range codes {
			d.index[c] = append(d.index[c], elem)
		}
	}
	for _, child := range elem.ChildElements() {
		d.buildIndex(child)
	}
}

func (d *document) Root() *Element { return d.root }

func (d *document) Version() string {
	return strings.TrimSpace(d.root.SelectAttrValue("version", ""))
}

func (d *document) compile(path string) (etree.Path, bool) {
	d.pathsMu.Lock()
	defer d.pathsMu.Unlock()
	if p, ok := d.paths[path]; ok {
		return p, true
	}
	p, err := etree.CompilePath(path)
	if err != nil {
		return etree.Path{}, false
	}
	d.paths[path] = p
	return p, true
}

func (d *document) scope(scope *Element) *Element {
	if scope == nil {
		return d.root
	}
	return scope
}

func (d *document) Find(scope *Element, path string) *Element {
	p, ok := d.compile(path)
	if !ok {
		return nil
	}
	return d.scope(scope).FindElementPath(p)
}

func (d *document) FindRequired(scope *Element, path string) (*Element, error) {
	if elem := d.Find(scope, path); elem != nil {
		return elem, nil
	}
	return nil, fmt.Errorf("%w, %q in <%s>", ErrElementNotFound, path, d.scope(scope).Tag)
}

func (d *document) FindAll(scope *Element, path string) []*Element {
	p, ok := d.compile(path)
	if !ok {
		return nil
	}
	return d.scope(scope).FindElementsPath(p)
}

func (d *document) Attr(elem *Element, name string) (string, bool) {
	if elem == nil {
		return "", false
	}
	attr := elem.SelectAttr(name)
	if attr == nil {
		return "", false
	}
	return strings.TrimSpace(attr.Value), true
}

func (d *document) RequiredAttr(elem *Element, name string) (string, error) {
	if v, ok := d.Attr(elem, name); ok {
		return v, nil
	}
	tag := ""
	if elem != nil {
		tag = elem.Tag
	}
	return "", fmt.Errorf("%w, @%s in <%s>", ErrAttributeNotFound, name, tag)
}

func (d *document) Text(elem *Element) (string, bool) {
	if elem == nil {
		return "", false
	}
	return strings.TrimSpace(elem.Text()), true
}

func (d *document) ChildText(scope *Element, path string) (string, bool) {
	return d.Text(d.Find(scope, path))
}

func (d *document) RequiredText(scope *Element, path string) (string, error) {
	elem, err := d.FindRequired(scope, path)
	if err != nil {
		return "", err
	}
	txt, _ := d.Text(elem)
	return txt, nil
}

func (d *document) Lookup(code string, kinds ...string) *Element {
	for _, elem := range d.index[NormalizeCode(code)] {
		if IsKind(elem, kinds...) {
			return elem
		}
	}
	return nil
}

func (d *document) Definitions(kinds ...string) []*Element {
	ret := make([]*Element, 0, len(d.defs))
	for _, elem := range d.defs {
		if IsKind(elem, kinds...) {
			ret = append(ret, elem)
		}
	}
	return ret
}

// IsKind reports whether the local name of elem matches one of kinds.
// No kinds matches everything.
func IsKind(elem *Element, kinds ...string) bool {
	if elem == nil {
		return false
	}
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if strings.EqualFold(elem.Tag, k) {
			return true
		}
	}
	return false
}

// Codes returns the normalized, de-duplicated codes of the direct id children of elem.
func Codes(elem *Element) []string {
	var ret []string
	seen := map[string]bool{}
	for _, child := range elem.ChildElements() {
		if child.Tag != IdElement {
			continue
		}
		c := NormalizeCode(child.Text())
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		ret = append(ret, c)
	}
	return ret
}

// NormalizeCode trims and upper-cases a code.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	// a Caser keeps state between calls, so one per call
	return cases.Upper(language.Und).String(code)
}
