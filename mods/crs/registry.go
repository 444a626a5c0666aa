package crs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/machbase/neo-crs/mods/crs/source"
	"github.com/paulmach/orb"
)

// ProjectionBuilder constructs a late-bound projection. origin is the natural
// origin (longitude, latitude) in radians; extras are the children of the
// projection element other than the five common parameters.
type ProjectionBuilder func(geo *GeographicCRS, falseNorthing, falseEasting float64, origin orb.Point, unit *Unit, scaleFactor float64, extras []*source.Element) (Projection, error)

// TransformationBuilder constructs a late-bound polynomial transformation.
type TransformationBuilder func(xParams, yParams []float64, targetCode string) (Transformation, error)

// Registry maps fully qualified type names to builders. Definitions refer to
// them with the class attribute. The first registration of a name wins.
type Registry struct {
	lock            sync.RWMutex
	projections     map[string]ProjectionBuilder
	transformations map[string]TransformationBuilder
}

func NewRegistry() *Registry {
	return &Registry{
		projections:     make(map[string]ProjectionBuilder),
		transformations: make(map[string]TransformationBuilder),
	}
}

var DefaultRegistry = NewRegistry()

func RegisterProjection(name string, builder ProjectionBuilder) bool {
	return DefaultRegistry.RegisterProjection(name, builder)
}

func RegisterTransformation(name string, builder TransformationBuilder) bool {
	return DefaultRegistry.RegisterTransformation(name, builder)
}

func (reg *Registry) RegisterProjection(name string, builder ProjectionBuilder) bool {
	name = strings.TrimSpace(name)
	reg.lock.Lock()
	defer reg.lock.Unlock()
	if _, exists := reg.projections[name]; exists || name == "" || builder == nil {
		return false
	}
	reg.projections[name] = builder
	return true
}

func (reg *Registry) RegisterTransformation(name string, builder TransformationBuilder) bool {
	name = strings.TrimSpace(name)
	reg.lock.Lock()
	defer reg.lock.Unlock()
	if _, exists := reg.transformations[name]; exists || name == "" || builder == nil {
		return false
	}
	reg.transformations[name] = builder
	return true
}

func (reg *Registry) UnregisterProjection(name string) {
	reg.lock.Lock()
	delete(reg.projections, strings.TrimSpace(name))
	reg.lock.Unlock()
}

func (reg *Registry) UnregisterTransformation(name string) {
	reg.lock.Lock()
	delete(reg.transformations, strings.TrimSpace(name))
	reg.lock.Unlock()
}

// Names returns the registered projection and transformation names, sorted.
func (reg *Registry) Names() (projections []string, transformations []string) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	for k := range reg.projections {
		projections = append(projections, k)
	}
	for k := range reg.transformations {
		transformations = append(transformations, k)
	}
	sort.Strings(projections)
	sort.Strings(transformations)
	return
}

func (reg *Registry) projection(name string) (ProjectionBuilder, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	b, ok := reg.projections[strings.TrimSpace(name)]
	return b, ok
}

func (reg *Registry) transformation(name string) (TransformationBuilder, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	b, ok := reg.transformations[strings.TrimSpace(name)]
	return b, ok
}

var errNotRegistered = errors.New("no builder registered")

// buildProjection calls the builder registered as class, converting a panic
// into an error since builders are plugin code.
func (reg *Registry) buildProjection(class string, p ProjectionParams, extras []*source.Element) (ret Projection, err error) {
	builder, ok := reg.projection(class)
	if !ok {
		return nil, errNotRegistered
	}
	defer func() {
		if r := recover(); r != nil {
			ret, err = nil, fmt.Errorf("builder panic, %v", r)
		}
	}()
	ret, err = builder(p.Geographic, p.FalseNorthing, p.FalseEasting, p.NaturalOrigin, p.Unit, p.ScaleFactor, extras)
	if err == nil && ret == nil {
		err = fmt.Errorf("builder returned no projection")
	}
	return
}

func (reg *Registry) buildTransformation(class string, xParams, yParams []float64, target string) (ret Transformation, err error) {
	builder, ok := reg.transformation(class)
	if !ok {
		return nil, errNotRegistered
	}
	defer func() {
		if r := recover(); r != nil {
			ret, err = nil, fmt.Errorf("builder panic, %v", r)
		}
	}()
	ret, err = builder(xParams, yParams, target)
	if err == nil && ret == nil {
		err = fmt.Errorf("builder returned no transformation")
	}
	return
}
