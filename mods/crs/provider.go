package crs

import (
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/machbase/neo-crs/mods/crs/source"
	"github.com/machbase/neo-crs/mods/logging"
	gometrics "github.com/rcrowley/go-metrics"
	"golang.org/x/sync/singleflight"
)

// Provider hands out coordinate systems of a definition source. It is safe
// for concurrent use; every coordinate system is built once and shared.
type Provider struct {
	lock     sync.RWMutex
	gen      *generation
	registry *Registry
	log      logging.Log
	metrics  gometrics.Registry

	resolved gometrics.Counter
	failed   gometrics.Counter
}

// generation is what one definition source resolves into. Reload replaces
// it as a whole, a resolution that started before keeps writing into the
// generation it started with.
type generation struct {
	src   source.Source
	cache *Cache
	group *singleflight.Group
}

type Option func(*Provider)

func WithLogger(log logging.Log) Option {
	return func(p *Provider) {
		p.log = log
	}
}

// WithRegistry replaces the DefaultRegistry as the source of late-bound builders.
func WithRegistry(reg *Registry) Option {
	return func(p *Provider) {
		p.registry = reg
	}
}

func New(src source.Source, opts ...Option) *Provider {
	ret := &Provider{
		registry: DefaultRegistry,
		log:      logging.GetLog("crs"),
		metrics:  gometrics.NewRegistry(),
	}
	for _, op := range opts {
		op(ret)
	}
	ret.gen = ret.newGeneration(src)
	ret.resolved = gometrics.GetOrRegisterCounter("resolve.ok", ret.metrics)
	ret.failed = gometrics.GetOrRegisterCounter("resolve.fail", ret.metrics)
	return ret
}

func (p *Provider) newGeneration(src source.Source) *generation {
	return &generation{
		src:   src,
		cache: newCache(p.metrics),
		group: &singleflight.Group{},
	}
}

func (p *Provider) current() *generation {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.gen
}

func (p *Provider) resolver() *resolver {
	gen := p.current()
	return newResolver(gen.src, gen.cache, p.registry, p.log)
}

// GetCoordinateSystem returns the coordinate system identified by code.
// ErrNotFound is returned when no coordinate system definition carries the code.
func (p *Provider) GetCoordinateSystem(code string) (CoordinateSystem, error) {
	code = source.NormalizeCode(code)
	if code == "" {
		return nil, fmt.Errorf("%w, empty code", ErrNotFound)
	}
	gen := p.current()
	if cs, ok := gen.cache.systems.Lookup(code); ok {
		return cs, nil
	}
	ret, err, _ := gen.group.Do(code, func() (any, error) {
		return newResolver(gen.src, gen.cache, p.registry, p.log).ResolveCoordinateSystem(code)
	})
	if err != nil {
		p.failed.Inc(1)
		p.log.Warnf("resolve %s failed, %s", code, err.Error())
		return nil, err
	}
	cs, _ := ret.(CoordinateSystem)
	if cs == nil {
		return nil, fmt.Errorf("%w, %q", ErrNotFound, code)
	}
	p.resolved.Inc(1)
	return cs, nil
}

// Ellipsoid, PrimeMeridian, Datum and Unit expose the resolvers of the
// building blocks, sharing the cache of the coordinate systems.
func (p *Provider) Ellipsoid(code string) (*Ellipsoid, error) {
	return p.resolver().ResolveEllipsoid(code)
}

func (p *Provider) PrimeMeridian(code string) (*PrimeMeridian, error) {
	return p.resolver().ResolvePrimeMeridian(code, Greenwich)
}

func (p *Provider) Datum(code string) (*GeodeticDatum, error) {
	return p.resolver().ResolveDatum(code)
}

func (p *Provider) Unit(token string) (*Unit, error) {
	return p.resolver().ResolveUnit(token)
}

// AvailableCodes returns the codes of every coordinate system definition,
// one group per definition, in document order.
func (p *Provider) AvailableCodes() [][]string {
	var ret [][]string
	for _, elem := range p.current().src.Definitions(coordinateSystemKinds...) {
		ret = append(ret, source.Codes(elem))
	}
	return ret
}

// Version returns the format version declared by the definition document.
func (p *Provider) Version() string {
	return p.current().src.Version()
}

// CheckVersion verifies the document version against a semver constraint
// such as ">= 0.5, < 1".
func (p *Provider) CheckVersion(constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q, %w", constraint, err)
	}
	ver := p.Version()
	v, err := semver.NewVersion(ver)
	if err != nil {
		return fmt.Errorf("%w, document version %q, %s", ErrIncompatibleVersion, ver, err.Error())
	}
	if ok, errs := c.Validate(v); !ok {
		if len(errs) > 0 {
			return fmt.Errorf("%w, %s", ErrIncompatibleVersion, errs[0].Error())
		}
		return fmt.Errorf("%w, %s does not satisfy %s", ErrIncompatibleVersion, ver, constraint)
	}
	return nil
}

// Reload replaces the definition source with an empty cache. Coordinate
// systems handed out before, and resolutions still running on the old source,
// keep referring to the old definitions; none of them reaches the new cache.
func (p *Provider) Reload(src source.Source) {
	gen := p.newGeneration(src)
	p.lock.Lock()
	p.gen = gen
	p.lock.Unlock()
	p.log.Infof("definitions reloaded, version %s", src.Version())
}

// Cache returns the cache of the current definition source.
func (p *Provider) Cache() *Cache { return p.current().cache }

func (p *Provider) Registry() *Registry { return p.registry }
