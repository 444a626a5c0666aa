package crs

import (
	cmap "github.com/orcaman/concurrent-map/v2"
	gometrics "github.com/rcrowley/go-metrics"
)

// Cache is the identifiable cache shared by every resolver of a Provider.
// Each definition kind has its own namespace, so an ellipsoid and a datum
// may share a textual code.
//
// Entries are written once per key; the first stored instance wins and is
// returned to every later writer.
type Cache struct {
	units      *namespace[*Unit]
	ellipsoids *namespace[*Ellipsoid]
	meridians  *namespace[*PrimeMeridian]
	helmerts   *namespace[*Helmert]
	datums     *namespace[*GeodeticDatum]
	systems    *namespace[CoordinateSystem]

	metrics gometrics.Registry
}

func NewCache() *Cache {
	return newCache(gometrics.NewRegistry())
}

// newCache makes an empty cache counting into reg, counters already in reg
// keep their values.
func newCache(reg gometrics.Registry) *Cache {
	return &Cache{
		units:      newNamespace[*Unit]("unit", reg),
		ellipsoids: newNamespace[*Ellipsoid](kindEllipsoid, reg),
		meridians:  newNamespace[*PrimeMeridian](kindPrimeMeridian, reg),
		helmerts:   newNamespace[*Helmert](kindHelmert, reg),
		datums:     newNamespace[*GeodeticDatum](kindDatum, reg),
		systems:    newNamespace[CoordinateSystem]("crs", reg),
		metrics:    reg,
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.units.clear()
	c.ellipsoids.clear()
	c.meridians.clear()
	c.helmerts.clear()
	c.datums.clear()
	c.systems.clear()
}

// Counts returns the number of keys held per namespace.
func (c *Cache) Counts() map[string]int {
	return map[string]int{
		c.units.name:      c.units.m.Count(),
		c.ellipsoids.name: c.ellipsoids.m.Count(),
		c.meridians.name:  c.meridians.m.Count(),
		c.helmerts.name:   c.helmerts.m.Count(),
		c.datums.name:     c.datums.m.Count(),
		c.systems.name:    c.systems.m.Count(),
	}
}

// Metrics exposes hit/miss counters, named "cache.<namespace>.hits|misses".
func (c *Cache) Metrics() gometrics.Registry { return c.metrics }

type namespace[T any] struct {
	name   string
	m      cmap.ConcurrentMap[string, T]
	hits   gometrics.Counter
	misses gometrics.Counter
}

func newNamespace[T any](name string, reg gometrics.Registry) *namespace[T] {
	return &namespace[T]{
		name:   name,
		m:      cmap.New[T](),
		hits:   gometrics.GetOrRegisterCounter("cache."+name+".hits", reg),
		misses: gometrics.GetOrRegisterCounter("cache."+name+".misses", reg),
	}
}

func (ns *namespace[T]) Lookup(code string) (T, bool) {
	v, ok := ns.m.Get(code)
	if ok {
		ns.hits.Inc(1)
	} else {
		ns.misses.Inc(1)
	}
	return v, ok
}

// Peek is Lookup without touching the counters.
func (ns *namespace[T]) Peek(code string) (T, bool) {
	return ns.m.Get(code)
}

// Store keeps v under code unless another instance got there first,
// and returns the instance that is cached.
func (ns *namespace[T]) Store(code string, v T) T {
	return ns.m.Upsert(code, v, func(exist bool, inMap T, newValue T) T {
		if exist {
			return inMap
		}
		return newValue
	})
}

// StoreAll stores v under every code. The instance cached under the first
// code is canonical and is what the other codes map to.
func (ns *namespace[T]) StoreAll(codes []string, v T) T {
	if len(codes) == 0 {
		return v
	}
	ret := ns.Store(codes[0], v)
	for _, c := range codes[1:] {
		ns.m.SetIfAbsent(c, ret)
	}
	return ret
}

func (ns *namespace[T]) Has(code string) bool {
	return ns.m.Has(code)
}

func (ns *namespace[T]) clear() {
	ns.m.Clear()
}
