package crs

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/machbase/neo-crs/mods/crs/source"
	"github.com/paulmach/orb"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/require"
)

const reloadDefinitions = `<definitions version="0.6.1">
  <ellipsoid>
    <id>EPSG:7030</id>
    <semiMajorAxis>6378137.0</semiMajorAxis>
    <inverseFlattening>298.257223563</inverseFlattening>
  </ellipsoid>
  <geodeticDatum>
    <id>EPSG:6326</id>
    <usedEllipsoid>EPSG:7030</usedEllipsoid>
  </geodeticDatum>
  <geographicCRS>
    <id>EPSG:4326</id>
    <name>Reloaded</name>
    <axisOrder>Lon,Lat</axisOrder>
    <axis name="Lat">
      <units>degree</units>
      <axisOrientation>north</axisOrientation>
    </axis>
    <axis name="Lon">
      <units>degree</units>
      <axisOrientation>east</axisOrientation>
    </axis>
    <usedDatum>EPSG:6326</usedDatum>
  </geographicCRS>
</definitions>`

func TestAvailableCodes(t *testing.T) {
	p := testProvider(t)
	codes := p.AvailableCodes()
	require.Len(t, codes, 34)
	require.Equal(t, []string{"EPSG:4326", "URN:OGC:DEF:CRS:EPSG::4326"}, codes[0])
	require.Contains(t, codes, []string{"EPSG:32632"})
	require.Contains(t, codes, []string{"COMPOUND_4326_H"})
	require.NotContains(t, codes, []string{"EPSG:6326", "WGS84_DATUM"})
}

func TestVersion(t *testing.T) {
	p := testProvider(t)
	require.Equal(t, "0.5.0", p.Version())
	require.NoError(t, p.CheckVersion(">= 0.5, < 1"))
	require.NoError(t, p.CheckVersion("~0.5"))

	err := p.CheckVersion(">= 1.0")
	require.ErrorIs(t, err, ErrIncompatibleVersion)

	err = p.CheckVersion("not a constraint")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrIncompatibleVersion)

	src, err := source.Parse([]byte(`<definitions/>`))
	require.NoError(t, err)
	noVersion := New(src)
	require.Equal(t, "", noVersion.Version())
	require.ErrorIs(t, noVersion.CheckVersion(">= 0.1"), ErrIncompatibleVersion)
}

func TestReload(t *testing.T) {
	p := testProvider(t)
	before, err := p.GetCoordinateSystem("EPSG:4326")
	require.NoError(t, err)
	_, err = p.GetCoordinateSystem("EPSG:32632")
	require.NoError(t, err)

	src, err := source.Parse([]byte(reloadDefinitions))
	require.NoError(t, err)
	p.Reload(src)
	require.Equal(t, "0.6.1", p.Version())
	require.Len(t, p.AvailableCodes(), 1)

	after, err := p.GetCoordinateSystem("EPSG:4326")
	require.NoError(t, err)
	require.NotSame(t, before, after)
	require.Equal(t, "Reloaded", after.Identity().Name())
	require.Equal(t, []string{"Lon", "Lat"}, axisNames(after))
	// handed out before the reload, left untouched
	require.Equal(t, "WGS 84", before.Identity().Name())

	_, err = p.GetCoordinateSystem("EPSG:32632")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveCounters(t *testing.T) {
	p := testProvider(t)
	for _, code := range []string{"EPSG:4326", "EPSG:4326", "BOGUS_PROJ"} {
		p.GetCoordinateSystem(code)
	}
	ok := p.Cache().Metrics().Get("resolve.ok").(gometrics.Counter)
	fail := p.Cache().Metrics().Get("resolve.fail").(gometrics.Counter)
	require.Equal(t, int64(1), ok.Count())
	require.Equal(t, int64(1), fail.Count())

	misses := p.Cache().Metrics().Get("cache.crs.misses").(gometrics.Counter)
	require.Greater(t, misses.Count(), int64(0))

	p.Cache().Clear()
	for _, n := range p.Cache().Counts() {
		require.Equal(t, 0, n)
	}
}

func blockingDefinitions(t *testing.T, version, name string) source.Source {
	t.Helper()
	src, err := source.Parse([]byte(fmt.Sprintf(`<definitions version="%s">
  <ellipsoid>
    <id>ELL</id>
    <semiMajorAxis>6378137.0</semiMajorAxis>
    <inverseFlattening>298.257223563</inverseFlattening>
  </ellipsoid>
  <geodeticDatum>
    <id>DATUM</id>
    <usedEllipsoid>ELL</usedEllipsoid>
  </geodeticDatum>
  <geographicCRS>
    <id>GEO</id>
    <axisOrder>Lon,Lat</axisOrder>
    <axis name="Lon"><units>degree</units><axisOrientation>east</axisOrientation></axis>
    <axis name="Lat"><units>degree</units><axisOrientation>north</axisOrientation></axis>
    <usedDatum>DATUM</usedDatum>
  </geographicCRS>
  <projectedCRS>
    <id>P</id>
    <name>%s</name>
    <axisOrder>E,N</axisOrder>
    <axis name="E"><units>metre</units><axisOrientation>east</axisOrientation></axis>
    <axis name="N"><units>metre</units><axisOrientation>north</axisOrientation></axis>
    <usedGeographicCRS>GEO</usedGeographicCRS>
    <projection>
      <obliqueMercator class="com.example.Blocking"/>
    </projection>
  </projectedCRS>
</definitions>`, version, name)))
	require.NoError(t, err)
	return src
}

func TestReloadDuringResolution(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	calls := atomic.Int32{}

	reg := NewRegistry()
	reg.RegisterProjection("com.example.Blocking", func(geo *GeographicCRS, fn, fe float64, origin orb.Point, unit *Unit, k float64, extras []*source.Element) (Projection, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return obliqueMercatorBuilder(geo, fn, fe, origin, unit, k, extras)
	})

	p := New(blockingDefinitions(t, "1.0.0", "OLD"), WithRegistry(reg))
	oldCache := p.Cache()

	done := make(chan CoordinateSystem, 1)
	go func() {
		cs, _ := p.GetCoordinateSystem("P")
		done <- cs
	}()
	<-started
	p.Reload(blockingDefinitions(t, "2.0.0", "NEW"))
	close(release)

	// the resolution that started on the old source finishes on it
	stale := <-done
	require.NotNil(t, stale)
	require.Equal(t, "OLD", stale.Identity().Name())

	require.NotSame(t, oldCache, p.Cache())
	require.False(t, p.Cache().systems.Has("P"))
	require.False(t, p.Cache().systems.Has("GEO"))
	require.Equal(t, 0, p.Cache().Counts()[kindDatum])

	cs, err := p.GetCoordinateSystem("P")
	require.NoError(t, err)
	require.Equal(t, "NEW", cs.Identity().Name())
	require.Equal(t, "2.0.0", p.Version())
	require.NotSame(t, stale, cs)
	require.NotSame(t, stale.(*ProjectedCRS).Geographic, cs.(*ProjectedCRS).Geographic)

	again, err := p.GetCoordinateSystem("P")
	require.NoError(t, err)
	require.Same(t, cs, again)
}
