package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/machbase/neo-crs/mods/crs"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const testDefinitions = "../../mods/crs/testdata/definitions.xml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveJSON(t *testing.T) {
	out, err := run(t, "resolve", "-d", testDefinitions, "--format", "json", "EPSG:32632")
	require.NoError(t, err)
	d := crs.Description{}
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	require.Equal(t, "EPSG:32632", d.Code)
	require.Equal(t, "projected", d.Kind)
	require.Equal(t, "EPSG:4326", d.Underlying)
	require.Equal(t, "transverseMercator", d.Projection.Kind)
	require.InDelta(t, 9.0, gjson.Get(out, "projection.longitudeOfNaturalOrigin").Float(), 1e-12)
	require.Equal(t, 500000.0, gjson.Get(out, "projection.falseEasting").Float())
	require.Equal(t, "EPSG:7030", gjson.Get(out, "datum.ellipsoid").String())
	require.Equal(t, "E", gjson.Get(out, "axes.0.name").String())

	out, err = run(t, "resolve", "-d", testDefinitions, "-f", "json", "EPSG:4326", "EPSG:4978")
	require.NoError(t, err)
	list := []crs.Description{}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 2)
	require.Equal(t, "geocentric", list[1].Kind)
	require.Equal(t, int64(3), gjson.Get(out, "1.axes.#").Int())
	require.Equal(t, "EPSG:4258", gjson.Get(out, "0.transformations.0.targetCRS").String())
}

func TestResolveYAML(t *testing.T) {
	out, err := run(t, "resolve", "-d", testDefinitions, "--format", "yaml", "COMPOUND_4326_H")
	require.NoError(t, err)
	d := crs.Description{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &d))
	require.Equal(t, "compound", d.Kind)
	require.Equal(t, 10.5, *d.DefaultHeight)
}

func TestResolveTable(t *testing.T) {
	out, err := run(t, "resolve", "-d", testDefinitions, "EPSG:31467")
	require.NoError(t, err)
	require.Contains(t, out, "PROPERTY")
	require.Contains(t, out, "EPSG:31467")
	require.Contains(t, out, "transverseMercator")
	require.Contains(t, out, "598.1 73.7 418.2 0.202 0.045 -2.455 6.7")
}

func TestResolveErrors(t *testing.T) {
	_, err := run(t, "resolve", "EPSG:4326")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--definitions")

	_, err = run(t, "resolve", "-d", testDefinitions, "-f", "xml", "EPSG:4326")
	require.Error(t, err)

	_, err = run(t, "resolve", "-d", testDefinitions, "BOGUS_PROJ")
	require.ErrorIs(t, err, crs.ErrUnknownProjectionKind)

	_, err = run(t, "resolve", "-d", testDefinitions, "NOPE")
	require.ErrorIs(t, err, crs.ErrNotFound)

	_, err = run(t, "resolve", "-d", testDefinitions)
	require.Error(t, err)
}

func TestCodes(t *testing.T) {
	out, err := run(t, "codes", "-d", testDefinitions)
	require.NoError(t, err)
	require.Contains(t, out, "URN:OGC:DEF:CRS:EPSG::4326")
	require.Contains(t, out, "COMPOUND_SELF")

	// the fixture holds broken definitions on purpose
	out, err = run(t, "codes", "--check", "-d", testDefinitions)
	require.Error(t, err)
	require.Contains(t, out, "RESULT")
	require.Contains(t, out, "cyclic reference")
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "-d", testDefinitions)
	require.NoError(t, err)
	require.Contains(t, out, "version 0.5.0 satisfies")

	_, err = run(t, "check", "-d", testDefinitions, ">= 1")
	require.ErrorIs(t, err, crs.ErrIncompatibleVersion)
}

func TestConfig(t *testing.T) {
	out, err := run(t, "resolve", "-c", "./testdata/neo-crs.hcl", "-f", "json", "EPSG:3857")
	require.NoError(t, err)
	require.Contains(t, out, `"mercator"`)

	out, err = run(t, "check", "-c", "./testdata/neo-crs.hcl", "-d", testDefinitions, "~0.5")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "version 0.5.0"))

	_, err = run(t, "resolve", "-c", "./testdata/neo-crs.hcl", "-d", "./testdata/nothing.xml", "EPSG:4326")
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "neo-crs DEVEL"))
	require.Contains(t, out, "definitions >= 0.5, < 1")
}
