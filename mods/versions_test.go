package mods

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	require.Equal(t, "DEVEL", DisplayVersion())

	versionString = "v1.2.3-rc1"
	versionGitSHA = "11f32f31"
	buildTimestamp = "2026/10/17T11:22"
	goVersionString = "1.25.5"

	ver := GetVersion()
	require.NotNil(t, ver)
	require.Equal(t, 1, ver.Major)
	require.Equal(t, 2, ver.Minor)
	require.Equal(t, 3, ver.Patch)
	require.Equal(t, "11f32f31", ver.GitSHA)
	require.Same(t, ver, GetVersion())
	require.Equal(t, "V1.2.3-RC1", DisplayVersion())
	require.Equal(t, "V1.2.3-RC1 (11f32f31 2026/10/17T11:22)", VersionString())
	require.Equal(t, "1.25.5", BuildCompiler())
	require.Equal(t, "2026/10/17T11:22", BuildTimestamp())
}

func TestDefinitionFormat(t *testing.T) {
	c, err := semver.NewConstraint(DefinitionFormat)
	require.NoError(t, err)
	require.True(t, c.Check(semver.MustParse("0.5.0")))
	require.True(t, c.Check(semver.MustParse("0.9.2")))
	require.False(t, c.Check(semver.MustParse("1.0.0")))
	require.False(t, c.Check(semver.MustParse("0.4.9")))
}
