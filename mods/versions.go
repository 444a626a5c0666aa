package mods

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// set by the linker, -X github.com/machbase/neo-crs/mods.versionString=v0.1.0
var (
	versionString   = ""
	versionGitSHA   = ""
	buildTimestamp  = ""
	goVersionString = ""
)

// DefinitionFormat is the range of definition document versions this build reads.
const DefinitionFormat = ">= 0.5, < 1"

type Version struct {
	Major  int    `json:"major" yaml:"major"`
	Minor  int    `json:"minor" yaml:"minor"`
	Patch  int    `json:"patch" yaml:"patch"`
	GitSHA string `json:"git" yaml:"git"`
}

var (
	_version     *Version
	_versionOnce sync.Once
)

func GetVersion() *Version {
	_versionOnce.Do(func() {
		v, err := semver.NewVersion(versionString)
		if err != nil {
			_version = &Version{GitSHA: versionGitSHA}
			return
		}
		_version = &Version{
			Major:  int(v.Major()),
			Minor:  int(v.Minor()),
			Patch:  int(v.Patch()),
			GitSHA: versionGitSHA,
		}
	})
	return _version
}

func DisplayVersion() string {
	if versionString == "" {
		return "DEVEL"
	}
	return strings.ToUpper(versionString)
}

func VersionString() string {
	return fmt.Sprintf("%s (%v %v)", DisplayVersion(), versionGitSHA, buildTimestamp)
}

func BuildCompiler() string {
	return goVersionString
}

func BuildTimestamp() string {
	return buildTimestamp
}
