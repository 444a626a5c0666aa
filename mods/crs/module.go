package crs

import (
	"fmt"

	"github.com/machbase/neo-crs/booter"
	"github.com/machbase/neo-crs/mods/crs/source"
	"github.com/machbase/neo-crs/mods/logging"
)

const ModuleId = "machbase.com/neo-crs"

type ModuleConfig struct {
	// DefinitionFile is the path of the XML definition document.
	DefinitionFile string
	// RequireVersion is a semver constraint the document version must satisfy.
	RequireVersion string
	// Preload codes are resolved at start, a failure stops the module from starting.
	Preload []string
}

// Module is the booter module holding the Provider of the process.
type Module struct {
	conf     *ModuleConfig
	log      logging.Log
	provider *Provider
}

func init() {
	booter.Register(ModuleId,
		func() *ModuleConfig {
			return &ModuleConfig{}
		},
		func(conf *ModuleConfig) (booter.Boot, error) {
			return NewModule(conf), nil
		},
	)
}

func NewModule(conf *ModuleConfig) *Module {
	return &Module{
		conf: conf,
		log:  logging.GetLog("crs"),
	}
}

func (m *Module) Start() error {
	if m.conf.DefinitionFile == "" {
		return fmt.Errorf("%s requires DefinitionFile", ModuleId)
	}
	src, err := source.ParseFile(m.conf.DefinitionFile)
	if err != nil {
		return err
	}
	provider := New(src, WithLogger(m.log))
	if m.conf.RequireVersion != "" {
		if err := provider.CheckVersion(m.conf.RequireVersion); err != nil {
			return err
		}
	}
	for _, code := range m.conf.Preload {
		if _, err := provider.GetCoordinateSystem(code); err != nil {
			return fmt.Errorf("preload %s, %w", code, err)
		}
	}
	m.provider = provider
	m.log.Infof("%s version %s, %d coordinate systems", m.conf.DefinitionFile, provider.Version(), len(provider.AvailableCodes()))
	return nil
}

func (m *Module) Stop() {
	if m.provider != nil {
		m.provider.Cache().Clear()
	}
}

// Provider is nil until the module started.
func (m *Module) Provider() *Provider {
	return m.provider
}
