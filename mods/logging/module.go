package logging

import (
	"github.com/machbase/neo-crs/booter"
)

const ModuleId = "machbase.com/neo-logging"

type Module struct {
	conf *Config
}

func (m *Module) Start() error {
	GetLog("logging").Debugf("default level %s, output %q", DefaultLevel(), m.conf.Filename)
	return nil
}

func (m *Module) Stop() {
	Shutdown()
}

func init() {
	RegisterBootFactory()
}

func RegisterBootFactory() {
	defaultConf := Config{
		Console:                     false,
		Filename:                    "-",
		Append:                      true,
		RotateSchedule:              "@midnight",
		MaxSize:                     10,
		MaxBackups:                  1,
		MaxAge:                      7,
		Compress:                    false,
		UTC:                         false,
		DefaultPrefixWidth:          10,
		DefaultEnableSourceLocation: false,
		DefaultLevel:                "INFO",
	}

	booter.Register(ModuleId,
		func() *Config {
			clone := defaultConf
			return &clone
		},
		func(conf *Config) (booter.Boot, error) {
			if err := Configure(conf); err != nil {
				return nil, err
			}
			return &Module{conf: conf}, nil
		},
	)
}
