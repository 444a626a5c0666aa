package booter

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Booter instantiates and starts the modules of the definitions in priority
// order, and stops them in reverse.
type Booter interface {
	Startup() error
	Shutdown()

	GetDefinition(id string) *Definition
	GetInstance(id string) Boot
	GetConfig(id string) any

	AddShutdownHook(...func())
}

// bootlog is a plain logger; the logging module is itself booted from here.
var bootlog = log.New(io.Discard, "booter ", log.LstdFlags|log.Lmsgprefix)

// SetBootLog directs the boot progress messages to w.
func SetBootLog(w io.Writer) {
	bootlog = log.New(w, "booter ", log.LstdFlags|log.Lmsgprefix)
}

type boot struct {
	moduleDefs []*Definition
	wrappers   []*wrapper

	startupHooks  []func()
	shutdownHooks []func()
}

func NewWithDefinitions(definitions []*Definition) (Booter, error) {
	ids := map[string]bool{}
	for _, def := range definitions {
		if ids[def.Id] {
			return nil, fmt.Errorf("module %s is defined more than once", def.Id)
		}
		ids[def.Id] = true
	}
	b := &boot{
		moduleDefs: definitions,
	}
	return b, nil
}

func (bt *boot) Startup() error {
	bootlog.Println(len(bt.moduleDefs), "modules defined")
	for _, def := range bt.moduleDefs {
		state := "enabled"
		if def.Disabled {
			state = "disabled"
		}
		bootlog.Println(def.Id, def.Name, state)

		if def.Disabled {
			continue
		}
		fact := getFactory(def.Id)
		if fact == nil {
			return fmt.Errorf("module %s is not found", def.Id)
		}
		config := fact.NewConfig()
		objName := fmt.Sprintf("%T", config)
		objName = strings.TrimPrefix(objName, "*")
		if def.Config.IsKnown() && !def.Config.IsNull() {
			if err := EvalObject(objName, config, def.Config); err != nil {
				return fmt.Errorf("config %s, %s", objName, err.Error())
			}
		}
		mod, err := fact.NewInstance(config)
		if err != nil {
			return fmt.Errorf("instance %s, %w", def.Id, err)
		}
		bt.wrappers = append(bt.wrappers, &wrapper{
			id:         def.Id,
			definition: def,
			real:       mod,
			conf:       config,
			state:      None,
		})
	}
	bootlog.Println(len(bt.wrappers), "modules enabled")

	for _, wrap := range bt.wrappers {
		wrap.state = Starting
	}
	for _, hook := range bt.startupHooks {
		hook()
	}
	for i, wrap := range bt.wrappers {
		bootlog.Println("start", wrap.id, wrap.definition.Name)
		if err := wrap.real.Start(); err != nil {
			// stop what already started
			for j := i - 1; j >= 0; j-- {
				bt.wrappers[j].real.Stop()
				bt.wrappers[j].state = Stop
			}
			return fmt.Errorf("mod start %s, %w", wrap.id, err)
		}
		wrap.state = Run
	}
	return nil
}

func (bt *boot) Shutdown() {
	for _, wrap := range bt.wrappers {
		wrap.state = Stopping
	}
	for _, hook := range bt.shutdownHooks {
		hook()
	}
	for i := len(bt.wrappers) - 1; i >= 0; i-- {
		wrap := bt.wrappers[i]
		bootlog.Println("stop", wrap.id, wrap.definition.Name)
		wrap.real.Stop()
		wrap.state = Stop
	}
}

func (bt *boot) AddShutdownHook(f ...func()) {
	bt.shutdownHooks = append(bt.shutdownHooks, f...)
}

func (bt *boot) GetDefinition(id string) *Definition {
	for _, def := range bt.moduleDefs {
		if def.Id == id {
			return def
		}
	}
	return nil
}

func (bt *boot) GetInstance(id string) Boot {
	for _, mod := range bt.wrappers {
		if mod.id == id {
			return mod.real
		}
	}
	return nil
}

func (bt *boot) GetConfig(id string) any {
	for _, mod := range bt.wrappers {
		if mod.id == id {
			return mod.conf
		}
	}
	return nil
}

type wrapper struct {
	id         string
	definition *Definition
	real       Boot
	conf       any
	state      State
}

type State int

const (
	None State = iota
	Starting
	Run
	Stopping
	Stop
)
