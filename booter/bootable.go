package booter

import (
	"fmt"
	"sort"
	"sync"
)

type Boot interface {
	Start() error
	Stop()
}

type BootFactory struct {
	Id          string
	NewConfig   func() any
	NewInstance func(config any) (Boot, error)
}

var factoryRegistry = make(map[string]*BootFactory)
var factoryRegistryLock sync.Mutex

// RegisterBootFactory keeps the first factory registered under an id.
func RegisterBootFactory(def *BootFactory) {
	factoryRegistryLock.Lock()
	if _, exists := factoryRegistry[def.Id]; !exists {
		factoryRegistry[def.Id] = def
	}
	factoryRegistryLock.Unlock()
}

func UnregisterBootFactory(moduleId string) {
	factoryRegistryLock.Lock()
	delete(factoryRegistry, moduleId)
	factoryRegistryLock.Unlock()
}

func getFactory(moduleId string) *BootFactory {
	factoryRegistryLock.Lock()
	defer factoryRegistryLock.Unlock()
	if obj, ok := factoryRegistry[moduleId]; ok {
		return obj
	}
	return nil
}

// Factories returns the registered module ids, sorted.
func Factories() []string {
	factoryRegistryLock.Lock()
	defer factoryRegistryLock.Unlock()
	ret := make([]string, 0, len(factoryRegistry))
	for id := range factoryRegistry {
		ret = append(ret, id)
	}
	sort.Strings(ret)
	return ret
}

func Register[T any](moduleId string, configFactory func() T, factory func(conf T) (Boot, error)) {
	RegisterBootFactory(&BootFactory{
		Id: moduleId,
		NewConfig: func() any {
			return configFactory()
		},
		NewInstance: func(conf any) (Boot, error) {
			if c, ok := conf.(T); ok {
				return factory(c)
			} else {
				return nil, fmt.Errorf("invalid config type: %T", conf)
			}
		},
	})
}
