package booter

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"
)

type Builder interface {
	Build(definitions []*Definition) (Booter, error)
	BuildWithContent(content []byte) (Booter, error)
	BuildWithFiles(files []string) (Booter, error)

	AddStartupHook(hooks ...func())
	AddShutdownHook(hooks ...func())
	SetFunction(name string, f function.Function)
	SetVariable(name string, value any) error
}

type builder struct {
	startupHooks  []func()
	shutdownHooks []func()
	functions     map[string]function.Function
	variables     map[string]cty.Value
}

func NewBuilder() Builder {
	b := &builder{
		functions: make(map[string]function.Function),
		variables: make(map[string]cty.Value),
	}
	for k, v := range DefaultFunctions {
		b.functions[k] = v
	}
	return b
}

func (bld *builder) Build(definitions []*Definition) (Booter, error) {
	b, err := NewWithDefinitions(definitions)
	if err != nil {
		return nil, err
	}
	rt := b.(*boot)
	rt.startupHooks = bld.startupHooks
	rt.shutdownHooks = bld.shutdownHooks
	return rt, nil
}

func (bld *builder) BuildWithContent(content []byte) (Booter, error) {
	definitions, err := LoadDefinitions(content, bld.makeContext())
	if err != nil {
		return nil, err
	}
	return bld.Build(definitions)
}

func (bld *builder) BuildWithFiles(files []string) (Booter, error) {
	definitions, err := LoadDefinitionFiles(files, bld.makeContext())
	if err != nil {
		return nil, err
	}
	return bld.Build(definitions)
}

func (bld *builder) AddStartupHook(hooks ...func()) {
	bld.startupHooks = append(bld.startupHooks, hooks...)
}

func (bld *builder) AddShutdownHook(hooks ...func()) {
	bld.shutdownHooks = append(bld.shutdownHooks, hooks...)
}

func (bld *builder) makeContext() *hcl.EvalContext {
	// define blocks add variables while parsing, the builder's own map stays as set
	vars := make(map[string]cty.Value, len(bld.variables))
	for k, v := range bld.variables {
		vars[k] = v
	}
	return &hcl.EvalContext{
		Functions: bld.functions,
		Variables: vars,
	}
}

func (bld *builder) SetFunction(name string, f function.Function) {
	bld.functions[name] = f
}

func (bld *builder) SetVariable(name string, value any) (err error) {
	if len(name) == 0 {
		return errors.New("can not define with empty name")
	}
	var v cty.Value
	switch raw := value.(type) {
	case string:
		v, err = gocty.ToCtyValue(raw, cty.String)
	case bool:
		v, err = gocty.ToCtyValue(raw, cty.Bool)
	case int, int32, int64, float32, float64:
		v, err = gocty.ToCtyValue(raw, cty.Number)
	case []string:
		v, err = gocty.ToCtyValue(raw, cty.List(cty.String))
	default:
		return fmt.Errorf("can not define %s with value type %T", name, value)
	}

	if err == nil {
		bld.variables[name] = v
	}
	return
}
