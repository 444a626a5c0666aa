package booter

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

type Definition struct {
	Id       string
	Name     string
	Priority int
	Disabled bool
	Config   cty.Value
}

func LoadDefinitionFiles(files []string, evalCtx *hcl.EvalContext) ([]*Definition, error) {
	body, err := LoadFile(files...)
	if err != nil {
		return nil, err
	}
	return ParseDefinitions(body, evalCtx)
}

func LoadDefinitions(content []byte, evalCtx *hcl.EvalContext) ([]*Definition, error) {
	body, err := Load(content)
	if err != nil {
		return nil, err
	}
	return ParseDefinitions(body, evalCtx)
}

// ParseDefinitions evaluates the define blocks into variables named
// <define-id>_<attribute>, then the module blocks into definitions sorted by
// priority.
func ParseDefinitions(body hcl.Body, evalCtx *hcl.EvalContext) ([]*Definition, error) {
	if evalCtx == nil {
		evalCtx = &hcl.EvalContext{}
	}
	if evalCtx.Functions == nil {
		evalCtx.Functions = DefaultFunctions
	}
	if evalCtx.Variables == nil {
		evalCtx.Variables = make(map[string]cty.Value)
	}

	moduleSchema := &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "module", LabelNames: []string{"id"}},
			{Type: "define", LabelNames: []string{"id"}},
		},
	}
	content, diag := body.Content(moduleSchema)
	if diag.HasErrors() {
		return nil, errors.New(diag.Error())
	}

	defines := make([]*hcl.Block, 0)
	modules := make([]*hcl.Block, 0)

	for _, block := range content.Blocks {
		if block.Type == "define" {
			defines = append(defines, block)
		} else if block.Type == "module" {
			modules = append(modules, block)
		}
	}

	for _, d := range defines {
		id := d.Labels[0]
		sb, ok := d.Body.(*hclsyntax.Body)
		if !ok {
			return nil, fmt.Errorf("define %s is not a native syntax block", id)
		}
		// attributes are a map, evaluate in source order so a define may refer to an earlier one
		attrs := make([]*hclsyntax.Attribute, 0, len(sb.Attributes))
		for _, attr := range sb.Attributes {
			attrs = append(attrs, attr)
		}
		sort.Slice(attrs, func(i, j int) bool {
			return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
		})
		for _, attr := range attrs {
			name := fmt.Sprintf("%s_%s", id, attr.Name)
			value, diag := attr.Expr.Value(evalCtx)
			if diag.HasErrors() {
				return nil, errors.New(diag.Error())
			}
			evalCtx.Variables[name] = value
		}
	}

	moduleSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "priority", Required: false},
			{Name: "disabled", Required: false},
			{Name: "name", Required: false},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "config", LabelNames: []string{}},
		},
	}

	priorityBase := 1000
	result := make([]*Definition, 0)
	for i, m := range modules {
		moduleId := m.Labels[0]
		moduleName := fmt.Sprintf("$mod_%d", i+1)
		if offset := strings.LastIndex(moduleId, "/"); offset > 0 && offset < len(moduleId)-1 {
			moduleName = fmt.Sprintf("%s%02d", moduleId[offset+1:], i)
		}
		moduleDef := &Definition{
			Id:       moduleId,
			Name:     moduleName,
			Priority: priorityBase + i,
		}

		content, diag := m.Body.Content(moduleSchema)
		if diag.HasErrors() {
			return nil, errors.New(diag.Error())
		}
		for _, attr := range content.Attributes {
			value, diag := attr.Expr.Value(evalCtx)
			if diag.HasErrors() {
				return nil, errors.New(diag.Error())
			}
			switch attr.Name {
			case "priority":
				moduleDef.Priority = PriorityFromCty(value)
			case "disabled":
				disabled, err := BoolFromCty(value)
				if err != nil {
					return nil, fmt.Errorf("module %s disabled, %s", moduleId, err.Error())
				}
				moduleDef.Disabled = disabled
			case "name":
				moduleDef.Name = StringFromCty(value)
			}
		}
		for _, c := range content.Blocks {
			if c.Type != "config" {
				return nil, fmt.Errorf("unknown block %s", c.Type)
			}
			obj, err := ObjectValFromBody(c.Body.(*hclsyntax.Body), evalCtx)
			if err != nil {
				return nil, err
			}
			moduleDef.Config = obj
		}
		result = append(result, moduleDef)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority < result[j].Priority
	})

	return result, nil
}

func LoadFile(files ...string) (hcl.Body, error) {
	hclFiles := make([]*hcl.File, 0)
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		hclFile, hclDiag := hclsyntax.ParseConfig(content, file, hcl.Pos{Line: 1})
		if hclDiag.HasErrors() {
			return nil, errors.New(hclDiag.Error())
		}
		hclFiles = append(hclFiles, hclFile)
	}
	return hcl.MergeFiles(hclFiles), nil
}

func Load(content []byte) (hcl.Body, error) {
	hclFile, hclDiag := hclsyntax.ParseConfig(content, "nofile.hcl", hcl.Pos{Line: 1})
	if hclDiag.HasErrors() {
		return nil, errors.New(hclDiag.Error())
	}
	return hclFile.Body, nil
}

func ObjectValFromBody(body *hclsyntax.Body, evalCtx *hcl.EvalContext) (cty.Value, error) {
	rt := make(map[string]cty.Value)
	for _, attr := range body.Attributes {
		value, diag := attr.Expr.Value(evalCtx)
		if diag.HasErrors() {
			return cty.NilVal, errors.New(diag.Error())
		}
		rt[attr.Name] = value
	}
	for _, block := range body.Blocks {
		bval, err := ObjectValFromBody(block.Body, evalCtx)
		if err != nil {
			return cty.NilVal, err
		}
		rt[block.Type] = bval
	}
	return cty.ObjectVal(rt), nil
}

// EvalObject assigns value to the exported fields of obj, which must be a
// pointer to a struct. Attribute names are the Go field names.
func EvalObject(objName string, obj any, value cty.Value) error {
	ref := reflect.ValueOf(obj)
	return EvalReflectValue(objName, ref, value)
}

func EvalReflectValue(refName string, ref reflect.Value, value cty.Value) error {
	if ref.Kind() == reflect.Pointer {
		ref = reflect.Indirect(ref)
	}
	if value.IsNull() {
		return nil
	}
	switch ref.Kind() {
	case reflect.Struct:
		if !value.Type().IsObjectType() && !value.Type().IsMapType() {
			return fmt.Errorf("%s should be object as %s", refName, ref.Type().Name())
		}
		for k, v := range value.AsValueMap() {
			field := ref.FieldByName(k)
			if !field.IsValid() {
				return fmt.Errorf("%s field not found in %s", k, refName)
			}
			if err := EvalReflectValue(fmt.Sprintf("%s.%s", refName, k), field, v); err != nil {
				return err
			}
		}
	case reflect.String:
		if value.Type() != cty.String {
			return fmt.Errorf("%s should be string", refName)
		}
		ref.SetString(value.AsString())
	case reflect.Bool:
		if value.Type() != cty.Bool && value.Type() != cty.String {
			return fmt.Errorf("%s should be bool", refName)
		}
		v, err := BoolFromCty(value)
		if err != nil {
			return fmt.Errorf("%s, %s", refName, err.Error())
		}
		ref.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if value.Type() != cty.Number && value.Type() != cty.String {
			return fmt.Errorf("%s should be int", refName)
		}
		v, err := Int64FromCty(value)
		if err != nil {
			return fmt.Errorf("%s, %s", refName, err.Error())
		}
		ref.SetInt(v)
	case reflect.Float32, reflect.Float64:
		if value.Type() != cty.Number && value.Type() != cty.String {
			return fmt.Errorf("%s should be float", refName)
		}
		v, err := Float64FromCty(value)
		if err != nil {
			return fmt.Errorf("%s, %s", refName, err.Error())
		}
		ref.SetFloat(v)
	case reflect.Slice:
		if !value.CanIterateElements() {
			return fmt.Errorf("%s should be list", refName)
		}
		vs := value.AsValueSlice()
		slice := reflect.MakeSlice(ref.Type(), len(vs), len(vs))
		for i, elm := range vs {
			elmName := fmt.Sprintf("%s[%d]", refName, i)
			if err := EvalReflectValue(elmName, slice.Index(i), elm); err != nil {
				return err
			}
		}
		ref.Set(slice)
	case reflect.Map:
		if ref.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%s unsupported map key type: %v", refName, ref.Type().Key())
		}
		maps := reflect.MakeMap(ref.Type())
		valType := ref.Type().Elem()
		for k, v := range value.AsValueMap() {
			val := reflect.New(valType).Elem()
			elmName := fmt.Sprintf("%s[%q]", refName, k)
			if err := EvalReflectValue(elmName, val, v); err != nil {
				return err
			}
			maps.SetMapIndex(reflect.ValueOf(k), val)
		}
		ref.Set(maps)
	default:
		return fmt.Errorf("unsupported reflection %s type: %s", refName, ref.Kind())
	}
	return nil
}
