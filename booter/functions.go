package booter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

var DefaultFunctions = map[string]function.Function{
	"env":         GetEnvFunc,
	"envOrError":  GetEnv2Func,
	"version":     GetVersionFunc,
	"execDir":     GetExecutableDirFunc,
	"tempDir":     GetTempDirFunc,
	"userDir":     GetUserHomeDirFunc,
	"userConfDir": GetUserConfigDirFunc,
	"prefDir":     GetPrefDirFunc,
	"upper":       stdlib.UpperFunc,
	"lower":       stdlib.LowerFunc,
	"min":         stdlib.MinFunc,
	"max":         stdlib.MaxFunc,
	"strlen":      stdlib.StrlenFunc,
	"substr":      stdlib.SubstrFunc,
}

var versionString = ""

// SetVersionString sets what the version() function returns.
func SetVersionString(str string) {
	versionString = str
}

func VersionString() string {
	return versionString
}

var GetVersionFunc = function.New(&function.Spec{
	Params: []function.Parameter{},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(VersionString()), nil
	},
})

var GetTempDirFunc = function.New(&function.Spec{
	Params: []function.Parameter{},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		d, err := filepath.Abs(os.TempDir())
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(d), nil
	},
})

var GetExecutableDirFunc = function.New(&function.Spec{
	Params: []function.Parameter{},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		exePath, err := os.Executable()
		if err != nil {
			return cty.NilVal, err
		}
		dirPath, err := filepath.Abs(filepath.Dir(exePath))
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(dirPath), nil
	},
})

var GetUserHomeDirFunc = function.New(&function.Spec{
	Params: []function.Parameter{},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		homePath, err := os.UserHomeDir()
		if err != nil {
			return cty.NilVal, err
		}
		dirPath, err := filepath.Abs(homePath)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(dirPath), nil
	},
})

var GetUserConfigDirFunc = function.New(&function.Spec{
	Params: []function.Parameter{},
	Type:   function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		confPath, err := os.UserConfigDir()
		if err != nil {
			return cty.NilVal, err
		}
		dirPath, err := filepath.Abs(confPath)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(dirPath), nil
	},
})

// prefDir("neo-crs") is $HOME/.config/neo-crs
var GetPrefDirFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name:             "str",
			Type:             cty.String,
			AllowDynamicType: true,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		in := args[0].AsString()
		homePath, err := os.UserHomeDir()
		if err != nil {
			return cty.NilVal, err
		}
		dirPath, err := filepath.Abs(homePath)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(filepath.Join(dirPath, ".config", in)), nil
	},
})

var GetEnv2Func = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name:             "env",
			Type:             cty.String,
			AllowDynamicType: true,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		in := args[0].AsString()
		out, ok := os.LookupEnv(in)
		if !ok {
			return cty.NilVal, fmt.Errorf("required env variable %s missing", in)
		}
		return cty.StringVal(out), nil
	},
})

var GetEnvFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name:             "env",
			Type:             cty.String,
			AllowDynamicType: true,
		},
		{
			Name:      "default",
			Type:      cty.String,
			AllowNull: true,
		},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		in := args[0].AsString()
		def := ""
		if !args[1].IsNull() {
			def = args[1].AsString()
		}
		out, ok := os.LookupEnv(in)
		if !ok {
			out = def
		}
		return cty.StringVal(out), nil
	},
})
