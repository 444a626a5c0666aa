package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/machbase/neo-crs/booter"
	"github.com/machbase/neo-crs/mods"
	"github.com/machbase/neo-crs/mods/crs"
	"github.com/machbase/neo-crs/mods/crs/source"
	"github.com/machbase/neo-crs/mods/logging"
	"github.com/spf13/cobra"
)

func main() {
	cobra.CheckErr(NewCmd().ExecuteContext(context.Background()))
}

func NewCmd() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "neo-crs [command] [flags] [args]",
		Short:         "neo-crs resolves coordinate reference system definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(cmd.UsageString())
		},
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "`<path>` of the HCL configuration")
	rootCmd.PersistentFlags().StringP("definitions", "d", "", "`<path>` of the XML definition document")
	rootCmd.PersistentFlags().String("log-level", "WARN", "`<level>` TRACE, DEBUG, INFO, WARN, ERROR, logs go to stdout only when given")

	resolveCmd := &cobra.Command{
		Use:   "resolve [flags] <code>...",
		Short: "Resolve coordinate systems",
		Args:  cobra.MinimumNArgs(1),
		RunE:  doResolve,
	}
	resolveCmd.Flags().StringP("format", "f", "table", "`<format>` table, json or yaml")
	resolveCmd.Flags().String("box-style", "light", "`<style>` of the table: default, bold, double, light, round")

	codesCmd := &cobra.Command{
		Use:   "codes [flags]",
		Short: "List the codes of the coordinate systems",
		Args:  cobra.NoArgs,
		RunE:  doCodes,
	}
	codesCmd.Flags().Bool("check", false, "resolve each coordinate system and show the result")
	codesCmd.Flags().String("box-style", "light", "`<style>` of the table: default, bold, double, light, round")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version",
		Args:  cobra.NoArgs,
		RunE:  doVersion,
	}

	checkCmd := &cobra.Command{
		Use:   "check [flags] [constraint]",
		Short: "Check the definition document version against a constraint",
		Long:  fmt.Sprintf("Check the definition document version against a constraint, %q when omitted", mods.DefinitionFormat),
		Args:  cobra.MaximumNArgs(1),
		RunE:  doCheck,
	}

	rootCmd.AddCommand(
		resolveCmd,
		codesCmd,
		checkCmd,
		versionCmd,
	)
	return rootCmd
}

// openProvider returns the provider of the crs module when a configuration is
// given, otherwise the one over the definitions flag. The returned func
// releases it.
func openProvider(cmd *cobra.Command) (*crs.Provider, func(), error) {
	confPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	defPath, err := cmd.Flags().GetString("definitions")
	if err != nil {
		return nil, nil, err
	}
	if confPath != "" {
		return bootProvider(confPath, defPath)
	}
	if defPath == "" {
		return nil, nil, errors.New("either --config or --definitions is required")
	}

	levelName, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, nil, err
	}
	if _, ok := logging.ParseLogLevelP(levelName); !ok {
		return nil, nil, fmt.Errorf("unknown log level %q", levelName)
	}
	logConf := logging.PresetConfigDiscard
	if cmd.Flags().Changed("log-level") {
		logConf = logging.PresetConfigStdout
	}
	logConf.DefaultLevel = levelName
	logConf.DefaultPrefixWidth = 10
	logConf.DefaultEnableSourceLocation = false
	if err := logging.Configure(&logConf); err != nil {
		return nil, nil, err
	}
	src, err := source.ParseFile(defPath)
	if err != nil {
		return nil, nil, err
	}
	return crs.New(src, crs.WithLogger(logging.GetLog("crs"))), func() {}, nil
}

// bootProvider starts the modules of the configuration. The definitions flag
// is visible to it as the DEFINITIONS variable.
func bootProvider(confPath string, defPath string) (*crs.Provider, func(), error) {
	booter.SetVersionString(mods.DisplayVersion())
	if os.Getenv("NEO_CRS_BOOT_LOG") != "" {
		booter.SetBootLog(os.Stderr)
	}
	builder := booter.NewBuilder()
	if err := builder.SetVariable("DEFINITIONS", defPath); err != nil {
		return nil, nil, err
	}
	b, err := builder.BuildWithFiles([]string{confPath})
	if err != nil {
		return nil, nil, err
	}
	if err := b.Startup(); err != nil {
		return nil, nil, err
	}
	mod, ok := b.GetInstance(crs.ModuleId).(*crs.Module)
	if !ok || mod.Provider() == nil {
		b.Shutdown()
		return nil, nil, fmt.Errorf("%s has no module %q", confPath, crs.ModuleId)
	}
	return mod.Provider(), b.Shutdown, nil
}

func doVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "neo-crs %s\n", mods.VersionString())
	if c := mods.BuildCompiler(); c != "" {
		fmt.Fprintf(out, "compiler %s\n", c)
	}
	fmt.Fprintf(out, "definitions %s\n", mods.DefinitionFormat)
	return nil
}

func doCheck(cmd *cobra.Command, args []string) error {
	constraint := mods.DefinitionFormat
	if len(args) > 0 {
		constraint = args[0]
	}
	provider, closer, err := openProvider(cmd)
	if err != nil {
		return err
	}
	defer closer()
	if err := provider.CheckVersion(constraint); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %s satisfies %s\n", provider.Version(), constraint)
	return nil
}
