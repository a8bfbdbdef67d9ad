// Package main provides the peek CLI, which prints tensors stored in
// safetensors containers.
//
// With no arguments it prints the first ten values of _conv_stem in
// ./net.safetensors:
//
//	$ peek
//	tensor([ 0.0123, -0.0456, ...])
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/peek/internal/config"
	"github.com/born-ml/peek/internal/format"
	"github.com/born-ml/peek/internal/logger"
	"github.com/born-ml/peek/internal/metrics"
	"github.com/born-ml/peek/internal/safetensors"
)

var version = "v0.1.0-dev"

// app carries the resolved configuration from the persistent pre-run hook
// to the command handlers.
type app struct {
	cfg        config.Config
	configPath string
	stderr     io.Writer

	// Flag values; applied over the config only when set on the command line.
	flags config.Config
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stderr: stderr}
	root := a.newRootCmd()
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if a.cfg.MetricsFile != "" {
		if merr := metrics.WriteTextfile(a.cfg.MetricsFile); merr != nil {
			logger.Log.Error("failed to write metrics", "path", a.cfg.MetricsFile, "error", merr)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "peek [file] [tensor]",
		Short: "Print tensors from safetensors containers",
		Long: `peek opens a safetensors container, looks up a tensor by name,
flattens it and prints its leading values.

Run without arguments to print the first 10 values of _conv_stem
in ./net.safetensors.`,
		Args:              cobra.MaximumNArgs(2),
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runDump,
	}

	d := config.Default()
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file (or set "+config.EnvConfigPath+")")
	pf.StringVar(&a.flags.LogLevel, "log-level", d.LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&a.flags.LogFormat, "log-format", d.LogFormat, "Log format: console or json")
	pf.StringVar(&a.flags.MetricsFile, "metrics-file", "", "Write prometheus metrics to this file on exit")
	pf.BoolVar(&a.flags.Mmap, "mmap", d.Mmap, "Memory-map the container")
	pf.StringVar(&a.flags.Validation, "validation", d.Validation, "Header validation: strict, normal or none")

	a.addDumpFlags(root)

	root.AddCommand(
		a.newDumpCmd(),
		a.newListCmd(),
		a.newInfoCmd(),
		a.newStatsCmd(),
		a.newVerifyCmd(),
		a.newExtractCmd(),
		newVersionCmd(),
	)
	return root
}

func (a *app) addDumpFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().IntVarP(&a.flags.Count, "count", "n", d.Count, "Number of leading values to print")
	cmd.Flags().StringVarP(&a.flags.Framework, "framework", "f", d.Framework, "Output style: pt, np, go or json")
	cmd.Flags().BoolVar(&a.flags.Strict, "strict", false, "Fail when the tensor has fewer values than requested")
}

// setup resolves the configuration (defaults < config file < flags) and
// installs the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath)
	} else {
		a.cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}
	override("log-level", func() { a.cfg.LogLevel = a.flags.LogLevel })
	override("log-format", func() { a.cfg.LogFormat = a.flags.LogFormat })
	override("metrics-file", func() { a.cfg.MetricsFile = a.flags.MetricsFile })
	override("mmap", func() { a.cfg.Mmap = a.flags.Mmap })
	override("validation", func() { a.cfg.Validation = a.flags.Validation })
	override("count", func() { a.cfg.Count = a.flags.Count })
	override("framework", func() { a.cfg.Framework = a.flags.Framework })
	override("strict", func() { a.cfg.Strict = a.flags.Strict })
	override("workers", func() { a.cfg.Workers = a.flags.Workers })

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger.Setup(a.stderr, a.cfg.LogLevel, a.cfg.LogFormat)
	logger.Log.Debug("configuration resolved",
		"path", a.cfg.Path,
		"tensor", a.cfg.Tensor,
		"count", a.cfg.Count,
		"framework", a.cfg.Framework,
		"validation", a.cfg.Validation,
	)
	return nil
}

// open opens the container named by the first positional argument, or the
// configured path.
func (a *app) open(args []string) (*safetensors.File, error) {
	path := a.cfg.Path
	if len(args) > 0 {
		path = args[0]
	}
	return safetensors.Open(path, a.openOptions()...)
}

// openOptions maps the config onto reader options. The level was checked
// by Config.Validate.
func (a *app) openOptions() []safetensors.Option {
	level, err := safetensors.ParseValidationLevel(a.cfg.Validation)
	if err != nil {
		level = safetensors.ValidationStrict
	}
	return []safetensors.Option{
		safetensors.WithMmap(a.cfg.Mmap),
		safetensors.WithValidation(level),
	}
}

func (a *app) framework() (format.Framework, error) {
	return format.ParseFramework(a.cfg.Framework)
}
