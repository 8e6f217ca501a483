// Package commands implements the goap command line.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joeycumines/go-goap/internal/config"
	"github.com/joeycumines/go-goap/internal/printer"
)

var versionString = "dev"

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	versionString = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// Execute runs the goap command line against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// app carries the state resolved before any subcommand runs.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	color      string

	cfg      *config.Config
	settings *config.Settings
	logger   *slog.Logger
	printer  *printer.Printer
}

// NewRootCommand builds the goap command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "goap",
		Short: "goap - goal-oriented action planning toolkit",
		Long: `goap plans and runs goal-oriented action planning scenarios.

A scenario is a YAML document naming boolean predicate keys, the facts of a
live world, a goal and the actions that change it. "goap plan" prints the
cheapest action sequence; "goap run" executes it with scripted behaviors,
either through the replanning agent or a PA-BT reactive tree.`,
		Version: versionString,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE:  a.setup,
		FParseErrWhitelist: cobra.FParseErrWhitelist{},

		// printed by the printer package instead
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $GOAP_CONFIG or ~/.go-goap/config)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text, json")
	flags.StringVar(&a.color, "color", "", "color mode: auto, always, never")

	root.AddCommand(
		newPlanCommand(a),
		newRunCommand(a),
		newConfigCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.printer = printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), a.color)

	if a.configPath == "" {
		path, err := config.GetConfigPath()
		if err != nil {
			return a.printer.Error("Cannot locate config file", err.Error(), nil,
				"Pass --config or set "+config.EnvConfigPath)
		}
		a.configPath = path
	}

	cfg, err := config.LoadFromPath(a.configPath)
	if err != nil {
		return a.printer.Error("Failed to load config", err.Error(), map[string]string{"path": a.configPath})
	}
	a.cfg = cfg

	// flags outrank the file and the environment
	schema := config.DefaultSchema()
	for key, value := range map[string]string{
		"log.level":  a.logLevel,
		"log.format": a.logFormat,
		"color":      a.color,
	} {
		if value == "" {
			continue
		}
		if err := schema.Lookup("", key).Validate(value); err != nil {
			return a.printer.Error("Invalid flag", fmt.Sprintf("--%s: %v", flagName(key), err), nil)
		}
	}

	settings, err := config.Resolve(cfg)
	if err != nil {
		return a.printer.Error("Invalid configuration", err.Error(), map[string]string{"path": a.configPath},
			"Fix the value in the config file or its environment override",
			"Run 'goap config schema' to list the accepted values")
	}
	if a.logLevel != "" {
		_ = settings.LogLevel.UnmarshalText([]byte(a.logLevel))
	}
	if a.logFormat != "" {
		settings.LogFormat = a.logFormat
	}
	if a.color != "" {
		settings.Color = a.color
	}
	a.settings = settings

	a.printer = printer.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), settings.Color)
	a.logger = newLogger(cmd.ErrOrStderr(), settings)
	return nil
}

func flagName(key string) string {
	switch key {
	case "log.level":
		return "log-level"
	case "log.format":
		return "log-format"
	}
	return key
}

func newLogger(w io.Writer, s *config.Settings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.LogLevel}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
