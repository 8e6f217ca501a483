package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joeycumines/go-goap/internal/config"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the goap config file",
		Long: `The config file uses one "option value" pair per line. Options under a
[planner] or [run] header apply to that section; everything before the
first header is global. Environment variables override the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var section string

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "List every option with its type, default and environment override",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printer.Info("%s", config.DefaultSchema().FormatHelp())
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printer.Info("%s\n", a.configPath)
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of an option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := config.DefaultSchema()
			if !schema.IsKnown(section, args[0]) {
				return unknownOption(a, section, args[0])
			}
			a.printer.Info("%s\n", schema.Resolve(a.cfg, section, args[0]))
			return nil
		},
	}
	getCmd.Flags().StringVar(&section, "section", "", "section of the option (planner, run)")

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write an option to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			opt := config.DefaultSchema().Lookup(section, key)
			if opt == nil {
				return unknownOption(a, section, key)
			}
			if err := opt.Validate(value); err != nil {
				return a.printer.Error("Invalid value", fmt.Sprintf("%s: %v", key, err), nil)
			}
			if err := config.SetKeyInFile(a.configPath, section, key, value); err != nil {
				return a.printer.Error("Failed to write config", err.Error(), map[string]string{"path": a.configPath})
			}
			a.printer.Success("Set %s to %q in %s\n", qualified(section, key), value, a.configPath)
			return nil
		},
	}
	setCmd.Flags().StringVar(&section, "section", "", "section of the option (planner, run)")

	cmd.AddCommand(schemaCmd, pathCmd, getCmd, setCmd)
	return cmd
}

func qualified(section, key string) string {
	if section == "" {
		return key
	}
	return "[" + section + "] " + key
}

func unknownOption(a *app, section, key string) error {
	return a.printer.Error("Unknown option", fmt.Sprintf("%s is not a goap option.", qualified(section, key)), nil,
		"Run 'goap config schema' to list the options")
}
