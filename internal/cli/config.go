package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/noor/internal/api"
	"github.com/smokyabdulrahman/noor/internal/config"
	"github.com/smokyabdulrahman/noor/internal/display"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long: "Display the saved configuration, or use subcommands to modify it.\n" +
			"Each key can also be set for one run with a NOOR_<KEY> environment variable.",
		Args: cobra.NoArgs,
		RunE: a.runConfigShow,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a config value",
			Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  noor config set city Riyadh\n  noor config set country \"Saudi Arabia\"\n  noor config set method 4\n  noor config set time_format 12h\n  noor config set store redis",
				strings.Join(config.ValidKeys, ", ")),
			Args: cobra.ExactArgs(2),
			RunE: a.runConfigSet,
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset config to defaults",
			Long:  "Delete the config file and restore all settings to defaults.",
			Args:  cobra.NoArgs,
			RunE:  runConfigReset,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print config file path",
			Args:  cobra.NoArgs,
			RunE:  runConfigPath,
		},
	)
	return cmd
}

func (a *app) runConfigShow(cmd *cobra.Command, _ []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if a.flags.json {
		return printJSON(w, a.file)
	}

	fmt.Fprintf(w, "  Configuration (%s)\n\n", path)
	for _, key := range config.ValidKeys {
		val, _ := a.file.Get(key)
		shown := val
		switch {
		case val == "":
			shown = display.Dim("(not set)")
		case key == "method":
			shown = formatMethodValue(val)
		case key == "school":
			shown = formatSchoolValue(val)
		}
		fmt.Fprintf(w, "  %-16s %s\n", key, shown)
	}
	return nil
}

func (a *app) runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if err := a.file.Set(key, value); err != nil {
		return err
	}
	if err := a.file.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigReset(cmd *cobra.Command, _ []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatMethodValue adds the method name to the numeric value.
func formatMethodValue(val string) string {
	id, err := strconv.Atoi(val)
	if err != nil {
		return val
	}
	if name, ok := api.MethodName(id); ok {
		return fmt.Sprintf("%s (%s)", val, name)
	}
	return val
}

// formatSchoolValue adds the school name to the numeric value.
func formatSchoolValue(val string) string {
	switch val {
	case "0":
		return "0 (Shafi)"
	case "1":
		return "1 (Hanafi)"
	default:
		return val
	}
}

func (a *app) newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List calculation methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if a.flags.json {
				return printJSON(w, api.Methods)
			}
			current := a.cfg.MethodOrDefault(-1)
			t := display.NewTable("ID", "Method")
			for i, m := range api.Methods {
				t.AddRow(strconv.Itoa(m.ID), m.Name)
				if m.ID == current {
					t.Highlight(i)
				}
			}
			fmt.Fprint(w, t.Render())
			return nil
		},
	}
}
