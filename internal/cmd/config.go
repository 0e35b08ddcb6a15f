package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"jira-lite/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage jira-lite configuration settings in .jira/config.yaml.

Configuration is stored as flat key-value pairs. Core keys:
  db.path    database file, relative to .jira (default db.json)
  log.level  debug, info, warn or error (default warn)

Subcommands:
  get       Get a configuration value
  set       Set a configuration value
  list      List all configuration values
  unset     Remove a configuration value
  validate  Validate configuration`,
	}

	cmd.AddCommand(newConfigGetCmd(provider))
	cmd.AddCommand(newConfigSetCmd(provider))
	cmd.AddCommand(newConfigListCmd(provider))
	cmd.AddCommand(newConfigUnsetCmd(provider))
	cmd.AddCommand(newConfigValidateCmd(provider))

	return cmd
}

func newConfigGetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get the value of a configuration key, including defaults and
environment overrides. Prints "key (not set)" if the key is missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			value, ok := app.ConfigStore.Get(key)

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
					"set":   ok,
				})
			}

			if ok {
				fmt.Fprintln(app.Out, value)
			} else {
				fmt.Fprintf(app.Out, "%s (not set)\n", key)
			}
			return nil
		},
	}

	return cmd
}

func newConfigSetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration key. Values for core keys are validated
before anything is written.

Examples:
  jl config set log.level debug
  jl config set db.path ../issues.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := config.ValidateValue(key, value); err != nil {
				return err
			}
			if err := app.ConfigStore.Set(key, value); err != nil {
				return fmt.Errorf("setting config: %w", err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{"key": key, "value": value})
			}
			fmt.Fprintf(app.Out, "Set %s = %s\n", key, value)
			return nil
		},
	}

	return cmd
}

func newConfigListCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			all := app.ConfigStore.All()
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(all)
			}

			if len(all) == 0 {
				fmt.Fprintln(app.Out, "No configuration set")
				return nil
			}

			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			fmt.Fprintln(app.Out, "Configuration:")
			for _, k := range keys {
				fmt.Fprintf(app.Out, "  %s = %s\n", k, all[k])
			}
			return nil
		},
	}

	return cmd
}

func newConfigUnsetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration value",
		Long:  `Remove a configuration key. Core keys fall back to their defaults.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			if err := app.ConfigStore.Unset(key); err != nil {
				return fmt.Errorf("unsetting config: %w", err)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]string{"key": key})
			}
			fmt.Fprintf(app.Out, "Unset %s\n", key)
			return nil
		},
	}

	return cmd
}

func newConfigValidateCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Long: `Check that core keys have valid values. Unknown (custom) keys
are always accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			problems := config.Problems(app.ConfigStore)
			if problems == nil {
				problems = []string{}
			}

			if app.JSON {
				if err := json.NewEncoder(app.Out).Encode(map[string]interface{}{
					"valid":  len(problems) == 0,
					"issues": problems,
				}); err != nil {
					return err
				}
			} else if len(problems) == 0 {
				fmt.Fprintln(app.Out, "Configuration is valid.")
			} else {
				fmt.Fprintln(app.Out, "Configuration errors:")
				for _, p := range problems {
					fmt.Fprintf(app.Out, "  %s\n", p)
				}
			}

			if len(problems) > 0 {
				return fmt.Errorf("configuration has %d error(s)", len(problems))
			}
			return nil
		},
	}

	return cmd
}
