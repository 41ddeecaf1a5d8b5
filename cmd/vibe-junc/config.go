package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-junc configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.vibe-junc.yaml.
Keys are the long flag names of 'vibe-junc find' (flank, stranded, gtf, ...).
Environment variables VIBEJUNC_<KEY> override the file; flags override both.`,
		Example: `  vibe-junc config                      # show all config
  vibe-junc config set flank 10         # raise the default flank
  vibe-junc config set stranded rf      # stranded dUTP libraries
  vibe-junc config get gtf              # get a value`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigShow()
		},
	}

	cmd.AddCommand(a.newConfigSetCmd())
	cmd.AddCommand(a.newConfigGetCmd())

	return cmd
}

func (a *app) newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigSet(args[0], args[1])
		},
	}
}

func (a *app) newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigGet(args[0])
		},
	}
}

func (a *app) runConfigShow() error {
	settings := a.v.AllSettings()
	if len(settings) == 0 {
		fmt.Fprintf(a.stdout, "# No configuration set. Config file: %s\n", a.configPath())
		return nil
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(a.stdout, string(out))
	return nil
}

func (a *app) runConfigSet(key, value string) error {
	cfgFile := a.configPath()

	// Only values from the file itself are written back, not flag defaults.
	fv := viper.New()
	fv.SetConfigFile(cfgFile)
	fv.SetConfigType("yaml")
	if err := fv.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse boolean-like and numeric values
	switch value {
	case "true", "yes", "on":
		fv.Set(key, true)
	case "false", "no", "off":
		fv.Set(key, false)
	default:
		if n, err := strconv.Atoi(value); err == nil {
			fv.Set(key, n)
		} else {
			fv.Set(key, value)
		}
	}

	if err := fv.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(a.stdout, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func (a *app) runConfigGet(key string) error {
	val := a.v.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(a.stdout, val)
	return nil
}
