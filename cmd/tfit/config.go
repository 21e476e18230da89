package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tfit-bio/tfit/internal/config"
	"github.com/tfit-bio/tfit/internal/datasource/biogrid"
	"github.com/tfit-bio/tfit/internal/datasource/biomart"
	"github.com/tfit-bio/tfit/internal/datasource/hippie"
	"github.com/tfit-bio/tfit/internal/datasource/stringdb"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tfit configuration",
		Long:  "Show the resolved configuration, or get/set values in the config file.",
		Example: `  tfit config                          # show resolved config
  tfit config get hippie.filename
  tfit config set hippie.filename custom.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigShow()
		},
	}

	cmd.AddCommand(newConfigGetCmd(a))
	cmd.AddCommand(newConfigSetCmd(a))

	return cmd
}

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a resolved configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigGet(args[0])
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a value in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigSet(args[0], args[1])
		},
	}
}

// sourceDefaults maps source keys to their default settings builders.
var sourceDefaults = map[string]func() map[string]any{
	hippie.Key:   hippie.Defaults,
	biomart.Key:  biomart.Defaults,
	stringdb.Key: stringdb.Defaults,
	biogrid.Key:  biogrid.Defaults,
}

// resolvedSettings builds the fully resolved view of the configuration:
// concrete data path plus per-source settings with user overrides applied.
func (a *app) resolvedSettings() (map[string]any, error) {
	out := make(map[string]any, len(sourceDefaults)+1)
	for key, defaults := range sourceDefaults {
		res, err := config.Resolve(a.cfg, key, defaults())
		if err != nil {
			return nil, err
		}
		out["data_path"] = res.DataDir
		out[key] = res.Settings
	}
	return out, nil
}

func (a *app) runConfigShow() error {
	settings, err := a.resolvedSettings()
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func (a *app) runConfigGet(key string) error {
	settings, err := a.resolvedSettings()
	if err != nil {
		return err
	}

	v := viper.New()
	if err := v.MergeConfigMap(settings); err != nil {
		return err
	}
	val := v.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Println(val)
	return nil
}

func (a *app) runConfigSet(key, value string) error {
	path := a.cfgPath
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return err
		}
	}
	path = config.ExpandPath(path)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	// A missing file is fine; set creates it.
	_ = v.ReadInConfig()

	v.Set(key, value)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Set %s = %s in %s\n", key, value, path)
	return nil
}
