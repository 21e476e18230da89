// Package config handles tfit's JSON configuration: loading the user config
// file, resolving the data directory, and merging per-source settings with
// their defaults.
//
// The config file is a JSON object with a top-level "data_path" string and
// one nested object per data source:
//
//	{
//	  "data_path": "$HOME/.cache/tfit",
//	  "hippie": {"filename": "hippie_ppi.txt"}
//	}
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvVar names the environment variable that points at the config file.
const EnvVar = "TFIT_CONFIG"

// Config is the parsed user configuration. A zero Config is valid and means
// "all defaults".
type Config struct {
	// DataPath is the user-supplied data directory. May contain environment
	// variables or a leading ~. Empty means the platform default.
	DataPath string

	// Sources holds one settings map per data-source key ("hippie",
	// "biomart", "stringdb", "biogrid").
	Sources map[string]map[string]any
}

// Resolved is a fully resolved configuration for one data source.
type Resolved struct {
	// DataDir is a concrete directory that exists on disk.
	DataDir string

	// Settings is the source's defaults overlaid with any user-supplied
	// keys for that source.
	Settings map[string]any
}

// String returns the settings value for key rendered as a string, or ""
// if the key is absent.
func (r *Resolved) String(key string) string {
	v, ok := r.Settings[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Load reads a JSON config file from path. The top level must be an object.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(ExpandPath(path))
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return fromSettings(v.AllSettings()), nil
}

// fromSettings builds a Config from a viper settings map. Non-object values
// under source keys are ignored rather than rejected.
func fromSettings(settings map[string]any) *Config {
	cfg := &Config{Sources: make(map[string]map[string]any)}
	for key, val := range settings {
		if key == "data_path" {
			if s, ok := val.(string); ok {
				cfg.DataPath = s
			}
			continue
		}
		if section, ok := val.(map[string]any); ok {
			cfg.Sources[key] = section
		}
	}
	return cfg
}

// Resolve merges the defaults for one source with the user config and
// resolves the data directory, creating it if absent. User-supplied keys win
// key-by-key over defaults. Neither cfg nor defaults is mutated; resolving
// twice yields structurally identical results.
func Resolve(cfg *Config, key string, defaults map[string]any) (*Resolved, error) {
	dataDir, err := resolveDataDir(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dataDir, err)
	}

	settings := make(map[string]any, len(defaults))
	for k, v := range defaults {
		settings[k] = v
	}
	if cfg != nil {
		for k, v := range cfg.Sources[key] {
			settings[k] = v
		}
	}

	return &Resolved{DataDir: dataDir, Settings: settings}, nil
}

func resolveDataDir(cfg *Config) (string, error) {
	if cfg != nil && strings.TrimSpace(cfg.DataPath) != "" {
		return ExpandPath(cfg.DataPath), nil
	}
	return DefaultDataDir()
}

// DefaultDataDir returns the data directory used when the config does not
// set data_path.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".tfit"), nil
}

// ExpandPath expands environment variables and a leading ~ in a path string.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
