package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath returns the default location for the user config file.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tfit", "config.json"), nil
}

// BlankTemplate returns an empty config template pointing at the default
// data directory. Each call builds a fresh value.
func BlankTemplate() map[string]any {
	dataDir, err := DefaultDataDir()
	if err != nil {
		dataDir = ""
	}
	return map[string]any{
		"data_path": dataDir,
	}
}

// WriteTemplate writes a blank config template to path, creating parent
// directories as needed. Returns the expanded path written.
func WriteTemplate(path string) (string, error) {
	dst := ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(BlankTemplate(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal config template: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("write config template: %w", err)
	}
	return dst, nil
}
