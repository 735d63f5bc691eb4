package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// UserConfigPath returns the per-user configuration path.
//
// This is separate from a project-local `.companion.yaml` and holds the
// reviewer's personal defaults (API token, workspace, permissions).
func UserConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "companion", ".companion.yaml"), nil
}

// EnsureUserConfigFile ensures the user configuration file exists on disk.
// If it does not exist, it is created using DefaultConfigYAML.
func EnsureUserConfigFile() (string, error) {
	path, err := UserConfigPath()
	if err != nil {
		return "", err
	}

	if _, statErr := os.Stat(path); statErr == nil {
		return path, nil
	} else if !os.IsNotExist(statErr) {
		return "", fmt.Errorf("checking user config: %w", statErr)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("creating user config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(DefaultConfigYAML), 0o600); err != nil {
		return "", fmt.Errorf("creating user config: %w", err)
	}

	return path, nil
}
