package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	API         APIConfig         `mapstructure:"api"`
	Workspace   string            `mapstructure:"workspace"`
	Proposals   ProposalsConfig   `mapstructure:"proposals"`
	Permissions PermissionsConfig `mapstructure:"permissions"`
	Journal     JournalConfig     `mapstructure:"journal"`
	Sandbox     SandboxConfig     `mapstructure:"sandbox"`
	Log         LogConfig         `mapstructure:"log"`
}

// APIConfig configures the connection to the companion backend.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	Timeout string `mapstructure:"timeout"`
}

// RequestTimeout parses the configured timeout, falling back to 30s
// when it is absent or unparseable.
func (c APIConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ProposalsConfig configures the review queue.
type ProposalsConfig struct {
	Limit int `mapstructure:"limit"`
}

// PermissionsConfig mirrors the caller's product capabilities. The
// backend enforces them regardless; these only decide which settings
// actions the CLI offers.
type PermissionsConfig struct {
	ManageAISettings bool `mapstructure:"manage_ai_settings"`
}

// JournalConfig configures the local decision journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SandboxConfig configures the local sandbox server.
type SandboxConfig struct {
	Addr     string `mapstructure:"addr"`
	Fixtures string `mapstructure:"fixtures"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Default returns the built-in configuration, matching the loader's
// defaults. Used when diagnostics must proceed past a broken config.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://app.ledgerbird.com",
			Timeout: "30s",
		},
		Proposals: ProposalsConfig{Limit: 200},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "~/.local/share/companion/journal.db",
		},
		Sandbox: SandboxConfig{Addr: "127.0.0.1:8087"},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// ExpandUser replaces a leading ~ with the user's home directory.
func ExpandUser(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
