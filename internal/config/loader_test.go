package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_Defaults(t *testing.T) {
	loader := NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify API defaults
	if cfg.API.BaseURL != "https://app.ledgerbird.com" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "https://app.ledgerbird.com")
	}
	if cfg.API.Timeout != "30s" {
		t.Errorf("API.Timeout = %q, want %q", cfg.API.Timeout, "30s")
	}
	// Token has NO meaningful default - user must configure explicitly
	if cfg.API.Token != "" {
		t.Errorf("API.Token = %q, want empty (no default)", cfg.API.Token)
	}
	if cfg.Workspace != "" {
		t.Errorf("Workspace = %q, want empty (no default)", cfg.Workspace)
	}

	// Verify queue defaults
	if cfg.Proposals.Limit != 200 {
		t.Errorf("Proposals.Limit = %d, want %d", cfg.Proposals.Limit, 200)
	}

	// Settings management is opt-in
	if cfg.Permissions.ManageAISettings {
		t.Error("Permissions.ManageAISettings = true, want false (default)")
	}

	// Verify journal defaults
	if !cfg.Journal.Enabled {
		t.Error("Journal.Enabled = false, want true (default)")
	}
	if cfg.Journal.Path != "~/.local/share/companion/journal.db" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "~/.local/share/companion/journal.db")
	}

	// Verify sandbox defaults
	if cfg.Sandbox.Addr != "127.0.0.1:8087" {
		t.Errorf("Sandbox.Addr = %q, want %q", cfg.Sandbox.Addr, "127.0.0.1:8087")
	}

	// Verify log defaults
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "auto" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "auto")
	}
}

func TestLoader_EnvOverride(t *testing.T) {
	// Set environment variables
	os.Setenv("COMPANION_LOG_LEVEL", "debug")
	os.Setenv("COMPANION_PROPOSALS_LIMIT", "50")
	os.Setenv("COMPANION_API_TOKEN", "lbk_test_token")
	os.Setenv("COMPANION_WORKSPACE", "ws_env")
	defer func() {
		os.Unsetenv("COMPANION_LOG_LEVEL")
		os.Unsetenv("COMPANION_PROPOSALS_LIMIT")
		os.Unsetenv("COMPANION_API_TOKEN")
		os.Unsetenv("COMPANION_WORKSPACE")
	}()

	loader := NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify environment overrides
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Proposals.Limit != 50 {
		t.Errorf("Proposals.Limit = %d, want %d", cfg.Proposals.Limit, 50)
	}
	if cfg.API.Token != "lbk_test_token" {
		t.Errorf("API.Token = %q, want %q", cfg.API.Token, "lbk_test_token")
	}
	if cfg.Workspace != "ws_env" {
		t.Errorf("Workspace = %q, want %q", cfg.Workspace, "ws_env")
	}
}

func TestLoader_MissingConfig(t *testing.T) {
	// Create a loader without any config file
	loader := NewLoader()
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil (should use defaults)", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	// Should have loaded defaults
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q (default)", cfg.Log.Level, "info")
	}
}

func TestLoader_ConfigFileOverride(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
api:
  base_url: https://staging.ledgerbird.com
  timeout: "5s"
workspace: ws_books
proposals:
  limit: 25
permissions:
  manage_ai_settings: true
journal:
  enabled: false
log:
  level: warn
  format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	loader := NewLoader().WithConfigFile(configPath)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify file overrides
	if cfg.API.BaseURL != "https://staging.ledgerbird.com" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "https://staging.ledgerbird.com")
	}
	if cfg.API.Timeout != "5s" {
		t.Errorf("API.Timeout = %q, want %q", cfg.API.Timeout, "5s")
	}
	if cfg.Workspace != "ws_books" {
		t.Errorf("Workspace = %q, want %q", cfg.Workspace, "ws_books")
	}
	if cfg.Proposals.Limit != 25 {
		t.Errorf("Proposals.Limit = %d, want %d", cfg.Proposals.Limit, 25)
	}
	if !cfg.Permissions.ManageAISettings {
		t.Error("Permissions.ManageAISettings = false, want true")
	}
	if cfg.Journal.Enabled {
		t.Error("Journal.Enabled = true, want false")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
}

func TestLoader_Precedence(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	// Config file sets level to "warn"
	configContent := `
log:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	// Environment sets level to "debug" (should override file)
	os.Setenv("COMPANION_LOG_LEVEL", "debug")
	defer os.Unsetenv("COMPANION_LOG_LEVEL")

	loader := NewLoader().WithConfigFile(configPath)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Environment should take precedence over config file
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q (env should override file)", cfg.Log.Level, "debug")
	}
}

func TestLoader_InvalidConfigFile(t *testing.T) {
	// Create a temporary invalid config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid-config.yaml")

	invalidContent := `
log:
  level: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidContent), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	loader := NewLoader().WithConfigFile(configPath)
	_, err := loader.Load()
	if err == nil {
		t.Error("Load() with invalid config should return error")
	}
}

func TestLoader_ConfigFileUsed(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `log:
  level: info
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	loader := NewLoader().WithConfigFile(configPath)
	_, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	usedFile := loader.ConfigFile()
	if usedFile != configPath {
		t.Errorf("ConfigFile() = %q, want %q", usedFile, configPath)
	}
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if loader.v == nil {
		t.Error("NewLoader() viper instance is nil")
	}
	if loader.envPrefix != "COMPANION" {
		t.Errorf("NewLoader() envPrefix = %q, want %q", loader.envPrefix, "COMPANION")
	}
}

func TestLoader_WithEnvPrefix(t *testing.T) {
	// Set environment variable with custom prefix
	os.Setenv("CUSTOM_LOG_LEVEL", "error")
	defer os.Unsetenv("CUSTOM_LOG_LEVEL")

	loader := NewLoader().WithEnvPrefix("CUSTOM")
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "error")
	}
}

func TestAPIConfig_RequestTimeout(t *testing.T) {
	cfg := APIConfig{Timeout: "5s"}
	if got := cfg.RequestTimeout(); got != 5*time.Second {
		t.Errorf("RequestTimeout() = %v, want %v", got, 5*time.Second)
	}

	// Unparseable values fall back to 30s
	cfg = APIConfig{Timeout: "soon"}
	if got := cfg.RequestTimeout(); got != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want %v (fallback)", got, 30*time.Second)
	}

	// Non-positive values fall back too
	cfg = APIConfig{Timeout: "-1s"}
	if got := cfg.RequestTimeout(); got != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want %v (fallback)", got, 30*time.Second)
	}
}

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	if got := ExpandUser("~/journal.db"); got != filepath.Join(home, "journal.db") {
		t.Errorf("ExpandUser(~/journal.db) = %q, want %q", got, filepath.Join(home, "journal.db"))
	}
	if got := ExpandUser("~"); got != home {
		t.Errorf("ExpandUser(~) = %q, want %q", got, home)
	}
	if got := ExpandUser("/var/lib/companion.db"); got != "/var/lib/companion.db" {
		t.Errorf("ExpandUser(/var/lib/companion.db) = %q, want unchanged", got)
	}
}
