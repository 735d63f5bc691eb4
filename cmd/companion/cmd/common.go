package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	"github.com/ledgerbird/companion-cli/internal/companion"
	"github.com/ledgerbird/companion-cli/internal/config"
	"github.com/ledgerbird/companion-cli/internal/core"
	"github.com/ledgerbird/companion-cli/internal/events"
	"github.com/ledgerbird/companion-cli/internal/logging"
	"github.com/ledgerbird/companion-cli/internal/service"
)

// loadConfig loads and validates configuration using the global viper
// (which carries the CLI flag bindings).
func loadConfig() (*config.Config, *config.Loader, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, loader, nil
}

// newLogger builds the process logger on stderr, leaving stdout for
// command output and the TUI.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Log.Level
	if quiet {
		level = "warn"
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}

// newClient builds the companion API client from configuration.
func newClient(cfg *config.Config) (*companion.Client, error) {
	opts := []companion.Option{
		companion.WithTimeout(cfg.API.RequestTimeout()),
		companion.WithUserAgent("ledgerbird-companion/" + appVersion),
	}
	if cfg.API.Token != "" {
		opts = append(opts, companion.WithToken(cfg.API.Token))
	}
	client, err := companion.NewClient(cfg.API.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}
	return client, nil
}

// requireWorkspace resolves the workspace id or fails with a usage hint.
func requireWorkspace(cfg *config.Config) (string, error) {
	ws := strings.TrimSpace(cfg.Workspace)
	if ws == "" {
		return "", fmt.Errorf("no workspace selected: use --workspace, COMPANION_WORKSPACE, or set workspace in .companion.yaml")
	}
	return ws, nil
}

// buildReview assembles the full review engine for one workspace. The
// bus may be nil for headless one-shot commands.
func buildReview(cfg *config.Config, logger *logging.Logger, bus *events.Bus) (*service.Review, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	ws, err := requireWorkspace(cfg)
	if err != nil {
		return nil, err
	}

	queue := service.NewQueue(client, ws, cfg.Proposals.Limit)
	modes := service.NewModeStore(client, ws)

	opts := []service.ReviewOption{
		service.WithLogger(logger),
		service.WithPermissions(service.Permissions{
			ManageAISettings: cfg.Permissions.ManageAISettings,
		}),
	}
	if bus != nil {
		opts = append(opts, service.WithBus(bus))
	}
	return service.NewReview(queue, modes, opts...), nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

// outputJSON writes the given value to stdout as indented JSON.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate removes newlines and shortens the string for table cells.
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// modeLine renders the operating mode as a single status line.
func modeLine(mode core.OperatingMode) string {
	if reason := mode.BlockedReason(); reason != "" {
		return fmt.Sprintf("%s (apply blocked: %s)", mode.AIMode, reason)
	}
	return fmt.Sprintf("%s (apply enabled)", mode.AIMode)
}
