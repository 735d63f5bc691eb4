package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerbird/companion-cli/internal/sandbox"
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run a local fake backend for demos and development",
	Long: `Run a local fake backend for demos and development.

The sandbox serves the same HTTP surface as the Ledgerbird backend,
seeded with demo workspaces, and keeps all state in memory. Point the
client at it with:

  companion --workspace ws_demo review
  COMPANION_API_BASE_URL=http://127.0.0.1:8087

With --fixtures the seed data comes from a JSON file instead, and edits
to that file are hot-reloaded into the running sandbox.`,
	RunE: runSandbox,
}

var (
	sandboxAddr     string
	sandboxFixtures string
)

func init() {
	rootCmd.AddCommand(sandboxCmd)
	sandboxCmd.Flags().StringVar(&sandboxAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8087)")
	sandboxCmd.Flags().StringVar(&sandboxFixtures, "fixtures", "", "Seed workspaces from a JSON fixtures file")
}

func runSandbox(_ *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if sandboxFixtures == "" {
		sandboxFixtures = cfg.Sandbox.Fixtures
	}

	store := sandbox.NewStore()
	if sandboxFixtures != "" {
		fixtures, err := sandbox.LoadFile(sandboxFixtures)
		if err != nil {
			return err
		}
		store.Load(fixtures)

		watcher, err := sandbox.NewWatcher(store, sandboxFixtures, logger.Logger)
		if err != nil {
			logger.Warn("fixture hot-reload unavailable", "error", err)
		} else {
			defer watcher.Close()
		}
	} else {
		store.Load(sandbox.Default())
	}

	addr := sandboxAddr
	if addr == "" {
		addr = cfg.Sandbox.Addr
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("sandbox listening on http://%s\n", addr)
	server := sandbox.NewServer(store, sandbox.WithLogger(logger.Logger))
	return server.ListenAndServe(ctx, addr)
}
