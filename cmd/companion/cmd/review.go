package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ledgerbird/companion-cli/internal/config"
	"github.com/ledgerbird/companion-cli/internal/diagnostics"
	"github.com/ledgerbird/companion-cli/internal/events"
	"github.com/ledgerbird/companion-cli/internal/journal"
	"github.com/ledgerbird/companion-cli/internal/logging"
	"github.com/ledgerbird/companion-cli/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Open the interactive review screen",
	Long: `Open the interactive proposal review screen.

The screen lists pending proposals grouped into clusters, with a detail
pane explaining each proposal. Approvals respect the workspace operating
mode; a banner shows whether apply is currently permitted and why not.

When stdout is not a terminal (or in CI) the pending queue is printed as
plain text instead.`,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(_ *cobra.Command, _ []string) (err error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := signalContext()
	defer cancel()

	crashWriter := diagnostics.NewCrashDumpWriter("", 0, true, false, logger.Logger)
	crashWriter.SetSessionContext(cfg.Workspace, "review")
	defer crashWriter.RecoverAndReturn(&err)

	// The journal is a sidecar: failing to open it degrades to an
	// unrecorded session, never to a blocked one.
	bus, cleanup := newRecordedBus(cfg, logger)
	defer cleanup()

	review, err := buildReview(cfg, logger, bus)
	if err != nil {
		return err
	}

	detector := tui.NewDetector().NoColor(noColor)
	switch detector.Detect() {
	case tui.ModeTUI:
		// Interactive path below.
	case tui.ModeJSON:
		if err := review.Refresh(ctx); err != nil {
			return err
		}
		return outputJSON(review.Pending())
	default:
		if err := review.Refresh(ctx); err != nil {
			return err
		}
		return printPending(os.Stdout, review)
	}

	model := tui.NewModel(review).
		WithLogger(logger).
		WithVersion(appVersion)

	// Mouse capture stays off so the terminal keeps native text selection.
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running review: %w", err)
	}
	return nil
}

// newRecordedBus builds the event bus with the journal recorder
// attached when the journal is enabled. Headless mutation commands use
// it so scripted decisions land in the same audit trail as interactive
// ones. The returned cleanup stops the recorder and closes the bus.
func newRecordedBus(cfg *config.Config, logger *logging.Logger) (*events.Bus, func()) {
	bus := events.New(100)
	cleanup := func() { bus.Close() }

	if cfg.Journal.Enabled {
		j, jerr := journal.Open(config.ExpandUser(cfg.Journal.Path))
		if jerr != nil {
			logger.Warn("decision journal unavailable", "error", jerr)
		} else {
			recorder := journal.NewRecorder(j, bus, logger)
			recorder.Start()
			cleanup = func() {
				recorder.Stop()
				_ = j.Close()
				bus.Close()
			}
		}
	}
	return bus, cleanup
}
