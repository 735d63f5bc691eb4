package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerbird/companion-cli/internal/config"
	"github.com/ledgerbird/companion-cli/internal/diagnostics"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, backend reachability, and local state",
	Long: `Check configuration, backend reachability, and local state.

Runs every probe even when an earlier one fails, so one report shows
the whole picture. Exits non-zero if any check fails outright.`,
	RunE: runDoctor,
}

var doctorJSON bool

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output as JSON")
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	report := diagnostics.NewReport(appVersion)

	cfg, loader, cfgErr := loadConfig()
	var cfgPath string
	if loader != nil {
		cfgPath = loader.ConfigFile()
	}
	report.Add(diagnostics.ConfigCheck(cfgPath, cfgErr))
	if cfgErr != nil {
		cfg = config.Default()
	}

	report.Add(backendCheck(cmd, cfg))

	journalPath := config.ExpandUser(cfg.Journal.Path)
	report.Add(diagnostics.JournalCheck(cfg.Journal.Enabled, journalPath))

	host := diagnostics.CollectHost(filepath.Dir(journalPath))
	report.Add(diagnostics.DiskSpaceCheck(host, 1.0))

	crashDir := diagnostics.NewCrashDumpWriter("", 0, false, false, nil).Dir()
	report.Add(diagnostics.CrashCheck(crashDir))

	report.Host = host
	report.Process = diagnostics.TakeSnapshot()

	if doctorJSON {
		if err := outputJSON(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if report.Failed() {
		return fmt.Errorf("doctor found problems")
	}
	return nil
}

// backendCheck probes the review backend with a settings fetch, the
// cheapest authenticated call the API offers.
func backendCheck(cmd *cobra.Command, cfg *config.Config) diagnostics.Check {
	ws, err := requireWorkspace(cfg)
	if err != nil {
		return diagnostics.Check{
			Name:   "backend",
			Status: diagnostics.StatusWarn,
			Detail: "no workspace configured; skipping reachability probe",
		}
	}

	client, err := newClient(cfg)
	if err != nil {
		return diagnostics.BackendCheck(cfg.API.BaseURL, 0, err)
	}

	start := time.Now()
	_, err = client.FetchSettings(cmd.Context(), ws)
	return diagnostics.BackendCheck(cfg.API.BaseURL, time.Since(start), err)
}

func printReport(report *diagnostics.Report) {
	fmt.Printf("companion %s (%s %s/%s)\n\n", report.Version, report.GoVersion, report.OS, report.Arch)

	for _, c := range report.Checks {
		icon := "✓"
		switch c.Status {
		case diagnostics.StatusWarn:
			icon = "⚠"
		case diagnostics.StatusFail:
			icon = "✗"
		}
		fmt.Printf("  %s %-12s %s\n", icon, c.Name, c.Detail)
	}

	fmt.Println()
	if report.Failed() {
		fmt.Println("Some checks failed")
	} else {
		fmt.Println("All checks passed")
	}
}
