package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerbird/companion-cli/internal/config"
	"github.com/ledgerbird/companion-cli/internal/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show decisions recorded on this machine",
	Long: `Show decisions recorded on this machine.

Every approval, rejection, and mode change made through this client is
written to a local SQLite journal. This reads that journal; it never
talks to the backend, so it works offline and after proposals settle.`,
	RunE: runJournal,
}

var (
	journalJSON    bool
	journalLimit   int
	journalSummary bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.Flags().BoolVar(&journalJSON, "json", false, "Output as JSON")
	journalCmd.Flags().IntVar(&journalLimit, "limit", journal.DefaultRecentLimit, "Maximum entries to show")
	journalCmd.Flags().BoolVar(&journalSummary, "summary", false, "Show per-kind counts instead of entries")
}

func runJournal(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	ws, err := requireWorkspace(cfg)
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled {
		return fmt.Errorf("decision journal is disabled in configuration")
	}

	j, err := journal.Open(config.ExpandUser(cfg.Journal.Path))
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := cmd.Context()
	if journalSummary {
		counts, err := j.Summarize(ctx, ws)
		if err != nil {
			return err
		}
		if journalJSON {
			return outputJSON(counts)
		}
		printJournalSummary(ws, counts)
		return nil
	}

	entries, err := j.Recent(ctx, ws, journalLimit)
	if err != nil {
		return err
	}
	if journalJSON {
		return outputJSON(entries)
	}
	printJournalEntries(ws, entries)
	return nil
}

func printJournalEntries(workspace string, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Printf("No recorded decisions for workspace %s.\n", workspace)
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tEVENT\tCLUSTER\tDETAIL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			e.Kind, orDash(e.EventID), orDash(e.ClusterKey), truncate(e.Detail, 40))
	}
	tw.Flush()
	fmt.Printf("\n%d entries for workspace %s\n", len(entries), workspace)
}

func printJournalSummary(workspace string, counts map[journal.Kind]int) {
	if len(counts) == 0 {
		fmt.Printf("No recorded decisions for workspace %s.\n", workspace)
		return
	}

	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	total := 0
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tCOUNT")
	for _, k := range kinds {
		fmt.Fprintf(tw, "%s\t%d\n", k, counts[journal.Kind(k)])
		total += counts[journal.Kind(k)]
	}
	tw.Flush()
	fmt.Printf("\n%d decisions for workspace %s\n", total, workspace)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
