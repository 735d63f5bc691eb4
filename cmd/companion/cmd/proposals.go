package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerbird/companion-cli/internal/core"
	"github.com/ledgerbird/companion-cli/internal/events"
	"github.com/ledgerbird/companion-cli/internal/service"
)

var proposalsCmd = &cobra.Command{
	Use:     "proposals",
	Aliases: []string{"p"},
	Short:   "Inspect and decide pending proposals without the TUI",
}

var proposalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending proposals grouped by cluster",
	RunE:  runProposalsList,
}

var proposalsShowCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show one proposal with its full explanation",
	Args:  cobra.ExactArgs(1),
	RunE:  runProposalsShow,
}

var proposalsApproveCmd = &cobra.Command{
	Use:   "approve <event-id>",
	Short: "Apply one proposal to the ledger",
	Long: `Apply one proposal to the ledger.

The workspace operating mode is re-checked at apply time; in shadow-only
mode, or with the kill switch engaged, this fails without touching the
ledger.`,
	Args: cobra.ExactArgs(1),
	RunE: runProposalsApprove,
}

var proposalsRejectCmd = &cobra.Command{
	Use:   "reject <event-id>",
	Short: "Reject one proposal",
	Long: `Reject one proposal. Rejection is never gated by operating mode
and works even in shadow-only or with the kill switch engaged.`,
	Args: cobra.ExactArgs(1),
	RunE: runProposalsReject,
}

var proposalsApproveClusterCmd = &cobra.Command{
	Use:   "approve-cluster <cluster-key>",
	Short: "Apply every member of a batch-safe cluster",
	Long: `Apply every member of a batch-safe cluster, in order, stopping at
the first failure. A cluster with any flagged or questioned member is
refused outright; decide those one at a time.`,
	Args: cobra.ExactArgs(1),
	RunE: runProposalsApproveCluster,
}

var (
	proposalsJSON bool
	rejectReason  string
)

func init() {
	rootCmd.AddCommand(proposalsCmd)
	proposalsCmd.AddCommand(proposalsListCmd)
	proposalsCmd.AddCommand(proposalsShowCmd)
	proposalsCmd.AddCommand(proposalsApproveCmd)
	proposalsCmd.AddCommand(proposalsRejectCmd)
	proposalsCmd.AddCommand(proposalsApproveClusterCmd)

	proposalsListCmd.Flags().BoolVar(&proposalsJSON, "json", false, "Output as JSON")
	proposalsShowCmd.Flags().BoolVar(&proposalsJSON, "json", false, "Output as JSON")
	proposalsRejectCmd.Flags().StringVar(&rejectReason, "reason", "", "Optional reason recorded with the rejection")
}

// headlessReview builds a refreshed review engine for one-shot commands.
// Mutating callers pass record=true so decisions reach the journal.
func headlessReview(record bool) (*service.Review, func(), error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg)

	var bus *events.Bus
	cleanup := func() {}
	if record {
		bus, cleanup = newRecordedBus(cfg, logger)
	}

	review, err := buildReview(cfg, logger, bus)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	ctx, cancel := signalContext()
	defer cancel()
	if err := review.Refresh(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return review, cleanup, nil
}

func runProposalsList(_ *cobra.Command, _ []string) error {
	review, cleanup, err := headlessReview(false)
	if err != nil {
		return err
	}
	defer cleanup()

	if proposalsJSON {
		return outputJSON(review.Pending())
	}
	return printPending(os.Stdout, review)
}

func runProposalsShow(_ *cobra.Command, args []string) error {
	review, cleanup, err := headlessReview(false)
	if err != nil {
		return err
	}
	defer cleanup()

	ev, ok := review.Get(args[0])
	if !ok {
		return core.ErrNotFound("proposal", args[0])
	}

	if proposalsJSON {
		return outputJSON(ev)
	}
	return printProposal(os.Stdout, ev)
}

func runProposalsApprove(cmd *cobra.Command, args []string) error {
	review, cleanup, err := headlessReview(true)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := review.ApproveOne(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("applied %s\n", args[0])
	return nil
}

func runProposalsReject(cmd *cobra.Command, args []string) error {
	review, cleanup, err := headlessReview(true)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := review.RejectOne(cmd.Context(), args[0], strings.TrimSpace(rejectReason)); err != nil {
		return err
	}
	fmt.Printf("rejected %s\n", args[0])
	return nil
}

func runProposalsApproveCluster(cmd *cobra.Command, args []string) error {
	review, cleanup, err := headlessReview(true)
	if err != nil {
		return err
	}
	defer cleanup()

	outcome, err := review.ApproveCluster(cmd.Context(), args[0])
	if len(outcome.Applied) > 0 {
		fmt.Printf("cluster %s: applied %d of %d\n",
			outcome.ClusterKey, len(outcome.Applied), len(outcome.Applied)+outcome.Remaining)
	}
	if err != nil {
		if outcome.FailedID != "" {
			fmt.Printf("stopped at %s; %d left pending\n", outcome.FailedID, outcome.Remaining)
		}
		return err
	}
	return nil
}

// printPending writes the queue as a cluster-ordered table with the
// operating mode on the last line.
func printPending(w io.Writer, review *service.Review) error {
	clusters := review.Clusters()

	pending := 0
	for _, c := range clusters {
		pending += c.Size()
	}
	if pending == 0 {
		fmt.Fprintln(w, "No pending proposals.")
		printModeLine(w, review)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLUSTER\tTYPE\tFLAGS\tSUMMARY")
	for _, c := range clusters {
		for _, ev := range c.Events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				ev.ID, c.Key, ev.EventType, flagsCell(ev), truncate(ev.Summary(), 48))
		}
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d pending in %d clusters\n", pending, len(clusters))
	printModeLine(w, review)
	return nil
}

func printModeLine(w io.Writer, review *service.Review) {
	mode, loaded := review.Mode()
	if !loaded {
		fmt.Fprintln(w, "mode: unknown (apply blocked)")
		return
	}
	fmt.Fprintf(w, "mode: %s\n", modeLine(mode))
}

func flagsCell(ev core.ShadowEvent) string {
	var parts []string
	if n := len(ev.RiskReasons()); n > 0 {
		parts = append(parts, plural(n, "risk"))
	}
	if n := len(ev.Questions()); n > 0 {
		parts = append(parts, plural(n, "question"))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// printProposal writes the full explanation of one event as plain text.
func printProposal(w io.Writer, ev core.ShadowEvent) error {
	ex := core.Explain(ev)

	fmt.Fprintf(w, "id:         %s\n", ev.ID)
	fmt.Fprintf(w, "type:       %s\n", ev.EventType)
	fmt.Fprintf(w, "cluster:    %s\n", ev.ProposalGroup())
	fmt.Fprintf(w, "actor:      %s\n", ex.Actor)
	fmt.Fprintf(w, "confidence: %s\n", ex.Confidence)
	fmt.Fprintf(w, "trace:      %s\n", ex.LogicTraceID)
	fmt.Fprintf(w, "constraint: %s\n", ex.BusinessProfileConstraint)

	if reasons := ev.RiskReasons(); len(reasons) > 0 {
		fmt.Fprintln(w, "\nrisk reasons:")
		for _, r := range reasons {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	if len(ex.Questions) > 0 {
		fmt.Fprintln(w, "\nopen questions:")
		for _, q := range ex.Questions {
			fmt.Fprintf(w, "  - %s\n", q)
		}
	}

	fmt.Fprintf(w, "\nrationale:\n  %s\n", strings.ReplaceAll(ex.Rationale, "\n", "\n  "))

	if len(ev.Data) > 0 {
		payload, err := json.MarshalIndent(ev.Data, "", "  ")
		if err == nil {
			fmt.Fprintf(w, "\nproposed change:\n%s\n", payload)
		}
	}
	return nil
}
