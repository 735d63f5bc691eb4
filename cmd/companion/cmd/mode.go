package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerbird/companion-cli/internal/core"
)

var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Show or change the workspace operating mode",
	Long: `Show or change the workspace operating mode.

The mode decides whether approvals may touch the ledger. Changing it
requires the manage-AI-settings capability and explicit confirmation
with --yes; reading it requires neither.`,
	RunE: runModeShow,
}

var modeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current operating mode",
	RunE:  runModeShow,
}

var modeUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the workspace from shadow-only to suggest-only",
	Long: `Upgrade the workspace from shadow-only to suggest-only, enabling
human-triggered apply. Refused when the workspace is in any other mode.`,
	RunE: runModeUpgrade,
}

var modeKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Engage the workspace kill switch",
	Long: `Engage the workspace kill switch, blocking all apply operations
until it is lifted from the Ledgerbird settings page. Pending proposals
stay visible and can still be rejected.`,
	RunE: runModeKill,
}

var (
	modeJSON bool
	modeYes  bool
)

func init() {
	rootCmd.AddCommand(modeCmd)
	modeCmd.AddCommand(modeShowCmd)
	modeCmd.AddCommand(modeUpgradeCmd)
	modeCmd.AddCommand(modeKillCmd)

	modeCmd.PersistentFlags().BoolVar(&modeJSON, "json", false, "Output as JSON")
	modeUpgradeCmd.Flags().BoolVar(&modeYes, "yes", false, "Confirm the change without prompting")
	modeKillCmd.Flags().BoolVar(&modeYes, "yes", false, "Confirm the change without prompting")
}

func runModeShow(_ *cobra.Command, _ []string) error {
	review, cleanup, err := headlessReview(false)
	if err != nil {
		return err
	}
	defer cleanup()

	mode, loaded := review.Mode()
	if !loaded {
		return fmt.Errorf("operating mode unavailable for workspace %s", review.Workspace())
	}

	if modeJSON {
		return outputJSON(struct {
			Workspace string             `json:"workspace"`
			Mode      core.OperatingMode `json:"mode"`
			Blocked   bool               `json:"apply_blocked"`
			Reason    string             `json:"blocked_reason,omitempty"`
		}{review.Workspace(), mode, mode.ApplyDisabled(), mode.BlockedReason()})
	}

	printMode(review.Workspace(), mode)
	return nil
}

func runModeUpgrade(cmd *cobra.Command, _ []string) error {
	review, cleanup, err := headlessReview(true)
	if err != nil {
		return err
	}
	defer cleanup()

	updated, err := review.UpgradeMode(cmd.Context(), modeYes)
	if err != nil {
		return err
	}
	fmt.Printf("workspace %s upgraded to %s\n", review.Workspace(), updated.AIMode)
	printMode(review.Workspace(), updated)
	return nil
}

func runModeKill(cmd *cobra.Command, _ []string) error {
	review, cleanup, err := headlessReview(true)
	if err != nil {
		return err
	}
	defer cleanup()

	updated, err := review.EngageKillSwitch(cmd.Context(), modeYes)
	if err != nil {
		return err
	}
	fmt.Printf("kill switch engaged for workspace %s\n", review.Workspace())
	printMode(review.Workspace(), updated)
	return nil
}

func printMode(workspace string, mode core.OperatingMode) {
	fmt.Printf("workspace:   %s\n", workspace)
	fmt.Printf("ai mode:     %s\n", mode.AIMode)
	fmt.Printf("ai enabled:  workspace=%t platform=%t\n", mode.AIEnabled, mode.GlobalAIEnabled)
	fmt.Printf("kill switch: %t\n", mode.KillSwitch)
	if reason := mode.BlockedReason(); reason != "" {
		fmt.Printf("apply:       blocked (%s)\n", reason)
	} else {
		fmt.Println("apply:       enabled")
	}
}
