package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerbird/companion-cli/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the pending review queue as a YAML snapshot",
	Long: `Export the pending review queue as a YAML snapshot.

The snapshot carries the operating mode, the cluster layout, and every
pending proposal in wire shape, so the exact state a reviewer sees can
be handed to support or a colleague. Without --out the snapshot goes to
stdout.`,
	RunE: runExport,
}

var exportOut string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write the snapshot to a file instead of stdout")
}

func runExport(_ *cobra.Command, _ []string) error {
	review, cleanup, err := headlessReview(false)
	if err != nil {
		return err
	}
	defer cleanup()

	mode, _ := review.Mode()
	snapshot := export.Build(review.Workspace(), mode, review.Pending())

	if exportOut == "" {
		return export.WriteTo(os.Stdout, snapshot)
	}
	if err := export.WriteFile(exportOut, snapshot); err != nil {
		return err
	}
	fmt.Printf("snapshot of %d pending proposals written to %s\n", snapshot.Pending, exportOut)
	return nil
}
