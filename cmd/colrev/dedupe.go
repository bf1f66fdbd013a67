package main

import (
	"github.com/spf13/cobra"

	"github.com/colrev/colrev/internal/ops"
)

func init() {
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Merge duplicate prepared records",
	Long: `Merge prepared records whose similarity exceeds the duplicate
threshold, preferring the record whose ID is already persisted. The
survivors advance to md_processed, after which their IDs are stable.`,
	RunE: runDedupe,
}

func runDedupe(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	if err := ops.Dedupe(cmd.Context(), mgr); err != nil {
		exitWithError(err)
	}
	return nil
}
