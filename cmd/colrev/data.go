package main

import (
	"github.com/spf13/cobra"

	"github.com/colrev/colrev/internal/ops"
)

var dataReopen []string

func init() {
	dataCmd.Flags().StringSliceVar(&dataReopen, "reopen", nil, "Record IDs to reopen for synthesis")
	rootCmd.AddCommand(dataCmd)
}

var dataCmd = &cobra.Command{
	Use:   "data [record-id...]",
	Short: "Mark included records as synthesized",
	Long: `Mark the given included records as rev_synthesized. --reopen moves
synthesized records back to rev_included for further work.

Examples:
  colrev data Smith2020 Jones2019
  colrev data --reopen Smith2020`,
	RunE: runData,
}

func runData(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	if err := ops.Data(cmd.Context(), mgr, args, dataReopen); err != nil {
		exitWithError(err)
	}
	return nil
}
