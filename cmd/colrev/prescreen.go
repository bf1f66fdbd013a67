package main

import (
	"github.com/spf13/cobra"

	"github.com/colrev/colrev/internal/ops"
)

var (
	prescreenInclude []string
	prescreenExclude []string
	prescreenReason  string
)

func init() {
	prescreenCmd.Flags().StringSliceVar(&prescreenInclude, "include", nil, "Record IDs to include")
	prescreenCmd.Flags().StringSliceVar(&prescreenExclude, "exclude", nil, "Record IDs to exclude")
	prescreenCmd.Flags().StringVar(&prescreenReason, "reason", "", "Exclusion reason (default not_relevant)")
	rootCmd.AddCommand(prescreenCmd)
}

var prescreenCmd = &cobra.Command{
	Use:   "prescreen",
	Short: "Apply prescreen decisions on processed records",
	Long: `Apply metadata-based inclusion decisions. Included records advance to
rev_prescreen_included, excluded ones to rev_prescreen_excluded with the
given reason.

Examples:
  colrev prescreen --include Smith2020,Jones2019
  colrev prescreen --exclude Brown2018 --reason out_of_scope`,
	RunE: runPrescreen,
}

func runPrescreen(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}

	decisions := map[string]bool{}
	for _, id := range prescreenInclude {
		decisions[id] = true
	}
	for _, id := range prescreenExclude {
		decisions[id] = false
	}
	if err := ops.Prescreen(cmd.Context(), mgr, decisions, prescreenReason); err != nil {
		exitWithError(err)
	}
	return nil
}
