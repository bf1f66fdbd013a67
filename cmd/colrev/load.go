package main

import (
	"github.com/spf13/cobra"

	"github.com/colrev/colrev/internal/ops"
)

func init() {
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import retrieved feed rows as records",
	Long: `Import every feed row that is not yet linked to a record. Each row
becomes a record in the md_imported state with a citation-key ID and
origin-tracked field provenance.`,
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	if err := ops.Load(cmd.Context(), mgr); err != nil {
		exitWithError(err)
	}
	return nil
}
