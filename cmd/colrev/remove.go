package main

import (
	"github.com/spf13/cobra"

	"github.com/colrev/colrev/internal/ops"
)

func init() {
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove <record-id>",
	Short: "Remove a record and its feed rows",
	Long: `Remove a record from the project together with its backing feed rows,
so a later search run does not reimport it.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	if err := ops.Remove(cmd.Context(), mgr, args[0]); err != nil {
		exitWithError(err)
	}
	return nil
}
