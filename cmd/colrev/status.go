package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colrev/colrev/internal/ops"
	"github.com/colrev/colrev/internal/record"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output counts as JSON")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show record counts per review state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	counts, err := ops.Status(mgr)
	if err != nil {
		exitWithError(err)
	}

	if statusJSON {
		out := map[string]int{}
		for state, n := range counts {
			out[string(state)] = n
		}
		return outputJSON(out)
	}

	total := 0
	for _, state := range record.AllStates {
		n := counts[state]
		total += n
		if n == 0 {
			continue
		}
		fmt.Printf("  %-30s %d\n", state, n)
	}
	fmt.Printf("  %-30s %d\n", "total", total)
	return nil
}
