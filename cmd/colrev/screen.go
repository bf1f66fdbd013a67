package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/colrev/colrev/internal/ops"
)

var (
	screenInclude []string
	screenExclude []string
)

func init() {
	screenCmd.Flags().StringSliceVar(&screenInclude, "include", nil, "Record IDs to include")
	screenCmd.Flags().StringSliceVar(&screenExclude, "exclude", nil, "Exclusions as <ID>:<criterion>[;<criterion>...]")
	rootCmd.AddCommand(screenCmd)
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Apply full-text screening decisions",
	Long: `Apply full-text screening decisions. Included records advance to
rev_included; excluded ones to rev_excluded with the violated criteria
recorded on the record.

Examples:
  colrev screen --include Smith2020
  colrev screen --exclude "Jones2019:wrong_population;no_empirical_data"`,
	RunE: runScreen,
}

func runScreen(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}

	violated := map[string][]string{}
	for _, id := range screenInclude {
		violated[id] = nil
	}
	for _, spec := range screenExclude {
		id, criteria, ok := strings.Cut(spec, ":")
		if !ok || criteria == "" {
			return fmt.Errorf("exclusion %q must have the form <ID>:<criterion>[;<criterion>...]", spec)
		}
		violated[id] = strings.Split(criteria, ";")
	}

	if err := ops.Screen(cmd.Context(), mgr, violated); err != nil {
		exitWithError(err)
	}
	return nil
}
