package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/colrev/colrev/internal/ops"
	"github.com/colrev/colrev/internal/quality"
	"github.com/colrev/colrev/internal/search"
	"github.com/colrev/colrev/internal/settings"
	"github.com/colrev/colrev/internal/toc"
)

var (
	prepIgnoreDefects []string
	prepTOCPath       string
)

func init() {
	prepCmd.Flags().StringSliceVar(&prepIgnoreDefects, "ignore", nil, "Defect codes the quality model should skip")
	prepCmd.Flags().StringVar(&prepTOCPath, "toc", "", "SQLite table-of-contents index for containment checks")
	rootCmd.AddCommand(prepCmd)
	rootCmd.AddCommand(prepManCmd)
}

var prepCmd = &cobra.Command{
	Use:   "prep",
	Short: "Run the quality model over imported records",
	Long: `Run the quality checkers over every imported record. Records without
defects advance to md_prepared; defective ones are routed to manual
preparation with the defect codes noted in their provenance.

Examples:
  colrev prep
  colrev prep --ignore mostly-all-caps
  colrev prep --toc data/toc.sqlite`,
	RunE: runPrep,
}

func runPrep(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	mgr, err := openManager()
	if err != nil {
		return err
	}

	opts := quality.Options{
		DefectsToIgnore: prepIgnoreDefects,
		Oracle:          search.NewCrossrefAdapter(settings.SearchSource{}),
	}
	if prepTOCPath != "" {
		index, err := toc.Open(prepTOCPath)
		if err != nil {
			return err
		}
		defer index.Close()
		opts.TOC = index
	}

	if err := ops.Prep(cmd.Context(), mgr, quality.NewModel(opts)); err != nil {
		exitWithError(err)
	}
	return nil
}

var prepManCmd = &cobra.Command{
	Use:   "prep-man",
	Short: "Re-evaluate manually prepared records",
	Long: `Re-run the quality model over records in manual preparation. Records
whose defects were resolved by hand advance to md_prepared.`,
	RunE: runPrepMan,
}

func runPrepMan(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}
	if err := ops.PrepMan(cmd.Context(), mgr, nil); err != nil {
		exitWithError(err)
	}
	return nil
}
