package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/colrev/colrev/internal/search"
	"github.com/colrev/colrev/internal/settings"
)

var searchRerun bool

var (
	sourcePlatform string
	sourceType     string
	sourceQuery    string
	sourcePath     string
)

func init() {
	searchCmd.Flags().BoolVar(&searchRerun, "rerun", false, "Re-retrieve all results instead of stopping at known ones")

	sourceAddCmd.Flags().StringVar(&sourcePlatform, "platform", "", "Source platform (crossref, dblp, arxiv, files, prior_project, open_citations)")
	sourceAddCmd.Flags().StringVar(&sourceType, "type", settings.SearchTypeAPI, "Search type (DB, API, FILES, TOC, FORWARD_SEARCH, BACKWARD_SEARCH, MD, OTHER)")
	sourceAddCmd.Flags().StringVar(&sourceQuery, "query", "", "Query string passed to the platform")
	sourceAddCmd.Flags().StringVar(&sourcePath, "path", "", "Results file path (defaults to data/search/<PLATFORM>.bib)")
	_ = sourceAddCmd.MarkFlagRequired("platform")

	searchCmd.AddCommand(sourceAddCmd)
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run all registered search sources",
	Long: `Run every registered search source: retrieve results into the source's
feed file, reconcile them with earlier retrievals, and propagate changes
to linked records.

By default an API search stops at the first result page that adds or
changes nothing; --rerun retrieves everything again.

Examples:
  colrev search
  colrev search --rerun
  colrev search add --platform crossref --query "digital transformation"`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	// Provider API keys may live in a local .env file.
	_ = godotenv.Load()

	mgr, err := openManager()
	if err != nil {
		return err
	}
	o := search.NewOrchestrator(mgr)
	if err := o.Run(cmd.Context(), searchRerun); err != nil {
		exitWithError(err)
	}
	return nil
}

var sourceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a search source",
	RunE:  runSourceAdd,
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	mgr, err := openManager()
	if err != nil {
		return err
	}

	path := sourcePath
	if path == "" {
		path = filepath.Join(settings.SearchDir, strings.ToUpper(sourcePlatform)+".bib")
	}
	src := settings.SearchSource{
		Platform:          sourcePlatform,
		SearchType:        sourceType,
		SearchResultsPath: filepath.ToSlash(path),
	}
	if sourceQuery != "" {
		src.SearchParameters = map[string]string{"query": sourceQuery}
	}
	if err := src.Validate(); err != nil {
		return err
	}

	if !mgr.Settings.AddSource(src) {
		fmt.Fprintf(os.Stderr, "source %s already registered\n", src.Filename())
		return nil
	}
	if err := mgr.SaveSettings(); err != nil {
		return err
	}
	fmt.Printf("Registered source %s (%s)\n", src.Filename(), src.Platform)
	return nil
}
