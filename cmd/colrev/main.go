// Package main provides the colrev CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/colrev/colrev/internal/logging"
	"github.com/colrev/colrev/internal/review"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	forceMode bool
	verbose   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "colrev",
	Short: "Collaborative literature review workflow CLI",
	Long: `colrev manages a git-versioned literature review.

Records live in a BibTeX-shaped file with per-field provenance and move
through a review state machine: search, load, prep, dedupe, prescreen,
pdf retrieval, screen, and data synthesis. Every operation commits its
outcome, so the repository history is the review's audit trail.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&forceMode, "force", "f", false, "Bypass repository and state preconditions")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}

// openManager opens the review project in the working directory.
func openManager() (*review.Manager, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	if root := os.Getenv("COLREV_ROOT"); root != "" {
		cwd = root
	}

	opts := []review.Option{
		review.WithLogger(logging.New(logging.Options{Verbose: verbose})),
	}
	if forceMode {
		opts = append(opts, review.WithForce())
	}
	return review.Open(cwd, opts...)
}
