package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/colrev/colrev/internal/gitrepo"
	"github.com/colrev/colrev/internal/settings"
	"github.com/spf13/cobra"
)

var initName string

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Project title recorded in the settings")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a review project in the current directory",
	Long: `Initialize a review project: a git repository with the settings file,
the records file location, and the search and pdf directories.

Examples:
  colrev init
  colrev init --name "Digital transformation review"`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	if _, err := os.Stat(filepath.Join(cwd, settings.SettingsFile)); err == nil {
		return fmt.Errorf("project already initialized: %s exists", settings.SettingsFile)
	}

	repo, err := gitrepo.Init(cwd)
	if err != nil {
		return err
	}

	s := settings.Default()
	if initName != "" {
		s.Project.Title = initName
	}
	if err := s.Save(cwd); err != nil {
		return err
	}
	for _, dir := range []string{settings.SearchDir, settings.PDFDir} {
		if err := os.MkdirAll(filepath.Join(cwd, dir), 0o755); err != nil {
			return err
		}
	}

	if err := repo.AddAll(); err != nil {
		return err
	}
	if _, err := repo.Commit("Initialize review project", false, "colrev init"); err != nil {
		return err
	}

	fmt.Printf("Initialized review project in %s\n", cwd)
	return nil
}
