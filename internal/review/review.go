// Package review ties a project together: the git repository, the settings,
// the record store, and the logger that operations share. A Manager is
// passed explicitly to every operation; there is no process-wide state.
package review

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/colrev/colrev/internal/gitrepo"
	"github.com/colrev/colrev/internal/logging"
	"github.com/colrev/colrev/internal/settings"
	"github.com/colrev/colrev/internal/store"
)

// Manager carries the open project state for one invocation.
type Manager struct {
	Root     string
	Settings *settings.Settings
	Repo     *gitrepo.Repo
	Store    *store.Store
	Logger   *slog.Logger

	// Force bypasses operation preconditions.
	Force bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithForce bypasses operation preconditions.
func WithForce() Option {
	return func(m *Manager) { m.Force = true }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.Logger = logger }
}

// Open loads the project rooted at the given path.
func Open(root string, opts ...Option) (*Manager, error) {
	repo, err := gitrepo.Open(root)
	if err != nil {
		return nil, err
	}
	cfg, err := settings.Load(root)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		Root:     root,
		Settings: cfg,
		Repo:     repo,
		Store:    store.New(filepath.Join(root, settings.RecordsFile), repo),
		Logger:   logging.New(logging.Options{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// RecordsPath returns the absolute path of the records file.
func (m *Manager) RecordsPath() string {
	return filepath.Join(m.Root, settings.RecordsFile)
}

// SearchDir returns the absolute path of the search results directory.
func (m *Manager) SearchDir() string {
	return filepath.Join(m.Root, settings.SearchDir)
}

// PDFDir returns the absolute path of the PDF directory.
func (m *Manager) PDFDir() string {
	return filepath.Join(m.Root, settings.PDFDir)
}

// FeedPath returns the absolute path of a source's feed file.
func (m *Manager) FeedPath(src *settings.SearchSource) string {
	if filepath.IsAbs(src.SearchResultsPath) {
		return src.SearchResultsPath
	}
	return filepath.Join(m.Root, src.SearchResultsPath)
}

// SaveSettings persists the settings file.
func (m *Manager) SaveSettings() error {
	if err := m.Settings.Save(m.Root); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// IsRealtime reports whether the project uses the realtime review type,
// which bypasses operation preconditions.
func (m *Manager) IsRealtime() bool {
	return m.Settings.Project.ReviewType == settings.ReviewTypeRealtime
}
