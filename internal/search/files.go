package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/settings"
	"github.com/colrev/colrev/internal/store"
)

const (
	PlatformFiles = "files"

	filesPageSize = 50
)

// FilesAdapter imports manually exported search result files. Rows keep the
// file's own entry keys.
type FilesAdapter struct {
	source settings.SearchSource
}

// NewFilesAdapter creates a file-import adapter for the given source.
func NewFilesAdapter(src settings.SearchSource) *FilesAdapter {
	return &FilesAdapter{source: src}
}

func (a *FilesAdapter) Platform() string         { return PlatformFiles }
func (a *FilesAdapter) SourceIdentifier() string { return record.FieldID }

// Search yields the entries of the source's results file. The path
// parameter overrides the source's own results path when the raw export
// lives elsewhere.
func (a *FilesAdapter) Search(ctx context.Context, params map[string]string) (Pager, error) {
	path := params["path"]
	if path == "" {
		path = a.source.SearchResultsPath
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading search results file: %w", err)
	}
	records, order, err := store.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing search results file %s: %w", filepath.Base(path), err)
	}

	ordered := make([]*record.Record, 0, len(order))
	for _, id := range order {
		ordered = append(ordered, records[id])
	}
	return paged(ordered, filesPageSize), nil
}

// GetRecordsForIDs is not applicable to file imports.
func (a *FilesAdapter) GetRecordsForIDs(ctx context.Context, ids []string) ([]*record.Record, error) {
	return nil, ErrNotSupported
}

// QueryDOI is not applicable to file imports.
func (a *FilesAdapter) QueryDOI(ctx context.Context, doi string) (*record.Record, error) {
	return nil, ErrNotSupported
}

// Heuristic accepts any BibTeX-shaped file as a fallback classification.
func (a *FilesAdapter) Heuristic(filename string, data []byte) float64 {
	if !strings.HasSuffix(filename, ".bib") {
		return 0
	}
	if strings.Contains(string(data), "@") {
		return 0.4
	}
	return 0
}
