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
	PlatformPriorProject = "prior_project"

	priorPageSize = 50
)

// PriorProjectAdapter imports processed records from another project's
// canonical store.
type PriorProjectAdapter struct {
	source settings.SearchSource
}

// NewPriorProjectAdapter creates a prior-project adapter for the given
// source.
func NewPriorProjectAdapter(src settings.SearchSource) *PriorProjectAdapter {
	return &PriorProjectAdapter{source: src}
}

func (a *PriorProjectAdapter) Platform() string         { return PlatformPriorProject }
func (a *PriorProjectAdapter) SourceIdentifier() string { return record.FieldID }

// Search yields the prior project's records that reached processing.
func (a *PriorProjectAdapter) Search(ctx context.Context, params map[string]string) (Pager, error) {
	root := params["path"]
	if root == "" {
		return nil, fmt.Errorf("prior_project source needs a path parameter: %w", ErrNotSupported)
	}
	path := filepath.Join(root, settings.RecordsFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prior project records: %w", err)
	}
	records, order, err := store.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing prior project records: %w", err)
	}

	var processed []*record.Record
	for _, id := range order {
		r := records[id]
		if r.Status.Valid() && !r.Status.Before(record.StateMdProcessed) {
			processed = append(processed, r)
		}
	}
	return paged(processed, priorPageSize), nil
}

// GetRecordsForIDs is not applicable to prior projects.
func (a *PriorProjectAdapter) GetRecordsForIDs(ctx context.Context, ids []string) ([]*record.Record, error) {
	return nil, ErrNotSupported
}

// QueryDOI is not applicable to prior projects.
func (a *PriorProjectAdapter) QueryDOI(ctx context.Context, doi string) (*record.Record, error) {
	return nil, ErrNotSupported
}

// Heuristic recognizes canonical record files by their workflow fields.
func (a *PriorProjectAdapter) Heuristic(filename string, data []byte) float64 {
	content := string(data)
	if strings.Contains(content, record.FieldOrigin) && strings.Contains(content, record.FieldStatus) {
		return 0.9
	}
	return 0
}
