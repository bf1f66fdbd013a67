package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/colrev/colrev/internal/feed"
	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
	"github.com/colrev/colrev/internal/search"
	"github.com/colrev/colrev/internal/settings"
	"github.com/colrev/colrev/internal/store"
)

// Load imports feed rows without a canonical record: each becomes a new
// record in the md_imported state, linked by origin and with a unique
// citation-key ID.
func Load(ctx context.Context, mgr *review.Manager) error {
	records, err := begin(mgr, record.OpLoad)
	if err != nil {
		return err
	}
	if err := mgr.Store.CheckPropagatedIDs(records); err != nil {
		return err
	}

	linked := map[string]bool{}
	existing := map[string]bool{}
	for id, r := range records {
		existing[id] = true
		for _, o := range r.Origins {
			linked[o] = true
		}
	}

	registry := search.NewRegistry()
	if err := registerUnknownSearchFiles(mgr, registry); err != nil {
		return err
	}
	imported := 0
	for i := range mgr.Settings.Sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := mgr.Settings.Sources[i]
		identifier := record.FieldID
		if adapter, err := registry.Get(src); err == nil {
			identifier = adapter.SourceIdentifier()
		}
		f, err := feed.Open(mgr.FeedPath(&src), src, identifier, feed.WithPrepMode())
		if err != nil {
			return err
		}

		for rowID, row := range f.Records() {
			origin := f.Origin(rowID)
			if linked[origin] {
				continue
			}
			r, err := importRow(row, origin, existing)
			if err != nil {
				return err
			}
			records[r.ID] = r
			existing[r.ID] = true
			linked[origin] = true
			imported++
		}
	}

	mgr.Logger.Info("load done", "imported", imported)
	return finish(mgr, records, "Load records", record.OpLoad)
}

// registerUnknownSearchFiles registers .bib files that landed in the search
// directory without a source descriptor, classified by adapter heuristics.
func registerUnknownSearchFiles(mgr *review.Manager, registry *search.Registry) error {
	entries, err := os.ReadDir(mgr.SearchDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	added := false
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".bib") {
			continue
		}
		if mgr.Settings.Source(name) != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(mgr.SearchDir(), name))
		if err != nil {
			return err
		}
		candidates := registry.Classify(name, data)
		if len(candidates) == 0 {
			continue
		}
		best := candidates[0]
		src := settings.SearchSource{
			Platform:          best.Platform,
			SearchType:        settings.SearchTypeDB,
			SearchResultsPath: settings.SearchDir + "/" + name,
		}
		if mgr.Settings.AddSource(src) {
			mgr.Logger.Info("registered search file",
				"filename", name, "platform", best.Platform, "confidence", best.Confidence)
			added = true
		}
	}
	if !added {
		return nil
	}
	return mgr.SaveSettings()
}

// importRow turns one feed row into a canonical record with provenance.
func importRow(row *record.Record, origin string, existing map[string]bool) (*record.Record, error) {
	id := store.GenerateNextUniqueID(proposeID(row), existing)
	r := record.New(id, row.EntryType)
	for _, key := range row.FieldKeys() {
		r.UpdateField(key, row.Field(key), origin, record.WithoutAppendEdit())
	}
	r.AddOrigin(origin)
	if err := r.SetStatus(record.OpLoad, record.StateMdImported); err != nil {
		return nil, err
	}
	return r, nil
}
