package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
	"github.com/colrev/colrev/internal/store"
)

// Remove deletes a record from the project together with its backing feed
// rows, so a later search run does not reimport it.
func Remove(ctx context.Context, mgr *review.Manager, id string) error {
	records, err := mgr.Store.Load()
	if err != nil {
		return err
	}
	r, ok := records[id]
	if !ok {
		return &RecordNotFoundError{ID: id}
	}

	for _, origin := range r.Origins {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := removeFeedRow(mgr, origin); err != nil {
			return err
		}
	}
	delete(records, id)

	mgr.Logger.Info("record removed", "ID", id, "origins", len(r.Origins))
	return finish(mgr, records, "Remove record "+id, record.OpRemove)
}

// removeFeedRow deletes the feed row an origin string points at. A missing
// feed file or row is not an error, the row may have been cleaned up before.
func removeFeedRow(mgr *review.Manager, origin string) error {
	i := strings.Index(origin, "/")
	if i < 0 {
		return nil
	}
	filename, rowID := origin[:i], origin[i+1:]

	path := filepath.Join(mgr.SearchDir(), filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	rows, _, err := store.Parse(string(data))
	if err != nil {
		return err
	}
	if _, ok := rows[rowID]; !ok {
		return nil
	}
	delete(rows, rowID)

	content := store.Serialize(rows, store.SerializeOptions{OmitOrigin: true})
	return store.WriteFileAtomic(path, []byte(content))
}
