package ops

import (
	"context"
	"errors"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
)

// DuplicateThreshold is the record similarity above which two prepared
// records are merged.
const DuplicateThreshold = 0.8

// Dedupe merges duplicate prepared records and advances the survivors to
// md_processed, after which their IDs are persisted.
func Dedupe(ctx context.Context, mgr *review.Manager) error {
	records, err := begin(mgr, record.OpDedupe)
	if err != nil {
		return err
	}
	if err := mgr.Store.CheckPropagatedIDs(records); err != nil {
		return err
	}

	merged := 0
	ids := sortedIDs(records)
	for i := 0; i < len(ids); i++ {
		a, ok := records[ids[i]]
		if !ok || a.Status != record.StateMdPrepared {
			continue
		}
		for j := i + 1; j < len(ids); j++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, ok := records[ids[j]]
			if !ok || b.Status != record.StateMdPrepared {
				continue
			}
			if record.RecordSimilarity(a, b) < DuplicateThreshold {
				continue
			}
			if err := mergePair(records, a, b); err != nil {
				var invalid *record.InvalidMergeError
				if errors.As(err, &invalid) {
					mgr.Logger.Warn("similar records not merged",
						"a", a.ID, "b", b.ID, "error", err)
					continue
				}
				return err
			}
			merged++
		}
	}

	processed := 0
	for _, id := range sortedIDs(records) {
		r := records[id]
		if r.Status != record.StateMdPrepared {
			continue
		}
		if err := r.SetStatus(record.OpDedupe, record.StateMdProcessed); err != nil {
			return err
		}
		processed++
	}

	mgr.Logger.Info("dedupe done", "merged", merged, "processed", processed)
	return finish(mgr, records, "Deduplicate records", record.OpDedupe)
}

// mergePair merges b into a and removes b. When only b carries a persisted
// ID, the direction is reversed so the persisted ID survives.
func mergePair(records map[string]*record.Record, a, b *record.Record) error {
	receiver, other := a, b
	if persistedID(b) && !persistedID(a) {
		receiver, other = b, a
	}
	if err := receiver.Merge(other, "colrev.dedupe"); err != nil {
		return err
	}
	delete(records, other.ID)
	return nil
}

func persistedID(r *record.Record) bool {
	return r.Status.Valid() && !r.Status.Before(record.StateMdProcessed)
}
