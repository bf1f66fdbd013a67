package ops

import (
	"context"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
)

// Data marks included records as synthesized. IDs listed in reopen are
// moved back to rev_included for further synthesis work.
func Data(ctx context.Context, mgr *review.Manager, synthesized, reopen []string) error {
	records, err := begin(mgr, record.OpData)
	if err != nil {
		return err
	}

	for _, id := range synthesized {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, ok := records[id]
		if !ok {
			return &RecordNotFoundError{ID: id}
		}
		if r.Status == record.StateRevSynthesized {
			continue
		}
		if err := r.SetStatus(record.OpData, record.StateRevSynthesized); err != nil {
			return err
		}
	}

	for _, id := range reopen {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, ok := records[id]
		if !ok {
			return &RecordNotFoundError{ID: id}
		}
		if r.Status == record.StateRevIncluded {
			continue
		}
		if err := r.SetStatus(record.OpData, record.StateRevIncluded); err != nil {
			return err
		}
	}

	mgr.Logger.Info("data done", "synthesized", len(synthesized), "reopened", len(reopen))
	return finish(mgr, records, "Synthesize records", record.OpData)
}
