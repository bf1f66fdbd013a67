package ops

import (
	"context"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
)

// Prescreen applies inclusion decisions on processed records: included
// records advance to rev_prescreen_included, the rest are excluded with the
// given reason.
func Prescreen(ctx context.Context, mgr *review.Manager, include map[string]bool, exclusionReason string) error {
	records, err := begin(mgr, record.OpPrescreen)
	if err != nil {
		return err
	}
	if exclusionReason == "" {
		exclusionReason = "not_relevant"
	}

	included, excluded := 0, 0
	for _, id := range sortedIDs(records) {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := records[id]
		if r.Status != record.StateMdProcessed {
			continue
		}
		decided, ok := include[id]
		if !ok {
			continue
		}
		if decided {
			if err := r.SetStatus(record.OpPrescreen, record.StateRevPrescreenIncluded); err != nil {
				return err
			}
			included++
		} else {
			r.PrescreenExclude(exclusionReason)
			excluded++
		}
	}

	mgr.Logger.Info("prescreen done", "included", included, "excluded", excluded)
	return finish(mgr, records, "Prescreen records", record.OpPrescreen)
}
