package ops

import (
	"context"
	"sort"
	"strings"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
)

// Screen applies full-text screening decisions. Records with no violated
// criteria advance to rev_included, the rest to rev_excluded with the
// violated criteria recorded on the record.
func Screen(ctx context.Context, mgr *review.Manager, violated map[string][]string) error {
	records, err := begin(mgr, record.OpScreen)
	if err != nil {
		return err
	}

	included, excluded := 0, 0
	for _, id := range sortedIDs(records) {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := records[id]
		switch r.Status {
		case record.StatePdfPrepared, record.StatePdfNotAvailable:
		default:
			continue
		}
		criteria, ok := violated[id]
		if !ok {
			continue
		}
		if len(criteria) == 0 {
			if err := r.SetStatus(record.OpScreen, record.StateRevIncluded); err != nil {
				return err
			}
			included++
			continue
		}
		sort.Strings(criteria)
		r.UpdateField(record.FieldScreeningCriteria, strings.Join(criteria, ";"), "colrev.screen")
		if err := r.SetStatus(record.OpScreen, record.StateRevExcluded); err != nil {
			return err
		}
		excluded++
	}

	mgr.Logger.Info("screen done", "included", included, "excluded", excluded)
	return finish(mgr, records, "Screen records", record.OpScreen)
}
