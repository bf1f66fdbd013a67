package ops

import (
	"context"

	"github.com/colrev/colrev/internal/quality"
	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
)

// Prep runs the quality model over all imported records: clean records
// advance to md_prepared, defective ones route to manual preparation.
func Prep(ctx context.Context, mgr *review.Manager, model *quality.Model) error {
	records, err := begin(mgr, record.OpPrep)
	if err != nil {
		return err
	}
	if err := mgr.Store.CheckPropagatedIDs(records); err != nil {
		return err
	}
	if model == nil {
		model = quality.NewModel(quality.Options{})
	}

	prepared, manual := 0, 0
	for _, id := range sortedIDs(records) {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := records[id]
		if r.Status != record.StateMdImported {
			continue
		}
		if err := model.RunAndTransition(r, true); err != nil {
			return err
		}
		if r.Status == record.StateMdPrepared {
			prepared++
		} else {
			manual++
		}
	}

	mgr.Logger.Info("prep done", "prepared", prepared, "needs_manual_preparation", manual)
	return finish(mgr, records, "Prepare records", record.OpPrep)
}

// PrepMan re-evaluates manually prepared records: records whose defects
// were resolved advance to md_prepared.
func PrepMan(ctx context.Context, mgr *review.Manager, model *quality.Model) error {
	records, err := begin(mgr, record.OpPrepMan)
	if err != nil {
		return err
	}
	if model == nil {
		model = quality.NewModel(quality.Options{})
	}

	resolved := 0
	for _, id := range sortedIDs(records) {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := records[id]
		if r.Status != record.StateMdNeedsManualPreparation {
			continue
		}
		model.Run(r)
		if r.HasQualityDefects() {
			continue
		}
		if err := r.SetStatus(record.OpPrepMan, record.StateMdPrepared); err != nil {
			return err
		}
		resolved++
	}

	mgr.Logger.Info("prep-man done", "resolved", resolved)
	return finish(mgr, records, "Prepare records (manual)", record.OpPrepMan)
}
