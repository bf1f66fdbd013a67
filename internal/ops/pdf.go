package ops

import (
	"context"
	"os"
	"path/filepath"

	"github.com/colrev/colrev/internal/quality"
	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
)

// PdfGet links PDFs from the project's PDF directory to prescreened
// records. Records whose PDF is missing move towards manual retrieval.
func PdfGet(ctx context.Context, mgr *review.Manager) error {
	records, err := begin(mgr, record.OpPdfGet)
	if err != nil {
		return err
	}

	linked, missing := 0, 0
	for _, id := range sortedIDs(records) {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := records[id]
		switch r.Status {
		case record.StateRevPrescreenIncluded, record.StatePdfNeedsRetrieval:
		default:
			continue
		}

		path := filepath.Join(mgr.PDFDir(), id+".pdf")
		if _, statErr := os.Stat(path); statErr == nil {
			r.UpdateField(record.FieldFile, path, "colrev.pdf_get")
			if err := r.SetStatus(record.OpPdfGet, record.StatePdfImported); err != nil {
				return err
			}
			linked++
			continue
		}

		dest := record.StatePdfNeedsRetrieval
		if r.Status == record.StatePdfNeedsRetrieval {
			dest = record.StatePdfNeedsManualRetrieval
		}
		if err := r.SetStatus(record.OpPdfGet, dest); err != nil {
			return err
		}
		missing++
	}

	mgr.Logger.Info("pdf-get done", "linked", linked, "missing", missing)
	return finish(mgr, records, "Retrieve PDFs", record.OpPdfGet)
}

// PdfGetMan records the outcome of manual PDF retrieval: a path links the
// PDF, an empty path marks the record pdf_not_available.
func PdfGetMan(ctx context.Context, mgr *review.Manager, id, path string) error {
	records, err := begin(mgr, record.OpPdfGetMan)
	if err != nil {
		return err
	}
	r, ok := records[id]
	if !ok {
		return &RecordNotFoundError{ID: id}
	}

	if path == "" {
		if err := r.SetStatus(record.OpPdfGetMan, record.StatePdfNotAvailable); err != nil {
			return err
		}
	} else {
		r.UpdateField(record.FieldFile, path, "colrev.pdf_get_man")
		if err := r.SetStatus(record.OpPdfGetMan, record.StatePdfImported); err != nil {
			return err
		}
	}
	return finish(mgr, records, "Retrieve PDFs (manual)", record.OpPdfGetMan)
}

// PdfPrep runs the pdf-mode quality model over imported PDFs: clean records
// advance to pdf_prepared, defective ones route to manual preparation.
func PdfPrep(ctx context.Context, mgr *review.Manager, model *quality.Model) error {
	records, err := begin(mgr, record.OpPdfPrep)
	if err != nil {
		return err
	}
	if model == nil {
		model = quality.NewModel(quality.Options{
			PDFMode:   true,
			Extractor: quality.DefaultPDFExtractor{},
		})
	}

	prepared, manual := 0, 0
	for _, id := range sortedIDs(records) {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := records[id]
		if r.Status != record.StatePdfImported {
			continue
		}
		if err := model.RunAndTransition(r, true); err != nil {
			return err
		}
		if r.Status == record.StatePdfPrepared {
			prepared++
		} else {
			manual++
		}
	}

	mgr.Logger.Info("pdf-prep done", "prepared", prepared, "needs_manual_preparation", manual)
	return finish(mgr, records, "Prepare PDFs", record.OpPdfPrep)
}

// PdfPrepMan resolves manual PDF preparation: records without remaining
// defects advance to pdf_prepared.
func PdfPrepMan(ctx context.Context, mgr *review.Manager, model *quality.Model) error {
	records, err := begin(mgr, record.OpPdfPrepMan)
	if err != nil {
		return err
	}
	if model == nil {
		model = quality.NewModel(quality.Options{
			PDFMode:   true,
			Extractor: quality.DefaultPDFExtractor{},
		})
	}

	resolved := 0
	for _, id := range sortedIDs(records) {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := records[id]
		if r.Status != record.StatePdfNeedsManualPrep {
			continue
		}
		model.Run(r)
		if r.HasQualityDefects() {
			continue
		}
		if err := r.SetStatus(record.OpPdfPrepMan, record.StatePdfPrepared); err != nil {
			return err
		}
		resolved++
	}

	mgr.Logger.Info("pdf-prep-man done", "resolved", resolved)
	return finish(mgr, records, "Prepare PDFs (manual)", record.OpPdfPrepMan)
}
