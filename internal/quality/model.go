// Package quality detects and annotates metadata defects. Checkers never
// raise errors for defects; they add or remove their code on the affected
// field's provenance note set, and the caller decides routing based on
// Record.HasQualityDefects.
package quality

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/colrev/colrev/internal/record"
)

// ErrNotInTOC is returned by TOC lookups that find no matching container.
var ErrNotInTOC = errors.New("container not found in table-of-contents index")

// ErrRecordNotInIndex is returned when a record cannot be located in the
// local index.
var ErrRecordNotInIndex = errors.New("record not in local index")

// InvalidLanguageCodeError reports a language value outside ISO 639-3.
type InvalidLanguageCodeError struct {
	Code string
}

func (e *InvalidLanguageCodeError) Error() string {
	return fmt.Sprintf("invalid language code %q", e.Code)
}

// Checker annotates one defect code on records.
type Checker interface {
	// Code is the defect code this checker owns.
	Code() string
	// Run adds or removes the code on the relevant field. It must
	// short-circuit when the field is absent or the defect is ignored.
	Run(r *record.Record)
}

// MetadataOracle resolves a DOI to provider metadata. Implemented by the
// Crossref source adapter; nil disables the DOI consistency check.
type MetadataOracle interface {
	QueryDOI(ctx context.Context, doi string) (*record.Record, error)
}

// TOCIndex resolves whether a container title is known locally.
// Implementations are guarded by the model's mutex.
type TOCIndex interface {
	// ContainsContainer reports whether the container resolves in the
	// index at the given similarity threshold.
	ContainsContainer(container string, threshold float64) (bool, error)
}

// PDFExtractor supplies text and page counts for pdf-mode checks.
type PDFExtractor interface {
	Text(path string) (string, error)
	NrPages(path string) (int, error)
}

// Options configure a quality model.
type Options struct {
	DefectsToIgnore []string
	PDFMode         bool
	Oracle          MetadataOracle
	TOC             TOCIndex
	Extractor       PDFExtractor
	// TOCSimilarityThreshold defaults to 0.9.
	TOCSimilarityThreshold float64
}

// Model runs a registry of checkers over records.
type Model struct {
	checkers  []registeredChecker
	pdfMode   bool
	extractor PDFExtractor

	// tocMu serializes local-index access.
	tocMu sync.Mutex
}

type registeredChecker struct {
	checker    Checker
	masterdata bool
}

// NewModel loads all checkers whose code is not in DefectsToIgnore.
func NewModel(opts Options) *Model {
	threshold := opts.TOCSimilarityThreshold
	if threshold == 0 {
		threshold = 0.9
	}

	m := &Model{pdfMode: opts.PDFMode}
	ignore := map[string]bool{}
	for _, d := range opts.DefectsToIgnore {
		ignore[d] = true
	}

	var regs []registeredChecker
	if opts.PDFMode {
		regs = []registeredChecker{
			{&noTextInPDFChecker{}, false},
			{&authorNotInPDFChecker{}, false},
			{&titleNotInPDFChecker{}, false},
			{&pdfIncompleteChecker{}, false},
		}
	} else {
		regs = []registeredChecker{
			{&missingFieldChecker{}, true},
			{&incompleteFieldChecker{}, true},
			{&mostlyAllCapsChecker{}, true},
			{&containerAbbreviatedChecker{}, true},
			{&erroneousSymbolChecker{}, true},
			{&erroneousTermChecker{}, true},
			{&erroneousTitleChecker{}, true},
			{&htmlTagsChecker{}, true},
			{&identicalTitleContainerChecker{}, true},
			{&inconsistentContentChecker{}, true},
			{&inconsistentWithEntryTypeChecker{}, true},
			{&doiPatternChecker{}, true},
			{&isbnPatternChecker{}, true},
			{&pubmedIDPatternChecker{}, true},
			{&languageUnknownChecker{}, true},
			{&languageFormatChecker{}, true},
			{&nameAbbreviatedChecker{}, true},
			{&nameFormatSeparatorsChecker{}, true},
			{&nameFormatTitlesChecker{}, true},
			{&nameParticlesChecker{}, true},
			{&pageRangeChecker{}, true},
			{&thesisMultipleAuthorsChecker{}, true},
			{&yearFormatChecker{}, true},
		}
		if opts.Oracle != nil {
			regs = append(regs, registeredChecker{&doiMetadataChecker{oracle: opts.Oracle}, true})
		}
		if opts.TOC != nil {
			regs = append(regs, registeredChecker{&tocChecker{index: opts.TOC, threshold: threshold, mu: &m.tocMu}, true})
		}
	}

	for _, reg := range regs {
		if !ignore[reg.checker.Code()] {
			m.checkers = append(m.checkers, reg)
		}
	}
	m.extractor = opts.Extractor
	return m
}

// Run executes every registered checker against r. Masterdata checkers are
// skipped for curated records. In pdf mode, transient extraction fields are
// populated before and stripped after the run.
func (m *Model) Run(r *record.Record) {
	if m.pdfMode {
		if !r.HasField(record.FieldFile) || !strings.HasSuffix(r.Field(record.FieldFile), ".pdf") {
			return
		}
		m.populatePDFFields(r)
		defer func() {
			r.RemoveField(record.FieldTextFromPDF)
			r.RemoveField(record.FieldNrPagesInFile)
		}()
	}

	curated := r.MasterdataIsCurated()
	for _, reg := range m.checkers {
		if reg.masterdata && curated {
			continue
		}
		reg.checker.Run(r)
	}
}

func (m *Model) populatePDFFields(r *record.Record) {
	if m.extractor == nil {
		return
	}
	path := r.Field(record.FieldFile)
	if !r.HasField(record.FieldTextFromPDF) {
		if text, err := m.extractor.Text(path); err == nil {
			r.Data[record.FieldTextFromPDF] = text
		}
	}
	if !r.HasField(record.FieldNrPagesInFile) {
		if n, err := m.extractor.NrPages(path); err == nil {
			r.Data[record.FieldNrPagesInFile] = strconv.Itoa(n)
		}
	}
}

// RunAndTransition runs the model and, when setPrepared, moves the record
// to the prepared state or routes it to manual preparation when defects
// remain.
func (m *Model) RunAndTransition(r *record.Record, setPrepared bool) error {
	m.Run(r)
	if !setPrepared {
		return nil
	}

	trigger := record.OpPrep
	dest := record.StateMdPrepared
	manual := record.StateMdNeedsManualPreparation
	if m.pdfMode {
		trigger = record.OpPdfPrep
		dest = record.StatePdfPrepared
		manual = record.StatePdfNeedsManualPrep
	}

	if r.HasQualityDefects() {
		return r.SetStatus(trigger, manual)
	}
	return r.SetStatus(trigger, dest)
}

// setDefect is the single mutation point of all checkers: it adds or
// removes code on key, honoring the IGNORE: suppression.
func setDefect(r *record.Record, key, code string, active bool) {
	if r.IgnoredDefect(key, code) {
		return
	}
	if active {
		r.AddProvenanceNote(key, code)
	} else {
		r.RemoveProvenanceNote(key, code)
	}
}
