package record

// Entry types recognized by the canonical store.
const (
	EntryTypeArticle       = "article"
	EntryTypeInProceedings = "inproceedings"
	EntryTypeBook          = "book"
	EntryTypeInBook        = "inbook"
	EntryTypeInCollection  = "incollection"
	EntryTypePhdThesis     = "phdthesis"
	EntryTypeMastersThesis = "mastersthesis"
	EntryTypeThesis        = "thesis"
	EntryTypeTechReport    = "techreport"
	EntryTypeUnpublished   = "unpublished"
	EntryTypeOnline        = "online"
	EntryTypeMisc          = "misc"
)

// Field names used across the store, feeds, and the quality model.
const (
	FieldID          = "ID"
	FieldEntryType   = "ENTRYTYPE"
	FieldAuthor      = "author"
	FieldTitle       = "title"
	FieldYear        = "year"
	FieldJournal     = "journal"
	FieldBooktitle   = "booktitle"
	FieldChapter     = "chapter"
	FieldPublisher   = "publisher"
	FieldVolume      = "volume"
	FieldNumber      = "number"
	FieldPages       = "pages"
	FieldEditor      = "editor"
	FieldInstitution = "institution"
	FieldSchool      = "school"
	FieldSeries      = "series"
	FieldDOI         = "doi"
	FieldISBN        = "isbn"
	FieldISSN        = "issn"
	FieldURL         = "url"
	FieldAbstract    = "abstract"
	FieldLanguage    = "language"
	FieldFile        = "file"
	FieldPubmedID    = "pubmed_id"
	FieldDblpKey     = "dblp_key"
	FieldRetracted   = "retracted"

	FieldOrigin             = "colrev_origin"
	FieldStatus             = "colrev_status"
	FieldMdProvenance       = "colrev_masterdata_provenance"
	FieldDataProvenance     = "colrev_data_provenance"
	FieldPdfID              = "colrev_pdf_id"
	FieldScreeningCriteria  = "screening_criteria"
	FieldPrescreenExclusion = "prescreen_exclusion"

	// Transient fields populated during pdf-mode quality runs.
	FieldTextFromPDF   = "text_from_pdf"
	FieldNrPagesInFile = "nr_pages_in_file"
)

// UnknownValue marks a field whose value could not be determined.
const UnknownValue = "UNKNOWN"

// ReasonRetracted is the prescreen-exclusion reason of retracted works.
const ReasonRetracted = "retracted"

// Forthcoming is the year value of not-yet-published works.
const Forthcoming = "forthcoming"

// CuratedSourcePrefix marks masterdata maintained by a curated upstream.
const CuratedSourcePrefix = "CURATED"

// CuratedFileName is the feed file name of a curated metadata source.
const CuratedFileName = "md_curated.bib"

// identifyingFields carry masterdata provenance; all other fields carry
// data provenance.
var identifyingFields = map[string]bool{
	FieldAuthor:    true,
	FieldTitle:     true,
	FieldYear:      true,
	FieldJournal:   true,
	FieldBooktitle: true,
	FieldChapter:   true,
	FieldPublisher: true,
	FieldVolume:    true,
	FieldNumber:    true,
	FieldPages:     true,
	FieldEditor:    true,
	FieldInstitution: true,
	FieldSchool:    true,
	FieldSeries:    true,
}

// IsIdentifyingField reports whether key belongs to the masterdata
// provenance map.
func IsIdentifyingField(key string) bool {
	return identifyingFields[key]
}

// provenanceExempt fields never carry a provenance entry of their own.
var provenanceExempt = map[string]bool{
	FieldID:                 true,
	FieldEntryType:          true,
	FieldOrigin:             true,
	FieldStatus:             true,
	FieldMdProvenance:       true,
	FieldDataProvenance:     true,
	FieldTextFromPDF:        true,
	FieldNrPagesInFile:      true,
}

// RequiredFields returns the masterdata fields an entry type must carry.
// For book entries either author or editor satisfies the author slot; the
// caller handles that alternative.
func RequiredFields(entryType string) []string {
	switch entryType {
	case EntryTypeArticle:
		return []string{FieldAuthor, FieldTitle, FieldJournal, FieldYear, FieldVolume, FieldNumber, FieldPages}
	case EntryTypeInProceedings:
		return []string{FieldAuthor, FieldTitle, FieldBooktitle, FieldYear}
	case EntryTypeBook:
		return []string{FieldAuthor, FieldTitle, FieldPublisher, FieldYear}
	case EntryTypeInBook:
		return []string{FieldAuthor, FieldTitle, FieldChapter, FieldPublisher, FieldYear}
	case EntryTypeInCollection:
		return []string{FieldAuthor, FieldTitle, FieldBooktitle, FieldPublisher, FieldYear}
	case EntryTypePhdThesis, EntryTypeMastersThesis, EntryTypeThesis:
		return []string{FieldAuthor, FieldTitle, FieldSchool, FieldYear}
	case EntryTypeTechReport:
		return []string{FieldAuthor, FieldTitle, FieldInstitution, FieldYear}
	case EntryTypeUnpublished, EntryTypeMisc, EntryTypeOnline:
		return []string{FieldAuthor, FieldTitle, FieldYear}
	default:
		return []string{FieldAuthor, FieldTitle, FieldYear}
	}
}

// ForbiddenFields returns fields inconsistent with the entry type.
func ForbiddenFields(entryType string) []string {
	switch entryType {
	case EntryTypeArticle:
		return []string{FieldBooktitle, FieldISBN}
	case EntryTypeInProceedings:
		return []string{FieldJournal, "issue", FieldNumber}
	case EntryTypeOnline, EntryTypeMisc:
		return []string{FieldJournal, FieldBooktitle, FieldISBN}
	case EntryTypeBook:
		return []string{FieldJournal, FieldBooktitle}
	default:
		return nil
	}
}
