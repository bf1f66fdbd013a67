package quality

// Defect codes attached to field provenance notes. The codes are stable
// identifiers; renaming one invalidates notes in existing repositories.
const (
	DefectMissing                  = "missing"
	DefectIncompleteField          = "incomplete-field"
	DefectMostlyAllCaps            = "mostly-all-caps"
	DefectContainerAbbreviated     = "container-title-abbreviated"
	DefectErroneousSymbolInField   = "erroneous-symbol-in-field"
	DefectErroneousTermInField     = "erroneous-term-in-field"
	DefectErroneousTitleField      = "erroneous-title-field"
	DefectHTMLTags                 = "html-tags"
	DefectIdenticalTitleContainer  = "identical-values-between-title-and-container"
	DefectInconsistentContent      = "inconsistent-content"
	DefectInconsistentWithEntry    = "inconsistent-with-entrytype"
	DefectInconsistentWithDOI      = "inconsistent-with-doi-metadata"
	DefectDOIPattern               = "doi-not-matching-pattern"
	DefectISBNPattern              = "isbn-not-matching-pattern"
	DefectPubmedIDPattern          = "pubmed-id-not-matching-pattern"
	DefectLanguageUnknown          = "language-unknown"
	DefectLanguageFormat           = "language-format-error"
	DefectNameAbbreviated          = "name-abbreviated"
	DefectNameFormatSeparators     = "name-format-separators"
	DefectNameFormatTitles         = "name-format-titles"
	DefectNameParticles            = "name-particles"
	DefectPageRange                = "page-range"
	DefectRecordNotInTOC           = "record-not-in-toc"
	DefectThesisMultipleAuthors    = "thesis-with-multiple-authors"
	DefectYearFormat               = "year-format"

	DefectNoTextInPDF   = "no-text-in-pdf"
	DefectAuthorNotInPDF = "author-not-in-pdf"
	DefectTitleNotInPDF  = "title-not-in-pdf"
	DefectPDFIncomplete  = "pdf-incomplete"
)
