package quality

import (
	"testing"

	"github.com/colrev/colrev/internal/record"
)

// runChecker builds a minimal record and runs a single checker over it.
func checkerRecord(entryType string, fields map[string]string) *record.Record {
	r := record.New("T2020", entryType)
	r.Status = record.StateMdImported
	for k, v := range fields {
		r.UpdateField(k, v, "test")
	}
	return r
}

func TestMissingFieldChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{
		record.FieldAuthor: "Smith, Jane",
		record.FieldTitle:  "A Study",
		record.FieldYear:   "2020",
	})
	(&missingFieldChecker{}).Run(r)

	for _, f := range []string{record.FieldJournal, record.FieldVolume, record.FieldNumber, record.FieldPages} {
		if !r.DefectActive(f, DefectMissing) {
			t.Errorf("expected missing on %s", f)
		}
	}
	if r.DefectActive(record.FieldAuthor, DefectMissing) {
		t.Error("present field must not be missing")
	}
}

func TestMissingFieldChecker_BookEditorSatisfiesAuthor(t *testing.T) {
	r := checkerRecord(record.EntryTypeBook, map[string]string{
		record.FieldEditor:    "Smith, Jane",
		record.FieldTitle:     "Handbook",
		record.FieldPublisher: "Springer",
		record.FieldYear:      "2020",
	})
	(&missingFieldChecker{}).Run(r)
	if r.DefectActive(record.FieldAuthor, DefectMissing) {
		t.Error("editor must satisfy the author slot for books")
	}
}

func TestIncompleteFieldChecker(t *testing.T) {
	cases := []struct {
		field, value string
		want         bool
	}{
		{record.FieldTitle, "Digital Transformation...", true},
		{record.FieldTitle, "Truncated…", true},
		{record.FieldTitle, "A Complete Title", false},
		{record.FieldAuthor, "Smith,", true},
		{record.FieldAuthor, "Smith, Jane and", true},
		{record.FieldAuthor, "Jane Smith", true}, // no comma
		{record.FieldAuthor, "Smith, Jane", false},
		{record.FieldAuthor, "{MIS Quarterly Editorial Board}", false},
	}
	for _, c := range cases {
		r := checkerRecord(record.EntryTypeArticle, map[string]string{c.field: c.value})
		(&incompleteFieldChecker{}).Run(r)
		if got := r.DefectActive(c.field, DefectIncompleteField); got != c.want {
			t.Errorf("%s=%q: incomplete=%v, want %v", c.field, c.value, got, c.want)
		}
	}
}

func TestMostlyAllCapsChecker_Exemptions(t *testing.T) {
	// PLOS ONE is legitimately all caps.
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldJournal: "PLOS ONE"})
	(&mostlyAllCapsChecker{}).Run(r)
	if r.DefectActive(record.FieldJournal, DefectMostlyAllCaps) {
		t.Error("PLOS ONE must be exempt")
	}

	// Short online titles are exempt.
	r2 := checkerRecord(record.EntryTypeOnline, map[string]string{record.FieldTitle: "FAQ PAGE"})
	(&mostlyAllCapsChecker{}).Run(r2)
	if r2.DefectActive(record.FieldTitle, DefectMostlyAllCaps) {
		t.Error("short online title must be exempt")
	}

	// Short containers are exempt (they get container-title-abbreviated).
	r3 := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldJournal: "MISQ"})
	(&mostlyAllCapsChecker{}).Run(r3)
	if r3.DefectActive(record.FieldJournal, DefectMostlyAllCaps) {
		t.Error("short container must be exempt from all-caps")
	}
}

func TestContainerAbbreviatedChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldJournal: "MISQ"})
	(&containerAbbreviatedChecker{}).Run(r)
	if !r.DefectActive(record.FieldJournal, DefectContainerAbbreviated) {
		t.Error("short all-caps journal must be flagged")
	}

	r2 := checkerRecord(record.EntryTypeInProceedings, map[string]string{record.FieldBooktitle: "Proc. of the 42nd ICIS"})
	(&containerAbbreviatedChecker{}).Run(r2)
	if !r2.DefectActive(record.FieldBooktitle, DefectContainerAbbreviated) {
		t.Error("Proc. in booktitle must be flagged")
	}

	r3 := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldJournal: "MIS Quarterly"})
	(&containerAbbreviatedChecker{}).Run(r3)
	if r3.DefectActive(record.FieldJournal, DefectContainerAbbreviated) {
		t.Error("full journal name must not be flagged")
	}
}

func TestErroneousSymbolChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldTitle: "Br�ken Encoding"})
	(&erroneousSymbolChecker{}).Run(r)
	if !r.DefectActive(record.FieldTitle, DefectErroneousSymbolInField) {
		t.Error("replacement character must be flagged")
	}
}

func TestErroneousTermChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldAuthor: "Harvard Business School"})
	(&erroneousTermChecker{}).Run(r)
	if !r.DefectActive(record.FieldAuthor, DefectErroneousTermInField) {
		t.Error("institution leaked into author must be flagged")
	}

	r2 := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldTitle: "Adoption of AI: Completed Research Paper"})
	(&erroneousTermChecker{}).Run(r2)
	if !r2.DefectActive(record.FieldTitle, DefectErroneousTermInField) {
		t.Error("submission-category suffix must be flagged")
	}
}

func TestErroneousTitleChecker(t *testing.T) {
	cases := []struct {
		title string
		want  bool
	}{
		{"A I S ssociation for nformation ystems", true},
		{"12345 678 90 2020 11", true},            // digits outnumber letters
		{"file_2020.pdf", true},                   // no space, separators
		{"Digital Transformation in Practice", false},
	}
	for _, c := range cases {
		r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldTitle: c.title})
		(&erroneousTitleChecker{}).Run(r)
		if got := r.DefectActive(record.FieldTitle, DefectErroneousTitleField); got != c.want {
			t.Errorf("title %q: flagged=%v, want %v", c.title, got, c.want)
		}
	}
}

func TestHTMLTagsChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldTitle: "Work &#8211; Life Balance"})
	(&htmlTagsChecker{}).Run(r)
	if !r.DefectActive(record.FieldTitle, DefectHTMLTags) {
		t.Error("numeric character reference must be flagged")
	}
}

func TestIdenticalTitleContainerChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{
		record.FieldTitle:   "The Journal of Strategic Information Systems",
		record.FieldJournal: "Journal of Strategic Information Systems",
	})
	(&identicalTitleContainerChecker{}).Run(r)
	if !r.DefectActive(record.FieldTitle, DefectIdenticalTitleContainer) {
		t.Error("title equal to container must be flagged")
	}
}

func TestInconsistentContentChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldJournal: "Proceedings of the Hawaii Conference"})
	(&inconsistentContentChecker{}).Run(r)
	if !r.DefectActive(record.FieldJournal, DefectInconsistentContent) {
		t.Error("conference in journal must be flagged")
	}

	r2 := checkerRecord(record.EntryTypeInProceedings, map[string]string{record.FieldBooktitle: "Journal of Information Systems"})
	(&inconsistentContentChecker{}).Run(r2)
	if !r2.DefectActive(record.FieldBooktitle, DefectInconsistentContent) {
		t.Error("journal in booktitle must be flagged")
	}
}

func TestInconsistentWithEntryTypeChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldBooktitle: "Some Proceedings"})
	(&inconsistentWithEntryTypeChecker{}).Run(r)
	if !r.DefectActive(record.FieldBooktitle, DefectInconsistentWithEntry) {
		t.Error("booktitle on article must be flagged")
	}
}

func TestDOIPatternChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldDOI: "10.25300/MISQ/2020/14700"})
	(&doiPatternChecker{}).Run(r)
	if r.DefectActive(record.FieldDOI, DefectDOIPattern) {
		t.Error("valid doi flagged")
	}

	r2 := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldDOI: "https://doi.org/10.1/x"})
	(&doiPatternChecker{}).Run(r2)
	if !r2.DefectActive(record.FieldDOI, DefectDOIPattern) {
		t.Error("invalid doi not flagged")
	}
}

func TestISBNPatternChecker(t *testing.T) {
	cases := []struct {
		isbn string
		want bool
	}{
		{"978-3-16-148410-0", false},
		{"0-306-40615-2", false},
		{"030640615X", false},
		{"not-an-isbn", true},
		{"12345", true},
	}
	for _, c := range cases {
		r := checkerRecord(record.EntryTypeBook, map[string]string{record.FieldISBN: c.isbn})
		(&isbnPatternChecker{}).Run(r)
		if got := r.DefectActive(record.FieldISBN, DefectISBNPattern); got != c.want {
			t.Errorf("isbn %q: flagged=%v, want %v", c.isbn, got, c.want)
		}
	}
}

func TestPubmedIDPatternChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldPubmedID: "32598326"})
	(&pubmedIDPatternChecker{}).Run(r)
	if r.DefectActive(record.FieldPubmedID, DefectPubmedIDPattern) {
		t.Error("valid pmid flagged")
	}

	r2 := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldPubmedID: "PMC123456"})
	(&pubmedIDPatternChecker{}).Run(r2)
	if !r2.DefectActive(record.FieldPubmedID, DefectPubmedIDPattern) {
		t.Error("invalid pmid not flagged")
	}
}

func TestLanguageCheckers(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldTitle: "A Study"})
	(&languageUnknownChecker{}).Run(r)
	if !r.DefectActive(record.FieldLanguage, DefectLanguageUnknown) {
		t.Error("absent language with known title must be flagged")
	}

	r2 := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldLanguage: "english"})
	(&languageFormatChecker{}).Run(r2)
	if !r2.DefectActive(record.FieldLanguage, DefectLanguageFormat) {
		t.Error("non ISO-639-3 value must be flagged")
	}

	r3 := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldLanguage: "eng"})
	(&languageFormatChecker{}).Run(r3)
	if r3.DefectActive(record.FieldLanguage, DefectLanguageFormat) {
		t.Error("eng is a valid code")
	}
}

func TestNameAbbreviatedChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldAuthor: "Smith, Jane and others"})
	(&nameAbbreviatedChecker{}).Run(r)
	if !r.DefectActive(record.FieldAuthor, DefectNameAbbreviated) {
		t.Error("'and others' must be flagged")
	}
}

func TestNameFormatSeparatorsChecker(t *testing.T) {
	cases := []struct {
		author string
		want   bool
	}{
		{"Smith, Jane and Doe, John", false},
		{"Jane Smith and John Doe", true},
		{"smith, jane", true}, // no uppercase
		{"M{\"u}ller, J{\"o}rg", true},
		{"Müller, Jörg", false},
		{"{World Health Organization}", false},
	}
	for _, c := range cases {
		r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldAuthor: c.author})
		(&nameFormatSeparatorsChecker{}).Run(r)
		if got := r.DefectActive(record.FieldAuthor, DefectNameFormatSeparators); got != c.want {
			t.Errorf("author %q: flagged=%v, want %v", c.author, got, c.want)
		}
	}
}

func TestNameFormatTitlesChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldAuthor: "Smith, Prof Jane"})
	(&nameFormatTitlesChecker{}).Run(r)
	if !r.DefectActive(record.FieldAuthor, DefectNameFormatTitles) {
		t.Error("academic title in name must be flagged")
	}
}

func TestNameParticlesChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldAuthor: "von, Hippel Eric"})
	(&nameParticlesChecker{}).Run(r)
	if !r.DefectActive(record.FieldAuthor, DefectNameParticles) {
		t.Error("leading bare particle must be flagged")
	}

	r2 := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldAuthor: "von Hippel, Eric"})
	(&nameParticlesChecker{}).Run(r2)
	if r2.DefectActive(record.FieldAuthor, DefectNameParticles) {
		t.Error("attached particle must not be flagged")
	}

	r3 := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldAuthor: "Smith, Jane and Hippel, von"})
	(&nameParticlesChecker{}).Run(r3)
	if !r3.DefectActive(record.FieldAuthor, DefectNameParticles) {
		t.Error("trailing bare particle must be flagged")
	}
}

func TestPageRangeChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldPages: "101--99"})
	(&pageRangeChecker{}).Run(r)
	if !r.DefectActive(record.FieldPages, DefectPageRange) {
		t.Error("descending range must be flagged")
	}

	r2 := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldPages: "99--101"})
	(&pageRangeChecker{}).Run(r2)
	if r2.DefectActive(record.FieldPages, DefectPageRange) {
		t.Error("ascending range must not be flagged")
	}
}

func TestThesisMultipleAuthorsChecker(t *testing.T) {
	r := checkerRecord(record.EntryTypePhdThesis, map[string]string{record.FieldAuthor: "Smith, Jane and Doe, John"})
	(&thesisMultipleAuthorsChecker{}).Run(r)
	if !r.DefectActive(record.FieldAuthor, DefectThesisMultipleAuthors) {
		t.Error("thesis with two authors must be flagged")
	}
}

func TestYearFormatChecker(t *testing.T) {
	cases := []struct {
		year string
		want bool
	}{
		{"2020", false},
		{"UNKNOWN", false},
		{"forthcoming", false},
		{"20", true},
		{"2020a", true},
	}
	for _, c := range cases {
		r := checkerRecord(record.EntryTypeArticle, map[string]string{record.FieldYear: c.year})
		(&yearFormatChecker{}).Run(r)
		if got := r.DefectActive(record.FieldYear, DefectYearFormat); got != c.want {
			t.Errorf("year %q: flagged=%v, want %v", c.year, got, c.want)
		}
	}
}
