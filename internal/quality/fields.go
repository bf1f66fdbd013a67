package quality

import (
	"regexp"
	"strings"

	"github.com/colrev/colrev/internal/record"
)

// missingFieldChecker flags required fields absent for the entry type.
// A forthcoming year downgrades volume/number to IGNORE:missing; when the
// work is published (concrete year, volume and number filled), the ignore
// markers are lifted again.
type missingFieldChecker struct{}

func (c *missingFieldChecker) Code() string { return DefectMissing }

func (c *missingFieldChecker) Run(r *record.Record) {
	required := record.RequiredFields(r.EntryType)
	forthcoming := r.Field(record.FieldYear) == record.Forthcoming

	for _, field := range required {
		if field == record.FieldAuthor && r.EntryType == record.EntryTypeBook && r.HasField(record.FieldEditor) {
			setDefect(r, field, DefectMissing, false)
			continue
		}
		if forthcoming && (field == record.FieldVolume || field == record.FieldNumber) {
			if !r.IgnoredDefect(field, DefectMissing) {
				r.RemoveProvenanceNote(field, DefectMissing)
				r.IgnoreDefect(field, DefectMissing)
			}
			continue
		}
		setDefect(r, field, DefectMissing, !r.HasField(field))
	}

	if !forthcoming && r.HasField(record.FieldVolume) && r.HasField(record.FieldNumber) {
		r.RemoveProvenanceNote(record.FieldVolume, record.IgnorePrefix+DefectMissing)
		r.RemoveProvenanceNote(record.FieldNumber, record.IgnorePrefix+DefectMissing)
	}
}

// incompleteFieldChecker flags truncated values and malformed author lists.
type incompleteFieldChecker struct{}

func (c *incompleteFieldChecker) Code() string { return DefectIncompleteField }

var incompleteFields = []string{
	record.FieldAuthor,
	record.FieldTitle,
	record.FieldJournal,
	record.FieldBooktitle,
	record.FieldAbstract,
}

func (c *incompleteFieldChecker) Run(r *record.Record) {
	for _, field := range incompleteFields {
		if !r.HasField(field) {
			continue
		}
		setDefect(r, field, DefectIncompleteField, isIncomplete(field, r.Field(field)))
	}
}

func isIncomplete(field, value string) bool {
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "...") || strings.HasSuffix(v, "…") || strings.HasSuffix(v, "â€¦") {
		return true
	}
	if field != record.FieldAuthor {
		return false
	}
	if isInstitutionalAuthor(v) {
		return false
	}
	if strings.HasSuffix(v, ",") || strings.HasSuffix(v, " and") {
		return true
	}
	return !strings.Contains(v, ",")
}

// isInstitutionalAuthor reports protected organization names: {Org Name}.
func isInstitutionalAuthor(v string) bool {
	for _, part := range strings.Split(v, " and ") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "{") || !strings.HasSuffix(part, "}") {
			return false
		}
	}
	return true
}

// mostlyAllCapsChecker flags values with more than 70% uppercase letters.
type mostlyAllCapsChecker struct{}

func (c *mostlyAllCapsChecker) Code() string { return DefectMostlyAllCaps }

var allCapsFields = []string{
	record.FieldAuthor,
	record.FieldTitle,
	record.FieldEditor,
	record.FieldJournal,
	record.FieldBooktitle,
}

func (c *mostlyAllCapsChecker) Run(r *record.Record) {
	for _, field := range allCapsFields {
		if !r.HasField(field) {
			continue
		}
		value := r.Field(field)

		switch {
		case field == record.FieldTitle && r.EntryType == record.EntryTypeOnline && len(value) < 10:
			setDefect(r, field, DefectMostlyAllCaps, false)
			continue
		case field == record.FieldJournal && strings.EqualFold(value, "PLOS ONE"):
			setDefect(r, field, DefectMostlyAllCaps, false)
			continue
		case (field == record.FieldJournal || field == record.FieldBooktitle) && len(value) < 6:
			setDefect(r, field, DefectMostlyAllCaps, false)
			continue
		}

		setDefect(r, field, DefectMostlyAllCaps, mostlyUppercase(value))
	}
}

// mostlyUppercase counts letters only, ignoring the " and " separators of
// author lists.
func mostlyUppercase(v string) bool {
	v = strings.ReplaceAll(v, " and ", " ")
	upper, letters := 0, 0
	for _, c := range v {
		switch {
		case c >= 'A' && c <= 'Z':
			upper++
			letters++
		case c >= 'a' && c <= 'z':
			letters++
		}
	}
	return letters > 0 && float64(upper)/float64(letters) > 0.7
}

// containerAbbreviatedChecker flags abbreviated journal/booktitle values.
type containerAbbreviatedChecker struct{}

func (c *containerAbbreviatedChecker) Code() string { return DefectContainerAbbreviated }

func (c *containerAbbreviatedChecker) Run(r *record.Record) {
	for _, field := range []string{record.FieldJournal, record.FieldBooktitle} {
		if !r.HasField(field) {
			continue
		}
		v := r.Field(field)
		abbreviated := (v == strings.ToUpper(v) && len(v) < 6 && v != "") ||
			(field == record.FieldBooktitle && strings.Contains(v, "Proc."))
		setDefect(r, field, DefectContainerAbbreviated, abbreviated)
	}
}

// erroneousSymbolChecker flags replacement/encoding artifacts.
type erroneousSymbolChecker struct{}

func (c *erroneousSymbolChecker) Code() string { return DefectErroneousSymbolInField }

var erroneousSymbols = []string{"�", "™"}

func (c *erroneousSymbolChecker) Run(r *record.Record) {
	fields := []string{record.FieldAuthor, record.FieldTitle, record.FieldEditor, record.FieldJournal, record.FieldBooktitle}
	for _, field := range fields {
		if !r.HasField(field) {
			continue
		}
		found := false
		for _, sym := range erroneousSymbols {
			if strings.Contains(r.Field(field), sym) {
				found = true
				break
			}
		}
		setDefect(r, field, DefectErroneousSymbolInField, found)
	}
}

// erroneousTermChecker flags non-bibliographic terms leaked into fields.
type erroneousTermChecker struct{}

func (c *erroneousTermChecker) Code() string { return DefectErroneousTermInField }

var (
	erroneousAuthorTerms = []string{"http", "University", "orcid", "student", "Harvard", "Conference", "Mrs", "Hochschule"}
	erroneousTitleTerms  = []string{"research paper", "completed research", "research in progress", "full research paper"}
)

func (c *erroneousTermChecker) Run(r *record.Record) {
	if r.HasField(record.FieldAuthor) {
		found := false
		for _, term := range erroneousAuthorTerms {
			if strings.Contains(r.Field(record.FieldAuthor), term) {
				found = true
				break
			}
		}
		setDefect(r, record.FieldAuthor, DefectErroneousTermInField, found)
	}
	if r.HasField(record.FieldTitle) {
		lower := strings.ToLower(r.Field(record.FieldTitle))
		found := false
		for _, term := range erroneousTitleTerms {
			if strings.Contains(lower, term) {
				found = true
				break
			}
		}
		setDefect(r, record.FieldTitle, DefectErroneousTermInField, found)
	}
}

// erroneousTitleChecker flags titles that are not titles: OCR sentinels,
// digit soup, identifiers.
type erroneousTitleChecker struct{}

func (c *erroneousTitleChecker) Code() string { return DefectErroneousTitleField }

var sentinelTitles = []string{
	"A I S ssociation for nformation ystems",
}

func (c *erroneousTitleChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldTitle) {
		return
	}
	setDefect(r, record.FieldTitle, DefectErroneousTitleField, isErroneousTitle(r.Field(record.FieldTitle)))
}

func isErroneousTitle(title string) bool {
	for _, s := range sentinelTitles {
		if title == s {
			return true
		}
	}

	digits, letters := 0, 0
	for _, c := range title {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			letters++
		}
	}
	if digits > letters {
		return true
	}

	if !strings.Contains(title, " ") {
		if strings.ContainsAny(title, "_.") || digits > 0 {
			return true
		}
	}
	return false
}

// htmlTagsChecker flags HTML numeric character references.
type htmlTagsChecker struct{}

func (c *htmlTagsChecker) Code() string { return DefectHTMLTags }

var htmlEntityRe = regexp.MustCompile(`&#\d+;`)

func (c *htmlTagsChecker) Run(r *record.Record) {
	fields := []string{record.FieldTitle, record.FieldJournal, record.FieldBooktitle, record.FieldAuthor, record.FieldPublisher, record.FieldEditor}
	for _, field := range fields {
		if !r.HasField(field) {
			continue
		}
		setDefect(r, field, DefectHTMLTags, htmlEntityRe.MatchString(r.Field(field)))
	}
}

// identicalTitleContainerChecker flags titles copied into the container
// field or vice versa.
type identicalTitleContainerChecker struct{}

func (c *identicalTitleContainerChecker) Code() string { return DefectIdenticalTitleContainer }

func (c *identicalTitleContainerChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldTitle) {
		return
	}
	title := normalizeContainer(r.Field(record.FieldTitle))
	identical := (r.HasField(record.FieldJournal) && title == normalizeContainer(r.Field(record.FieldJournal))) ||
		(r.HasField(record.FieldBooktitle) && title == normalizeContainer(r.Field(record.FieldBooktitle)))
	setDefect(r, record.FieldTitle, DefectIdenticalTitleContainer, identical)
}

func normalizeContainer(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.TrimPrefix(v, "the ")
}

// inconsistentContentChecker flags container values of the wrong kind.
type inconsistentContentChecker struct{}

func (c *inconsistentContentChecker) Code() string { return DefectInconsistentContent }

func (c *inconsistentContentChecker) Run(r *record.Record) {
	if r.HasField(record.FieldJournal) {
		lower := strings.ToLower(r.Field(record.FieldJournal))
		bad := strings.Contains(lower, "conference") || strings.Contains(lower, "workshop")
		setDefect(r, record.FieldJournal, DefectInconsistentContent, bad)
	}
	if r.HasField(record.FieldBooktitle) {
		lower := strings.ToLower(r.Field(record.FieldBooktitle))
		setDefect(r, record.FieldBooktitle, DefectInconsistentContent, strings.Contains(lower, "journal"))
	}
}

// inconsistentWithEntryTypeChecker flags fields forbidden for the entry
// type.
type inconsistentWithEntryTypeChecker struct{}

func (c *inconsistentWithEntryTypeChecker) Code() string { return DefectInconsistentWithEntry }

func (c *inconsistentWithEntryTypeChecker) Run(r *record.Record) {
	for _, field := range record.ForbiddenFields(r.EntryType) {
		if !r.HasField(field) {
			continue
		}
		setDefect(r, field, DefectInconsistentWithEntry, true)
	}
}
