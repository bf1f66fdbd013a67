package quality

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/colrev/colrev/internal/record"
)

var nameFields = []string{record.FieldAuthor, record.FieldEditor}

// nameAbbreviatedChecker flags truncated name lists.
type nameAbbreviatedChecker struct{}

func (c *nameAbbreviatedChecker) Code() string { return DefectNameAbbreviated }

func (c *nameAbbreviatedChecker) Run(r *record.Record) {
	for _, field := range nameFields {
		if !r.HasField(field) {
			continue
		}
		v := strings.TrimSpace(r.Field(field))
		abbreviated := strings.HasSuffix(v, "and others") ||
			strings.HasSuffix(v, "et al") ||
			strings.HasSuffix(v, "et al.") ||
			strings.HasSuffix(v, "...")
		setDefect(r, field, DefectNameAbbreviated, abbreviated)
	}
}

// namePartRe matches "Last, First" shaped name parts after accent removal.
var namePartRe = regexp.MustCompile(`^[\w .‐'’-]+, [\w .‐'’-]+$`)

// nameFormatSeparatorsChecker flags name lists that do not follow the
// "Last, First and Last, First" convention.
type nameFormatSeparatorsChecker struct{}

func (c *nameFormatSeparatorsChecker) Code() string { return DefectNameFormatSeparators }

func (c *nameFormatSeparatorsChecker) Run(r *record.Record) {
	for _, field := range nameFields {
		if !r.HasField(field) {
			continue
		}
		v := r.Field(field)
		if isInstitutionalAuthor(v) {
			setDefect(r, field, DefectNameFormatSeparators, false)
			continue
		}
		setDefect(r, field, DefectNameFormatSeparators, namesMalformed(v))
	}
}

func namesMalformed(v string) bool {
	if !strings.Contains(v, ",") {
		return true
	}
	for _, part := range strings.Split(v, " and ") {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(part, "{") {
			continue
		}
		stripped := removeAccents(part)
		if !namePartRe.MatchString(stripped) {
			return true
		}
		if !strings.ContainsFunc(stripped, unicode.IsUpper) {
			return true
		}
	}
	return false
}

// removeAccents decomposes and strips combining marks: "Müller" -> "Muller".
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// nameFormatTitlesChecker flags academic titles embedded in names.
type nameFormatTitlesChecker struct{}

func (c *nameFormatTitlesChecker) Code() string { return DefectNameFormatTitles }

var nameTitleWords = []string{"Dr", "PhD", "Prof", "Dipl Ing"}

func (c *nameFormatTitlesChecker) Run(r *record.Record) {
	for _, field := range nameFields {
		if !r.HasField(field) {
			continue
		}
		setDefect(r, field, DefectNameFormatTitles, containsTitleWord(r.Field(field)))
	}
}

func containsTitleWord(v string) bool {
	words := strings.FieldsFunc(v, func(c rune) bool {
		return c == ' ' || c == ',' || c == '.' || c == ';'
	})
	for _, w := range words {
		for _, title := range nameTitleWords {
			if w == title {
				return true
			}
		}
	}
	// "Dipl Ing" spans two words.
	return strings.Contains(v, "Dipl Ing")
}

// nameParticlesChecker flags bare nobiliary particles at name boundaries.
type nameParticlesChecker struct{}

func (c *nameParticlesChecker) Code() string { return DefectNameParticles }

func (c *nameParticlesChecker) Run(r *record.Record) {
	for _, field := range nameFields {
		if !r.HasField(field) {
			continue
		}
		bad := false
		for _, part := range strings.Split(r.Field(field), " and ") {
			// A particle attached to the family name ("von Hippel, Eric")
			// is fine; a name segment that is nothing but the particle
			// ("von, Hippel Eric") is not.
			for _, segment := range strings.Split(part, ",") {
				switch strings.ToLower(strings.TrimSpace(segment)) {
				case "von", "vom", "van", "der":
					bad = true
				}
			}
			if bad {
				break
			}
		}
		setDefect(r, field, DefectNameParticles, bad)
	}
}

// thesisMultipleAuthorsChecker flags theses with more than one author.
type thesisMultipleAuthorsChecker struct{}

func (c *thesisMultipleAuthorsChecker) Code() string { return DefectThesisMultipleAuthors }

func (c *thesisMultipleAuthorsChecker) Run(r *record.Record) {
	switch r.EntryType {
	case record.EntryTypeThesis, record.EntryTypePhdThesis, record.EntryTypeMastersThesis:
	default:
		return
	}
	if !r.HasField(record.FieldAuthor) {
		return
	}
	setDefect(r, record.FieldAuthor, DefectThesisMultipleAuthors, strings.Contains(r.Field(record.FieldAuthor), " and "))
}
