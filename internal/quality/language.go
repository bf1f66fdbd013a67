package quality

import (
	"golang.org/x/text/language"

	"github.com/colrev/colrev/internal/record"
)

// languageUnknownChecker flags records whose title is known but whose
// language is not recorded.
type languageUnknownChecker struct{}

func (c *languageUnknownChecker) Code() string { return DefectLanguageUnknown }

func (c *languageUnknownChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldTitle) || r.Field(record.FieldTitle) == record.UnknownValue {
		return
	}
	setDefect(r, record.FieldLanguage, DefectLanguageUnknown, !r.HasField(record.FieldLanguage))
}

// languageFormatChecker validates the language value as an ISO 639-3 code.
type languageFormatChecker struct{}

func (c *languageFormatChecker) Code() string { return DefectLanguageFormat }

func (c *languageFormatChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldLanguage) {
		return
	}
	setDefect(r, record.FieldLanguage, DefectLanguageFormat, !ValidLanguageCode(r.Field(record.FieldLanguage)))
}

// ValidLanguageCode reports whether code is a three-letter ISO 639-3 code
// the language registry recognizes.
func ValidLanguageCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return false
	}
	// ParseBase canonicalizes to the two-letter form where one exists; it
	// accepting the input is what matters here.
	return base.String() != ""
}

// ParseLanguageCode returns a typed error for invalid codes, for callers
// outside the quality model (prep scripts, settings validation).
func ParseLanguageCode(code string) error {
	if !ValidLanguageCode(code) {
		return &InvalidLanguageCodeError{Code: code}
	}
	return nil
}
