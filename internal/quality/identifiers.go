package quality

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/colrev/colrev/internal/record"
)

var (
	doiRe      = regexp.MustCompile(`^10\.\d{4,9}/`)
	pubmedIDRe = regexp.MustCompile(`^\d{1,8}(\.\d)?$`)
)

// doiPatternChecker flags DOIs outside the registrant syntax.
type doiPatternChecker struct{}

func (c *doiPatternChecker) Code() string { return DefectDOIPattern }

func (c *doiPatternChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldDOI) {
		return
	}
	setDefect(r, record.FieldDOI, DefectDOIPattern, !doiRe.MatchString(r.Field(record.FieldDOI)))
}

// isbnPatternChecker validates ISBN-10/13 shape. Hyphens and spaces are
// separators; the check is structural, not a checksum.
type isbnPatternChecker struct{}

func (c *isbnPatternChecker) Code() string { return DefectISBNPattern }

var (
	isbn10Re = regexp.MustCompile(`^\d{9}[\dXx]$`)
	isbn13Re = regexp.MustCompile(`^97[89]\d{10}$`)
)

func (c *isbnPatternChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldISBN) {
		return
	}
	bad := false
	for _, isbn := range strings.Split(r.Field(record.FieldISBN), ";") {
		normalized := strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn))
		normalized = strings.TrimPrefix(strings.TrimPrefix(normalized, "ISBN"), ":")
		if normalized == "" {
			continue
		}
		if !isbn10Re.MatchString(normalized) && !isbn13Re.MatchString(normalized) {
			bad = true
		}
	}
	setDefect(r, record.FieldISBN, DefectISBNPattern, bad)
}

// pubmedIDPatternChecker validates the pubmed_id shape.
type pubmedIDPatternChecker struct{}

func (c *pubmedIDPatternChecker) Code() string { return DefectPubmedIDPattern }

func (c *pubmedIDPatternChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldPubmedID) {
		return
	}
	setDefect(r, record.FieldPubmedID, DefectPubmedIDPattern, !pubmedIDRe.MatchString(r.Field(record.FieldPubmedID)))
}

// doiMetadataChecker cross-checks local metadata against the metadata the
// DOI resolves to. A provider failure skips the check rather than flagging.
type doiMetadataChecker struct {
	oracle MetadataOracle
}

func (c *doiMetadataChecker) Code() string { return DefectInconsistentWithDOI }

const doiMetadataRatioThreshold = 60

func (c *doiMetadataChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldDOI) || r.MasterdataIsCurated() {
		return
	}
	if r.IgnoredDefect(record.FieldDOI, DefectInconsistentWithDOI) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	remote, err := c.oracle.QueryDOI(ctx, r.Field(record.FieldDOI))
	if err != nil || remote == nil {
		return
	}

	inconsistent := false
	for _, field := range []string{record.FieldAuthor, record.FieldTitle, record.FieldJournal} {
		local := r.Field(field)
		fetched := remote.Field(field)
		if len(local) < 5 || len(fetched) < 5 {
			continue
		}
		if record.PartialRatio(local, fetched) < doiMetadataRatioThreshold {
			inconsistent = true
			break
		}
	}
	setDefect(r, record.FieldDOI, DefectInconsistentWithDOI, inconsistent)
}
