package quality

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/colrev/colrev/internal/record"
)

var yearRe = regexp.MustCompile(`^\d{4}$`)

// yearFormatChecker flags non-numeric years. UNKNOWN and forthcoming are
// legitimate values, not format errors.
type yearFormatChecker struct{}

func (c *yearFormatChecker) Code() string { return DefectYearFormat }

func (c *yearFormatChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldYear) {
		return
	}
	v := r.Field(record.FieldYear)
	if v == record.UnknownValue || v == record.Forthcoming {
		setDefect(r, record.FieldYear, DefectYearFormat, false)
		return
	}
	setDefect(r, record.FieldYear, DefectYearFormat, !yearRe.MatchString(v))
}

var pageRangeRe = regexp.MustCompile(`^(\d+)--(\d+)$`)

// pageRangeChecker flags descending page ranges.
type pageRangeChecker struct{}

func (c *pageRangeChecker) Code() string { return DefectPageRange }

func (c *pageRangeChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldPages) {
		return
	}
	m := pageRangeRe.FindStringSubmatch(strings.TrimSpace(r.Field(record.FieldPages)))
	if m == nil {
		setDefect(r, record.FieldPages, DefectPageRange, false)
		return
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	setDefect(r, record.FieldPages, DefectPageRange, start > end)
}
