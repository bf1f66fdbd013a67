package quality

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/colrev/colrev/internal/record"
)

// DefaultPDFExtractor extracts text and page counts with ledongthuc/pdf.
type DefaultPDFExtractor struct{}

// Text returns the plain text of all pages.
func (DefaultPDFExtractor) Text(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// NrPages returns the page count.
func (DefaultPDFExtractor) NrPages(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}

// noTextInPDFChecker flags files whose extracted text is empty.
type noTextInPDFChecker struct{}

func (c *noTextInPDFChecker) Code() string { return DefectNoTextInPDF }

func (c *noTextInPDFChecker) Run(r *record.Record) {
	text := strings.TrimSpace(r.Field(record.FieldTextFromPDF))
	setDefect(r, record.FieldFile, DefectNoTextInPDF, text == "")
}

// authorNotInPDFChecker flags records whose author last names do not occur
// in the PDF text. Editorials routinely omit bylines and are exempt.
type authorNotInPDFChecker struct{}

func (c *authorNotInPDFChecker) Code() string { return DefectAuthorNotInPDF }

const authorInPDFThreshold = 0.8

func (c *authorNotInPDFChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldAuthor) || !r.HasField(record.FieldTextFromPDF) {
		return
	}
	if strings.Contains(strings.ToLower(r.Field(record.FieldTitle)), "editorial") {
		setDefect(r, record.FieldFile, DefectAuthorNotInPDF, false)
		return
	}

	text := strings.ToLower(removeAccents(r.Field(record.FieldTextFromPDF)))
	lastNames := authorLastNames(r.Field(record.FieldAuthor))
	if len(lastNames) == 0 {
		return
	}
	found := 0
	for _, name := range lastNames {
		if strings.Contains(text, strings.ToLower(removeAccents(name))) {
			found++
		}
	}
	ratio := float64(found) / float64(len(lastNames))
	setDefect(r, record.FieldFile, DefectAuthorNotInPDF, ratio < authorInPDFThreshold)
}

func authorLastNames(author string) []string {
	var names []string
	for _, part := range strings.Split(author, " and ") {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(part, "{") {
			continue
		}
		if comma := strings.Index(part, ","); comma >= 0 {
			part = part[:comma]
		} else if fields := strings.Fields(part); len(fields) > 0 {
			part = fields[len(fields)-1]
		}
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// titleNotInPDFChecker flags records whose title words mostly do not occur
// in the PDF text.
type titleNotInPDFChecker struct{}

func (c *titleNotInPDFChecker) Code() string { return DefectTitleNotInPDF }

const titleInPDFThreshold = 0.9

func (c *titleNotInPDFChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldTitle) || !r.HasField(record.FieldTextFromPDF) {
		return
	}
	text := strings.ToLower(r.Field(record.FieldTextFromPDF))
	words := strings.Fields(strings.ToLower(r.Field(record.FieldTitle)))
	if len(words) == 0 {
		return
	}
	found := 0
	for _, w := range words {
		w = strings.Trim(w, ".,:;!?()")
		if w == "" || strings.Contains(text, w) {
			found++
		}
	}
	ratio := float64(found) / float64(len(words))
	setDefect(r, record.FieldFile, DefectTitleNotInPDF, ratio < titleInPDFThreshold)
}

// purchaseNotices are full-text sentinels of paywall cover sheets.
var purchaseNotices = []string{
	"morepages are available in the full version of this document, which may be purchased",
	"this document is a preview generated by",
	"to purchase this document",
}

// pdfIncompleteChecker compares the file's page count to the pages range.
type pdfIncompleteChecker struct{}

func (c *pdfIncompleteChecker) Code() string { return DefectPDFIncomplete }

func (c *pdfIncompleteChecker) Run(r *record.Record) {
	if !r.HasField(record.FieldPages) || !r.HasField(record.FieldNrPagesInFile) {
		return
	}
	nrInFile, err := strconv.Atoi(r.Field(record.FieldNrPagesInFile))
	if err != nil {
		return
	}
	expected, ok := pageRangeSize(r.Field(record.FieldPages))
	if !ok {
		return
	}

	if nrInFile == expected {
		setDefect(r, record.FieldFile, DefectPDFIncomplete, false)
		return
	}

	text := strings.ToLower(r.Field(record.FieldTextFromPDF))
	if nrInFile > expected {
		// Trailing appendix pages are a legitimate reason for extra pages.
		tail := text
		if len(text) > 2000 {
			tail = text[len(text)-2000:]
		}
		if strings.Contains(tail, "appendi") {
			setDefect(r, record.FieldFile, DefectPDFIncomplete, false)
			return
		}
	}
	for _, notice := range purchaseNotices {
		if strings.Contains(text, notice) {
			setDefect(r, record.FieldFile, DefectPDFIncomplete, false)
			return
		}
	}
	setDefect(r, record.FieldFile, DefectPDFIncomplete, true)
}

var (
	arabicRangeRe = regexp.MustCompile(`^(\d+)\s*--\s*(\d+)$`)
	sPrefixRe     = regexp.MustCompile(`^S(\d+)\s*--\s*S(\d+)$`)
	romanRangeRe  = regexp.MustCompile(`^([ivxlcdmIVXLCDM]+)\s*--\s*([ivxlcdmIVXLCDM]+)$`)
)

// pageRangeSize returns the number of pages a pages value spans.
// S-prefixed (supplement) and Roman-numeral ranges are normalized.
func pageRangeSize(pages string) (int, bool) {
	pages = strings.TrimSpace(pages)

	if m := arabicRangeRe.FindStringSubmatch(pages); m != nil {
		return rangeSize(atoiOK(m[1]), atoiOK(m[2]))
	}
	if m := sPrefixRe.FindStringSubmatch(pages); m != nil {
		return rangeSize(atoiOK(m[1]), atoiOK(m[2]))
	}
	if m := romanRangeRe.FindStringSubmatch(pages); m != nil {
		start, ok1 := romanToInt(strings.ToUpper(m[1]))
		end, ok2 := romanToInt(strings.ToUpper(m[2]))
		if ok1 && ok2 {
			return rangeSize(start, end)
		}
	}
	return 0, false
}

func atoiOK(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func rangeSize(start, end int) (int, bool) {
	if end < start {
		return 0, false
	}
	return end - start + 1, true
}

var romanValues = map[byte]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}

func romanToInt(s string) (int, bool) {
	total := 0
	for i := 0; i < len(s); i++ {
		v, ok := romanValues[s[i]]
		if !ok {
			return 0, false
		}
		if i+1 < len(s) && romanValues[s[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return total, total > 0
}
