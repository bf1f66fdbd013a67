package store

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/colrev/colrev/internal/record"
)

// RecordNotParsableError reports an entry the parser could not make sense of.
type RecordNotParsableError struct {
	Line    int
	Message string
}

func (e *RecordNotParsableError) Error() string {
	return fmt.Sprintf("line %d: record not parsable: %s", e.Line, e.Message)
}

var (
	entryStartRe = regexp.MustCompile(`^@([a-zA-Z]+)\{([^,]+),\s*$`)
	fieldStartRe = regexp.MustCompile(`^\s*([a-zA-Z_][a-zA-Z0-9_.-]*)\s*=\s*\{(.*)$`)
)

// Parse reads a canonical records file (or feed file) into records keyed by
// ID. It validates syntax only; structural validation happens in Load.
func Parse(content string) (map[string]*record.Record, []string, error) {
	records := map[string]*record.Record{}
	var order []string

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var cur *record.Record
	var curFields map[string]string
	lineNum := 0

	flush := func() {
		if cur == nil {
			return
		}
		applyParsedFields(cur, curFields)
		records[cur.ID] = cur
		order = append(order, cur.ID)
		cur = nil
	}

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := entryStartRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			cur = record.New(strings.TrimSpace(m[2]), strings.ToLower(m[1]))
			cur.Status = ""
			curFields = map[string]string{}
			continue
		}

		if cur == nil {
			if trimmed == "}" {
				continue
			}
			return nil, nil, &RecordNotParsableError{Line: lineNum, Message: "content outside entry"}
		}

		if trimmed == "}" {
			flush()
			continue
		}

		m := fieldStartRe.FindStringSubmatch(line)
		if m == nil {
			return nil, nil, &RecordNotParsableError{Line: lineNum, Message: fmt.Sprintf("unexpected line %q", trimmed)}
		}
		key := m[1]
		rest := m[2]

		// Accumulate until the braces balance; multi-valued fields span
		// lines with a 36-space continuation indent.
		value, done := consumeValue(rest)
		for !done {
			if !scanner.Scan() {
				return nil, nil, &RecordNotParsableError{Line: lineNum, Message: "unterminated field value"}
			}
			lineNum++
			cont := strings.TrimSpace(scanner.Text())
			var more string
			more, done = consumeValue(cont)
			value += "\n" + more
		}
		curFields[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scanning records file: %w", err)
	}
	flush()

	return records, order, nil
}

// consumeValue strips the trailing "}," / "}" terminator if present.
// Returns the accumulated text and whether the value is complete.
func consumeValue(s string) (string, bool) {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i], true
			}
		}
	}
	return s, false
}

// applyParsedFields distributes raw field values onto the record's
// structural slots and data map.
func applyParsedFields(r *record.Record, fields map[string]string) {
	prov := map[string]record.Provenance{}
	if v, ok := fields[record.FieldMdProvenance]; ok {
		parseProvenance(v, prov)
	}
	dprov := map[string]record.Provenance{}
	if v, ok := fields[record.FieldDataProvenance]; ok {
		parseProvenance(v, dprov)
	}

	for key, value := range fields {
		switch key {
		case record.FieldOrigin:
			r.Origins = parseOrigins(value)
		case record.FieldStatus:
			r.Status = record.State(strings.TrimSpace(value))
		case record.FieldMdProvenance, record.FieldDataProvenance:
			// handled above
		default:
			r.Data[key] = normalizeValue(value)
		}
	}
	r.MdProv = prov
	r.DProv = dprov
}

func normalizeValue(v string) string {
	lines := strings.Split(v, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}

func parseOrigins(v string) []string {
	var origins []string
	for _, tok := range strings.Split(v, ";") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			origins = append(origins, tok)
		}
	}
	return origins
}

// parseProvenance decodes newline/whitespace-separated
// "field:source;note;" tokens.
func parseProvenance(v string, into map[string]record.Provenance) {
	joined := normalizeValue(v)
	for {
		joined = strings.TrimLeft(joined, " \t")
		if joined == "" {
			return
		}
		colon := strings.Index(joined, ":")
		if colon < 0 {
			return
		}
		field := strings.TrimSpace(joined[:colon])
		rest := joined[colon+1:]

		semi1 := strings.Index(rest, ";")
		if semi1 < 0 {
			into[field] = record.Provenance{Source: strings.TrimSpace(rest)}
			return
		}
		source := strings.TrimSpace(rest[:semi1])
		rest = rest[semi1+1:]

		semi2 := strings.Index(rest, ";")
		if semi2 < 0 {
			into[field] = record.Provenance{Source: source, Note: strings.TrimSpace(rest)}
			return
		}
		note := strings.TrimSpace(rest[:semi2])
		into[field] = record.Provenance{Source: source, Note: note}
		joined = rest[semi2+1:]
	}
}
