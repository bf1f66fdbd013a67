// Package conflict parses git conflict markers in the records file and
// names the entries caught in each region. Operations never resolve
// conflicts themselves; the parse result only improves their error
// reporting.
package conflict

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// Parser state machine states
type parserState int

const (
	stateNormal parserState = iota
	stateInOurs
	stateInTheirs
)

// Conflict marker prefixes
const (
	oursMarker      = "<<<<<<<"
	separatorMarker = "======="
	theirsMarker    = ">>>>>>>"
)

// ParseError reports malformed conflict markers.
type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Region is one conflict region with the entry keys found on each side.
type Region struct {
	StartLine int
	EndLine   int
	OursIDs   []string
	TheirsIDs []string
}

// Result is the outcome of parsing a conflicted records file.
type Result struct {
	Regions []Region
}

// IDs returns the union of entry keys caught in any region, sorted.
func (r *Result) IDs() []string {
	seen := map[string]bool{}
	for _, region := range r.Regions {
		for _, id := range region.OursIDs {
			seen[id] = true
		}
		for _, id := range region.TheirsIDs {
			seen[id] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var entryKeyRe = regexp.MustCompile(`^@[a-zA-Z]+\{([^,]+),`)

// Parse reads a conflicted records file and collects the conflict regions
// with the entry keys on each side.
func Parse(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	result := &Result{}
	state := stateNormal
	lineNum := 0
	var current *Region

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch state {
		case stateNormal:
			switch {
			case strings.HasPrefix(line, oursMarker):
				current = &Region{StartLine: lineNum}
				state = stateInOurs
			case strings.HasPrefix(line, separatorMarker):
				return nil, ParseError{Line: lineNum, Message: "separator marker outside conflict region"}
			case strings.HasPrefix(line, theirsMarker):
				return nil, ParseError{Line: lineNum, Message: "end marker outside conflict region"}
			}

		case stateInOurs:
			switch {
			case strings.HasPrefix(line, oursMarker):
				return nil, ParseError{Line: lineNum, Message: "nested conflict markers"}
			case strings.HasPrefix(line, separatorMarker):
				state = stateInTheirs
			case strings.HasPrefix(line, theirsMarker):
				return nil, ParseError{Line: lineNum, Message: "end marker before separator"}
			default:
				if id := entryKey(line); id != "" {
					current.OursIDs = append(current.OursIDs, id)
				}
			}

		case stateInTheirs:
			switch {
			case strings.HasPrefix(line, oursMarker):
				return nil, ParseError{Line: lineNum, Message: "nested conflict markers"}
			case strings.HasPrefix(line, separatorMarker):
				return nil, ParseError{Line: lineNum, Message: "duplicate separator marker"}
			case strings.HasPrefix(line, theirsMarker):
				current.EndLine = lineNum
				result.Regions = append(result.Regions, *current)
				current = nil
				state = stateNormal
			default:
				if id := entryKey(line); id != "" {
					current.TheirsIDs = append(current.TheirsIDs, id)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if state != stateNormal {
		return nil, ParseError{Line: lineNum, Message: "unterminated conflict region"}
	}
	return result, nil
}

func entryKey(line string) string {
	m := entryKeyRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
