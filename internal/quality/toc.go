package quality

import (
	"sync"

	"github.com/colrev/colrev/internal/record"
)

// tocChecker flags records whose container does not resolve in the local
// table-of-contents index. Index access is serialized through the model's
// mutex.
type tocChecker struct {
	index     TOCIndex
	threshold float64
	mu        *sync.Mutex
}

func (c *tocChecker) Code() string { return DefectRecordNotInTOC }

func (c *tocChecker) Run(r *record.Record) {
	var field string
	switch {
	case r.HasField(record.FieldJournal):
		field = record.FieldJournal
	case r.HasField(record.FieldBooktitle):
		field = record.FieldBooktitle
	default:
		return
	}

	c.mu.Lock()
	found, err := c.index.ContainsContainer(r.Field(field), c.threshold)
	c.mu.Unlock()
	if err != nil {
		// Index unavailable: skip, never flag.
		return
	}
	setDefect(r, field, DefectRecordNotInTOC, !found)
}
