package ops

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
)

// ErrRecordNotFound reports an operation on an unknown record ID.
type RecordNotFoundError struct {
	ID string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("record %s not found", e.ID)
}

// begin loads the records and gates the operation.
func begin(mgr *review.Manager, op record.Operation) (map[string]*record.Record, error) {
	records, err := mgr.Store.Load()
	if err != nil {
		return nil, err
	}
	if err := CheckPrecondition(mgr, op, records); err != nil {
		return nil, err
	}
	return records, nil
}

// finish persists the records and commits the operation.
func finish(mgr *review.Manager, records map[string]*record.Record, msg string, op record.Operation) error {
	if err := mgr.Store.Save(records); err != nil {
		return err
	}
	dirty, err := mgr.Repo.HasChanges()
	if err != nil {
		return err
	}
	if !dirty {
		mgr.Logger.Info("nothing to commit", "operation", string(op))
		return nil
	}
	if err := mgr.Repo.AddAll(); err != nil {
		return err
	}
	_, err = mgr.Repo.Commit(msg, false, "colrev "+string(op))
	return err
}

// sortedIDs returns the record IDs in stable order.
func sortedIDs(records map[string]*record.Record) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// proposeID derives a citation-key style temporary ID from the first
// author's last name and the year.
func proposeID(r *record.Record) string {
	name := r.Field(record.FieldAuthor)
	if name == "" {
		name = r.Field(record.FieldEditor)
	}
	if i := strings.Index(name, " and "); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, ","); i >= 0 {
		name = name[:i]
	}
	var b strings.Builder
	for _, c := range name {
		if unicode.IsLetter(c) {
			b.WriteRune(c)
		}
	}
	key := b.String()
	if key == "" {
		key = "Anonymous"
	}
	if year := r.Field(record.FieldYear); year != "" && year != record.UnknownValue && year != record.Forthcoming {
		key += year
	}
	return key
}

// Status counts records per state.
func Status(mgr *review.Manager) (map[record.State]int, error) {
	records, err := mgr.Store.Load()
	if err != nil {
		return nil, err
	}
	counts := map[record.State]int{}
	for _, r := range records {
		counts[r.Status]++
	}
	return counts, nil
}
