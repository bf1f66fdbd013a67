// Package record defines the canonical bibliographic record, its per-field
// provenance, and the review state machine records move through.
package record

import (
	"fmt"
	"sort"
	"strings"
)

// IgnorePrefix suppresses a defect code without removing it.
const IgnorePrefix = "IGNORE:"

// note values carried in provenance entries.
const (
	NoteMissing = "missing"
)

// Provenance records where a field value came from and which defect codes
// are attached to it.
type Provenance struct {
	Source string
	Note   string
}

// Record represents one deduplicated bibliographic work.
//
// Bibliographic fields live in Data; structural fields (ID, entry type,
// status, origins, provenance) are explicit. Every key of Data appears in
// exactly one of MdProv / DProv.
type Record struct {
	ID        string
	EntryType string
	Status    State
	Origins   []string

	Data   map[string]string
	MdProv map[string]Provenance
	DProv  map[string]Provenance
}

// New creates an empty record in the retrieved state.
func New(id, entryType string) *Record {
	return &Record{
		ID:        id,
		EntryType: entryType,
		Status:    StateMdRetrieved,
		Data:      map[string]string{},
		MdProv:    map[string]Provenance{},
		DProv:     map[string]Provenance{},
	}
}

// Field returns the value of key, or "" if absent.
func (r *Record) Field(key string) string {
	return r.Data[key]
}

// HasField reports whether key is present with a non-empty value.
func (r *Record) HasField(key string) bool {
	v, ok := r.Data[key]
	return ok && v != ""
}

// provMap returns the provenance map responsible for key.
func (r *Record) provMap(key string) map[string]Provenance {
	if IsIdentifyingField(key) {
		return r.MdProv
	}
	return r.DProv
}

// FieldProvenance returns the provenance entry for key, if any.
func (r *Record) FieldProvenance(key string) (Provenance, bool) {
	p, ok := r.provMap(key)[key]
	return p, ok
}

// UpdateField sets key to value and records provenance.
//
// If keepSourceIfEqual and the stored value already equals value, the prior
// source is retained. If appendEdit and the field existed with a different
// source, the new source is appended to the audit trail
// ("<old-source>|<new-source>"). Setting a field clears a pending "missing"
// note on it.
func (r *Record) UpdateField(key, value, source string, opts ...UpdateOption) {
	cfg := updateConfig{appendEdit: true, keepSourceIfEqual: true}
	for _, o := range opts {
		o(&cfg)
	}

	prov := r.provMap(key)
	prior, had := prov[key]

	if had && cfg.keepSourceIfEqual && r.Data[key] == value {
		r.Data[key] = value
		return
	}

	newSource := source
	if had && cfg.appendEdit && prior.Source != "" && prior.Source != source {
		newSource = prior.Source + "|" + source
	}

	note := ""
	if had {
		note = removeNote(prior.Note, NoteMissing)
	}

	r.Data[key] = value
	prov[key] = Provenance{Source: newSource, Note: note}
}

type updateConfig struct {
	appendEdit        bool
	keepSourceIfEqual bool
}

// UpdateOption adjusts UpdateField behavior.
type UpdateOption func(*updateConfig)

// WithoutAppendEdit replaces the source instead of appending to the trail.
func WithoutAppendEdit() UpdateOption {
	return func(c *updateConfig) { c.appendEdit = false }
}

// WithoutKeepSourceIfEqual rewrites the source even for unchanged values.
func WithoutKeepSourceIfEqual() UpdateOption {
	return func(c *updateConfig) { c.keepSourceIfEqual = false }
}

// RenameField moves key to newKey, carrying provenance across maps if the
// identifying/non-identifying classification changes.
func (r *Record) RenameField(key, newKey string) {
	v, ok := r.Data[key]
	if !ok {
		return
	}
	p, hadProv := r.provMap(key)[key]
	r.RemoveField(key)
	r.Data[newKey] = v
	if hadProv {
		r.provMap(newKey)[newKey] = p
	}
}

// RemoveField deletes key and its provenance entry.
func (r *Record) RemoveField(key string) {
	delete(r.Data, key)
	delete(r.MdProv, key)
	delete(r.DProv, key)
}

// AddProvenanceNote adds note to key's note set, creating the provenance
// entry if the field exists without one.
func (r *Record) AddProvenanceNote(key, note string) {
	prov := r.provMap(key)
	p := prov[key]
	p.Note = addNote(p.Note, note)
	if p.Source == "" {
		p.Source = "colrev"
	}
	prov[key] = p
}

// RemoveProvenanceNote removes note from key's note set.
func (r *Record) RemoveProvenanceNote(key, note string) {
	prov := r.provMap(key)
	p, ok := prov[key]
	if !ok {
		return
	}
	p.Note = removeNote(p.Note, note)
	prov[key] = p
}

// ProvenanceNotes returns key's note set, sorted.
func (r *Record) ProvenanceNotes(key string) []string {
	p, ok := r.provMap(key)[key]
	if !ok {
		return nil
	}
	return splitNotes(p.Note)
}

// HasProvenanceNote reports whether note is present on key (exact match,
// IGNORE-prefixed notes are distinct entries).
func (r *Record) HasProvenanceNote(key, note string) bool {
	for _, n := range r.ProvenanceNotes(key) {
		if n == note {
			return true
		}
	}
	return false
}

// IgnoreDefect rewrites defect into IGNORE:defect on key, suppressing it.
func (r *Record) IgnoreDefect(key, defect string) {
	prov := r.provMap(key)
	p := prov[key]
	p.Note = removeNote(p.Note, defect)
	p.Note = addNote(p.Note, IgnorePrefix+defect)
	if p.Source == "" {
		p.Source = "colrev"
	}
	prov[key] = p
}

// IgnoredDefect reports whether defect is suppressed on key.
func (r *Record) IgnoredDefect(key, defect string) bool {
	return r.HasProvenanceNote(key, IgnorePrefix+defect)
}

// DefectActive reports whether defect is present on key and not ignored.
func (r *Record) DefectActive(key, defect string) bool {
	return r.HasProvenanceNote(key, defect) && !r.IgnoredDefect(key, defect)
}

// Defects returns all active defect codes per field.
func (r *Record) Defects() map[string][]string {
	out := map[string][]string{}
	collect := func(prov map[string]Provenance) {
		for key, p := range prov {
			for _, n := range splitNotes(p.Note) {
				if strings.HasPrefix(n, IgnorePrefix) {
					continue
				}
				if r.IgnoredDefect(key, n) {
					continue
				}
				out[key] = append(out[key], n)
			}
		}
	}
	collect(r.MdProv)
	collect(r.DProv)
	for k := range out {
		sort.Strings(out[k])
	}
	return out
}

// HasQualityDefects reports whether any field carries an active defect.
func (r *Record) HasQualityDefects() bool {
	return len(r.Defects()) > 0
}

// MasterdataIsCurated reports whether this record's masterdata is maintained
// by a curated upstream. Curated records are exempt from quality-model
// modifications except retraction and curated-source updates.
func (r *Record) MasterdataIsCurated() bool {
	for _, p := range r.MdProv {
		if strings.HasPrefix(p.Source, CuratedSourcePrefix+":") || p.Source == CuratedSourcePrefix {
			return true
		}
		if strings.HasPrefix(p.Source, CuratedFileName+"/") || p.Source == CuratedFileName {
			return true
		}
	}
	return false
}

// PrescreenExclude excludes the record from the review with the given
// reason. A retraction is final: provenance is cleared so no later quality
// run resurrects the record.
func (r *Record) PrescreenExclude(reason string) {
	r.Status = StateRevPrescreenExcluded
	r.Data[FieldPrescreenExclusion] = reason
	r.DProv[FieldPrescreenExclusion] = Provenance{Source: "colrev"}
	if reason == ReasonRetracted {
		r.Data[FieldRetracted] = "yes"
		r.MdProv = map[string]Provenance{}
		r.DProv = map[string]Provenance{}
	}
}

// AddOrigin appends origin to the record, keeping the set ordered and
// duplicate-free.
func (r *Record) AddOrigin(origin string) {
	for _, o := range r.Origins {
		if o == origin {
			return
		}
	}
	r.Origins = append(r.Origins, origin)
	sort.Strings(r.Origins)
}

// HasOrigin reports whether origin links this record to a feed row.
func (r *Record) HasOrigin(origin string) bool {
	for _, o := range r.Origins {
		if o == origin {
			return true
		}
	}
	return false
}

// Copy returns a deep copy suitable for speculative modification.
func (r *Record) Copy() *Record {
	c := &Record{
		ID:        r.ID,
		EntryType: r.EntryType,
		Status:    r.Status,
		Origins:   append([]string(nil), r.Origins...),
		Data:      make(map[string]string, len(r.Data)),
		MdProv:    make(map[string]Provenance, len(r.MdProv)),
		DProv:     make(map[string]Provenance, len(r.DProv)),
	}
	for k, v := range r.Data {
		c.Data[k] = v
	}
	for k, v := range r.MdProv {
		c.MdProv[k] = v
	}
	for k, v := range r.DProv {
		c.DProv[k] = v
	}
	return c
}

// FieldKeys returns the bibliographic field names, sorted.
func (r *Record) FieldKeys() []string {
	keys := make([]string, 0, len(r.Data))
	for k := range r.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Record) String() string {
	return fmt.Sprintf("%s (%s, %s)", r.ID, r.EntryType, r.Status)
}

// note set helpers: the comma-joined note string is treated as an unordered
// set of defect codes.

func splitNotes(note string) []string {
	if note == "" {
		return nil
	}
	parts := strings.Split(note, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func addNote(note, n string) string {
	set := splitNotes(note)
	for _, existing := range set {
		if existing == n {
			return strings.Join(set, ",")
		}
	}
	set = append(set, n)
	sort.Strings(set)
	return strings.Join(set, ",")
}

func removeNote(note, n string) string {
	set := splitNotes(note)
	out := set[:0]
	for _, existing := range set {
		if existing != n {
			out = append(out, existing)
		}
	}
	return strings.Join(out, ",")
}
