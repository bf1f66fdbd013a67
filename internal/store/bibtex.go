// Package store persists the canonical record collection as a BibTeX-shaped
// text file with a stable field ordering, so that the file diffs cleanly
// under version control and round-trips losslessly.
package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/colrev/colrev/internal/record"
)

// keyPad is the column width field names are padded to; continuation lines
// of multi-valued fields are indented to the value column.
const (
	keyPad      = 30
	valueColumn = 36
)

// canonicalKeyOrder fixes the leading field order of every serialized
// entry. Keys not listed here follow alphabetically.
var canonicalKeyOrder = []string{
	record.FieldOrigin,
	record.FieldStatus,
	record.FieldMdProvenance,
	record.FieldDataProvenance,
	record.FieldPdfID,
	record.FieldScreeningCriteria,
	record.FieldFile,
	record.FieldPrescreenExclusion,
	record.FieldDOI,
	record.FieldISBN,
	record.FieldISSN,
	record.FieldPubmedID,
	record.FieldDblpKey,
	record.FieldAuthor,
	record.FieldBooktitle,
	record.FieldJournal,
	record.FieldTitle,
	record.FieldYear,
	record.FieldVolume,
	record.FieldNumber,
	record.FieldPages,
	record.FieldEditor,
	record.FieldPublisher,
	record.FieldURL,
	record.FieldAbstract,
}

var canonicalKeyRank = func() map[string]int {
	m := make(map[string]int, len(canonicalKeyOrder))
	for i, k := range canonicalKeyOrder {
		m[k] = i
	}
	return m
}()

// provenanceSanitizer replaces characters that would break the provenance
// token syntax.
var provenanceSanitizer = strings.NewReplacer(";", "_", "=", "_", "{", "_", "}", "_")

// SerializeOptions adjust serialization for feed files.
type SerializeOptions struct {
	// OmitOrigin leaves out colrev_origin; feed files identify their rows
	// by source identifier instead.
	OmitOrigin bool
}

// Serialize renders records in canonical order, one BibTeX entry per
// record, sorted by ID.
func Serialize(records map[string]*record.Record, opts SerializeOptions) string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(SerializeRecord(records[id], opts))
	}
	return b.String()
}

// SerializeRecord renders one record as a BibTeX entry.
func SerializeRecord(r *record.Record, opts SerializeOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", r.EntryType, r.ID)

	writeField := func(key, value string) {
		fmt.Fprintf(&b, "   %-*s = {%s},\n", keyPad, key, value)
	}

	if !opts.OmitOrigin && len(r.Origins) > 0 {
		writeField(record.FieldOrigin, joinMultiValued(originTokens(r)))
	}
	if r.Status != "" {
		writeField(record.FieldStatus, string(r.Status))
	}
	if len(r.MdProv) > 0 {
		writeField(record.FieldMdProvenance, joinMultiValued(provenanceTokens(r.MdProv)))
	}
	if len(r.DProv) > 0 {
		writeField(record.FieldDataProvenance, joinMultiValued(provenanceTokens(r.DProv)))
	}

	written := map[string]bool{}
	for _, key := range orderedDataKeys(r) {
		if written[key] {
			continue
		}
		written[key] = true
		writeField(key, r.Data[key])
	}

	b.WriteString("}\n")
	return b.String()
}

// orderedDataKeys returns the record's bibliographic keys in canonical
// order: listed keys first by rank, the rest alphabetically.
func orderedDataKeys(r *record.Record) []string {
	keys := r.FieldKeys()
	sort.SliceStable(keys, func(i, j int) bool {
		ri, iok := canonicalKeyRank[keys[i]]
		rj, jok := canonicalKeyRank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func originTokens(r *record.Record) []string {
	tokens := make([]string, len(r.Origins))
	for i, o := range r.Origins {
		tokens[i] = o + ";"
	}
	return tokens
}

func provenanceTokens(prov map[string]record.Provenance) []string {
	keys := make([]string, 0, len(prov))
	for k := range prov {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tokens := make([]string, 0, len(keys))
	for _, k := range keys {
		p := prov[k]
		tokens = append(tokens, fmt.Sprintf("%s:%s;%s;",
			provenanceSanitizer.Replace(k),
			provenanceSanitizer.Replace(p.Source),
			provenanceSanitizer.Replace(p.Note)))
	}
	return tokens
}

// joinMultiValued joins tokens with newlines, indenting continuation lines
// to the value column.
func joinMultiValued(tokens []string) string {
	return strings.Join(tokens, "\n"+strings.Repeat(" ", valueColumn))
}
