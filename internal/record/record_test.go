package record

import (
	"testing"
)

func TestUpdateField_SetsProvenance(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldTitle, "A Study", "CROSSREF.bib/000001")

	if got := r.Field(FieldTitle); got != "A Study" {
		t.Errorf("expected title 'A Study', got %q", got)
	}
	p, ok := r.MdProv[FieldTitle]
	if !ok {
		t.Fatal("expected masterdata provenance for title")
	}
	if p.Source != "CROSSREF.bib/000001" {
		t.Errorf("expected source CROSSREF.bib/000001, got %q", p.Source)
	}
}

func TestUpdateField_NonIdentifyingGoesToDataProvenance(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldAbstract, "text", "manual")

	if _, ok := r.MdProv[FieldAbstract]; ok {
		t.Error("abstract must not appear in masterdata provenance")
	}
	if _, ok := r.DProv[FieldAbstract]; !ok {
		t.Error("abstract missing from data provenance")
	}
}

func TestUpdateField_AppendEditTrail(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldTitle, "A Study", "CROSSREF.bib/000001")
	r.UpdateField(FieldTitle, "A Better Study", "manual")

	p := r.MdProv[FieldTitle]
	if p.Source != "CROSSREF.bib/000001|manual" {
		t.Errorf("expected audit trail in source, got %q", p.Source)
	}
}

func TestUpdateField_KeepSourceIfEqual(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldTitle, "A Study", "CROSSREF.bib/000001")
	r.UpdateField(FieldTitle, "A Study", "DBLP.bib/000042")

	if p := r.MdProv[FieldTitle]; p.Source != "CROSSREF.bib/000001" {
		t.Errorf("equal value must keep prior source, got %q", p.Source)
	}
}

func TestUpdateField_ClearsMissingNote(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldVolume, "", "feed")
	r.AddProvenanceNote(FieldVolume, NoteMissing)
	r.UpdateField(FieldVolume, "37", "CROSSREF.bib/000001", WithoutKeepSourceIfEqual())

	if r.HasProvenanceNote(FieldVolume, NoteMissing) {
		t.Error("setting a value must clear the missing note")
	}
}

func TestRenameField_MovesProvenance(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldJournal, "MISQ", "feed")
	r.RenameField(FieldJournal, FieldBooktitle)

	if r.HasField(FieldJournal) {
		t.Error("journal should be gone after rename")
	}
	if got := r.Field(FieldBooktitle); got != "MISQ" {
		t.Errorf("expected booktitle MISQ, got %q", got)
	}
	if _, ok := r.MdProv[FieldBooktitle]; !ok {
		t.Error("provenance did not follow the rename")
	}
	if _, ok := r.MdProv[FieldJournal]; ok {
		t.Error("stale provenance for renamed field")
	}
}

func TestRemoveField_RemovesProvenance(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldDOI, "10.1234/x", "feed")
	r.RemoveField(FieldDOI)

	if _, ok := r.DProv[FieldDOI]; ok {
		t.Error("provenance entry must be removed with the field")
	}
}

func TestNoteSetOperations(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldTitle, "EDITORIAL", "feed")
	r.AddProvenanceNote(FieldTitle, "mostly-all-caps")
	r.AddProvenanceNote(FieldTitle, "mostly-all-caps") // set semantics

	notes := r.ProvenanceNotes(FieldTitle)
	if len(notes) != 1 || notes[0] != "mostly-all-caps" {
		t.Errorf("expected single note, got %v", notes)
	}

	r.RemoveProvenanceNote(FieldTitle, "mostly-all-caps")
	if len(r.ProvenanceNotes(FieldTitle)) != 0 {
		t.Error("note not removed")
	}
}

func TestIgnoreDefect(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldTitle, "EDITORIAL", "feed")
	r.AddProvenanceNote(FieldTitle, "mostly-all-caps")

	if !r.DefectActive(FieldTitle, "mostly-all-caps") {
		t.Fatal("defect should be active before ignore")
	}

	r.IgnoreDefect(FieldTitle, "mostly-all-caps")

	if !r.IgnoredDefect(FieldTitle, "mostly-all-caps") {
		t.Error("expected IGNORE: marker")
	}
	if r.DefectActive(FieldTitle, "mostly-all-caps") {
		t.Error("ignored defect must not be active")
	}
	if r.HasQualityDefects() {
		t.Error("ignored defect must not count as quality defect")
	}
}

func TestMasterdataIsCurated(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldTitle, "A Study", "CURATED:https://example.org/curation")

	if !r.MasterdataIsCurated() {
		t.Error("CURATED: source must mark the record curated")
	}

	r2 := New("Jones2021", EntryTypeArticle)
	r2.UpdateField(FieldTitle, "Other", "md_curated.bib/000003")
	if !r2.MasterdataIsCurated() {
		t.Error("md_curated.bib source must mark the record curated")
	}

	r3 := New("Lee2022", EntryTypeArticle)
	r3.UpdateField(FieldTitle, "Third", "CROSSREF.bib/000001")
	if r3.MasterdataIsCurated() {
		t.Error("feed source must not mark the record curated")
	}
}

func TestPrescreenExclude_Retracted(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.Status = StateMdProcessed
	r.UpdateField(FieldTitle, "A Study", "feed")

	r.PrescreenExclude("retracted")

	if r.Status != StateRevPrescreenExcluded {
		t.Errorf("expected rev_prescreen_excluded, got %s", r.Status)
	}
	if got := r.Field(FieldPrescreenExclusion); got != "retracted" {
		t.Errorf("expected prescreen_exclusion=retracted, got %q", got)
	}
	if got := r.Field(FieldRetracted); got == "" {
		t.Error("expected retracted field to be set")
	}
	if len(r.MdProv) != 0 || len(r.DProv) != 0 {
		t.Error("retraction must clear provenance maps")
	}
}

func TestPrescreenExclude_OtherReasonKeepsProvenance(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.Status = StateMdProcessed
	r.UpdateField(FieldTitle, "A Study", "feed")

	r.PrescreenExclude("out-of-scope")

	if len(r.MdProv) == 0 {
		t.Error("non-retraction exclusion must keep provenance")
	}
}

func TestCopy_IsDeep(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.UpdateField(FieldTitle, "A Study", "feed")
	r.AddOrigin("CROSSREF.bib/000001")

	c := r.Copy()
	c.UpdateField(FieldTitle, "Mutated", "manual")
	c.AddOrigin("DBLP.bib/000002")

	if r.Field(FieldTitle) != "A Study" {
		t.Error("copy mutation leaked into original data")
	}
	if len(r.Origins) != 1 {
		t.Error("copy mutation leaked into original origins")
	}
}

func TestAddOrigin_OrderedSet(t *testing.T) {
	r := New("Smith2020", EntryTypeArticle)
	r.AddOrigin("DBLP.bib/000002")
	r.AddOrigin("CROSSREF.bib/000001")
	r.AddOrigin("DBLP.bib/000002")

	if len(r.Origins) != 2 {
		t.Fatalf("expected 2 origins, got %d", len(r.Origins))
	}
	if r.Origins[0] != "CROSSREF.bib/000001" {
		t.Errorf("origins not sorted: %v", r.Origins)
	}
}
