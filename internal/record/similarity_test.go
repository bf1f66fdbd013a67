package record

import "testing"

func TestRecordSimilarity_IdenticalRecords(t *testing.T) {
	a := New("Smith2020", EntryTypeArticle)
	a.UpdateField(FieldTitle, "Digital Transformation in Practice", "x")
	a.UpdateField(FieldAuthor, "Smith, Jane", "x")
	a.UpdateField(FieldJournal, "MIS Quarterly", "x")
	a.UpdateField(FieldYear, "2020", "x")

	b := a.Copy()
	if sim := RecordSimilarity(a, b); sim < 0.999 {
		t.Errorf("identical records should score ~1.0, got %f", sim)
	}
}

func TestRecordSimilarity_DifferentRecords(t *testing.T) {
	a := New("Smith2020", EntryTypeArticle)
	a.UpdateField(FieldTitle, "Blockchain Adoption in Healthcare", "x")
	a.UpdateField(FieldAuthor, "Smith, Jane", "x")
	a.UpdateField(FieldJournal, "MIS Quarterly", "x")
	a.UpdateField(FieldYear, "2020", "x")

	b := New("Nguyen2019", EntryTypeArticle)
	b.UpdateField(FieldTitle, "Quantum Error Correction Codes", "y")
	b.UpdateField(FieldAuthor, "Nguyen, Thanh", "y")
	b.UpdateField(FieldJournal, "Physical Review Letters", "y")
	b.UpdateField(FieldYear, "2013", "y")

	if sim := RecordSimilarity(a, b); sim > 0.5 {
		t.Errorf("unrelated records should score low, got %f", sim)
	}
}

func TestRecordSimilarity_TokenOrderInsensitive(t *testing.T) {
	a := New("a", EntryTypeArticle)
	a.UpdateField(FieldTitle, "practice in digital transformation", "x")
	b := New("b", EntryTypeArticle)
	b.UpdateField(FieldTitle, "digital transformation in practice", "y")

	if sim := RecordSimilarity(a, b); sim < 0.39 {
		t.Errorf("token reordering should barely matter, got %f", sim)
	}
}

func TestRecordSimilarity_BooktitleAsContainer(t *testing.T) {
	a := New("a", EntryTypeInProceedings)
	a.UpdateField(FieldTitle, "A Study", "x")
	a.UpdateField(FieldBooktitle, "Proceedings of ICIS", "x")
	b := New("b", EntryTypeInProceedings)
	b.UpdateField(FieldTitle, "A Study", "y")
	b.UpdateField(FieldBooktitle, "Proceedings of ICIS", "y")

	if sim := RecordSimilarity(a, b); sim < 0.59 {
		t.Errorf("matching booktitles should contribute container weight, got %f", sim)
	}
}

func TestPartialRatio(t *testing.T) {
	cases := []struct {
		a, b string
		min  int
	}{
		{"artificial intelligence", "Artificial intelligence and the conduct of literature reviews", 95},
		{"same", "same", 100},
	}
	for _, c := range cases {
		if got := PartialRatio(c.a, c.b); got < c.min {
			t.Errorf("PartialRatio(%q, %q) = %d, want >= %d", c.a, c.b, got, c.min)
		}
	}

	if got := PartialRatio("completely different words", "nothing alike here at all"); got >= 60 {
		t.Errorf("dissimilar strings scored %d, want < 60", got)
	}
	if got := PartialRatio("", "anything"); got != 0 {
		t.Errorf("empty input must score 0, got %d", got)
	}
}
