package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func validSource() SearchSource {
	return SearchSource{
		Platform:          "crossref",
		SearchType:        SearchTypeAPI,
		SearchResultsPath: "data/search/CROSSREF.bib",
		SearchParameters:  map[string]string{"query": "digital health"},
	}
}

func TestSearchSourceValidate(t *testing.T) {
	src := validSource()
	if err := src.Validate(); err != nil {
		t.Errorf("valid source rejected: %v", err)
	}

	src.SearchType = "UNKNOWN_TYPE"
	if err := src.Validate(); err == nil {
		t.Error("expected error for unknown search type")
	}

	src = validSource()
	src.SearchResultsPath = ""
	if err := src.Validate(); err == nil {
		t.Error("expected error for missing results path")
	}
}

func TestAddSourceIdempotent(t *testing.T) {
	s := Default()
	if !s.AddSource(validSource()) {
		t.Fatal("first AddSource should report true")
	}
	if s.AddSource(validSource()) {
		t.Error("second AddSource with same filename should report false")
	}
	if len(s.Sources) != 1 {
		t.Errorf("got %d sources, want 1", len(s.Sources))
	}
}

func TestSourceLookup(t *testing.T) {
	s := Default()
	s.AddSource(validSource())

	if src := s.Source("CROSSREF.bib"); src == nil {
		t.Error("expected to find CROSSREF.bib source")
	}
	if src := s.Source("DBLP.bib"); src != nil {
		t.Error("did not expect to find DBLP.bib source")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	s := Default()
	s.Project.Title = "Digital health review"
	s.AddSource(validSource())

	if err := s.Save(root); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Project.Title != "Digital health review" {
		t.Errorf("title = %q", loaded.Project.Title)
	}
	if len(loaded.Sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(loaded.Sources))
	}
	if loaded.Sources[0].SearchParameters["query"] != "digital health" {
		t.Errorf("search parameters not preserved: %v", loaded.Sources[0].SearchParameters)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Project.ReviewType != ReviewTypeLiterature {
		t.Errorf("review type = %q", s.Project.ReviewType)
	}
}

func TestLoadInvalidSettings(t *testing.T) {
	root := t.TempDir()
	content := "project:\n  review_type: literature_review\nsources:\n  - platform: crossref\n"
	if err := os.WriteFile(filepath.Join(root, SettingsFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(root); err == nil {
		t.Error("expected validation error for source without search_type")
	}
}
