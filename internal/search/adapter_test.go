package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/settings"
)

func TestDBLPSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result": {"hits": {"@total": "1", "@sent": "1", "@first": "0", "hit": [
			{"info": {
				"key": "journals/misq/Smith20",
				"title": "A Study of Things.",
				"venue": "MIS Q.",
				"volume": "44",
				"number": "1",
				"pages": "1-20",
				"year": "2020",
				"type": "Journal Articles",
				"doi": "10.25300/MISQ/2020/14999",
				"authors": {"author": [{"text": "John Smith 0001"}, {"text": "Jane Doe"}]}
			}}
		]}}}`)
	}))
	defer srv.Close()

	a := NewDBLPAdapter(settings.SearchSource{Platform: PlatformDBLP}, WithDBLPBaseURL(srv.URL))
	pager, err := a.Search(context.Background(), map[string]string{"query": "study"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	page, done, err := pager.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !done || len(page) != 1 {
		t.Fatalf("done=%v len=%d", done, len(page))
	}

	r := page[0]
	if r.Field(record.FieldDblpKey) != "journals/misq/Smith20" {
		t.Errorf("dblp_key = %q", r.Field(record.FieldDblpKey))
	}
	if r.Field(record.FieldTitle) != "A Study of Things" {
		t.Errorf("title = %q", r.Field(record.FieldTitle))
	}
	if r.Field(record.FieldAuthor) != "Smith, John and Doe, Jane" {
		t.Errorf("author = %q", r.Field(record.FieldAuthor))
	}
	if r.Field(record.FieldDOI) != "10.25300/misq/2020/14999" {
		t.Errorf("doi = %q", r.Field(record.FieldDOI))
	}
	if r.Field(record.FieldPages) != "1--20" {
		t.Errorf("pages = %q", r.Field(record.FieldPages))
	}
}

func TestArxivSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <totalResults>1</totalResults>
  <entry>
    <id>http://arxiv.org/abs/2201.00001v1</id>
    <title>Large Language
      Models for Screening</title>
    <summary>We study screening.</summary>
    <published>2022-01-03T18:00:00Z</published>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
  </entry>
</feed>`)
	}))
	defer srv.Close()

	a := NewArxivAdapter(settings.SearchSource{Platform: PlatformArxiv}, WithArxivBaseURL(srv.URL))
	pager, err := a.Search(context.Background(), map[string]string{"query": "screening"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	page, done, err := pager.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !done || len(page) != 1 {
		t.Fatalf("done=%v len=%d", done, len(page))
	}

	r := page[0]
	if r.Field(record.FieldURL) != "http://arxiv.org/abs/2201.00001v1" {
		t.Errorf("url = %q", r.Field(record.FieldURL))
	}
	if r.Field(record.FieldTitle) != "Large Language Models for Screening" {
		t.Errorf("title = %q", r.Field(record.FieldTitle))
	}
	if r.Field(record.FieldAuthor) != "Lovelace, Ada and Turing, Alan" {
		t.Errorf("author = %q", r.Field(record.FieldAuthor))
	}
	if r.Field(record.FieldYear) != "2022" {
		t.Errorf("year = %q", r.Field(record.FieldYear))
	}
}

func TestOpenCitationsForward(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"citing": "10.2/citing-a", "cited": "10.1/base"},
			{"citing": "10.2/citing-b", "cited": "10.1/base"},
			{"citing": "10.2/citing-a", "cited": "10.1/base"}
		]`)
	}))
	defer srv.Close()

	src := settings.SearchSource{Platform: PlatformOpenCitations, SearchType: settings.SearchTypeForwardSearch}
	a := NewOpenCitationsAdapter(src, WithOpenCitationsBaseURL(srv.URL))
	records, err := a.GetRecordsForIDs(context.Background(), []string{"10.1/base"})
	if err != nil {
		t.Fatalf("GetRecordsForIDs: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 after dedup", len(records))
	}
	if records[0].Field(record.FieldDOI) != "10.2/citing-a" {
		t.Errorf("doi = %q", records[0].Field(record.FieldDOI))
	}
}

func TestFilesAdapterSearch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "EXPORT.bib")
	content := "@article{Smith2020,\n" +
		"   title                          = {A Study},\n" +
		"   author                         = {Smith, John},\n" +
		"   year                           = {2020},\n" +
		"}\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	a := NewFilesAdapter(settings.SearchSource{
		Platform:          PlatformFiles,
		SearchResultsPath: path,
	})
	pager, err := a.Search(context.Background(), nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	page, done, err := pager.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !done || len(page) != 1 {
		t.Fatalf("done=%v len=%d", done, len(page))
	}
	if page[0].ID != "Smith2020" {
		t.Errorf("id = %q, file imports keep their entry keys", page[0].ID)
	}
}

func TestRegistryClassify(t *testing.T) {
	registry := NewRegistry()

	dblpExport := []byte("@article{DBLP:journals/misq/Smith20,\n  title = {X},\n}\n")
	got := registry.Classify("results.bib", dblpExport)
	if len(got) == 0 || got[0].Platform != PlatformDBLP {
		t.Errorf("classification = %+v, want dblp first", got)
	}

	plain := []byte("@article{Smith2020,\n  title = {X},\n}\n")
	got = registry.Classify("results.bib", plain)
	if len(got) == 0 || got[0].Platform != PlatformFiles {
		t.Errorf("classification = %+v, want files fallback first", got)
	}
}

func TestRegistryUnknownPlatform(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Get(settings.SearchSource{Platform: "nonexistent"})
	if err == nil {
		t.Error("expected error for unknown platform")
	}
}
