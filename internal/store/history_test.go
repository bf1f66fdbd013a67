package store

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/colrev/colrev/internal/gitrepo"
	"github.com/colrev/colrev/internal/record"
)

func initStoreRepo(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@example.org"},
		{"config", "user.name", "Test"},
	} {
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	return New(filepath.Join(dir, "records.bib"), &gitrepo.Repo{Root: dir})
}

func commitRecords(t *testing.T, s *Store, records map[string]*record.Record, msg string) {
	t.Helper()
	if err := s.Save(records); err != nil {
		t.Fatal(err)
	}
	if err := s.AddRecordChanges(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateCommit(msg, false, ""); err != nil {
		t.Fatal(err)
	}
}

func processedRecord(id, origin string) *record.Record {
	r := record.New(id, record.EntryTypeArticle)
	r.Status = record.StateMdProcessed
	r.AddOrigin(origin)
	r.UpdateField(record.FieldTitle, "A Title", origin)
	r.UpdateField(record.FieldAuthor, "Smith, Jane", origin)
	return r
}

func TestHistory_NewestFirstAndRestartable(t *testing.T) {
	s := initStoreRepo(t)

	r1 := processedRecord("Smith2020", "crossref.bib/000001")
	commitRecords(t, s, map[string]*record.Record{"Smith2020": r1}, "first")

	r2 := processedRecord("Doe2021", "crossref.bib/000002")
	commitRecords(t, s, map[string]*record.Record{"Smith2020": r1, "Doe2021": r2}, "second")

	h, err := s.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}

	snap, ok, err := h.Next()
	if err != nil || !ok {
		t.Fatalf("expected first snapshot, ok=%v err=%v", ok, err)
	}
	if len(snap.Records) != 2 {
		t.Errorf("newest snapshot should have 2 records, got %d", len(snap.Records))
	}

	snap, ok, err = h.Next()
	if err != nil || !ok {
		t.Fatalf("expected second snapshot, ok=%v err=%v", ok, err)
	}
	if len(snap.Records) != 1 {
		t.Errorf("older snapshot should have 1 record, got %d", len(snap.Records))
	}

	if _, ok, _ = h.Next(); ok {
		t.Error("expected end of history")
	}

	h.Restart()
	if _, ok, _ = h.Next(); !ok {
		t.Error("restart must rewind the sequence")
	}
}

func TestCheckPropagatedIDs_DetectsRename(t *testing.T) {
	s := initStoreRepo(t)

	r := processedRecord("SmithEtAl2020", "crossref.bib/000001")
	commitRecords(t, s, map[string]*record.Record{"SmithEtAl2020": r}, "processed")

	renamed := processedRecord("NewID", "crossref.bib/000001")
	current := map[string]*record.Record{"NewID": renamed}

	err := s.CheckPropagatedIDs(current)
	var perr *PropagatedIDChangeError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PropagatedIDChangeError, got %v", err)
	}
	if perr.OldID != "SmithEtAl2020" || perr.NewID != "NewID" {
		t.Errorf("unexpected error detail: %+v", perr)
	}
}

func TestCheckPropagatedIDs_AcceptsStableIDs(t *testing.T) {
	s := initStoreRepo(t)

	r := processedRecord("SmithEtAl2020", "crossref.bib/000001")
	commitRecords(t, s, map[string]*record.Record{"SmithEtAl2020": r}, "processed")

	if err := s.CheckPropagatedIDs(map[string]*record.Record{"SmithEtAl2020": r}); err != nil {
		t.Errorf("stable ID must pass, got %v", err)
	}
}

func TestCheckPropagatedIDs_PreProcessedRenamesAllowed(t *testing.T) {
	s := initStoreRepo(t)

	r := processedRecord("Temp2020", "crossref.bib/000001")
	r.Status = record.StateMdImported
	commitRecords(t, s, map[string]*record.Record{"Temp2020": r}, "imported")

	renamed := processedRecord("Final2020", "crossref.bib/000001")
	renamed.Status = record.StateMdImported
	if err := s.CheckPropagatedIDs(map[string]*record.Record{"Final2020": renamed}); err != nil {
		t.Errorf("rename before md_processed must be allowed, got %v", err)
	}

	_ = os.Remove(filepath.Join(s.Repo.Root, "records.bib"))
}
