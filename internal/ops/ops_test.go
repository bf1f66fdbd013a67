package ops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/colrev/colrev/internal/gitrepo"
	"github.com/colrev/colrev/internal/logging"
	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
	"github.com/colrev/colrev/internal/store"
)

func runGit(t *testing.T, root string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = root
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v: %s", args, err, out)
	}
	return string(out)
}

func initRepo(t *testing.T) *review.Manager {
	t.Helper()
	root := t.TempDir()
	if _, err := gitrepo.Init(root); err != nil {
		t.Fatalf("git init: %v", err)
	}
	runGit(t, root, "config", "user.name", "tester")
	runGit(t, root, "config", "user.email", "tester@example.com")

	mgr, err := review.Open(root, review.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("review.Open: %v", err)
	}
	if err := mgr.SaveSettings(); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	commitAll(t, mgr, "Initial commit")
	return mgr
}

func commitAll(t *testing.T, mgr *review.Manager, msg string) {
	t.Helper()
	if err := mgr.Repo.AddAll(); err != nil {
		t.Fatalf("git add: %v", err)
	}
	if _, err := mgr.Repo.Commit(msg, false, ""); err != nil {
		t.Fatalf("git commit: %v", err)
	}
}

func article(id, origin string) *record.Record {
	r := record.New(id, record.EntryTypeArticle)
	r.AddOrigin(origin)
	r.UpdateField(record.FieldAuthor, "Smith, Jane", origin)
	r.UpdateField(record.FieldTitle, "Digital Transformation in Practice", origin)
	r.UpdateField(record.FieldJournal, "MIS Quarterly", origin)
	r.UpdateField(record.FieldYear, "2020", origin)
	r.UpdateField(record.FieldVolume, "44", origin)
	r.UpdateField(record.FieldNumber, "2", origin)
	r.UpdateField(record.FieldPages, "1--21", origin)
	r.UpdateField(record.FieldLanguage, "eng", origin)
	r.Status = record.StateMdImported
	return r
}

func seed(t *testing.T, mgr *review.Manager, records map[string]*record.Record) {
	t.Helper()
	if err := mgr.Store.Save(records); err != nil {
		t.Fatalf("Store.Save: %v", err)
	}
	commitAll(t, mgr, "Seed records")
}

func writeFeedFile(t *testing.T, mgr *review.Manager, filename string, rows map[string]*record.Record) {
	t.Helper()
	dir := mgr.SearchDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := store.Serialize(rows, store.SerializeOptions{OmitOrigin: true})
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
