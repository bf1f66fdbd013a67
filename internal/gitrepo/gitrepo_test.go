package gitrepo

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initTestRepo creates a git repository with identity configured so commits
// work in CI environments.
func initTestRepo(t *testing.T) *Repo {
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
	return &Repo{Root: dir}
}

func writeFile(t *testing.T, repo *Repo, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(repo.Root, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_NotARepo(t *testing.T) {
	_, err := Open(t.TempDir())
	if err != ErrNotGitRepo {
		t.Errorf("expected ErrNotGitRepo, got %v", err)
	}
}

func TestHasChanges(t *testing.T) {
	repo := initTestRepo(t)

	clean, err := repo.HasChanges()
	if err != nil {
		t.Fatal(err)
	}
	if clean {
		t.Error("fresh repo should have no changes")
	}

	writeFile(t, repo, "records.bib", "@article{X,\n}\n")
	dirty, err := repo.HasChanges()
	if err != nil {
		t.Fatal(err)
	}
	if !dirty {
		t.Error("untracked file should count as change")
	}
}

func TestAddAll_StagesUntrackedAndDeleted(t *testing.T) {
	repo := initTestRepo(t)
	writeFile(t, repo, "records.bib", "v1\n")
	if err := repo.AddAll(); err != nil {
		t.Fatalf("AddAll with untracked file: %v", err)
	}
	if _, err := repo.Commit("add records", false, "colrev load"); err != nil {
		t.Fatal(err)
	}

	writeFile(t, repo, "search.bib", "@article{X,\n}\n")
	if err := os.Remove(filepath.Join(repo.Root, "records.bib")); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddAll(); err != nil {
		t.Fatalf("AddAll with deletion: %v", err)
	}
	if _, err := repo.Commit("replace records", false, ""); err != nil {
		t.Fatal(err)
	}

	dirty, err := repo.HasChanges()
	if err != nil {
		t.Fatal(err)
	}
	if dirty {
		t.Error("expected a clean tree after staging everything")
	}
}

func TestCommitAndFileAtCommit(t *testing.T) {
	repo := initTestRepo(t)
	writeFile(t, repo, "records.bib", "v1\n")
	if err := repo.Add("records.bib"); err != nil {
		t.Fatal(err)
	}
	sha1, err := repo.Commit("add records", false, "colrev load")
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, repo, "records.bib", "v2\n")
	if err := repo.Add("records.bib"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Commit("update records", false, ""); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FileAtCommit("records.bib", sha1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "v1\n" {
		t.Errorf("expected v1 at first commit, got %q", got)
	}

	head, err := repo.FileAtCommit("records.bib", "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if head != "v2\n" {
		t.Errorf("expected v2 at HEAD, got %q", head)
	}
}

func TestCommitsTouching(t *testing.T) {
	repo := initTestRepo(t)
	writeFile(t, repo, "records.bib", "v1\n")
	repo.Add("records.bib")
	repo.Commit("one", false, "")

	writeFile(t, repo, "other.txt", "x\n")
	repo.Add("other.txt")
	repo.Commit("two", false, "")

	writeFile(t, repo, "records.bib", "v2\n")
	repo.Add("records.bib")
	repo.Commit("three", false, "")

	shas, err := repo.CommitsTouching("records.bib")
	if err != nil {
		t.Fatal(err)
	}
	if len(shas) != 2 {
		t.Errorf("expected 2 commits touching records.bib, got %d", len(shas))
	}
}

func TestFileAtCommit_MissingFile(t *testing.T) {
	repo := initTestRepo(t)
	writeFile(t, repo, "a.txt", "x\n")
	repo.Add("a.txt")
	repo.Commit("init", false, "")

	got, err := repo.FileAtCommit("never-existed.bib", "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("missing file should yield empty contents, got %q", got)
	}
}

func TestResolveCommit_Unknown(t *testing.T) {
	repo := initTestRepo(t)
	writeFile(t, repo, "a.txt", "x\n")
	repo.Add("a.txt")
	repo.Commit("init", false, "")

	if _, err := repo.ResolveCommit("deadbeef"); err != ErrCommitNotFound {
		t.Errorf("expected ErrCommitNotFound, got %v", err)
	}
}

func TestHasConflicts_CleanRepo(t *testing.T) {
	repo := initTestRepo(t)
	writeFile(t, repo, "a.txt", "x\n")
	repo.Add("a.txt")
	repo.Commit("init", false, "")

	conflicted, err := repo.HasConflicts()
	if err != nil {
		t.Fatal(err)
	}
	if conflicted {
		t.Error("clean repo must not report conflicts")
	}
}
