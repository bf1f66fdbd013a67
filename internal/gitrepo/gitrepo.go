// Package gitrepo wraps the git CLI for the review repository: status
// predicates, staging, commits, and file contents at historical commits.
// Git is the serialization point for the record store; operations never run
// concurrently on the same repository.
package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNotGitRepo indicates the directory is not a git repository.
var ErrNotGitRepo = errors.New("not a git repository")

// ErrCommitNotFound indicates the specified commit does not exist.
var ErrCommitNotFound = errors.New("commit not found")

// RepoSetupError reports a repository in a state the review cannot work
// with (missing, shallow, corrupted).
type RepoSetupError struct {
	Path    string
	Message string
}

func (e *RepoSetupError) Error() string {
	return fmt.Sprintf("repository setup error at %s: %s", e.Path, e.Message)
}

// Repo is an open handle on the review repository.
type Repo struct {
	Root string
}

// Open discovers the repository root containing path.
func Open(path string) (*Repo, error) {
	out, err := run(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, ErrNotGitRepo
	}
	return &Repo{Root: strings.TrimSpace(out)}, nil
}

// Init creates a new repository at path.
func Init(path string) (*Repo, error) {
	if _, err := run(path, "init"); err != nil {
		return nil, &RepoSetupError{Path: path, Message: err.Error()}
	}
	return &Repo{Root: path}, nil
}

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

// HasChanges reports whether the working tree or index differs from HEAD.
func (r *Repo) HasChanges() (bool, error) {
	out, err := run(r.Root, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// ChangedPaths returns the paths reported dirty by git status, with their
// two-letter status codes stripped.
func (r *Repo) ChangedPaths() ([]string, error) {
	out, err := run(r.Root, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		p := strings.TrimSpace(line[3:])
		// Renames are reported as "old -> new".
		if idx := strings.Index(p, " -> "); idx >= 0 {
			p = p[idx+4:]
		}
		paths = append(paths, strings.Trim(p, `"`))
	}
	return paths, nil
}

// UnstagedPaths returns paths with unstaged modifications.
func (r *Repo) UnstagedPaths() ([]string, error) {
	out, err := run(r.Root, "diff", "--name-only")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// HasConflicts reports whether the index contains unmerged (stage != 0)
// blobs. Conflicts are fatal for every operation regardless of mode.
func (r *Repo) HasConflicts() (bool, error) {
	out, err := run(r.Root, "ls-files", "-u")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// BehindRemote reports whether the current branch is behind its upstream.
func (r *Repo) BehindRemote() (bool, error) {
	out, err := run(r.Root, "rev-list", "--count", "HEAD..@{upstream}")
	if err != nil {
		// No upstream configured: not behind.
		return false, nil
	}
	return strings.TrimSpace(out) != "0", nil
}

// Add stages the given paths.
func (r *Repo) Add(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := run(r.Root, append([]string{"add", "--"}, paths...)...)
	return err
}

// AddAll stages every change in the working tree, including deletions and
// untracked files.
func (r *Repo) AddAll() error {
	_, err := run(r.Root, "add", "-A")
	return err
}

// Commit records the staged changes. scriptCall, when non-empty, is
// appended as a trailer identifying the operation that produced the
// commit; manualAuthor switches authorship to the configured user instead
// of the tool identity.
func (r *Repo) Commit(msg string, manualAuthor bool, scriptCall string) (string, error) {
	full := msg
	if scriptCall != "" {
		full += "\n\nScript: " + scriptCall
	}
	args := []string{"commit", "-m", full}
	if !manualAuthor {
		args = append(args, "--author", "colrev <colrev@noreply>")
	}
	if _, err := run(r.Root, args...); err != nil {
		return "", err
	}
	out, err := run(r.Root, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// FileAtCommit returns the contents of path (repo-relative) at commitRef.
// A path absent at that commit yields "" without error.
func (r *Repo) FileAtCommit(path, commitRef string) (string, error) {
	sha, err := r.ResolveCommit(commitRef)
	if err != nil {
		return "", err
	}
	out, err := run(r.Root, "show", sha+":"+path)
	if err != nil {
		return "", nil
	}
	return out, nil
}

// ResolveCommit verifies that a commit reference exists and returns its
// full SHA. Supports SHA, HEAD, HEAD~N, branch names, tags.
func (r *Repo) ResolveCommit(commitRef string) (string, error) {
	out, err := run(r.Root, "rev-parse", "--verify", commitRef+"^{commit}")
	if err != nil {
		return "", ErrCommitNotFound
	}
	return strings.TrimSpace(out), nil
}

// CommitsTouching returns the SHAs of commits that modified path, newest
// first.
func (r *Repo) CommitsTouching(path string) ([]string, error) {
	out, err := run(r.Root, "log", "--format=%H", "--", path)
	if err != nil {
		return nil, err
	}
	var shas []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			shas = append(shas, line)
		}
	}
	return shas, nil
}
