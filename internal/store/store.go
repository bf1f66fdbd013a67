package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/colrev/colrev/internal/gitrepo"
	"github.com/colrev/colrev/internal/record"
)

// DuplicateIDsError reports IDs appearing more than once in the records file.
type DuplicateIDsError struct {
	IDs []string
}

func (e *DuplicateIDsError) Error() string {
	return fmt.Sprintf("duplicate IDs in records file: %s", strings.Join(e.IDs, ", "))
}

// OriginError reports records without an origin.
type OriginError struct {
	IDs []string
}

func (e *OriginError) Error() string {
	return fmt.Sprintf("records without origin: %s", strings.Join(e.IDs, ", "))
}

// StatusFieldValueError reports a status value outside the enumeration.
type StatusFieldValueError struct {
	ID     string
	Status string
}

func (e *StatusFieldValueError) Error() string {
	return fmt.Sprintf("record %s: invalid status %q", e.ID, e.Status)
}

// FieldValueError reports a field value the store cannot accept.
type FieldValueError struct {
	ID      string
	Field   string
	Message string
}

func (e *FieldValueError) Error() string {
	return fmt.Sprintf("record %s, field %s: %s", e.ID, e.Field, e.Message)
}

// PropagatedIDChangeError reports a rename of an ID that has been persisted
// (reached md_processed in a prior commit).
type PropagatedIDChangeError struct {
	Origin string
	OldID  string
	NewID  string
}

func (e *PropagatedIDChangeError) Error() string {
	return fmt.Sprintf("propagated ID changed for origin %s: %s -> %s", e.Origin, e.OldID, e.NewID)
}

// Store is the canonical keyed record collection, persisted as one
// BibTeX-shaped file inside the review repository.
type Store struct {
	// Path is the records file, absolute.
	Path string
	// Repo is the containing git repository; nil outside a repository
	// (feed round-trip checks, tests).
	Repo *gitrepo.Repo
}

// New opens a store on the records file at path.
func New(path string, repo *gitrepo.Repo) *Store {
	return &Store{Path: path, Repo: repo}
}

// RelPath returns the records path relative to the repository root.
func (s *Store) RelPath() string {
	if s.Repo == nil {
		return s.Path
	}
	rel, err := filepath.Rel(s.Repo.Root, s.Path)
	if err != nil {
		return s.Path
	}
	return filepath.ToSlash(rel)
}

// Load parses the records file and validates its structure: no duplicate
// IDs, every record carries an origin, every status is in the enumeration.
func (s *Store) Load() (map[string]*record.Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*record.Record{}, nil
		}
		return nil, fmt.Errorf("reading records file: %w", err)
	}
	return loadFromContent(string(data))
}

func loadFromContent(content string) (map[string]*record.Record, error) {
	records, order, err := Parse(content)
	if err != nil {
		return nil, err
	}

	seen := map[string]int{}
	for _, id := range order {
		seen[id]++
	}
	var dups []string
	for id, n := range seen {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, &DuplicateIDsError{IDs: dups}
	}

	var noOrigin []string
	for id, r := range records {
		if len(r.Origins) == 0 {
			noOrigin = append(noOrigin, id)
		}
		if r.Status != "" && !r.Status.Valid() {
			return nil, &StatusFieldValueError{ID: id, Status: string(r.Status)}
		}
	}
	if len(noOrigin) > 0 {
		sort.Strings(noOrigin)
		return nil, &OriginError{IDs: noOrigin}
	}

	return records, nil
}

// Save atomically rewrites the records file in canonical order.
func (s *Store) Save(records map[string]*record.Record) error {
	content := Serialize(records, SerializeOptions{})
	return WriteFileAtomic(s.Path, []byte(content))
}

// WriteFileAtomic writes via a temp file and rename in the same directory.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// NrRecordsInFile counts entries via a header scan without full parsing.
func NrRecordsInFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	n := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if strings.HasPrefix(strings.TrimSpace(scanner.Text()), "@") {
			n++
		}
	}
	return n, scanner.Err()
}

// GenerateNextUniqueID appends lowercase letter suffixes (a..z, then aa..)
// to tempID until the result is absent from existingIDs.
func GenerateNextUniqueID(tempID string, existingIDs map[string]bool) string {
	if !existingIDs[tempID] {
		return tempID
	}
	for length := 1; ; length++ {
		suffix := make([]byte, length)
		for i := range suffix {
			suffix[i] = 'a'
		}
		for {
			candidate := tempID + string(suffix)
			if !existingIDs[candidate] {
				return candidate
			}
			if !incrementSuffix(suffix) {
				break
			}
		}
	}
}

// incrementSuffix advances the letter suffix like an odometer; false when
// the space of this length is exhausted.
func incrementSuffix(s []byte) bool {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] < 'z' {
			s[i]++
			return true
		}
		s[i] = 'a'
	}
	return false
}

// AddRecordChanges stages the records file.
func (s *Store) AddRecordChanges() error {
	if s.Repo == nil {
		return nil
	}
	return s.Repo.Add(s.RelPath())
}

// AddChanges stages an arbitrary repo-relative path.
func (s *Store) AddChanges(relPath string) error {
	if s.Repo == nil {
		return nil
	}
	return s.Repo.Add(relPath)
}

// CreateCommit commits the staged changes.
func (s *Store) CreateCommit(msg string, manualAuthor bool, scriptCall string) (string, error) {
	if s.Repo == nil {
		return "", gitrepo.ErrNotGitRepo
	}
	return s.Repo.Commit(msg, manualAuthor, scriptCall)
}

// RecordsChanged reports whether the records file differs from HEAD.
func (s *Store) RecordsChanged() (bool, error) {
	if s.Repo == nil {
		return false, nil
	}
	paths, err := s.Repo.ChangedPaths()
	if err != nil {
		return false, err
	}
	rel := s.RelPath()
	for _, p := range paths {
		if p == rel {
			return true, nil
		}
	}
	return false, nil
}

// HasChanges reports whether the repository has any uncommitted change.
func (s *Store) HasChanges() (bool, error) {
	if s.Repo == nil {
		return false, nil
	}
	return s.Repo.HasChanges()
}
