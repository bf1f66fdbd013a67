// Package ops implements the review operations: each one gates on the
// repository and record-state preconditions, mutates records along the
// transition table, and commits the outcome.
package ops

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/colrev/colrev/internal/conflict"
	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
	"github.com/colrev/colrev/internal/settings"
)

// GitConflictError reports unresolved merge conflicts. Conflicts are fatal
// regardless of force mode. IDs lists the records caught in conflict
// regions of the records file, when that could be determined.
type GitConflictError struct {
	IDs []string
}

func (e *GitConflictError) Error() string {
	if len(e.IDs) == 0 {
		return "repository has unresolved merge conflicts"
	}
	return fmt.Sprintf("repository has unresolved merge conflicts, records affected: %s",
		strings.Join(e.IDs, ", "))
}

// UnstagedChangesError reports unstaged changes blocking an operation.
type UnstagedChangesError struct {
	Paths []string
}

func (e *UnstagedChangesError) Error() string {
	return fmt.Sprintf("unstaged changes: %s", strings.Join(e.Paths, ", "))
}

// CleanRepoRequiredError reports uncommitted changes blocking an operation.
type CleanRepoRequiredError struct {
	Paths []string
}

func (e *CleanRepoRequiredError) Error() string {
	return fmt.Sprintf("clean repository required, uncommitted changes: %s", strings.Join(e.Paths, ", "))
}

// ProcessOrderViolationError reports records that have not reached the state
// an operation requires.
type ProcessOrderViolationError struct {
	Operation record.Operation
	Required  record.State
	IDs       []string
}

func (e *ProcessOrderViolationError) Error() string {
	return fmt.Sprintf("operation %s requires state %s, violated by: %s",
		e.Operation, e.Required, strings.Join(e.IDs, ", "))
}

// CheckPrecondition gates a state-mutating operation: conflicts are always
// fatal; a dirty tree and state-order violations are fatal unless force mode
// or the realtime review type applies.
func CheckPrecondition(mgr *review.Manager, op record.Operation, records map[string]*record.Record) error {
	conflicts, err := mgr.Repo.HasConflicts()
	if err != nil {
		return err
	}
	if conflicts {
		return &GitConflictError{IDs: conflictedRecordIDs(mgr)}
	}
	if mgr.Force || mgr.IsRealtime() {
		return nil
	}

	changed, err := mgr.Repo.ChangedPaths()
	if err != nil {
		return err
	}
	blocking := filterIgnored(changed, ignorePatterns(op))
	if len(blocking) > 0 {
		unstaged, err := mgr.Repo.UnstagedPaths()
		if err != nil {
			return err
		}
		if u := filterIgnored(unstaged, ignorePatterns(op)); len(u) > 0 {
			return &UnstagedChangesError{Paths: u}
		}
		return &CleanRepoRequiredError{Paths: blocking}
	}

	required, ok := record.RequiredState(op)
	if !ok {
		return nil
	}
	var violating []string
	for id, r := range records {
		if !r.Status.Valid() || !r.Status.Before(required) {
			continue
		}
		if record.CanTrigger(op, r.Status) {
			continue
		}
		violating = append(violating, id)
	}
	if len(violating) > 0 {
		sort.Strings(violating)
		return &ProcessOrderViolationError{Operation: op, Required: required, IDs: violating}
	}
	return nil
}

// conflictedRecordIDs names the records inside conflict regions of the
// records file. Best effort, a missing or unparsable file yields nil.
func conflictedRecordIDs(mgr *review.Manager) []string {
	f, err := os.Open(mgr.RecordsPath())
	if err != nil {
		return nil
	}
	defer f.Close()
	result, err := conflict.Parse(f)
	if err != nil {
		return nil
	}
	return result.IDs()
}

// ignorePatterns lists path prefixes an operation tolerates as dirty.
func ignorePatterns(op record.Operation) []string {
	switch op {
	case record.OpLoad:
		return []string{settings.SearchDir + "/", settings.SettingsFile}
	case record.OpPrepMan, record.OpPrescreen:
		return []string{settings.RecordsFile}
	case record.OpPdfGet, record.OpPdfGetMan:
		return []string{settings.PDFDir + "/"}
	default:
		return nil
	}
}

func filterIgnored(paths, patterns []string) []string {
	var out []string
	for _, p := range paths {
		ignored := false
		for _, pat := range patterns {
			if p == pat || strings.HasPrefix(p, pat) {
				ignored = true
				break
			}
		}
		if !ignored {
			out = append(out, p)
		}
	}
	return out
}
