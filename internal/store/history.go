package store

import (
	"github.com/colrev/colrev/internal/record"
)

// HistorySnapshot is the record collection at one commit, newest first in
// iteration order.
type HistorySnapshot struct {
	CommitSHA string
	Records   map[string]*record.Record
}

// History is a lazy, restartable sequence over the records file at each
// commit that touched it, newest first. Each call to Next parses one
// snapshot; snapshots are independent copies.
type History struct {
	store *Store
	shas  []string
	pos   int
}

// LoadHistory prepares the history sequence.
func (s *Store) LoadHistory() (*History, error) {
	if s.Repo == nil {
		return &History{store: s}, nil
	}
	shas, err := s.Repo.CommitsTouching(s.RelPath())
	if err != nil {
		return nil, err
	}
	return &History{store: s, shas: shas}, nil
}

// Next yields the next (older) snapshot, or ok=false at the end. Commits at
// which the file is unparsable are skipped.
func (h *History) Next() (HistorySnapshot, bool, error) {
	for h.pos < len(h.shas) {
		sha := h.shas[h.pos]
		h.pos++
		content, err := h.store.Repo.FileAtCommit(h.store.RelPath(), sha)
		if err != nil {
			return HistorySnapshot{}, false, err
		}
		if content == "" {
			continue
		}
		records, _, err := Parse(content)
		if err != nil {
			continue
		}
		return HistorySnapshot{CommitSHA: sha, Records: records}, true, nil
	}
	return HistorySnapshot{}, false, nil
}

// Restart rewinds the sequence to the newest commit.
func (h *History) Restart() {
	h.pos = 0
}

// CheckPropagatedIDs walks the history and verifies that no origin of a
// record that reached md_processed has been re-linked to a different ID in
// the current collection. The first violation aborts the scan.
func (s *Store) CheckPropagatedIDs(current map[string]*record.Record) error {
	history, err := s.LoadHistory()
	if err != nil {
		return err
	}

	// origin -> current ID
	currentByOrigin := map[string]string{}
	for id, r := range current {
		for _, o := range r.Origins {
			currentByOrigin[o] = id
		}
	}

	persisted := record.PostStates(record.StateMdProcessed)

	for {
		snap, ok, err := history.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		for id, r := range snap.Records {
			if !persisted[r.Status] {
				continue
			}
			for _, o := range r.Origins {
				curID, present := currentByOrigin[o]
				if present && curID != id {
					return &PropagatedIDChangeError{Origin: o, OldID: id, NewID: curID}
				}
			}
		}
	}
}
