// Package toc maintains the local table-of-contents index: the containers
// (journals, proceedings) known to the project, keyed for fuzzy lookup by
// the quality model's record-not-in-toc checker.
package toc

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/colrev/colrev/internal/record"
)

// ErrNotInTOC indicates the container did not resolve in the index.
var ErrNotInTOC = errors.New("container not in table-of-contents index")

// DefaultSimilarityThreshold is used when callers pass no override.
const DefaultSimilarityThreshold = 0.9

// Index is a sqlite-backed container index.
type Index struct {
	db *sql.DB
}

// Open creates or opens the index database at path.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening toc index: %w", err)
	}
	schema := `
		CREATE TABLE IF NOT EXISTS containers (
			name TEXT NOT NULL,
			name_normalized TEXT NOT NULL,
			year TEXT,
			volume TEXT,
			PRIMARY KEY (name_normalized, year, volume)
		);

		CREATE INDEX IF NOT EXISTS idx_containers_normalized ON containers(name_normalized);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating toc schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the database handle.
func (i *Index) Close() error {
	return i.db.Close()
}

// Add registers a container occurrence. Year and volume may be empty.
func (i *Index) Add(name, year, volume string) error {
	_, err := i.db.Exec(
		`INSERT OR IGNORE INTO containers (name, name_normalized, year, volume) VALUES (?, ?, ?, ?)`,
		name, normalize(name), year, volume,
	)
	if err != nil {
		return fmt.Errorf("adding container %q: %w", name, err)
	}
	return nil
}

// AddRecord registers the container of a record, if it has one.
func (i *Index) AddRecord(r *record.Record) error {
	name := r.Field(record.FieldJournal)
	if name == "" {
		name = r.Field(record.FieldBooktitle)
	}
	if name == "" {
		return nil
	}
	return i.Add(name, r.Field(record.FieldYear), r.Field(record.FieldVolume))
}

// ContainsContainer reports whether container resolves in the index at the
// given similarity threshold. A zero threshold selects the default 0.9.
func (i *Index) ContainsContainer(container string, threshold float64) (bool, error) {
	if threshold == 0 {
		threshold = DefaultSimilarityThreshold
	}
	needle := normalize(container)
	if needle == "" {
		return false, nil
	}

	// Exact normalized match first.
	var n int
	if err := i.db.QueryRow(
		`SELECT COUNT(*) FROM containers WHERE name_normalized = ?`, needle,
	).Scan(&n); err != nil {
		return false, fmt.Errorf("querying toc index: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	// Fuzzy pass over candidate names.
	rows, err := i.db.Query(`SELECT DISTINCT name_normalized FROM containers`)
	if err != nil {
		return false, fmt.Errorf("querying toc index: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var candidate string
		if err := rows.Scan(&candidate); err != nil {
			return false, err
		}
		if record.PartialRatio(needle, candidate) >= int(threshold*100) {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Lookup returns ErrNotInTOC when the container does not resolve; callers
// treat that as a result, not a failure.
func (i *Index) Lookup(container string, threshold float64) error {
	found, err := i.ContainsContainer(container, threshold)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotInTOC
	}
	return nil
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "the ")
	return strings.Join(strings.Fields(name), " ")
}
