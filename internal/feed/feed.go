// Package feed maintains per-provider feed files: the raw retrieved records,
// keyed by source identifier, from which canonical records are imported and
// against which later retrievals are reconciled.
package feed

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/colrev/colrev/internal/logging"
	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/settings"
	"github.com/colrev/colrev/internal/store"
)

// RecordNotFoundError reports a feed row with no matching canonical record.
type RecordNotFoundError struct {
	Origin string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("no canonical record with origin %s", e.Origin)
}

// NotFeedIdentifiableError reports a retrieval that carries no value for the
// feed's source identifier.
type NotFeedIdentifiableError struct {
	SourceIdentifier string
}

func (e *NotFeedIdentifiableError) Error() string {
	return fmt.Sprintf("record carries no %s, cannot be identified in feed", e.SourceIdentifier)
}

// ErrSaveContention indicates the feed file lock could not be acquired.
var ErrSaveContention = errors.New("feed file locked by another process")

// TimeVariantFields lists fields preserved from the prior feed row when a
// feed runs in update-only mode.
var TimeVariantFields = []string{"cited_by", "cited_by_file", "colrev.retrieval_date"}

const saveAttempts = 5

// Feed is the append-and-reconcile store of one search source.
type Feed struct {
	mu sync.Mutex

	path             string
	source           settings.SearchSource
	sourceIdentifier string
	updateOnly       bool
	prepMode         bool

	records           map[string]*record.Record
	availableIDs      map[string]string
	nextIncrementalID int

	canonical map[string]*record.Record
	byOrigin  map[string]*record.Record

	settings *settings.Settings
	root     string
	logger   *slog.Logger

	nrAdded   int
	nrChanged int
}

// Option configures a Feed.
type Option func(*Feed)

// WithUpdateOnly preserves time-variant fields of prior feed rows.
func WithUpdateOnly() Option {
	return func(f *Feed) { f.updateOnly = true }
}

// WithPrepMode disables propagation to the canonical store.
func WithPrepMode() Option {
	return func(f *Feed) { f.prepMode = true }
}

// WithCanonical attaches the canonical record collection; reconciled changes
// are written into these records in place.
func WithCanonical(records map[string]*record.Record) Option {
	return func(f *Feed) { f.canonical = records }
}

// WithSettings attaches the project settings rooted at root; Save registers
// the feed's search source on first write.
func WithSettings(s *settings.Settings, root string) Option {
	return func(f *Feed) {
		f.settings = s
		f.root = root
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) { f.logger = logger }
}

// Open loads (or initializes) the feed file for the given search source.
// sourceIdentifier names the field whose value identifies a row (doi,
// dblp_key, url).
func Open(path string, source settings.SearchSource, sourceIdentifier string, opts ...Option) (*Feed, error) {
	f := &Feed{
		path:              path,
		source:            source,
		sourceIdentifier:  sourceIdentifier,
		records:           map[string]*record.Record{},
		availableIDs:      map[string]string{},
		logger:            logging.Discard(),
		nextIncrementalID: 1,
	}
	for _, opt := range opts {
		opt(f)
	}

	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading feed file: %w", err)
	}
	if len(content) > 0 {
		records, _, err := store.Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("parsing feed file %s: %w", filepath.Base(path), err)
		}
		f.records = records
	}

	for id, r := range f.records {
		if v := f.identifierValue(r); v != "" {
			f.availableIDs[v] = id
		}
		if n, err := strconv.Atoi(id); err == nil && n >= f.nextIncrementalID {
			f.nextIncrementalID = n + 1
		}
	}

	if f.canonical != nil {
		f.byOrigin = map[string]*record.Record{}
		for _, r := range f.canonical {
			for _, o := range r.Origins {
				f.byOrigin[o] = r
			}
		}
	}
	return f, nil
}

// OriginPrefix returns the feed's origin prefix, the base name of its file.
func (f *Feed) OriginPrefix() string {
	return filepath.Base(f.path)
}

// Origin returns the origin string of a feed row.
func (f *Feed) Origin(feedID string) string {
	return f.OriginPrefix() + "/" + feedID
}

// Records returns the feed rows keyed by feed ID.
func (f *Feed) Records() map[string]*record.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*record.Record, len(f.records))
	for id, r := range f.records {
		out[id] = r.Copy()
	}
	return out
}

// Counts returns the number of rows added and changed so far.
func (f *Feed) Counts() (added, changed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nrAdded, f.nrChanged
}

// GetPrevFeedRecord returns the last-seen feed row matching the record's
// source identifier, or nil if the identifier is unknown.
func (f *Feed) GetPrevFeedRecord(r *record.Record) *record.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prevLocked(r)
}

func (f *Feed) prevLocked(r *record.Record) *record.Record {
	v := f.identifierValue(r)
	if v == "" {
		return nil
	}
	id, ok := f.availableIDs[v]
	if !ok {
		return nil
	}
	return f.records[id].Copy()
}

// identifierValue extracts the value identifying a retrieval in this feed.
// ID-keyed feeds (file imports, prior projects) use the record key itself.
func (f *Feed) identifierValue(r *record.Record) string {
	if f.sourceIdentifier == record.FieldID {
		return r.ID
	}
	return r.Field(f.sourceIdentifier)
}

// AddUpdateRecord reconciles one retrieval into the feed. It reports whether
// the row is new and whether its content changed. Outside prep mode, field
// changes are propagated to the canonical record linked by origin; a missing
// canonical record yields a RecordNotFoundError the caller resolves by
// importing.
func (f *Feed) AddUpdateRecord(retrieved *record.Record) (added, changed bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := retrieved.Copy()
	stripFeedRecord(r)

	idv := f.identifierValue(r)
	prev := f.prevLocked(r)
	if err := f.setID(r, prev, idv); err != nil {
		return false, false, err
	}
	added = prev == nil

	forthcomingPublished := prev != nil && publishedSince(prev, r)

	if f.updateOnly && prev != nil {
		for _, key := range TimeVariantFields {
			if v := prev.Field(key); v != "" {
				r.Data[key] = v
			}
		}
	}

	changed = !added && rowsDiffer(prev, r)
	f.records[r.ID] = r
	f.availableIDs[idv] = r.ID
	if added {
		f.nrAdded++
	}
	if changed {
		f.nrChanged++
	}

	if isRetracted(r) {
		if canonical := f.byOrigin[f.Origin(r.ID)]; canonical != nil {
			canonical.PrescreenExclude(record.ReasonRetracted)
			f.logger.Warn("retraction detected", "id", canonical.ID, "origin", f.Origin(r.ID))
		}
		return added, changed, nil
	}

	if f.prepMode || added || f.canonical == nil {
		return added, changed, nil
	}
	if err := f.propagate(r, forthcomingPublished); err != nil {
		return added, changed, err
	}
	return added, changed, nil
}

// setID assigns the feed-internal ID: the prior ID when the source
// identifier is known, the next incremental ID otherwise. ID-keyed feeds
// keep the retrieval's own key.
func (f *Feed) setID(r *record.Record, prev *record.Record, idv string) error {
	if idv == "" {
		return &NotFeedIdentifiableError{SourceIdentifier: f.sourceIdentifier}
	}
	if f.sourceIdentifier == record.FieldID {
		return nil
	}
	if prev != nil {
		r.ID = prev.ID
		return nil
	}
	r.ID = fmt.Sprintf("%06d", f.nextIncrementalID)
	f.nextIncrementalID++
	return nil
}

// propagate writes differing fields of the feed row into the canonical
// record linked by origin.
func (f *Feed) propagate(r *record.Record, forthcomingPublished bool) error {
	origin := f.Origin(r.ID)
	canonical := f.byOrigin[origin]
	if canonical == nil {
		return &RecordNotFoundError{Origin: origin}
	}
	if canonical.MasterdataIsCurated() && !f.isCurated() {
		return nil
	}

	for _, key := range r.FieldKeys() {
		value := r.Field(key)
		if value == "" || value == canonical.Field(key) {
			continue
		}
		if canonical.IgnoredDefect(key, record.NoteMissing) {
			liftable := forthcomingPublished &&
				(key == record.FieldVolume || key == record.FieldNumber)
			if !liftable {
				continue
			}
			canonical.RemoveProvenanceNote(key, record.IgnorePrefix+record.NoteMissing)
		}
		canonical.UpdateField(key, value, origin)
	}
	return nil
}

// Save atomically rewrites the feed file, registering the search source in
// the project settings on first write. Contention on the file lock is
// retried with bounded random backoff.
func (f *Feed) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("creating feed directory: %w", err)
	}

	lock := flock.New(f.path + ".lock")
	locked := false
	for attempt := 0; attempt < saveAttempts; attempt++ {
		ok, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("locking feed file: %w", err)
		}
		if ok {
			locked = true
			break
		}
		backoff := time.Duration(1+rand.Intn(15)) * time.Second
		f.logger.Debug("feed file locked, retrying", "path", f.path, "backoff", backoff)
		time.Sleep(backoff)
	}
	if !locked {
		return ErrSaveContention
	}
	defer lock.Unlock()

	content := store.Serialize(f.records, store.SerializeOptions{OmitOrigin: true})
	if err := store.WriteFileAtomic(f.path, []byte(content)); err != nil {
		return fmt.Errorf("writing feed file: %w", err)
	}

	if f.settings != nil && f.settings.AddSource(f.source) {
		if err := f.settings.Save(f.root); err != nil {
			return err
		}
	}
	return nil
}

func (f *Feed) isCurated() bool {
	return f.OriginPrefix() == record.CuratedFileName
}

// stripFeedRecord removes provenance, origins, and workflow state; feed rows
// carry raw provider data only.
func stripFeedRecord(r *record.Record) {
	r.MdProv = map[string]record.Provenance{}
	r.DProv = map[string]record.Provenance{}
	r.Origins = nil
	r.Status = record.StateMdRetrieved
}

// publishedSince reports the forthcoming-published signal: the prior row was
// forthcoming (or missing volume and number) and the new retrieval carries
// the concrete values.
func publishedSince(prev, cur *record.Record) bool {
	if prev.Field(record.FieldYear) == record.Forthcoming &&
		cur.Field(record.FieldYear) != record.Forthcoming &&
		cur.Field(record.FieldYear) != "" {
		return true
	}
	prevUnknown := prev.Field(record.FieldVolume) == record.UnknownValue ||
		prev.Field(record.FieldNumber) == record.UnknownValue
	curFilled := concrete(cur.Field(record.FieldVolume)) && concrete(cur.Field(record.FieldNumber))
	return prevUnknown && curFilled
}

func concrete(v string) bool {
	return v != "" && v != record.UnknownValue
}

func isRetracted(r *record.Record) bool {
	if truthy(r.Field(record.FieldRetracted)) {
		return true
	}
	return truthy(r.Field("crossmark"))
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "true", "y", "1":
		return true
	}
	return false
}

// rowsDiffer reports whether two feed rows differ after normalization
// through the canonical writer and parser. Identity and curation linkage
// fields are excluded.
func rowsDiffer(a, b *record.Record) bool {
	na, nb := normalizeRow(a), normalizeRow(b)
	if na.EntryType != nb.EntryType {
		return true
	}
	if len(na.Data) != len(nb.Data) {
		return true
	}
	for key, v := range na.Data {
		if key == "curation_ID" {
			continue
		}
		if nb.Data[key] != v {
			return true
		}
	}
	return false
}

func normalizeRow(r *record.Record) *record.Record {
	content := store.SerializeRecord(r, store.SerializeOptions{OmitOrigin: true})
	parsed, _, err := store.Parse(content)
	if err != nil {
		return r
	}
	if n, ok := parsed[r.ID]; ok {
		return n
	}
	return r
}
