package search

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/colrev/colrev/internal/feed"
	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/review"
	"github.com/colrev/colrev/internal/settings"
)

// defaultWorkers bounds the pool for metadata-only lookups.
const defaultWorkers = 4

// Orchestrator runs all registered search sources.
type Orchestrator struct {
	mgr      *review.Manager
	registry *Registry
	workers  int
	logger   *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRegistry replaces the adapter registry.
func WithRegistry(r *Registry) OrchestratorOption {
	return func(o *Orchestrator) { o.registry = r }
}

// WithWorkers sets the metadata-lookup pool size.
func WithWorkers(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// NewOrchestrator creates an orchestrator over the project's sources.
func NewOrchestrator(mgr *review.Manager, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		mgr:      mgr,
		registry: NewRegistry(),
		workers:  defaultWorkers,
		logger:   mgr.Logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes every configured source. With rerun, feeds re-retrieve their
// full result sets; otherwise retrieval stops early once known unchanged
// results appear. A cancelled run persists everything retrieved so far
// before returning.
func (o *Orchestrator) Run(ctx context.Context, rerun bool) error {
	records, err := o.mgr.Store.Load()
	if err != nil {
		return err
	}

	var runErr error
	sources := make([]settings.SearchSource, len(o.mgr.Settings.Sources))
	copy(sources, o.mgr.Settings.Sources)
	for i := range sources {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := o.runSource(ctx, &sources[i], records, rerun); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				runErr = err
				break
			}
			o.logger.Warn("source failed", "platform", sources[i].Platform, "error", err)
		}
	}

	if err := o.mgr.Store.Save(records); err != nil {
		return err
	}
	if err := o.commitIfChanged(); err != nil {
		return err
	}
	return runErr
}

func (o *Orchestrator) runSource(ctx context.Context, src *settings.SearchSource, records map[string]*record.Record, rerun bool) error {
	adapter, err := o.registry.Get(*src)
	if err != nil {
		return err
	}

	feedOpts := []feed.Option{
		feed.WithCanonical(records),
		feed.WithSettings(o.mgr.Settings, o.mgr.Root),
		feed.WithLogger(o.logger),
	}
	if !rerun {
		feedOpts = append(feedOpts, feed.WithUpdateOnly())
	}
	f, err := feed.Open(o.mgr.FeedPath(src), *src, adapter.SourceIdentifier(), feedOpts...)
	if err != nil {
		return err
	}

	switch {
	case src.IsMDSource():
		err = o.runMDSource(ctx, adapter, f)
	case src.SearchType == settings.SearchTypeForwardSearch,
		src.SearchType == settings.SearchTypeBackwardSearch:
		err = o.runCitationSource(ctx, adapter, f, records)
	default:
		err = o.runParameterSearch(ctx, adapter, f, src, rerun)
	}

	// Persist regardless of how the iteration ended.
	if saveErr := f.Save(); saveErr != nil && err == nil {
		err = saveErr
	}
	added, changed := f.Counts()
	o.logger.Info("source done",
		"platform", src.Platform, "added", added, "changed", changed)
	return err
}

// runMDSource re-queries the provider for every known identifier of a
// metadata-only feed, in a bounded worker pool.
func (o *Orchestrator) runMDSource(ctx context.Context, adapter Adapter, f *feed.Feed) error {
	rows := f.Records()
	ids := make([]string, 0, len(rows))
	seen := map[string]bool{}
	for _, r := range rows {
		if v := r.Field(adapter.SourceIdentifier()); v != "" && !seen[v] {
			seen[v] = true
			ids = append(ids, v)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results, err := adapter.GetRecordsForIDs(gctx, []string{id})
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				// Recoverable provider failure: skip this identifier.
				o.logger.Warn("metadata lookup failed", "id", id, "error", err)
				return nil
			}
			for _, r := range results {
				o.addUpdate(f, r)
			}
			return nil
		})
	}
	return g.Wait()
}

// runCitationSource feeds the citing or cited works of the canonical
// records that carry a DOI.
func (o *Orchestrator) runCitationSource(ctx context.Context, adapter Adapter, f *feed.Feed, records map[string]*record.Record) error {
	var dois []string
	seen := map[string]bool{}
	for _, r := range records {
		if doi := r.Field(record.FieldDOI); doi != "" && !seen[doi] {
			seen[doi] = true
			dois = append(dois, doi)
		}
	}
	results, err := adapter.GetRecordsForIDs(ctx, dois)
	if err != nil {
		return err
	}
	for _, r := range results {
		o.addUpdate(f, r)
	}
	return ctx.Err()
}

func (o *Orchestrator) runParameterSearch(ctx context.Context, adapter Adapter, f *feed.Feed, src *settings.SearchSource, rerun bool) error {
	pager, err := adapter.Search(ctx, src.SearchParameters)
	if err != nil {
		return err
	}
	for {
		page, done, err := pager.Next(ctx)
		if err != nil {
			return err
		}
		for _, r := range page {
			if r.Field(record.FieldAuthor) == "" && r.Field(record.FieldTitle) == "" {
				continue
			}
			added, changed := o.addUpdate(f, r)
			// Providers deposit newest first; a known unchanged result
			// means the rest is known too.
			if !rerun && !added && !changed {
				return nil
			}
		}
		if done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (o *Orchestrator) addUpdate(f *feed.Feed, r *record.Record) (added, changed bool) {
	added, changed, err := f.AddUpdateRecord(r)
	if err == nil {
		return added, changed
	}
	var notFound *feed.RecordNotFoundError
	switch {
	case errors.As(err, &notFound):
		// Not imported yet; the load operation picks it up from the feed.
		o.logger.Debug("feed row awaiting import", "origin", notFound.Origin)
	default:
		o.logger.Warn("skipping retrieval", "platform", f.OriginPrefix(), "error", err)
	}
	return added, changed
}

func (o *Orchestrator) commitIfChanged() error {
	dirty, err := o.mgr.Repo.HasChanges()
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	if err := o.mgr.Repo.AddAll(); err != nil {
		return err
	}
	_, err = o.mgr.Repo.Commit("Run search", false, "colrev search")
	return err
}
