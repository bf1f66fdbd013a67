// Package search runs the registered search sources: it instantiates the
// provider adapter for each source, pages through its results, reconciles
// them into the source's feed, and commits the outcome.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/settings"
)

// ErrServiceNotAvailable indicates the provider could not be reached or is
// not registered.
var ErrServiceNotAvailable = errors.New("search service not available")

// ErrNotSupported indicates the adapter does not implement the requested
// capability (DOI lookup, id-based retrieval).
var ErrNotSupported = errors.New("operation not supported by this source")

// Pager yields one page of retrieved records at a time. Returning done=true
// ends the iteration; providers deposit results newest first.
type Pager interface {
	Next(ctx context.Context) (records []*record.Record, done bool, err error)
}

// Adapter is the contract a provider integration fulfills.
type Adapter interface {
	// Platform is the identifier sources reference in settings.
	Platform() string
	// SourceIdentifier names the field that identifies a retrieval in the
	// feed (doi, dblp_key, url).
	SourceIdentifier() string
	// Search returns a pager over the results of a parameter search.
	Search(ctx context.Context, params map[string]string) (Pager, error)
	// GetRecordsForIDs retrieves current metadata for known identifiers.
	// Used by metadata-only sources.
	GetRecordsForIDs(ctx context.Context, ids []string) ([]*record.Record, error)
	// QueryDOI resolves one DOI, or ErrNotSupported.
	QueryDOI(ctx context.Context, doi string) (*record.Record, error)
	// Heuristic scores how likely data is a result file of this provider.
	Heuristic(filename string, data []byte) float64
}

// Factory builds an adapter for one configured source.
type Factory func(src settings.SearchSource) (Adapter, error)

// Registry maps platform identifiers to adapter factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with all built-in adapters.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register(PlatformCrossref, func(src settings.SearchSource) (Adapter, error) {
		return NewCrossrefAdapter(src), nil
	})
	r.Register(PlatformDBLP, func(src settings.SearchSource) (Adapter, error) {
		return NewDBLPAdapter(src), nil
	})
	r.Register(PlatformArxiv, func(src settings.SearchSource) (Adapter, error) {
		return NewArxivAdapter(src), nil
	})
	r.Register(PlatformFiles, func(src settings.SearchSource) (Adapter, error) {
		return NewFilesAdapter(src), nil
	})
	r.Register(PlatformPriorProject, func(src settings.SearchSource) (Adapter, error) {
		return NewPriorProjectAdapter(src), nil
	})
	r.Register(PlatformOpenCitations, func(src settings.SearchSource) (Adapter, error) {
		return NewOpenCitationsAdapter(src), nil
	})
	return r
}

// Register adds a factory under a platform identifier.
func (r *Registry) Register(platform string, f Factory) {
	r.factories[platform] = f
}

// Get builds the adapter for a source.
func (r *Registry) Get(src settings.SearchSource) (Adapter, error) {
	f, ok := r.factories[src.Platform]
	if !ok {
		return nil, fmt.Errorf("platform %s: %w", src.Platform, ErrServiceNotAvailable)
	}
	return f(src)
}

// Classification is the outcome of source-file auto-classification.
type Classification struct {
	Platform   string
	Confidence float64
}

// Classify scores an unknown search result file against every registered
// adapter's heuristic and returns the candidates, best first.
func (r *Registry) Classify(filename string, data []byte) []Classification {
	var out []Classification
	for platform, f := range r.factories {
		a, err := f(settings.SearchSource{Platform: platform})
		if err != nil {
			continue
		}
		if c := a.Heuristic(filename, data); c > 0 {
			out = append(out, Classification{Platform: platform, Confidence: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

// staticPager serves a fixed result set one page at a time.
type staticPager struct {
	pages [][]*record.Record
	pos   int
}

func (p *staticPager) Next(ctx context.Context) ([]*record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, true, err
	}
	if p.pos >= len(p.pages) {
		return nil, true, nil
	}
	page := p.pages[p.pos]
	p.pos++
	return page, p.pos >= len(p.pages), nil
}

func paged(records []*record.Record, pageSize int) *staticPager {
	var pages [][]*record.Record
	for len(records) > 0 {
		n := pageSize
		if n > len(records) {
			n = len(records)
		}
		pages = append(pages, records[:n])
		records = records[n:]
	}
	return &staticPager{pages: pages}
}
