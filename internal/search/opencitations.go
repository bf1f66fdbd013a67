package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/settings"
)

const (
	PlatformOpenCitations = "open_citations"

	// OpenCitationsBaseURL is the COCI REST API base URL.
	OpenCitationsBaseURL = "https://opencitations.net/index/coci/api/v1"

	openCitationsRateLimit = 2.0
)

// OpenCitationsAdapter resolves forward and backward citation searches over
// the COCI index. The source's search type selects the direction.
type OpenCitationsAdapter struct {
	source     settings.SearchSource
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// OpenCitationsOption configures an OpenCitationsAdapter.
type OpenCitationsOption func(*OpenCitationsAdapter)

// WithOpenCitationsHTTPClient sets a custom HTTP client.
func WithOpenCitationsHTTPClient(hc *http.Client) OpenCitationsOption {
	return func(a *OpenCitationsAdapter) { a.httpClient = hc }
}

// WithOpenCitationsBaseURL sets a custom base URL (for testing).
func WithOpenCitationsBaseURL(u string) OpenCitationsOption {
	return func(a *OpenCitationsAdapter) { a.baseURL = u }
}

// NewOpenCitationsAdapter creates a citation-search adapter for the given
// source.
func NewOpenCitationsAdapter(src settings.SearchSource, opts ...OpenCitationsOption) *OpenCitationsAdapter {
	a := &OpenCitationsAdapter{
		source:     src,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(openCitationsRateLimit), 1),
		baseURL:    OpenCitationsBaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *OpenCitationsAdapter) Platform() string         { return PlatformOpenCitations }
func (a *OpenCitationsAdapter) SourceIdentifier() string { return record.FieldDOI }

type cociLink struct {
	Citing string `json:"citing"`
	Cited  string `json:"cited"`
}

// GetRecordsForIDs retrieves the citing (forward) or cited (backward) works
// of the given DOIs, as DOI-only records to be enriched by a metadata
// source.
func (a *OpenCitationsAdapter) GetRecordsForIDs(ctx context.Context, ids []string) ([]*record.Record, error) {
	endpoint, pick := "references", func(l cociLink) string { return l.Cited }
	if a.source.SearchType == settings.SearchTypeForwardSearch {
		endpoint, pick = "citations", func(l cociLink) string { return l.Citing }
	}

	seen := map[string]bool{}
	var out []*record.Record
	for _, doi := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		links, err := a.fetch(ctx, endpoint, doi)
		if err != nil {
			// Recoverable provider failure: skip this record.
			continue
		}
		for _, l := range links {
			d := strings.ToLower(pick(l))
			if d == "" || seen[d] {
				continue
			}
			seen[d] = true
			r := record.New("", record.EntryTypeMisc)
			r.Data[record.FieldDOI] = d
			out = append(out, r)
		}
	}
	return out, nil
}

func (a *OpenCitationsAdapter) fetch(ctx context.Context, endpoint, doi string) ([]cociLink, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/%s/%s", a.baseURL, endpoint, url.PathEscape(doi))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceNotAvailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opencitations: unexpected status %d: %w", resp.StatusCode, ErrServiceNotAvailable)
	}
	var links []cociLink
	if err := json.NewDecoder(resp.Body).Decode(&links); err != nil {
		return nil, fmt.Errorf("opencitations: decoding response: %w", err)
	}
	return links, nil
}

// Search is not applicable; citation searches start from canonical records.
func (a *OpenCitationsAdapter) Search(ctx context.Context, params map[string]string) (Pager, error) {
	return nil, ErrNotSupported
}

// QueryDOI is not offered by the citation index.
func (a *OpenCitationsAdapter) QueryDOI(ctx context.Context, doi string) (*record.Record, error) {
	return nil, ErrNotSupported
}

// Heuristic recognizes citation index exports.
func (a *OpenCitationsAdapter) Heuristic(filename string, data []byte) float64 {
	if strings.Contains(string(data), "opencitations.net") {
		return 1.0
	}
	return 0
}
