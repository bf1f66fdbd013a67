package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/colrev/colrev/internal/record"
	"github.com/colrev/colrev/internal/settings"
)

const (
	PlatformArxiv = "arxiv"

	// ArxivBaseURL is the arXiv Atom query API base URL.
	ArxivBaseURL = "https://export.arxiv.org/api/query"

	// arxivRateLimit follows the API terms of one request per three seconds.
	arxivRateLimit = 1.0 / 3.0

	arxivPageSize = 25
)

// ArxivAdapter queries the arXiv Atom API.
type ArxivAdapter struct {
	source     settings.SearchSource
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// ArxivOption configures an ArxivAdapter.
type ArxivOption func(*ArxivAdapter)

// WithArxivHTTPClient sets a custom HTTP client.
func WithArxivHTTPClient(hc *http.Client) ArxivOption {
	return func(a *ArxivAdapter) { a.httpClient = hc }
}

// WithArxivBaseURL sets a custom base URL (for testing).
func WithArxivBaseURL(u string) ArxivOption {
	return func(a *ArxivAdapter) { a.baseURL = u }
}

// NewArxivAdapter creates an arXiv adapter for the given source.
func NewArxivAdapter(src settings.SearchSource, opts ...ArxivOption) *ArxivAdapter {
	a := &ArxivAdapter{
		source:     src,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(arxivRateLimit), 1),
		baseURL:    ArxivBaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *ArxivAdapter) Platform() string         { return PlatformArxiv }
func (a *ArxivAdapter) SourceIdentifier() string { return record.FieldURL }

type arxivFeed struct {
	TotalResults int          `xml:"totalResults"`
	Entries      []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	DOI       string `xml:"doi"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// Search pages through the query API.
func (a *ArxivAdapter) Search(ctx context.Context, params map[string]string) (Pager, error) {
	query := params["query"]
	if query == "" {
		return nil, fmt.Errorf("arxiv source needs a query parameter: %w", ErrNotSupported)
	}
	return &arxivPager{adapter: a, query: query, total: -1}, nil
}

type arxivPager struct {
	adapter *ArxivAdapter
	query   string
	offset  int
	total   int
}

func (p *arxivPager) Next(ctx context.Context) ([]*record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, true, err
	}
	if p.total >= 0 && p.offset >= p.total {
		return nil, true, nil
	}

	if err := p.adapter.limiter.Wait(ctx); err != nil {
		return nil, true, err
	}
	q := url.Values{}
	q.Set("search_query", "all:"+p.query)
	q.Set("start", strconv.Itoa(p.offset))
	q.Set("max_results", strconv.Itoa(arxivPageSize))
	q.Set("sortBy", "submittedDate")
	q.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.adapter.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, true, err
	}
	resp, err := p.adapter.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrServiceNotAvailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, true, fmt.Errorf("arxiv: unexpected status %d: %w", resp.StatusCode, ErrServiceNotAvailable)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, true, fmt.Errorf("arxiv: decoding response: %w", err)
	}

	p.total = feed.TotalResults
	p.offset += len(feed.Entries)

	records := make([]*record.Record, 0, len(feed.Entries))
	for i := range feed.Entries {
		records = append(records, arxivToRecord(&feed.Entries[i]))
	}
	done := len(feed.Entries) == 0 || p.offset >= p.total
	return records, done, nil
}

// GetRecordsForIDs is not offered by the query API.
func (a *ArxivAdapter) GetRecordsForIDs(ctx context.Context, ids []string) ([]*record.Record, error) {
	return nil, ErrNotSupported
}

// QueryDOI is not offered by the query API.
func (a *ArxivAdapter) QueryDOI(ctx context.Context, doi string) (*record.Record, error) {
	return nil, ErrNotSupported
}

// Heuristic recognizes arXiv exports by their abstract URLs.
func (a *ArxivAdapter) Heuristic(filename string, data []byte) float64 {
	if strings.Contains(string(data), "arxiv.org/abs/") {
		return 1.0
	}
	return 0
}

func arxivToRecord(e *arxivEntry) *record.Record {
	r := record.New("", record.EntryTypeUnpublished)
	r.Data[record.FieldURL] = strings.TrimSpace(e.ID)
	r.Data[record.FieldTitle] = normalizeWhitespace(e.Title)
	if len(e.Published) >= 4 {
		r.Data[record.FieldYear] = e.Published[:4]
	}
	if e.DOI != "" {
		r.Data[record.FieldDOI] = strings.ToLower(e.DOI)
	}
	if e.Summary != "" {
		r.Data[record.FieldAbstract] = normalizeWhitespace(e.Summary)
	}
	var names []string
	for _, author := range e.Authors {
		names = append(names, arxivAuthorName(author.Name))
	}
	if len(names) > 0 {
		r.Data[record.FieldAuthor] = strings.Join(names, " and ")
	}
	return r
}

// arxivAuthorName converts "First Last" to "Last, First".
func arxivAuthorName(name string) string {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}
	last := parts[len(parts)-1]
	return last + ", " + strings.Join(parts[:len(parts)-1], " ")
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
