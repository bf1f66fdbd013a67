package search

import (
	"context"
	"encoding/json"
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
	PlatformDBLP = "dblp"

	// DBLPBaseURL is the dblp publication search API base URL.
	DBLPBaseURL = "https://dblp.org/search/publ/api"

	dblpRateLimit = 2.0
	dblpPageSize  = 30
)

// DBLPAdapter queries the dblp publication search API.
type DBLPAdapter struct {
	source     settings.SearchSource
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// DBLPOption configures a DBLPAdapter.
type DBLPOption func(*DBLPAdapter)

// WithDBLPHTTPClient sets a custom HTTP client.
func WithDBLPHTTPClient(hc *http.Client) DBLPOption {
	return func(a *DBLPAdapter) { a.httpClient = hc }
}

// WithDBLPBaseURL sets a custom base URL (for testing).
func WithDBLPBaseURL(u string) DBLPOption {
	return func(a *DBLPAdapter) { a.baseURL = u }
}

// NewDBLPAdapter creates a dblp adapter for the given source.
func NewDBLPAdapter(src settings.SearchSource, opts ...DBLPOption) *DBLPAdapter {
	a := &DBLPAdapter{
		source:     src,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(dblpRateLimit), 1),
		baseURL:    DBLPBaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *DBLPAdapter) Platform() string         { return PlatformDBLP }
func (a *DBLPAdapter) SourceIdentifier() string { return record.FieldDblpKey }

type dblpHit struct {
	Info struct {
		Key     string `json:"key"`
		Title   string `json:"title"`
		Venue   string `json:"venue"`
		Volume  string `json:"volume"`
		Number  string `json:"number"`
		Pages   string `json:"pages"`
		Year    string `json:"year"`
		Type    string `json:"type"`
		DOI     string `json:"doi"`
		URL     string `json:"url"`
		Authors struct {
			Author []struct {
				Text string `json:"text"`
			} `json:"author"`
		} `json:"authors"`
	} `json:"info"`
}

type dblpResult struct {
	Result struct {
		Hits struct {
			Total string    `json:"@total"`
			Sent  string    `json:"@sent"`
			First string    `json:"@first"`
			Hit   []dblpHit `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

// Search pages through the publication search API.
func (a *DBLPAdapter) Search(ctx context.Context, params map[string]string) (Pager, error) {
	query := params["query"]
	if query == "" {
		return nil, fmt.Errorf("dblp source needs a query parameter: %w", ErrNotSupported)
	}
	return &dblpPager{adapter: a, query: query, total: -1}, nil
}

type dblpPager struct {
	adapter *DBLPAdapter
	query   string
	offset  int
	total   int
}

func (p *dblpPager) Next(ctx context.Context) ([]*record.Record, bool, error) {
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
	q.Set("q", p.query)
	q.Set("format", "json")
	q.Set("h", strconv.Itoa(dblpPageSize))
	q.Set("f", strconv.Itoa(p.offset))

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
		return nil, true, fmt.Errorf("dblp: unexpected status %d: %w", resp.StatusCode, ErrServiceNotAvailable)
	}

	var result dblpResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, true, fmt.Errorf("dblp: decoding response: %w", err)
	}

	if n, err := strconv.Atoi(result.Result.Hits.Total); err == nil {
		p.total = n
	}
	hits := result.Result.Hits.Hit
	p.offset += len(hits)

	records := make([]*record.Record, 0, len(hits))
	for i := range hits {
		records = append(records, dblpToRecord(&hits[i]))
	}
	done := len(hits) == 0 || (p.total >= 0 && p.offset >= p.total)
	return records, done, nil
}

// GetRecordsForIDs is not offered by the search API.
func (a *DBLPAdapter) GetRecordsForIDs(ctx context.Context, ids []string) ([]*record.Record, error) {
	return nil, ErrNotSupported
}

// QueryDOI is not offered by the search API.
func (a *DBLPAdapter) QueryDOI(ctx context.Context, doi string) (*record.Record, error) {
	return nil, ErrNotSupported
}

// Heuristic recognizes dblp exports by their record keys.
func (a *DBLPAdapter) Heuristic(filename string, data []byte) float64 {
	content := string(data)
	if strings.Contains(content, "dblp.org/rec/") || strings.Contains(content, "dblp_key") {
		return 1.0
	}
	if strings.Contains(content, "DBLP:") {
		return 0.9
	}
	return 0
}

func dblpToRecord(h *dblpHit) *record.Record {
	entryType := record.EntryTypeArticle
	if strings.Contains(h.Info.Type, "Conference") {
		entryType = record.EntryTypeInProceedings
	}
	r := record.New("", entryType)
	r.Data[record.FieldDblpKey] = h.Info.Key
	r.Data[record.FieldTitle] = strings.TrimSuffix(h.Info.Title, ".")
	if entryType == record.EntryTypeInProceedings {
		r.Data[record.FieldBooktitle] = h.Info.Venue
	} else {
		r.Data[record.FieldJournal] = h.Info.Venue
	}
	if h.Info.Year != "" {
		r.Data[record.FieldYear] = h.Info.Year
	}
	if h.Info.Volume != "" {
		r.Data[record.FieldVolume] = h.Info.Volume
	}
	if h.Info.Number != "" {
		r.Data[record.FieldNumber] = h.Info.Number
	}
	if h.Info.Pages != "" {
		r.Data[record.FieldPages] = strings.ReplaceAll(h.Info.Pages, "-", "--")
	}
	if h.Info.DOI != "" {
		r.Data[record.FieldDOI] = strings.ToLower(h.Info.DOI)
	}
	if h.Info.URL != "" {
		r.Data[record.FieldURL] = h.Info.URL
	}
	var names []string
	for _, author := range h.Info.Authors.Author {
		names = append(names, dblpAuthorName(author.Text))
	}
	if len(names) > 0 {
		r.Data[record.FieldAuthor] = strings.Join(names, " and ")
	}
	return r
}

// dblpAuthorName converts "First Last 0001" to "Last, First".
func dblpAuthorName(name string) string {
	parts := strings.Fields(name)
	// Trailing disambiguation numbers are dropped.
	if len(parts) > 1 {
		if _, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			parts = parts[:len(parts)-1]
		}
	}
	if len(parts) < 2 {
		return strings.Join(parts, " ")
	}
	last := parts[len(parts)-1]
	return last + ", " + strings.Join(parts[:len(parts)-1], " ")
}
