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
	PlatformCrossref = "crossref"

	// CrossrefBaseURL is the Crossref REST API base URL.
	CrossrefBaseURL = "https://api.crossref.org"

	// crossrefRateLimit follows the polite-pool guidance.
	crossrefRateLimit = 5.0

	crossrefPageSize = 20
)

// CrossrefAdapter queries the Crossref works API. It also serves as the
// metadata oracle of the DOI consistency check.
type CrossrefAdapter struct {
	source     settings.SearchSource
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// CrossrefOption configures a CrossrefAdapter.
type CrossrefOption func(*CrossrefAdapter)

// WithCrossrefHTTPClient sets a custom HTTP client.
func WithCrossrefHTTPClient(hc *http.Client) CrossrefOption {
	return func(a *CrossrefAdapter) { a.httpClient = hc }
}

// WithCrossrefBaseURL sets a custom base URL (for testing).
func WithCrossrefBaseURL(u string) CrossrefOption {
	return func(a *CrossrefAdapter) { a.baseURL = u }
}

// NewCrossrefAdapter creates a Crossref adapter for the given source.
func NewCrossrefAdapter(src settings.SearchSource, opts ...CrossrefOption) *CrossrefAdapter {
	a := &CrossrefAdapter{
		source:     src,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(crossrefRateLimit), 1),
		baseURL:    CrossrefBaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *CrossrefAdapter) Platform() string         { return PlatformCrossref }
func (a *CrossrefAdapter) SourceIdentifier() string { return record.FieldDOI }

type crossrefWork struct {
	DOI            string     `json:"DOI"`
	Type           string     `json:"type"`
	Title          []string   `json:"title"`
	ContainerTitle []string   `json:"container-title"`
	Author         []struct {
		Family string `json:"family"`
		Given  string `json:"given"`
		Name   string `json:"name"`
	} `json:"author"`
	Issued struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
	Volume    string   `json:"volume"`
	Issue     string   `json:"issue"`
	Page      string   `json:"page"`
	ISSN      []string `json:"ISSN"`
	Publisher string   `json:"publisher"`
	Abstract  string   `json:"abstract"`
	URL       string   `json:"URL"`
	UpdateTo  []struct {
		Type string `json:"type"`
	} `json:"update-to"`
}

type crossrefMessage struct {
	Message json.RawMessage `json:"message"`
}

type crossrefWorkList struct {
	Items        []crossrefWork `json:"items"`
	TotalResults int            `json:"total-results"`
}

func (a *CrossrefAdapter) get(ctx context.Context, path string, query url.Values, into interface{}) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	u := a.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceNotAvailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("crossref: %w", ErrNotSupported)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("crossref: unexpected status %d: %w", resp.StatusCode, ErrServiceNotAvailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("crossref: decoding response: %w", err)
	}
	return nil
}

// QueryDOI resolves one DOI via the works endpoint.
func (a *CrossrefAdapter) QueryDOI(ctx context.Context, doi string) (*record.Record, error) {
	var wrapper crossrefMessage
	if err := a.get(ctx, "/works/"+url.PathEscape(doi), nil, &wrapper); err != nil {
		return nil, err
	}
	var work crossrefWork
	if err := json.Unmarshal(wrapper.Message, &work); err != nil {
		return nil, fmt.Errorf("crossref: decoding work: %w", err)
	}
	return crossrefToRecord(&work), nil
}

// GetRecordsForIDs retrieves current metadata for known DOIs.
func (a *CrossrefAdapter) GetRecordsForIDs(ctx context.Context, ids []string) ([]*record.Record, error) {
	var out []*record.Record
	for _, doi := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		r, err := a.QueryDOI(ctx, doi)
		if err != nil {
			// Recoverable provider failure: skip this record.
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Search pages through the works endpoint for the source's query parameter.
func (a *CrossrefAdapter) Search(ctx context.Context, params map[string]string) (Pager, error) {
	query := params["query"]
	if query == "" {
		return nil, fmt.Errorf("crossref source needs a query parameter: %w", ErrNotSupported)
	}
	return &crossrefPager{adapter: a, query: query, issn: params["scope.issn"]}, nil
}

type crossrefPager struct {
	adapter *CrossrefAdapter
	query   string
	issn    string
	offset  int
	total   int
	started bool
}

func (p *crossrefPager) Next(ctx context.Context) ([]*record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, true, err
	}
	if p.started && p.offset >= p.total {
		return nil, true, nil
	}

	q := url.Values{}
	q.Set("query", p.query)
	q.Set("rows", strconv.Itoa(crossrefPageSize))
	q.Set("offset", strconv.Itoa(p.offset))
	q.Set("sort", "deposited")
	q.Set("order", "desc")
	if p.issn != "" {
		q.Set("filter", "issn:"+p.issn)
	}

	var wrapper crossrefMessage
	if err := p.adapter.get(ctx, "/works", q, &wrapper); err != nil {
		return nil, true, err
	}
	var list crossrefWorkList
	if err := json.Unmarshal(wrapper.Message, &list); err != nil {
		return nil, true, fmt.Errorf("crossref: decoding work list: %w", err)
	}

	p.started = true
	p.total = list.TotalResults
	p.offset += len(list.Items)

	records := make([]*record.Record, 0, len(list.Items))
	for i := range list.Items {
		records = append(records, crossrefToRecord(&list.Items[i]))
	}
	done := len(list.Items) == 0 || p.offset >= p.total
	return records, done, nil
}

// Heuristic recognizes exported Crossref result files by their DOI density.
func (a *CrossrefAdapter) Heuristic(filename string, data []byte) float64 {
	content := string(data)
	if strings.Contains(content, "api.crossref.org") {
		return 1.0
	}
	entries := strings.Count(content, "@")
	if entries == 0 {
		return 0
	}
	dois := strings.Count(content, "doi.org/10.") + strings.Count(content, "doi ")
	if dois >= entries {
		return 0.7
	}
	return 0
}

func crossrefToRecord(w *crossrefWork) *record.Record {
	r := record.New("", crossrefEntryType(w.Type))
	r.Data[record.FieldDOI] = strings.ToLower(w.DOI)
	if len(w.Title) > 0 {
		r.Data[record.FieldTitle] = w.Title[0]
	}
	if author := crossrefAuthors(w); author != "" {
		r.Data[record.FieldAuthor] = author
	}
	if len(w.ContainerTitle) > 0 {
		container := w.ContainerTitle[0]
		if r.EntryType == record.EntryTypeInProceedings {
			r.Data[record.FieldBooktitle] = container
		} else {
			r.Data[record.FieldJournal] = container
		}
	}
	if year := crossrefYear(w); year != "" {
		r.Data[record.FieldYear] = year
	}
	if w.Volume != "" {
		r.Data[record.FieldVolume] = w.Volume
	}
	if w.Issue != "" {
		r.Data[record.FieldNumber] = w.Issue
	}
	if w.Page != "" {
		r.Data[record.FieldPages] = strings.ReplaceAll(w.Page, "-", "--")
	}
	if len(w.ISSN) > 0 {
		r.Data[record.FieldISSN] = w.ISSN[0]
	}
	if w.URL != "" {
		r.Data[record.FieldURL] = w.URL
	}
	for _, u := range w.UpdateTo {
		if strings.EqualFold(u.Type, "retraction") {
			r.Data[record.FieldRetracted] = "yes"
		}
	}
	return r
}

func crossrefEntryType(t string) string {
	switch t {
	case "journal-article":
		return record.EntryTypeArticle
	case "proceedings-article":
		return record.EntryTypeInProceedings
	case "book":
		return record.EntryTypeBook
	case "book-chapter":
		return record.EntryTypeInBook
	default:
		return record.EntryTypeMisc
	}
}

func crossrefAuthors(w *crossrefWork) string {
	var names []string
	for _, a := range w.Author {
		switch {
		case a.Family != "" && a.Given != "":
			names = append(names, a.Family+", "+a.Given)
		case a.Family != "":
			names = append(names, a.Family)
		case a.Name != "":
			names = append(names, "{"+a.Name+"}")
		}
	}
	return strings.Join(names, " and ")
}

func crossrefYear(w *crossrefWork) string {
	if len(w.Issued.DateParts) > 0 && len(w.Issued.DateParts[0]) > 0 {
		return strconv.Itoa(w.Issued.DateParts[0][0])
	}
	return ""
}
