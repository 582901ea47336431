package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/hsv-vvk/internal/logger"
	"github.com/pfrederiksen/hsv-vvk/internal/match"
)

const (
	TicketInfoURL = "https://www.hsv.de/tickets/einzelkarten/ticketinfos-termine"
	Timeout       = 30 * time.Second
	rowSelector   = "table tbody tr"
)

// Columns maps the fields of a fixture row to td positions.
type Columns struct {
	Date     int
	Home     int
	Away     int
	Status   int
	MinCells int
}

// DefaultColumns is the layout of the HSV ticket overview: date, home team, a
// separator cell, away team with its "Ticketinfos" link, and the sale status.
var DefaultColumns = Columns{
	Date:     1,
	Home:     2,
	Away:     4,
	Status:   5,
	MinCells: 6,
}

// Scraper handles fetching and parsing the ticket overview
type Scraper struct {
	client  *http.Client
	url     string
	rules   match.Rules
	columns Columns
}

// Option configures a Scraper
type Option func(*Scraper)

// WithURL points the scraper at another page.
func WithURL(url string) Option {
	return func(s *Scraper) { s.url = url }
}

// WithTimeout bounds every fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) { s.client.Timeout = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// WithRules replaces the row extraction rules.
func WithRules(r match.Rules) Option {
	return func(s *Scraper) { s.rules = r }
}

// WithColumns replaces the column layout.
func WithColumns(c Columns) Option {
	return func(s *Scraper) { s.columns = c }
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:     TicketInfoURL,
		rules:   match.DefaultRules(),
		columns: DefaultColumns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the page the scraper reads.
func (s *Scraper) URL() string {
	return s.url
}

// Result is the outcome of one extraction pass.
type Result struct {
	Events     []*match.Event `json:"events"`
	Rows       int            `json:"rows"`
	Skipped    int            `json:"skipped"`
	Mismatched int            `json:"mismatched"`
	Failed     bool           `json:"failed,omitempty"`
}

// Fetch downloads the ticket page. The caller closes the body.
func (s *Scraper) Fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// FetchMatches runs one fetch and extraction pass. Failures are logged and
// yield an empty Result, never an error.
func (s *Scraper) FetchMatches(ctx context.Context) *Result {
	started := time.Now()

	body, err := s.Fetch(ctx)
	if err != nil {
		logger.IncrCounter("scraper.fetch_failures")
		logger.Error("Fetching ticket page failed", logger.Fields{"url": s.url}, err)
		return &Result{Events: []*match.Event{}, Failed: true}
	}
	defer body.Close()
	logger.RecordTiming("scraper.fetch", time.Since(started))

	result, err := s.Extract(body)
	if err != nil {
		logger.IncrCounter("scraper.parse_failures")
		logger.Error("Parsing ticket page failed", logger.Fields{"url": s.url}, err)
		return &Result{Events: []*match.Event{}, Failed: true}
	}
	logger.RecordTiming("scraper.pass", time.Since(started))

	return result
}

// Extract parses the ticket page and builds one event per qualifying row, in page order.
func (s *Scraper) Extract(r io.Reader) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	result := &Result{Events: make([]*match.Event, 0)}

	doc.Find(rowSelector).Each(func(i int, tr *goquery.Selection) {
		result.Rows++

		row, ok := s.columns.read(tr.Find("td"))
		if !ok {
			result.Mismatched++
			return
		}

		evt, ok := s.rules.Build(row)
		if !ok {
			result.Skipped++
			return
		}
		result.Events = append(result.Events, evt)
	})

	if result.Mismatched > 0 {
		logger.Warn("Ticket table rows do not match the expected layout", logger.Fields{
			"rows":       result.Rows,
			"mismatched": result.Mismatched,
			"min_cells":  s.columns.MinCells,
		})
	}

	logger.AddCounter("scraper.rows", int64(result.Rows))
	logger.AddCounter("scraper.events", int64(len(result.Events)))
	logger.AddCounter("scraper.mismatched_rows", int64(result.Mismatched))

	return result, nil
}

// read maps td cells onto a Row. It reports false when the row has fewer cells
// than the layout expects.
func (c Columns) read(cells *goquery.Selection) (match.Row, bool) {
	if cells.Length() < c.MinCells {
		return match.Row{}, false
	}

	return match.Row{
		DateText: match.NormalizeSpace(cells.Eq(c.Date).Text()),
		Home:     cells.Eq(c.Home).Text(),
		Away:     cells.Eq(c.Away).Text(),
		Status:   cells.Eq(c.Status).Text(),
	}, true
}
