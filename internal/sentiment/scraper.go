package sentiment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"StockLab/internal/model"
)

const (
	DefaultFinvizURL = "https://finviz.com/quote.ashx"
	DefaultUserAgent = "my-app/0.0.1"
)

// ErrNoNewsTable is returned when a quote page has no news table.
var ErrNoNewsTable = errors.New("news table not found")

// Scraper downloads finviz quote pages and extracts their news tables.
type Scraper struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	Limiter   *rate.Limiter
	Now       func() time.Time
}

// NewScraper creates a scraper limited to ratePerSec page loads.
func NewScraper(userAgent string, ratePerSec float64) *Scraper {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Scraper{
		BaseURL:   DefaultFinvizURL,
		UserAgent: userAgent,
		Client:    &http.Client{Timeout: 30 * time.Second},
		Limiter:   rate.NewLimiter(rate.Limit(ratePerSec), 1),
		Now:       time.Now,
	}
}

// FetchHeadlines loads the quote page for ticker and parses its news rows.
func (s *Scraper) FetchHeadlines(ctx context.Context, ticker string) ([]model.Headline, error) {
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	u := s.BaseURL + "?t=" + url.QueryEscape(ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s news: %w", ticker, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s news: status %d", ticker, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s news page: %w", ticker, err)
	}
	return ParseNewsTable(ticker, doc, s.Now())
}

// ParseNewsTable extracts headlines from the #news-table element of doc.
// A date cell holding only a time inherits the date of the previous row.
func ParseNewsTable(ticker string, doc *goquery.Document, now time.Time) ([]model.Headline, error) {
	table := doc.Find("#news-table")
	if table.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoNewsTable)
	}

	name := strings.SplitN(ticker, "_", 2)[0]
	var (
		headlines []model.Headline
		date      time.Time
	)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		a := row.Find("a").First()
		if a.Length() == 0 {
			return
		}
		cell := strings.Fields(row.Find("td").First().Text())
		var clock string
		switch len(cell) {
		case 0:
		case 1:
			clock = cell[0]
		default:
			if d, ok := parseNewsDate(cell[0], now); ok {
				date = d
			}
			clock = cell[1]
		}
		link, _ := a.Attr("href")
		headlines = append(headlines, model.Headline{
			Ticker: name,
			Date:   date,
			Time:   clock,
			Text:   strings.TrimSpace(a.Text()),
			Link:   link,
		})
	})
	return headlines, nil
}

func parseNewsDate(s string, now time.Time) (time.Time, bool) {
	if strings.EqualFold(s, "today") {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	t, err := time.Parse("Jan-02-06", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
