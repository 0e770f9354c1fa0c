package reference

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"FundRadar/internal/model"
)

const DefaultRankingURL = "https://www.fundsexplorer.com.br/ranking"

// HTMLProvider scrapes the first table of a fund ranking page.
type HTMLProvider struct {
	URL       string
	UserAgent string
	Client    *http.Client
}

// NewHTMLProvider creates a scraper with optional proxy support.
func NewHTMLProvider(pageURL, proxyURL string) *HTMLProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if pageURL == "" {
		pageURL = DefaultRankingURL
	}
	return &HTMLProvider{
		URL:       pageURL,
		UserAgent: "Mozilla/5.0",
		Client:    &http.Client{Timeout: 30 * time.Second, Transport: transport},
	}
}

func (p *HTMLProvider) Load(ctx context.Context) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, err
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch reference page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch reference page: status %d, body: %s", resp.StatusCode, string(body))
	}

	t, err := ParseHTML(resp.Body)
	if err != nil {
		return nil, err
	}
	log.Info().Str("url", p.URL).Int("funds", t.Len()).Msg("reference table loaded")
	return t, nil
}

// ParseHTML reads the first <table> of the document, locating the ticker,
// sector, dividend yield and price/book columns by header text.
func ParseHTML(r io.Reader) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse reference page: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("parse reference page: no table found")
	}

	var headers []string
	table.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, headerKey(th.Text()))
	})
	if len(headers) == 0 {
		table.Find("tr").First().Find("th,td").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, headerKey(th.Text()))
		})
	}

	cols := map[string]int{
		"ticker": findColumn(headers, equals("códigodofundo", "codigodofundo", "fundos", "ticker"), contains("código", "codigo")),
		"sector": findColumn(headers, equals("setor", "sector")),
		"dy":     findColumn(headers, equals("dividendyield"), contains("dividendyield")),
		"pvpa":   findColumn(headers, equals("p/vpa", "p/vp")),
	}
	for name, idx := range cols {
		if idx < 0 {
			return nil, fmt.Errorf("parse reference page: column %q not found in headers %v", name, headers)
		}
	}

	rows := table.Find("tbody tr")
	if table.Find("tbody").Length() == 0 {
		rows = table.Find("tr").Slice(1, goquery.ToEnd)
	}

	var out []model.ReferenceAttributes
	rows.Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		cell := func(i int) string {
			if i < len(cells) {
				return cells[i]
			}
			return ""
		}
		out = append(out, model.ReferenceAttributes{
			Ticker:        cell(cols["ticker"]),
			Sector:        cell(cols["sector"]),
			DividendYield: cell(cols["dy"]),
			PriceToBook:   cell(cols["pvpa"]),
		})
	})
	return NewTable(out), nil
}

func headerKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

type matcher func(string) bool

func equals(want ...string) matcher {
	return func(h string) bool {
		for _, w := range want {
			if h == w {
				return true
			}
		}
		return false
	}
}

func contains(subs ...string) matcher {
	return func(h string) bool {
		for _, s := range subs {
			if strings.Contains(h, s) {
				return true
			}
		}
		return false
	}
}

// findColumn tries each matcher in priority order over all headers.
func findColumn(headers []string, matchers ...matcher) int {
	for _, m := range matchers {
		for i, h := range headers {
			if m(h) {
				return i
			}
		}
	}
	return -1
}
