package universe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/httputil"
	"github.com/wonny/supascan/pkg/logger"
)

// Provider builds the day's scan universe. The primary source is a
// Finviz-style screener results page; when that fails for any reason
// the curated static list takes over, so a scan run always has a
// universe to work with.
type Provider struct {
	httpClient *httputil.Client
	logger     *logger.Logger

	screenerURL string
	scanLimit   int
}

// New creates a universe provider from config.
func New(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Provider {
	return &Provider{
		httpClient:  httpClient,
		logger:      log,
		screenerURL: cfg.Provider.ScreenerURL,
		scanLimit:   cfg.Scanner.ScanLimit,
	}
}

// Tickers returns the universe for this run, truncated to the scan
// limit. Never returns an error: screener failure falls back to the
// static list.
func (p *Provider) Tickers(ctx context.Context) []string {
	tickers, err := p.scrape(ctx)
	if err != nil {
		p.logger.WithError(err).Warn("Screener unavailable, using static fallback universe")
		tickers = StaticFallback()
	} else if len(tickers) == 0 {
		p.logger.Warn("Screener returned no rows, using static fallback universe")
		tickers = StaticFallback()
	} else {
		p.logger.WithField("count", len(tickers)).Info("Universe built from screener")
	}

	if len(tickers) > p.scanLimit {
		tickers = tickers[:p.scanLimit]
	}
	return tickers
}

// screenerQuery encodes the quality pre-filters: small cap and above,
// 500K+ average volume, relative volume over 1, price over $5, price
// above the 20-day moving average.
const screenerQuery = "v=111&f=cap_smallover,sh_avgvol_o500,sh_relvol_o1,sh_price_o5,ta_sma20_pa"

// scrape pulls screener result pages and extracts ticker symbols.
func (p *Provider) scrape(ctx context.Context) ([]string, error) {
	var tickers []string
	seen := make(map[string]bool)

	// 20 rows per page; fetch enough pages to cover the scan limit
	for offset := 1; len(tickers) < p.scanLimit; offset += 20 {
		pageURL := fmt.Sprintf("%s?%s&r=%d", p.screenerURL, screenerQuery, offset)

		resp, err := p.httpClient.Get(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("screener fetch failed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("screener parse failed: %w", err)
		}

		pageTickers := extractTickers(doc)
		if len(pageTickers) == 0 {
			break // past the last page
		}

		added := 0
		for _, ticker := range pageTickers {
			if !seen[ticker] {
				seen[ticker] = true
				tickers = append(tickers, ticker)
				added++
			}
		}
		if added == 0 {
			break // screener repeated a page, stop paginating
		}
	}

	return tickers, nil
}

// extractTickers pulls symbols out of a screener results table.
func extractTickers(doc *goquery.Document) []string {
	var tickers []string
	doc.Find("a.screener-link-primary").Each(func(i int, sel *goquery.Selection) {
		ticker := strings.TrimSpace(sel.Text())
		if isValidTicker(ticker) {
			tickers = append(tickers, ticker)
		}
	})
	return tickers
}

// isValidTicker accepts 1-5 uppercase letters.
func isValidTicker(s string) bool {
	if len(s) < 1 || len(s) > 5 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// StaticFallback returns the curated universe used when the screener
// is unreachable. Sector mix follows validated historical win rates:
// healthcare and technology heavy, no energy or utilities names.
func StaticFallback() []string {
	return []string{
		// Healthcare
		"BIIB", "AMGN", "VRTX", "REGN", "CPRX", "AMRX",
		"AXSM", "GSK", "AZN", "HALO", "JAZZ",

		// Technology
		"PLTR", "NVDA", "AMD", "NET", "DDOG", "SNOW", "MDB",
		"DOCN", "FSLY", "ZETA", "AMKR", "COHU", "ACIW",

		// Communication services
		"IMAX", "PINS", "RBLX",

		// Fintech
		"SOFI", "COIN", "HOOD", "AFRM",
	}
}
