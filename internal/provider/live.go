package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/httputil"
	"github.com/wonny/supascan/pkg/logger"
	"github.com/wonny/supascan/pkg/redis"
)

// LiveProvider reads market data from a Yahoo-style quote/chart API
// and social data from a StockTwits-style stream API. All requests go
// through the shared retrying HTTP client, throttled by a local token
// bucket. An optional Redis cache absorbs repeated lookups across
// process restarts; the in-process memoizer handles the common case.
type LiveProvider struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	limiter    *rate.Limiter
	cache      *redis.Cache // nil when Redis is disabled

	quoteBaseURL  string
	socialBaseURL string
}

// NewLive creates a live provider from config.
func NewLive(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger, cache *redis.Cache) *LiveProvider {
	return &LiveProvider{
		httpClient:    httpClient,
		logger:        log,
		limiter:       rate.NewLimiter(rate.Limit(cfg.Provider.RatePerSec), cfg.Provider.RateBurst),
		cache:         cache,
		quoteBaseURL:  cfg.Provider.QuoteBaseURL,
		socialBaseURL: "https://api.stocktwits.com/api/2",
	}
}

// fetchJSON throttles, performs a GET and decodes the response into dest.
func (p *LiveProvider) fetchJSON(ctx context.Context, fullURL string, dest interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	resp, err := p.httpClient.Get(ctx, fullURL)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown ticker: leave dest zero-valued
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// quoteResponse mirrors the v7 quote endpoint payload.
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			ShortName                  string  `json:"shortName"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			MarketCap                  float64 `json:"marketCap"`
			RegularMarketVolume        int64   `json:"regularMarketVolume"`
			AverageDailyVolume3Month   int64   `json:"averageDailyVolume3Month"`
			RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
			TrailingPE                 float64 `json:"trailingPE"`
			EpsTrailingTwelveMonths    float64 `json:"epsTrailingTwelveMonths"`
			RevenueGrowth              float64 `json:"revenueGrowth"`
			ShortPercentFloat          float64 `json:"shortPercentFloat"`
			SharesFloat                float64 `json:"sharesOutstanding"`
			EarningsTimestamp          int64   `json:"earningsTimestamp"`
			Sector                     string  `json:"sector"`
			Industry                   string  `json:"industry"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// Snapshot fetches a quote and fills the momentum fields from the
// 90-day chart. A ticker the API does not know yields a zero snapshot.
func (p *LiveProvider) Snapshot(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	snapshot := &contracts.Snapshot{Ticker: ticker, AsOf: time.Now()}

	if p.cache != nil {
		found, err := p.cache.Get(ctx, redis.QuoteKey(ticker), snapshot)
		if err == nil && found {
			return snapshot, nil
		}
	}

	fullURL := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", p.quoteBaseURL, url.QueryEscape(ticker))

	var qr quoteResponse
	if err := p.fetchJSON(ctx, fullURL, &qr); err != nil {
		return nil, fmt.Errorf("quote fetch failed for %s: %w", ticker, err)
	}
	if len(qr.QuoteResponse.Result) == 0 {
		return snapshot, nil
	}

	q := qr.QuoteResponse.Result[0]
	snapshot.Company = q.ShortName
	snapshot.Sector = q.Sector
	snapshot.Industry = q.Industry
	snapshot.Price = q.RegularMarketPrice
	snapshot.MarketCap = q.MarketCap
	snapshot.Volume = q.RegularMarketVolume
	snapshot.AvgVolume = q.AverageDailyVolume3Month
	snapshot.Change1D = q.RegularMarketChangePercent
	snapshot.PERatio = q.TrailingPE
	snapshot.EPS = q.EpsTrailingTwelveMonths
	snapshot.RevenueGrowth = q.RevenueGrowth * 100 // API reports a fraction
	snapshot.ShortPercent = q.ShortPercentFloat * 100
	snapshot.FloatShares = q.SharesFloat

	// 7d and 90d changes come from the chart, not the quote
	bars, err := p.PriceHistory(ctx, ticker, 90)
	if err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("History unavailable, momentum fields left zero")
	} else {
		snapshot.Change7D = percentChange(bars, 7)
		snapshot.Change90D = percentChange(bars, len(bars)-1)
	}

	if p.cache != nil {
		_ = p.cache.Set(ctx, redis.QuoteKey(ticker), snapshot, redis.TTLShort)
	}
	return snapshot, nil
}

// percentChange computes the close-to-close change over the last n bars.
func percentChange(bars []contracts.Bar, n int) float64 {
	if len(bars) < 2 || n < 1 {
		return 0
	}
	if n >= len(bars) {
		n = len(bars) - 1
	}
	base := bars[len(bars)-1-n].Close
	if base == 0 {
		return 0
	}
	return (bars[len(bars)-1].Close - base) / base * 100
}

// chartResponse mirrors the v8 chart endpoint payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// PriceHistory fetches daily bars, oldest first.
func (p *LiveProvider) PriceHistory(ctx context.Context, ticker string, days int) ([]contracts.Bar, error) {
	var cached []contracts.Bar
	if p.cache != nil {
		found, err := p.cache.Get(ctx, redis.HistoryKey(ticker, days), &cached)
		if err == nil && found {
			return cached, nil
		}
	}

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d",
		p.quoteBaseURL, url.PathEscape(ticker), days)

	var cr chartResponse
	if err := p.fetchJSON(ctx, fullURL, &cr); err != nil {
		return nil, fmt.Errorf("chart fetch failed for %s: %w", ticker, err)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := cr.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]contracts.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue // skip holes in the series
		}
		bars = append(bars, contracts.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		})
	}

	if p.cache != nil {
		_ = p.cache.Set(ctx, redis.HistoryKey(ticker, days), bars, redis.TTLShort)
	}
	return bars, nil
}

// EarningsCalendar reads the next earnings timestamp off the quote.
func (p *LiveProvider) EarningsCalendar(ctx context.Context, ticker string) (int, error) {
	fullURL := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", p.quoteBaseURL, url.QueryEscape(ticker))

	var qr quoteResponse
	if err := p.fetchJSON(ctx, fullURL, &qr); err != nil {
		return -1, fmt.Errorf("quote fetch failed for %s: %w", ticker, err)
	}
	if len(qr.QuoteResponse.Result) == 0 || qr.QuoteResponse.Result[0].EarningsTimestamp == 0 {
		return -1, nil
	}

	next := time.Unix(qr.QuoteResponse.Result[0].EarningsTimestamp, 0)
	days := int(time.Until(next).Hours() / 24)
	if days < 0 {
		return -1, nil // last earnings, not next
	}
	return days, nil
}
