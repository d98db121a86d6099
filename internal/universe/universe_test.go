package universe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/httputil"
	"github.com/wonny/supascan/pkg/logger"
)

func testUniverseConfig(screenerURL string, scanLimit int) *config.Config {
	return &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		Scanner:   config.ScannerConfig{ScanLimit: scanLimit},
		Provider:  config.ProviderConfig{ScreenerURL: screenerURL},
	}
}

func newTestProvider(t *testing.T, screenerURL string, scanLimit int) *Provider {
	t.Helper()
	cfg := testUniverseConfig(screenerURL, scanLimit)
	log := logger.New(cfg)
	client := httputil.New(cfg, log).DisableRetry()
	return New(cfg, client, log)
}

// screenerPage renders a minimal screener results table.
func screenerPage(tickers ...string) string {
	page := "<html><body><table>"
	for _, ticker := range tickers {
		page += fmt.Sprintf(
			`<tr><td><a class="screener-link-primary" href="quote.ashx?t=%s">%s</a></td></tr>`,
			ticker, ticker)
	}
	page += "</table></body></html>"
	return page
}

func TestTickers_FromScreener(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Single page of results; second request gets an empty table
		if r.URL.Query().Get("r") == "1" {
			fmt.Fprint(w, screenerPage("NVDA", "AMD", "PLTR", "SOFI"))
			return
		}
		fmt.Fprint(w, screenerPage())
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 100)
	tickers := p.Tickers(context.Background())

	assert.Equal(t, []string{"NVDA", "AMD", "PLTR", "SOFI"}, tickers)
}

func TestTickers_TruncatesToScanLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, screenerPage("NVDA", "AMD", "PLTR", "SOFI", "COIN", "HOOD"))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 3)
	tickers := p.Tickers(context.Background())

	assert.Equal(t, []string{"NVDA", "AMD", "PLTR"}, tickers)
}

func TestTickers_Paginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("r") {
		case "1":
			fmt.Fprint(w, screenerPage("NVDA", "AMD"))
		case "21":
			fmt.Fprint(w, screenerPage("PLTR", "SOFI"))
		default:
			fmt.Fprint(w, screenerPage())
		}
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 100)
	tickers := p.Tickers(context.Background())

	assert.Equal(t, []string{"NVDA", "AMD", "PLTR", "SOFI"}, tickers)
}

func TestTickers_StopsOnRepeatedPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Screener serves the same rows regardless of offset
		fmt.Fprint(w, screenerPage("NVDA", "AMD"))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 100)
	tickers := p.Tickers(context.Background())

	assert.Equal(t, []string{"NVDA", "AMD"}, tickers)
}

func TestTickers_FallbackOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 100)
	tickers := p.Tickers(context.Background())

	assert.Equal(t, StaticFallback(), tickers)
}

func TestTickers_FallbackOnEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, screenerPage())
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 100)
	tickers := p.Tickers(context.Background())

	assert.Equal(t, StaticFallback(), tickers)
}

func TestTickers_FallbackRespectsScanLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, 10)
	tickers := p.Tickers(context.Background())

	require.Len(t, tickers, 10)
	assert.Equal(t, StaticFallback()[:10], tickers)
}

func TestIsValidTicker(t *testing.T) {
	assert.True(t, isValidTicker("NVDA"))
	assert.True(t, isValidTicker("F"))
	assert.True(t, isValidTicker("GOOGL"))
	assert.False(t, isValidTicker(""))
	assert.False(t, isValidTicker("TOOLONG"))
	assert.False(t, isValidTicker("nvda"))
	assert.False(t, isValidTicker("BRK.B"))
}

func TestStaticFallback_NoBannedSectors(t *testing.T) {
	fallback := StaticFallback()

	require.NotEmpty(t, fallback)
	seen := make(map[string]bool)
	for _, ticker := range fallback {
		assert.True(t, isValidTicker(ticker), "fallback entry %q must be a valid symbol", ticker)
		assert.False(t, seen[ticker], "fallback must not repeat %q", ticker)
		seen[ticker] = true
	}
}
