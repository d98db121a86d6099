package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/supascan/internal/ai"
	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/internal/filters"
	"github.com/wonny/supascan/internal/notify"
	"github.com/wonny/supascan/internal/regime"
	"github.com/wonny/supascan/internal/scoring"
	"github.com/wonny/supascan/internal/social"
	"github.com/wonny/supascan/internal/technical"
	"github.com/wonny/supascan/internal/universe"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/httputil"
	"github.com/wonny/supascan/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

// testConfig mirrors the documented defaults so funnel arithmetic in
// these tests matches production behavior.
func testConfig() *config.Config {
	return &config.Config{
		Env: "development",
		Scanner: config.ScannerConfig{
			ScanLimit:         100,
			TopK:              3,
			MinMarketCap:      500_000_000,
			MaxMarketCap:      999_999_999_999_999,
			MinPrice:          5.00,
			MaxPrice:          9999.00,
			MinDailyVolumeUSD: 2_000_000,
			MinAvgVolume:      500_000,
			Max7DChange:       20.0,
			Max1DChange:       12.0,
			Min90DChange:      0.0,
			FreshMin:          0.0,
			FreshMax:          5.0,
			MinRSI:            40.0,
			MaxRSI:            75.0,
			MinVolumeRatio:    0.5,
			MinRevenueGrowth:  5.0,
			MaxPERatio:        60.0,
			MinCompositeScore: 3.0,
			MaxShortPercent:   20.0,
			BannedSectors:     []string{"Energy", "Consumer Cyclical", "Utilities"},
		},
		Regime: config.RegimeConfig{
			IndexSymbol:       "SPY",
			VolatilitySymbol:  "^VIX",
			MaxVolatility:     30.0,
			Min10DChange:      -6.0,
			Min5DChange:       -4.0,
			MaxRedWeeks:       3,
			DistributionRatio: 1.5,
		},
		Social: config.SocialConfig{
			RecentWindow:       24 * time.Hour,
			BaselineWindow:     120 * time.Hour,
			MinRecentMentions:  15,
			AccelThreshold:     0.5,
			MinPostLength:      50,
			MinPostEngagement:  3,
			MinCompositeScore:  0.2,
			CatalystBoostCount: 3,
		},
		AI: config.AIConfig{
			Enabled:           true,
			EnableScanner:     true,
			EnableRisk:        true,
			EnableTechnical:   true,
			EnableValue:       true,
			EnableSentiment:   true,
			FundamentalWeight: 0.4375,
			TechnicalWeight:   0.3125,
			SentimentWeight:   0.25,
			RiskPenaltyWeight: 0.20,
		},
		Risk: config.RiskConfig{
			HighConvictionSize:   0.10,
			MediumConvictionSize: 0.05,
			LowConvictionSize:    0.025,
			DefaultStopLossPct:   0.10,
			HighRiskThreshold:    0.7,
		},
		LogLevel:  "error",
		LogFormat: "json",
	}
}

// scriptedProvider returns hand-built data per ticker so every stage
// outcome is known in advance:
//
//	AAAA passes every gate and finishes as a finalist
//	BBBB fails the quality filter (price below the floor)
//	CCCC fails the price action filter (7d move already pumped)
type scriptedProvider struct {
	vix      float64 // ^VIX close, 18 when zero
	now      time.Time
	change7D map[string]float64 // per-ticker 7d change overrides
	quiet    map[string]bool    // tickers with no social activity at all
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{now: time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)}
}

func (p *scriptedProvider) Snapshot(_ context.Context, ticker string) (*contracts.Snapshot, error) {
	s := &contracts.Snapshot{
		Ticker:        ticker,
		Company:       ticker + " Inc.",
		Sector:        "Technology",
		Price:         100.0,
		MarketCap:     2_000_000_000,
		Volume:        1_000_000,
		AvgVolume:     1_200_000,
		Change1D:      1.0,
		Change7D:      3.0,
		Change90D:     12.0,
		PERatio:       25.0,
		EPS:           4.0,
		RevenueGrowth: 20.0,
		ShortPercent:  5.0,
		AsOf:          p.now,
	}
	switch ticker {
	case "BBBB":
		s.Price = 2.0
	case "CCCC":
		s.Change7D = 25.0
	}
	if v, ok := p.change7D[ticker]; ok {
		s.Change7D = v
	}
	return s, nil
}

func (p *scriptedProvider) PriceHistory(_ context.Context, ticker string, days int) ([]contracts.Bar, error) {
	bars := make([]contracts.Bar, days)

	switch ticker {
	case "SPY":
		for i := range bars {
			bars[i] = contracts.Bar{
				Date:   p.now.AddDate(0, 0, i-days+1),
				Close:  500.0,
				Volume: 1_000_000,
			}
		}
	case "^VIX":
		level := p.vix
		if level == 0 {
			level = 18.0
		}
		for i := range bars {
			bars[i] = contracts.Bar{Date: p.now.AddDate(0, 0, i-days+1), Close: level}
		}
	default:
		// Alternating +0.6/-0.4 steps keep RSI near 60, inside the
		// entry band, with steady volume for a 1.0 volume ratio.
		c := 100.0
		for i := range bars {
			if i%2 == 0 {
				c += 0.6
			} else {
				c -= 0.4
			}
			bars[i] = contracts.Bar{
				Date:   p.now.AddDate(0, 0, i-days+1),
				Open:   c,
				High:   c + 0.2,
				Low:    c - 0.2,
				Close:  c,
				Volume: 1_000_000,
			}
		}
	}
	return bars, nil
}

func (p *scriptedProvider) SocialMentions(_ context.Context, ticker string, window time.Duration) (int, error) {
	if p.quiet[ticker] {
		return 0, nil
	}
	if window <= 24*time.Hour {
		return 30, nil
	}
	return 60, nil
}

func (p *scriptedProvider) SocialPosts(_ context.Context, ticker string, _ time.Duration) ([]contracts.Mention, error) {
	if p.quiet[ticker] {
		return nil, nil
	}
	text := fmt.Sprintf("%s announced a major partnership today, %s", ticker,
		strings.Repeat("details inside. ", 5))
	posts := make([]contracts.Mention, 4)
	for i := range posts {
		posts[i] = contracts.Mention{Source: "reddit", Text: text, Engagement: 10}
	}
	return posts, nil
}

func (p *scriptedProvider) News(_ context.Context, ticker string) (*contracts.NewsBundle, error) {
	return &contracts.NewsBundle{Ticker: ticker, CatalystScore: 0.5, DaysToEarnings: -1}, nil
}

func (p *scriptedProvider) InsiderTrades(_ context.Context, ticker string) (*contracts.InsiderActivity, error) {
	return &contracts.InsiderActivity{Ticker: ticker, Buys: 2, Sells: 2, Score: 0.5}, nil
}

func (p *scriptedProvider) Financials(_ context.Context, ticker string) (*contracts.Fundamentals, error) {
	return &contracts.Fundamentals{Ticker: ticker, EVToEBITDA: 15.0, QualityScore: 0.8}, nil
}

func (p *scriptedProvider) EarningsCalendar(_ context.Context, _ string) (int, error) {
	return -1, nil
}

// recordingSink captures dispatched results.
type recordingSink struct {
	results []*contracts.RunResult
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Send(_ context.Context, result *contracts.RunResult) error {
	r.results = append(r.results, result)
	return nil
}

func screenerHTML(tickers []string) string {
	var b strings.Builder
	b.WriteString("<html><body><table>")
	for _, t := range tickers {
		fmt.Fprintf(&b, `<tr><td><a class="screener-link-primary" href="quote.ashx?t=%s">%s</a></td></tr>`, t, t)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

// newTestPipeline assembles a pipeline over the scripted provider with
// a fixed screener universe. The returned sink records every dispatch.
func newTestPipeline(t *testing.T, p *scriptedProvider, tickers []string) (*Pipeline, *recordingSink) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, screenerHTML(tickers))
	}))
	t.Cleanup(server.Close)

	cfg := testConfig()
	cfg.Provider.ScreenerURL = server.URL
	log := testLogger()
	httpClient := httputil.New(cfg, log).DisableRetry()

	sink := &recordingSink{}
	scorer := scoring.NewScorer(cfg.Scanner, log)

	deps := Deps{
		Gate:        regime.NewGate(cfg.Regime, p, log),
		Universe:    universe.New(cfg, httpClient, log),
		Provider:    p,
		Quality:     filters.NewQuality(cfg.Scanner, log),
		PriceAction: filters.NewPriceAction(cfg.Scanner, log),
		Social:      social.NewScorer(cfg.Social, p, log),
		Technical:   technical.NewAnalyzer(cfg.Scanner, log),
		Synthesizer: ai.NewSynthesizer(cfg.AI, cfg.Risk, ai.NewStaticClient(), log),
		Ranker:      scoring.NewRanker(cfg.Scanner, cfg.Risk, scorer, log),
		Dispatcher:  notify.NewDispatcher(log, sink),
	}
	return New(cfg, deps, log), sink
}

func TestRun_FullFunnel(t *testing.T) {
	p, sink := newTestPipeline(t, newScriptedProvider(), []string{"AAAA", "BBBB", "CCCC"})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, contracts.RunCompleted, result.Status)
	assert.Equal(t, contracts.StageCounts{
		Universe:          3,
		QualityPassed:     2,
		PriceActionPassed: 1,
		SociallyScored:    1,
		Analyzed:          1,
		Ranked:            1,
	}, result.Stages)

	require.Len(t, result.Finalists, 1)
	f := result.Finalists[0]
	assert.Equal(t, 1, f.Rank)
	assert.Equal(t, "AAAA", f.Ticker)
	assert.Equal(t, contracts.RatingStrongBuy, f.Rating)
	assert.Equal(t, contracts.ConvictionHigh, f.Conviction)
	assert.InDelta(t, 5.0, f.CompositeScore, 0.01, "synthesized base plus fresh, quality, catalyst and insider boosts, capped")
	assert.InDelta(t, 92.0, f.StopLoss, 0.01)
	assert.InDelta(t, 0.05, f.PositionPct, 0.001)
	assert.Equal(t, "1-3 months (value opportunity)", f.HoldPeriod)
	assert.True(t, f.Fresh)

	require.Len(t, sink.results, 1, "completed run must be dispatched")
	assert.Equal(t, result.RunID, sink.results[0].RunID)
}

func TestRun_PausedRegime(t *testing.T) {
	provider := newScriptedProvider()
	provider.vix = 45.0
	p, sink := newTestPipeline(t, provider, []string{"AAAA"})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, contracts.RunPaused, result.Status)
	assert.Equal(t, 0, result.Stages.Universe, "paused run must not touch the universe")
	assert.Empty(t, result.Finalists)
	require.NotNil(t, result.Regime)
	assert.False(t, result.Regime.Tradeable())

	require.Len(t, sink.results, 1, "pause must still notify")
	assert.Equal(t, contracts.RunPaused, sink.results[0].Status)
}

func TestRun_NoCandidates(t *testing.T) {
	p, _ := newTestPipeline(t, newScriptedProvider(), []string{"CCCC"})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, contracts.RunNoCandidates, result.Status)
	assert.Equal(t, 1, result.Stages.Universe)
	assert.Equal(t, 1, result.Stages.QualityPassed)
	assert.Equal(t, 0, result.Stages.PriceActionPassed)
	assert.Empty(t, result.Finalists)
}

func TestRun_SkipsAnalysisForStaleCandidates(t *testing.T) {
	// DDDD passes both filters but sits above the fresh band, so it is
	// scored socially yet never reaches the synthesizer or the ranking.
	provider := newScriptedProvider()
	// Fresh band is [0, 5]; 7.0 passes the 20% pump ceiling but is stale.
	provider.change7D = map[string]float64{"DDDD": 7.0}
	p, _ := newTestPipeline(t, provider, []string{"DDDD"})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stages.PriceActionPassed)
	assert.Equal(t, 1, result.Stages.SociallyScored)
	assert.Equal(t, 0, result.Stages.Analyzed)
	assert.Empty(t, result.Finalists)
}

func TestRun_SocialFloorDropsQuietNames(t *testing.T) {
	// EEEE clears both filters but has zero social activity, so its
	// composite sits at the floor and it drops before the technical and
	// analysis stages.
	provider := newScriptedProvider()
	provider.quiet = map[string]bool{"EEEE": true}
	p, _ := newTestPipeline(t, provider, []string{"EEEE"})

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, contracts.RunNoCandidates, result.Status)
	assert.Equal(t, 1, result.Stages.PriceActionPassed)
	assert.Equal(t, 0, result.Stages.SociallyScored)
	assert.Equal(t, 0, result.Stages.Analyzed)
	assert.Empty(t, result.Finalists)
}

func TestRun_CancelledContext(t *testing.T) {
	p, _ := newTestPipeline(t, newScriptedProvider(), []string{"AAAA"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
