package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/wonny/supascan/internal/contracts"
)

// SyntheticProvider generates deterministic market data from the ticker
// symbol alone. The same ticker always yields the same snapshot, bars
// and social stream, which makes full pipeline runs reproducible
// without network access. Distributions are tuned so a realistic share
// of tickers survives each filter stage.
type SyntheticProvider struct {
	now time.Time
}

// NewSynthetic creates a synthetic provider anchored at the current time.
func NewSynthetic() *SyntheticProvider {
	return &SyntheticProvider{now: time.Now().UTC().Truncate(24 * time.Hour)}
}

// rng derives a reproducible generator for one ticker and concern.
func (p *SyntheticProvider) rng(ticker, salt string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	h.Write([]byte{':'})
	h.Write([]byte(salt))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

var syntheticSectors = []string{
	"Technology", "Healthcare", "Financial Services", "Industrials",
	"Communication Services", "Consumer Defensive", "Energy",
	"Consumer Cyclical", "Basic Materials", "Real Estate", "Utilities",
}

// Snapshot generates a deterministic quote.
func (p *SyntheticProvider) Snapshot(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	r := p.rng(ticker, "snapshot")

	price := 5 + r.Float64()*295 // [5, 300)
	avgVolume := int64(300_000 + r.Intn(9_700_000))
	volume := int64(float64(avgVolume) * (0.4 + r.Float64()*2.0))

	return &contracts.Snapshot{
		Ticker:        ticker,
		Company:       fmt.Sprintf("%s Inc.", ticker),
		Sector:        syntheticSectors[r.Intn(len(syntheticSectors))],
		Industry:      "Synthetic",
		Price:         round2(price),
		MarketCap:     float64(200+r.Intn(49_800)) * 1e6, // 200M - 50B
		Volume:        volume,
		AvgVolume:     avgVolume,
		Change1D:      round2(r.NormFloat64() * 3),    // mostly within ±9%
		Change7D:      round2(r.NormFloat64()*5 + 1),  // slight positive drift
		Change90D:     round2(r.NormFloat64()*15 + 5), // wider spread
		PERatio:       round2(math.Abs(r.NormFloat64()*25) + 8),
		EPS:           round2(r.NormFloat64()*3 + 2),
		RevenueGrowth: round2(r.NormFloat64()*12 + 8),
		ShortPercent:  round2(math.Abs(r.NormFloat64()) * 8),
		FloatShares:   float64(20+r.Intn(980)) * 1e6,
		AsOf:          p.now,
	}, nil
}

// PriceHistory generates a random-walk bar series whose endpoint agrees
// with the snapshot's price and momentum direction.
func (p *SyntheticProvider) PriceHistory(ctx context.Context, ticker string, days int) ([]contracts.Bar, error) {
	r := p.rng(ticker, "history")

	snapshot, _ := p.Snapshot(ctx, ticker)
	drift := snapshot.Change90D / 100 / float64(days)

	// Walk backwards from the current price
	closes := make([]float64, days)
	closes[days-1] = snapshot.Price
	for i := days - 2; i >= 0; i-- {
		step := 1 + drift + r.NormFloat64()*0.02
		if step < 0.5 {
			step = 0.5
		}
		closes[i] = closes[i+1] / step
	}

	bars := make([]contracts.Bar, days)
	for i := 0; i < days; i++ {
		c := closes[i]
		spread := c * (0.005 + r.Float64()*0.02)
		open := c + (r.Float64()-0.5)*spread
		bars[i] = contracts.Bar{
			Date:   p.now.AddDate(0, 0, i-days+1),
			Open:   round2(open),
			High:   round2(math.Max(open, c) + spread/2),
			Low:    round2(math.Min(open, c) - spread/2),
			Close:  round2(c),
			Volume: snapshot.AvgVolume + int64(r.NormFloat64()*float64(snapshot.AvgVolume)/4),
		}
	}
	return bars, nil
}

// SocialMentions generates a deterministic mention count scaled by the
// window length relative to a day.
func (p *SyntheticProvider) SocialMentions(ctx context.Context, ticker string, window time.Duration) (int, error) {
	r := p.rng(ticker, "mentions")

	perDay := r.Intn(60) // 0-59 mentions/day baseline
	daysInWindow := window.Hours() / 24
	jitter := 0.8 + r.Float64()*0.4
	return int(float64(perDay) * daysInWindow * jitter), nil
}

var syntheticPostTemplates = []string{
	"%s reported strong earnings this quarter, revenue growth looks sustainable and the guidance raise surprised analysts across the board",
	"New product launch from %s could be a major catalyst, partnership announcement expected soon according to industry sources",
	"%s to the moon, this rocket is going to squeeze so hard, diamond hands only, yolo calls printing",
	"Interesting setup on %s, consolidating above the 50 day with rising volume, watching for a breakout over resistance",
	"%s received FDA approval for their lead candidate, this changes the revenue trajectory completely for the next two years",
	"buy %s now", // below quality length floor on purpose
}

// SocialPosts generates a deterministic post stream.
func (p *SyntheticProvider) SocialPosts(ctx context.Context, ticker string, window time.Duration) ([]contracts.Mention, error) {
	r := p.rng(ticker, "posts")

	count, _ := p.SocialMentions(ctx, ticker, window)
	if count > 40 {
		count = 40
	}

	posts := make([]contracts.Mention, count)
	for i := range posts {
		template := syntheticPostTemplates[r.Intn(len(syntheticPostTemplates))]
		posts[i] = contracts.Mention{
			Source:     "stocktwits",
			Text:       fmt.Sprintf(template, ticker),
			Engagement: r.Intn(50),
		}
	}
	return posts, nil
}

// News generates deterministic headlines with an occasional catalyst.
func (p *SyntheticProvider) News(ctx context.Context, ticker string) (*contracts.NewsBundle, error) {
	r := p.rng(ticker, "news")

	bundle := &contracts.NewsBundle{Ticker: ticker, DaysToEarnings: -1}

	headlines := []string{
		fmt.Sprintf("%s announces quarterly results", ticker),
		fmt.Sprintf("%s beats estimates, raises guidance", ticker),
		fmt.Sprintf("Analysts weigh in on %s valuation", ticker),
		fmt.Sprintf("%s expands partnership with major supplier", ticker),
	}
	n := 1 + r.Intn(len(headlines))
	catalysts := 0
	for i := 0; i < n; i++ {
		title := headlines[r.Intn(len(headlines))]
		bundle.Headlines = append(bundle.Headlines, contracts.Headline{
			Title:       title,
			Source:      "synthetic-wire",
			PublishedAt: p.now.AddDate(0, 0, -r.Intn(5)),
		})
		if matchesCatalyst(title) {
			catalysts++
		}
	}
	bundle.CatalystScore = float64(catalysts) / float64(len(bundle.Headlines))

	if days, _ := p.EarningsCalendar(ctx, ticker); days >= 0 {
		bundle.DaysToEarnings = days
	}
	return bundle, nil
}

// InsiderTrades generates a deterministic insider summary.
func (p *SyntheticProvider) InsiderTrades(ctx context.Context, ticker string) (*contracts.InsiderActivity, error) {
	r := p.rng(ticker, "insider")

	buys := r.Intn(6)
	sells := r.Intn(6)
	return &contracts.InsiderActivity{
		Ticker:        ticker,
		Buys:          buys,
		Sells:         sells,
		Score:         InsiderScore(buys, sells),
		ClusterBuying: buys >= 3 && buys > sells,
	}, nil
}

// Financials generates deterministic fundamentals.
func (p *SyntheticProvider) Financials(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	r := p.rng(ticker, "financials")

	fund := &contracts.Fundamentals{
		Ticker:          ticker,
		GrossMargin:     round2(20 + r.Float64()*60),
		OperatingMargin: round2(-5 + r.Float64()*35),
		FreeCashFlow:    math.Floor(r.NormFloat64() * 500e6),
		DebtToEquity:    round2(r.Float64() * 250),
		RevenueGrowth:   round2(r.NormFloat64()*12 + 8),
		EVToEBITDA:      round2(5 + r.Float64()*35),
	}
	fund.QualityScore = QualityScore(fund)
	return fund, nil
}

// EarningsCalendar generates a deterministic days-to-earnings value.
// Roughly a quarter of tickers have no known date.
func (p *SyntheticProvider) EarningsCalendar(ctx context.Context, ticker string) (int, error) {
	r := p.rng(ticker, "earnings")

	if r.Intn(4) == 0 {
		return -1, nil
	}
	return r.Intn(90), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
