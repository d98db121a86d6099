package scoring

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/logger"
)

// Ranker applies the final output gates and orders the survivors.
// A candidate reaches the finalist list only when it is fresh, its
// social volume is accelerating, it is not a squeeze-risk name, and
// its enhanced composite clears the configured floor.
type Ranker struct {
	cfg    config.ScannerConfig
	risk   config.RiskConfig
	scorer *Scorer
	logger *logger.Logger
}

// NewRanker creates the finalist ranker.
func NewRanker(cfg config.ScannerConfig, risk config.RiskConfig, scorer *Scorer, log *logger.Logger) *Ranker {
	return &Ranker{cfg: cfg, risk: risk, scorer: scorer, logger: log}
}

// Rank scores, gates, sorts, and truncates the candidates to the
// configured top-K finalists.
func (r *Ranker) Rank(candidates []*contracts.Candidate) []contracts.RankedCandidate {
	var finalists []contracts.RankedCandidate

	for _, c := range candidates {
		if reason := r.gate(c); reason != "" {
			r.logger.WithFields(map[string]interface{}{
				"ticker": c.Ticker(),
				"reason": reason,
			}).Debug("Candidate gated out of final ranking")
			continue
		}

		composite, rating, conviction := r.scorer.Enhance(c)
		if composite < r.cfg.MinCompositeScore {
			r.logger.WithFields(map[string]interface{}{
				"ticker":    c.Ticker(),
				"composite": composite,
				"floor":     r.cfg.MinCompositeScore,
			}).Debug("Candidate below composite floor")
			continue
		}

		finalists = append(finalists, r.build(c, composite, rating, conviction))
	}

	// Highest composite first; ties break on ticker so identical
	// inputs always rank identically
	sort.Slice(finalists, func(i, j int) bool {
		if finalists[i].CompositeScore != finalists[j].CompositeScore {
			return finalists[i].CompositeScore > finalists[j].CompositeScore
		}
		return finalists[i].Ticker < finalists[j].Ticker
	})

	if len(finalists) > r.cfg.TopK {
		finalists = finalists[:r.cfg.TopK]
	}
	for i := range finalists {
		finalists[i].Rank = i + 1
	}
	return finalists
}

// gate returns a rejection reason or empty when the candidate may be
// ranked.
func (r *Ranker) gate(c *contracts.Candidate) string {
	if c.Snapshot.ShortPercent > r.cfg.MaxShortPercent {
		return "squeeze risk: short interest above ceiling"
	}
	if !c.Fresh {
		return "not fresh: outside the entry band"
	}
	if c.Social == nil || !c.Social.IsAccelerating {
		return "social volume not accelerating"
	}
	return ""
}

func (r *Ranker) build(c *contracts.Candidate, composite float64, rating, conviction string) contracts.RankedCandidate {
	ranked := contracts.RankedCandidate{
		Ticker:         c.Ticker(),
		Company:        c.Snapshot.Company,
		Sector:         c.Snapshot.Sector,
		Price:          c.Snapshot.Price,
		CompositeScore: composite,
		Rating:         rating,
		Conviction:     conviction,
		Fresh:          c.Fresh,
		Social:         c.Social,
		Technical:      c.Technical,
		Analysis:       c.Analysis,
	}

	if c.Analysis != nil {
		ranked.HoldPeriod = c.Analysis.HoldPeriod
		ranked.StopLoss = roundPrice(c.Analysis.StopLoss)
		ranked.PositionPct = c.Analysis.PositionPct
	} else {
		ranked.HoldPeriod = "2-4 weeks (swing trade)"
		ranked.StopLoss = stopBelow(c.Snapshot.Price, r.risk.DefaultStopLossPct)
		ranked.PositionPct = r.risk.MediumConvictionSize
	}

	return ranked
}

// stopBelow places a stop the given fraction under the entry, rounded
// to cents.
func stopBelow(price, fraction float64) float64 {
	entry := decimal.NewFromFloat(price)
	stop := entry.Mul(decimal.NewFromFloat(1).Sub(decimal.NewFromFloat(fraction)))
	return stop.Round(2).InexactFloat64()
}

func roundPrice(price float64) float64 {
	return decimal.NewFromFloat(price).Round(2).InexactFloat64()
}
