package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/logger"
)

// Enhancement weights applied on top of the base composite.
const (
	freshBoost     = 0.5
	qualityWeight  = 0.5 // times quality score [0, 1]
	catalystWeight = 0.4 // times catalyst score [0, 1]
	insiderWeight  = 0.6 // times insider score [0, 1]

	cheapEVBoost      = 0.3 // EV/EBITDA under 10
	richEVPenalty     = 0.3 // EV/EBITDA over 30
	earningsPenalty   = 0.2 // earnings inside the blackout window
	earningsWindowDay = 7

	maxComposite = 5.0
)

// Fallback mix when no synthesized analysis is available.
const (
	fallbackTechnicalWeight = 0.6
	fallbackSocialWeight    = 0.4
)

// Scorer turns a fully enriched candidate into its final composite
// score, layering the quality, catalyst, insider, valuation, and
// timing enhancements over the synthesized base score.
type Scorer struct {
	cfg    config.ScannerConfig
	logger *logger.Logger
}

// NewScorer creates a composite scorer.
func NewScorer(cfg config.ScannerConfig, log *logger.Logger) *Scorer {
	return &Scorer{cfg: cfg, logger: log}
}

// Enhance computes the enhanced composite plus the possibly upgraded
// rating and conviction for one candidate.
func (s *Scorer) Enhance(c *contracts.Candidate) (float64, string, string) {
	base, rating, conviction := s.baseScore(c)
	enhanced := base

	if c.Fresh {
		enhanced += freshBoost
	}
	if c.Fundamentals != nil {
		enhanced += c.Fundamentals.QualityScore * qualityWeight
	}
	if c.News != nil {
		enhanced += c.News.CatalystScore * catalystWeight
	}
	if c.Insider != nil {
		enhanced += c.Insider.Score * insiderWeight
	}

	if c.Fundamentals != nil && c.Fundamentals.EVToEBITDA > 0 {
		switch {
		case c.Fundamentals.EVToEBITDA < 10:
			enhanced += cheapEVBoost
		case c.Fundamentals.EVToEBITDA > 30:
			enhanced -= richEVPenalty
		}
	}

	if c.News != nil && c.News.EarningsImminent(earningsWindowDay) {
		enhanced -= earningsPenalty
	}

	if enhanced > maxComposite {
		enhanced = maxComposite
	}
	enhanced = round2(enhanced)

	rating, conviction = s.upgrade(enhanced, rating, conviction, c)

	s.logger.WithFields(map[string]interface{}{
		"ticker":   c.Ticker(),
		"base":     round2(base),
		"enhanced": enhanced,
		"rating":   rating,
	}).Debug("Composite enhanced")

	return enhanced, rating, conviction
}

// baseScore picks the synthesized composite when present, otherwise
// blends the technical and social scores.
func (s *Scorer) baseScore(c *contracts.Candidate) (float64, string, string) {
	if c.Analysis != nil {
		return c.Analysis.Composite, c.Analysis.Rating, c.Analysis.Conviction
	}

	technical := 3.0
	if c.Technical != nil {
		technical = c.Technical.Score
	}
	social := 0.3
	if c.Social != nil {
		social = c.Social.Composite
	}

	// Social composite lives on a [0, 1] scale; lift it to 1-5
	base := technical*fallbackTechnicalWeight + social*5*fallbackSocialWeight

	rating := contracts.RatingHold
	if base >= 3.8 {
		rating = contracts.RatingBuy
	}
	return base, rating, contracts.ConvictionMedium
}

// upgrade promotes the rating when the enhanced score warrants it.
// Cluster insider buying lifts a BUY to high conviction.
func (s *Scorer) upgrade(enhanced float64, rating, conviction string, c *contracts.Candidate) (string, string) {
	switch {
	case enhanced >= 4.5:
		return contracts.RatingStrongBuy, contracts.ConvictionHigh
	case enhanced >= 3.8:
		if c.Insider != nil && c.Insider.ClusterBuying {
			return contracts.RatingBuy, contracts.ConvictionHigh
		}
		return contracts.RatingBuy, contracts.ConvictionMedium
	case enhanced >= 3.0:
		return contracts.RatingHold, contracts.ConvictionMedium
	}
	return rating, conviction
}

// round2 rounds to cents-style two decimal places without binary
// float drift.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
