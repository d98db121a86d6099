package ai

import (
	"context"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/logger"
)

// defaultStopFraction places the stop 8% under the entry when the risk
// dimension did not supply a level.
const defaultStopFraction = 0.92

// defaultRisk stands in when the risk dimension returned nothing.
const defaultRisk = 0.5

// Synthesizer runs every enabled analysis dimension through the LLM
// and folds the replies into one Analysis. A dimension whose call
// fails contributes nothing: its adjustments simply stay neutral.
type Synthesizer struct {
	cfg    config.AIConfig
	risk   config.RiskConfig
	client LLMClient
	logger *logger.Logger
}

// NewSynthesizer creates the analysis synthesizer.
func NewSynthesizer(cfg config.AIConfig, risk config.RiskConfig, client LLMClient, log *logger.Logger) *Synthesizer {
	return &Synthesizer{cfg: cfg, risk: risk, client: client, logger: log}
}

// enabledDimensions returns the dimensions to run, in a fixed order.
func (s *Synthesizer) enabledDimensions() []string {
	var dims []string
	if s.cfg.EnableScanner {
		dims = append(dims, DimScanner)
	}
	if s.cfg.EnableRisk {
		dims = append(dims, DimRisk)
	}
	if s.cfg.EnableTechnical {
		dims = append(dims, DimTechnical)
	}
	if s.cfg.EnableValue {
		dims = append(dims, DimValue)
	}
	if s.cfg.EnableSentiment {
		dims = append(dims, DimSentiment)
	}
	if s.cfg.EnableGeopolitical {
		dims = append(dims, DimGeopolitical)
	}
	return dims
}

// Analyze runs the enabled dimensions for one candidate and
// synthesizes the final judgment. Only context cancellation aborts the
// run; any other per-dimension failure degrades to a neutral reading.
func (s *Synthesizer) Analyze(ctx context.Context, c *contracts.Candidate) (*contracts.Analysis, error) {
	promptCtx := buildContext(c)
	results := make(map[string]map[string]interface{})

	for _, dim := range s.enabledDimensions() {
		prompt, err := renderPrompt(dim, promptCtx)
		if err != nil {
			return nil, err
		}

		result, err := s.client.Complete(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.WithFields(map[string]interface{}{
				"ticker":    c.Ticker(),
				"dimension": dim,
				"error":     err.Error(),
			}).Warn("Analysis dimension failed, treating as neutral")
			result = map[string]interface{}{}
		}
		results[dim] = result
	}

	return s.synthesize(c, results), nil
}

func (s *Synthesizer) synthesize(c *contracts.Candidate, results map[string]map[string]interface{}) *contracts.Analysis {
	analysis := &contracts.Analysis{Ticker: c.Ticker()}

	analysis.Fundamental = scoreFundamentals(results[DimScanner], results[DimValue])
	analysis.Technical = scoreTechnical(results[DimTechnical])
	analysis.Sentiment = scoreSentiment(results[DimSentiment])
	analysis.Risk = clamp(getFloat(results[DimRisk], "risk_score", defaultRisk), 0.0, 1.0)

	raw := analysis.Fundamental*s.cfg.FundamentalWeight +
		analysis.Technical*s.cfg.TechnicalWeight +
		analysis.Sentiment*s.cfg.SentimentWeight
	analysis.Composite = raw * (1 - analysis.Risk*s.cfg.RiskPenaltyWeight)

	analysis.Rating, analysis.Conviction = s.determineRating(analysis)
	analysis.HoldPeriod = s.holdPeriod(analysis)

	analysis.StopLoss = getFloat(results[DimRisk], "stop_loss_level",
		c.Snapshot.Price*defaultStopFraction)
	analysis.PositionPct = s.positionSize(
		getString(results[DimRisk], "position_size_recommendation", "half"))

	analysis.Thesis = getString(results[DimScanner], "bull_case", "")

	s.logger.WithFields(map[string]interface{}{
		"ticker":     analysis.Ticker,
		"composite":  analysis.Composite,
		"rating":     analysis.Rating,
		"conviction": analysis.Conviction,
		"risk":       analysis.Risk,
	}).Info("Analysis synthesized")

	return analysis
}

// scoreFundamentals folds the scanner and value dimensions into a
// 1-5 fundamental score.
func scoreFundamentals(scanner, value map[string]interface{}) float64 {
	score := 3.0

	switch getString(scanner, "sector_outlook", "neutral") {
	case "bullish":
		score += 0.5
	case "bearish":
		score -= 0.5
	}

	switch getString(value, "value_investor_rating", "hold") {
	case "strong_buy":
		score += 1.0
	case "buy":
		score += 0.5
	case "avoid":
		score -= 1.0
	}

	if getBool(value, "has_moat", false) {
		switch getString(value, "moat_strength", "weak") {
		case "strong":
			score += 0.5
		case "moderate":
			score += 0.3
		}
	}

	return clamp(score, 1.0, 5.0)
}

func scoreTechnical(technical map[string]interface{}) float64 {
	score := 3.0

	switch getString(technical, "technical_outlook", "neutral") {
	case "bullish":
		score += 1.0
	case "bearish":
		score -= 1.0
	}

	switch getString(technical, "ma_status", "neutral") {
	case "golden_cross":
		score += 0.5
	case "death_cross":
		score -= 0.5
	}

	switch getString(technical, "rsi_interpretation", "neutral") {
	case "neutral":
		score += 0.5
	case "overbought":
		score -= 0.3
	}

	return clamp(score, 1.0, 5.0)
}

func scoreSentiment(sentiment map[string]interface{}) float64 {
	// Crowd capitulation with intact fundamentals outranks any
	// fear/greed reading
	if getBool(sentiment, "contrarian_opportunity", false) {
		return 4.5
	}

	score := 3.0
	switch getString(sentiment, "sentiment_score", "neutral") {
	case "extreme_greed":
		score -= 1.0
	case "greed", "fear":
		score += 0.5
	case "extreme_fear":
		score -= 0.5
	}

	return clamp(score, 1.0, 5.0)
}

func (s *Synthesizer) determineRating(a *contracts.Analysis) (string, string) {
	var rating, conviction string

	switch {
	case a.Composite >= 4.5:
		rating, conviction = contracts.RatingStrongBuy, contracts.ConvictionHigh
	case a.Composite >= 3.5:
		rating = contracts.RatingBuy
		if a.Fundamental >= 4.0 {
			conviction = contracts.ConvictionHigh
		} else {
			conviction = contracts.ConvictionMedium
		}
	case a.Composite >= 3.0:
		rating, conviction = contracts.RatingHold, contracts.ConvictionMedium
	case a.Composite >= 2.5:
		rating, conviction = contracts.RatingWeakHold, contracts.ConvictionLow
	default:
		rating, conviction = contracts.RatingAvoid, contracts.ConvictionLow
	}

	if a.Risk > s.risk.HighRiskThreshold {
		if rating == contracts.RatingStrongBuy {
			rating = contracts.RatingBuy
		}
		conviction = contracts.ConvictionLow
	}

	return rating, conviction
}

func (s *Synthesizer) holdPeriod(a *contracts.Analysis) string {
	switch {
	case a.Risk > s.risk.HighRiskThreshold:
		return "1-3 days (high risk, quick flip)"
	case a.Technical >= 4.0 && a.Fundamental < 3.5:
		return "1-2 weeks (technical momentum)"
	case a.Fundamental >= 4.0:
		return "1-3 months (value opportunity)"
	default:
		return "2-4 weeks (swing trade)"
	}
}

func (s *Synthesizer) positionSize(recommendation string) float64 {
	switch recommendation {
	case "full":
		return s.risk.HighConvictionSize
	case "quarter":
		return s.risk.LowConvictionSize
	case "avoid":
		return 0
	default: // half
		return s.risk.MediumConvictionSize
	}
}

// Loose map accessors: LLM replies are best-effort JSON and any field
// may be missing or mistyped.

func getString(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return fallback
}

func getFloat(m map[string]interface{}, key string, fallback float64) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return fallback
}

func getBool(m map[string]interface{}, key string, fallback bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
