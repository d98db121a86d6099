package contracts

import "time"

// Regime status values.
const (
	RegimeTradeable = "TRADEABLE"
	RegimePaused    = "PAUSED"
)

// MarketRegimeState is the market-wide go/no-go decision evaluated
// before any per-ticker work. The same inputs always produce the same
// status and the same reasons in the same order.
type MarketRegimeState struct {
	Status string `json:"status"` // TRADEABLE or PAUSED

	// Observed inputs
	Volatility  float64 `json:"volatility"`   // VIX level
	Change5D    float64 `json:"change_5d"`    // index, percent
	Change10D   float64 `json:"change_10d"`   // index, percent
	VolumeRatio float64 `json:"volume_ratio"` // index last bar vs 20d average
	RedWeeks    int     `json:"red_weeks"`    // consecutive down weeks

	// Why paused. Empty when tradeable.
	Reasons []string `json:"reasons,omitempty"`

	// Set when the feed failed and the gate failed open.
	FetchError string `json:"fetch_error,omitempty"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Tradeable reports whether the pipeline may proceed.
func (m *MarketRegimeState) Tradeable() bool {
	return m.Status == RegimeTradeable
}
