package contracts

// Rating values, best to worst.
const (
	RatingStrongBuy = "STRONG_BUY"
	RatingBuy       = "BUY"
	RatingHold      = "HOLD"
	RatingWeakHold  = "WEAK_HOLD"
	RatingAvoid     = "AVOID"
)

// Conviction values.
const (
	ConvictionHigh   = "HIGH"
	ConvictionMedium = "MEDIUM"
	ConvictionLow    = "LOW"
)

// Analysis is the synthesized multi-dimension judgment for one ticker.
// Sub-scores are on a 1-5 scale; Risk is [0, 1] where higher is
// riskier. Composite applies the configured weights and the risk
// penalty, so it is bounded by the sub-score scale.
type Analysis struct {
	Ticker string `json:"ticker"`

	// Sub-scores
	Fundamental float64 `json:"fundamental"` // [1, 5]
	Technical   float64 `json:"technical"`   // [1, 5]
	Sentiment   float64 `json:"sentiment"`   // [1, 5]
	Risk        float64 `json:"risk"`        // [0, 1]

	Composite  float64 `json:"composite"`
	Rating     string  `json:"rating"`
	Conviction string  `json:"conviction"`
	HoldPeriod string  `json:"hold_period"`

	// Trade plan
	StopLoss    float64 `json:"stop_loss"`    // absolute price
	PositionPct float64 `json:"position_pct"` // fraction of capital

	// One-line reasoning carried through to notifications.
	Thesis string `json:"thesis,omitempty"`
}

// Actionable reports whether the rating warrants an entry.
func (a *Analysis) Actionable() bool {
	return a.Rating == RatingStrongBuy || a.Rating == RatingBuy
}
