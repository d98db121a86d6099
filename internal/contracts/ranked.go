package contracts

// RankedCandidate is one finalist row in a scan run's output.
type RankedCandidate struct {
	Rank    int     `json:"rank"`
	Ticker  string  `json:"ticker"`
	Company string  `json:"company"`
	Sector  string  `json:"sector"`
	Price   float64 `json:"price"`

	// Enhanced composite after scoring boosts, capped at 5.0.
	CompositeScore float64 `json:"composite_score"`

	Rating     string `json:"rating"`
	Conviction string `json:"conviction"`
	HoldPeriod string `json:"hold_period"`

	// Trade plan
	StopLoss    float64 `json:"stop_loss"`
	PositionPct float64 `json:"position_pct"`

	Fresh bool `json:"fresh"`

	// Stage outputs carried for reporting.
	Social    *SocialScore    `json:"social,omitempty"`
	Technical *TechnicalScore `json:"technical,omitempty"`
	Analysis  *Analysis       `json:"analysis,omitempty"`
}
