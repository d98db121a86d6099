package contracts

import "time"

// Fundamentals is the financial-statement snapshot used for quality
// boosts. Scores are [0, 1]; zero values mean the data was unavailable
// and the consumer should stay neutral.
type Fundamentals struct {
	Ticker          string  `json:"ticker"`
	GrossMargin     float64 `json:"gross_margin"`     // percent
	OperatingMargin float64 `json:"operating_margin"` // percent
	FreeCashFlow    float64 `json:"free_cash_flow"`   // USD
	DebtToEquity    float64 `json:"debt_to_equity"`
	RevenueGrowth   float64 `json:"revenue_growth"` // percent YoY
	EVToEBITDA      float64 `json:"ev_to_ebitda"`
	QualityScore    float64 `json:"quality_score"` // [0, 1]
}

// Headline is a single recent news item.
type Headline struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// NewsBundle aggregates recent headlines and the catalyst signal
// derived from them.
type NewsBundle struct {
	Ticker         string     `json:"ticker"`
	Headlines      []Headline `json:"headlines,omitempty"`
	CatalystScore  float64    `json:"catalyst_score"`   // [0, 1]
	DaysToEarnings int        `json:"days_to_earnings"` // -1 when unknown
}

// EarningsImminent reports whether earnings land within the window.
func (n *NewsBundle) EarningsImminent(days int) bool {
	return n.DaysToEarnings >= 0 && n.DaysToEarnings < days
}

// InsiderActivity summarizes 90 days of insider trades.
type InsiderActivity struct {
	Ticker        string  `json:"ticker"`
	Buys          int     `json:"buys"`
	Sells         int     `json:"sells"`
	Score         float64 `json:"score"` // [0, 1]
	ClusterBuying bool    `json:"cluster_buying"`
}
