package contracts

import "time"

// Snapshot is a point-in-time view of a single ticker as returned by a
// data provider. Missing numeric fields are zero; Price == 0 means the
// provider had no data for the ticker.
type Snapshot struct {
	Ticker    string  `json:"ticker"`
	Company   string  `json:"company"`
	Sector    string  `json:"sector"`
	Industry  string  `json:"industry"`
	Price     float64 `json:"price"`
	MarketCap float64 `json:"market_cap"`

	// Volume
	Volume    int64 `json:"volume"`     // last session shares
	AvgVolume int64 `json:"avg_volume"` // trailing average shares

	// Momentum (percent)
	Change1D  float64 `json:"change_1d"`
	Change7D  float64 `json:"change_7d"`
	Change90D float64 `json:"change_90d"`

	// Fundamentals
	PERatio       float64 `json:"pe_ratio"`
	EPS           float64 `json:"eps"`
	RevenueGrowth float64 `json:"revenue_growth"` // percent YoY

	// Squeeze / float
	ShortPercent float64 `json:"short_percent"` // percent of float
	FloatShares  float64 `json:"float_shares"`

	AsOf time.Time `json:"as_of"`
}

// HasData reports whether the provider returned anything usable.
func (s *Snapshot) HasData() bool {
	return s.Price > 0
}

// DollarVolume returns the last session's traded value in USD.
func (s *Snapshot) DollarVolume() float64 {
	return s.Price * float64(s.Volume)
}

// Bar is one daily OHLCV bar. History slices are oldest first.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Candidate is a ticker moving through the pipeline, accumulating
// stage outputs as it survives each filter.
type Candidate struct {
	Snapshot Snapshot `json:"snapshot"`

	// Enrichment, attached as stages run. Nil until populated.
	Fundamentals *Fundamentals    `json:"fundamentals,omitempty"`
	News         *NewsBundle      `json:"news,omitempty"`
	Insider      *InsiderActivity `json:"insider,omitempty"`
	Social       *SocialScore     `json:"social,omitempty"`
	Technical    *TechnicalScore  `json:"technical,omitempty"`
	Analysis     *Analysis        `json:"analysis,omitempty"`

	// Fresh means the 7d move sits inside the configured entry band
	// and the 90d trend is not broken.
	Fresh bool `json:"fresh"`
}

// Ticker is shorthand for the snapshot ticker.
func (c *Candidate) Ticker() string {
	return c.Snapshot.Ticker
}
