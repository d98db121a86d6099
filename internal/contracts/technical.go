package contracts

// Technical outlook values.
const (
	OutlookBullish = "BULLISH"
	OutlookNeutral = "NEUTRAL"
	OutlookBearish = "BEARISH"
)

// Chart pattern names emitted by the technical analyzer.
const (
	PatternGoldenCross       = "golden_cross"
	PatternDeathCross        = "death_cross"
	PatternBreakout          = "breakout"
	PatternConsolidation     = "consolidation"
	PatternBullFlag          = "bull_flag"
	PatternAscendingTriangle = "ascending_triangle"
)

// Volume trend values.
const (
	VolumeRising  = "RISING"
	VolumeFalling = "FALLING"
	VolumeFlat    = "FLAT"
)

// TechnicalScore is the output of the technical analysis stage.
// Score is clamped to [1, 5].
type TechnicalScore struct {
	Ticker string `json:"ticker"`

	// Indicators
	RSI        float64 `json:"rsi"`
	SMA20      float64 `json:"sma_20"`
	SMA50      float64 `json:"sma_50"`
	SMA200     float64 `json:"sma_200"`
	EMA9       float64 `json:"ema_9"`
	EMA21      float64 `json:"ema_21"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`

	// Volume
	VolumeRatio float64 `json:"volume_ratio"` // last bar vs 20d average
	VolumeTrend string  `json:"volume_trend"`
	VolumeSpike bool    `json:"volume_spike"` // ratio > 2.0

	// Structure
	Patterns   []string  `json:"patterns,omitempty"`
	Support    []float64 `json:"support,omitempty"`    // strongest first
	Resistance []float64 `json:"resistance,omitempty"` // strongest first

	Score   float64 `json:"score"` // [1, 5]
	Outlook string  `json:"outlook"`
}

// HasPattern reports whether a named pattern was detected.
func (t *TechnicalScore) HasPattern(name string) bool {
	for _, p := range t.Patterns {
		if p == name {
			return true
		}
	}
	return false
}

// MACDBullish reports whether the MACD line is above its signal line.
func (t *TechnicalScore) MACDBullish() bool {
	return t.MACD > t.MACDSignal
}
