package technical

import (
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/logger"
)

// Indicator periods.
const (
	rsiPeriod    = 14
	smaShort     = 20
	smaMid       = 50
	smaLong      = 200
	emaFast      = 9
	emaSlow      = 21
	volumeWindow = 20
	pivotWindow  = 60
)

// neutralRSI stands in when the series is too short to compute RSI.
const neutralRSI = 50.0

// Analyzer turns a daily bar series into indicator values, detected
// chart patterns, support/resistance levels, and a [1, 5] score with
// an outlook label. Analysis is pure: same bars, same output.
type Analyzer struct {
	cfg    config.ScannerConfig
	logger *logger.Logger
}

// NewAnalyzer creates a technical analyzer.
func NewAnalyzer(cfg config.ScannerConfig, log *logger.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: log}
}

// Analyze scores one ticker's bar series.
func (a *Analyzer) Analyze(ticker string, bars []contracts.Bar) *contracts.TechnicalScore {
	score := &contracts.TechnicalScore{
		Ticker:  ticker,
		RSI:     neutralRSI,
		Outlook: contracts.OutlookNeutral,
		Score:   3.0,
	}
	if len(bars) == 0 {
		return score
	}

	closes := closingPrices(bars)

	score.RSI = LatestRSI(bars)
	score.SMA20 = lastIndicatorValue(smaSeries(closes, smaShort))
	score.SMA50 = lastIndicatorValue(smaSeries(closes, smaMid))
	score.SMA200 = lastIndicatorValue(smaSeries(closes, smaLong))
	score.EMA9 = lastIndicatorValue(emaSeries(closes, emaFast))
	score.EMA21 = lastIndicatorValue(emaSeries(closes, emaSlow))
	score.MACD, score.MACDSignal = latestMACD(closes)

	score.VolumeRatio = LatestVolumeRatio(bars)
	score.VolumeTrend = volumeTrend(bars)
	score.VolumeSpike = score.VolumeRatio > 2.0

	score.Patterns = detectPatterns(closes, bars)
	score.Support, score.Resistance = pivotLevels(bars, pivotWindow)

	score.Score = a.computeScore(score, closes)
	score.Outlook = outlookFor(score.Score)

	a.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"rsi":      score.RSI,
		"score":    score.Score,
		"outlook":  score.Outlook,
		"patterns": score.Patterns,
	}).Debug("Technical analysis computed")

	return score
}

// computeScore starts at a neutral 3.0 and adjusts per signal, then
// clamps to [1, 5].
func (a *Analyzer) computeScore(t *contracts.TechnicalScore, closes []float64) float64 {
	score := 3.0
	price := closes[len(closes)-1]

	// Momentum band
	switch {
	case t.RSI >= 50 && t.RSI <= 65:
		score += 0.3
	case t.RSI > 65 && t.RSI <= 75:
		score += 0.1
	case t.RSI > 75:
		score -= 0.4
	case t.RSI < 40:
		score -= 0.3
	}

	// Moving average alignment
	switch {
	case t.SMA20 > 0 && t.SMA50 > 0 && price > t.SMA20 && t.SMA20 > t.SMA50:
		score += 0.6
	case t.SMA20 > 0 && price > t.SMA20:
		score += 0.2
	case t.SMA20 > 0 && t.SMA50 > 0 && price < t.SMA20 && price < t.SMA50:
		score -= 0.6
	}

	// Volume confirmation
	if t.VolumeSpike {
		score += 0.4
	} else if t.VolumeTrend == contracts.VolumeRising {
		score += 0.2
	}

	// Patterns
	for _, pattern := range t.Patterns {
		switch pattern {
		case contracts.PatternGoldenCross:
			score += 0.5
		case contracts.PatternDeathCross:
			score -= 0.5
		case contracts.PatternBreakout:
			score += 0.3
		case contracts.PatternBullFlag:
			score += 0.4
		case contracts.PatternAscendingTriangle:
			score += 0.3
		}
	}

	// MACD only counts once both lines exist
	if t.MACD != 0 || t.MACDSignal != 0 {
		if t.MACDBullish() {
			score += 0.2
		} else {
			score -= 0.2
		}
	}

	return clamp(score, 1.0, 5.0)
}

func outlookFor(score float64) string {
	switch {
	case score >= 4.0:
		return contracts.OutlookBullish
	case score <= 2.5:
		return contracts.OutlookBearish
	default:
		return contracts.OutlookNeutral
	}
}

// LatestRSI computes the most recent 14-period RSI, returning the
// neutral 50 when the series is too short.
func LatestRSI(bars []contracts.Bar) float64 {
	if len(bars) <= rsiPeriod {
		return neutralRSI
	}

	rsi := momentum.NewRsiWithPeriod[float64](rsiPeriod)
	values := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(closingPrices(bars))))
	if len(values) == 0 {
		return neutralRSI
	}

	last := values[len(values)-1]
	if math.IsNaN(last) || math.IsInf(last, 0) {
		return neutralRSI
	}
	return last
}

// LatestVolumeRatio compares the last bar's volume to the trailing
// 20-bar average excluding the last bar. Returns 0 when there is not
// enough history to form a baseline.
func LatestVolumeRatio(bars []contracts.Bar) float64 {
	if len(bars) < 2 {
		return 0
	}
	window := bars[:len(bars)-1]
	if len(window) > volumeWindow {
		window = window[len(window)-volumeWindow:]
	}

	var sum int64
	for _, bar := range window {
		sum += bar.Volume
	}
	avg := float64(sum) / float64(len(window))
	if avg == 0 {
		return 0
	}
	return float64(bars[len(bars)-1].Volume) / avg
}

// volumeTrend compares the 5-bar average volume to the prior 15-bar
// average.
func volumeTrend(bars []contracts.Bar) string {
	if len(bars) < 20 {
		return contracts.VolumeFlat
	}
	tail := bars[len(bars)-20:]

	var prior, recent int64
	for _, bar := range tail[:15] {
		prior += bar.Volume
	}
	for _, bar := range tail[15:] {
		recent += bar.Volume
	}

	priorAvg := float64(prior) / 15
	recentAvg := float64(recent) / 5
	if priorAvg == 0 {
		return contracts.VolumeFlat
	}

	switch ratio := recentAvg / priorAvg; {
	case ratio > 1.2:
		return contracts.VolumeRising
	case ratio < 0.8:
		return contracts.VolumeFalling
	default:
		return contracts.VolumeFlat
	}
}

func closingPrices(bars []contracts.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}

func smaSeries(closes []float64, period int) []float64 {
	if len(closes) < period {
		return nil
	}
	sma := trend.NewSmaWithPeriod[float64](period)
	return helper.ChanToSlice(sma.Compute(helper.SliceToChan(closes)))
}

func emaSeries(closes []float64, period int) []float64 {
	if len(closes) < period {
		return nil
	}
	ema := trend.NewEmaWithPeriod[float64](period)
	return helper.ChanToSlice(ema.Compute(helper.SliceToChan(closes)))
}

// latestMACD returns the most recent MACD line and signal line values,
// or zeros when the series is too short.
func latestMACD(closes []float64) (float64, float64) {
	if len(closes) < 35 {
		return 0, 0
	}

	macd := trend.NewMacd[float64]()
	macdLine, signalLine := macd.Compute(helper.SliceToChan(closes))
	macdValues := helper.ChanToSlice(macdLine)
	signalValues := helper.ChanToSlice(signalLine)
	if len(macdValues) == 0 || len(signalValues) == 0 {
		return 0, 0
	}
	return macdValues[len(macdValues)-1], signalValues[len(signalValues)-1]
}

func lastIndicatorValue(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
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
