package technical

import (
	"math"

	"github.com/wonny/supascan/internal/contracts"
)

// Pattern detection windows and thresholds.
const (
	crossLookback     = 5     // bars within which a 50/200 cross counts
	breakoutLookback  = 20    // prior-high window for breakouts
	consolidationCV   = 0.015 // close stddev/mean ceiling
	flagGainFloor     = 0.10  // 20-bar run-up required before a flag
	flagRangeCeiling  = 0.05  // 10-bar high range ceiling
	triangleCVCeiling = 0.02  // high flatness for ascending triangles
	patternWindow     = 20
)

// detectPatterns runs every detector and returns the names of the
// patterns present. Detectors that lack enough history simply do not
// fire.
func detectPatterns(closes []float64, bars []contracts.Bar) []string {
	var patterns []string

	if crossedWithin(closes, smaMid, smaLong, crossLookback, true) {
		patterns = append(patterns, contracts.PatternGoldenCross)
	}
	if crossedWithin(closes, smaMid, smaLong, crossLookback, false) {
		patterns = append(patterns, contracts.PatternDeathCross)
	}
	if isBreakout(bars) {
		patterns = append(patterns, contracts.PatternBreakout)
	}
	if isConsolidation(closes) {
		patterns = append(patterns, contracts.PatternConsolidation)
	}
	if isBullFlag(closes, bars) {
		patterns = append(patterns, contracts.PatternBullFlag)
	}
	if isAscendingTriangle(bars) {
		patterns = append(patterns, contracts.PatternAscendingTriangle)
	}

	return patterns
}

// crossedWithin reports whether the fast SMA crossed the slow SMA
// within the last lookback bars. bullish selects the cross direction.
func crossedWithin(closes []float64, fastPeriod, slowPeriod, lookback int, bullish bool) bool {
	fast := smaSeries(closes, fastPeriod)
	slow := smaSeries(closes, slowPeriod)
	if len(fast) == 0 || len(slow) == 0 {
		return false
	}

	// Align tails: both series end at the latest bar
	n := len(slow)
	if len(fast) < n {
		n = len(fast)
	}
	fast = fast[len(fast)-n:]
	slow = slow[len(slow)-n:]

	start := n - lookback
	if start < 1 {
		start = 1
	}
	for i := start; i < n; i++ {
		before := fast[i-1] - slow[i-1]
		after := fast[i] - slow[i]
		if bullish && before <= 0 && after > 0 {
			return true
		}
		if !bullish && before >= 0 && after < 0 {
			return true
		}
	}
	return false
}

// isBreakout reports whether the last close cleared the prior 20-bar
// high.
func isBreakout(bars []contracts.Bar) bool {
	if len(bars) < breakoutLookback+1 {
		return false
	}
	prior := bars[len(bars)-1-breakoutLookback : len(bars)-1]

	priorHigh := prior[0].High
	for _, bar := range prior[1:] {
		if bar.High > priorHigh {
			priorHigh = bar.High
		}
	}
	return bars[len(bars)-1].Close > priorHigh
}

// isConsolidation reports whether the last 20 closes trade in a tight
// range: stddev under 1.5% of the mean.
func isConsolidation(closes []float64) bool {
	if len(closes) < patternWindow {
		return false
	}
	tail := closes[len(closes)-patternWindow:]
	m := mean(tail)
	if m == 0 {
		return false
	}
	return stddev(tail, m)/m < consolidationCV
}

// isBullFlag reports a 10%+ run over 20 bars followed by a tight 10-bar
// high range: strength consolidating, not reversing.
func isBullFlag(closes []float64, bars []contracts.Bar) bool {
	if len(closes) < patternWindow || len(bars) < 10 {
		return false
	}
	tail := closes[len(closes)-patternWindow:]
	if tail[0] == 0 || (tail[len(tail)-1]-tail[0])/tail[0] < flagGainFloor {
		return false
	}

	highs := barHighs(bars[len(bars)-10:])
	hi, lo := highs[0], highs[0]
	for _, h := range highs[1:] {
		if h > hi {
			hi = h
		}
		if h < lo {
			lo = h
		}
	}
	return hi > 0 && (hi-lo)/hi < flagRangeCeiling
}

// isAscendingTriangle reports rising lows pressing against flat highs
// over the last 20 bars.
func isAscendingTriangle(bars []contracts.Bar) bool {
	if len(bars) < patternWindow {
		return false
	}
	tail := bars[len(bars)-patternWindow:]

	lows := make([]float64, len(tail))
	highs := make([]float64, len(tail))
	for i, bar := range tail {
		lows[i] = bar.Low
		highs[i] = bar.High
	}

	if slope(lows) <= 0 {
		return false
	}
	m := mean(highs)
	if m == 0 {
		return false
	}
	return stddev(highs, m)/m < triangleCVCeiling
}

// pivotLevels extracts support and resistance from local extrema over
// the last window bars, most recent first, at most three each.
func pivotLevels(bars []contracts.Bar, window int) (support, resistance []float64) {
	if len(bars) > window {
		bars = bars[len(bars)-window:]
	}
	if len(bars) < 5 {
		return nil, nil
	}

	for i := len(bars) - 3; i >= 2; i-- {
		if len(resistance) < 3 && isPivotHigh(bars, i) {
			resistance = append(resistance, bars[i].High)
		}
		if len(support) < 3 && isPivotLow(bars, i) {
			support = append(support, bars[i].Low)
		}
		if len(support) == 3 && len(resistance) == 3 {
			break
		}
	}
	return support, resistance
}

func isPivotHigh(bars []contracts.Bar, i int) bool {
	h := bars[i].High
	return h > bars[i-1].High && h > bars[i-2].High &&
		h > bars[i+1].High && h > bars[i+2].High
}

func isPivotLow(bars []contracts.Bar, i int) bool {
	l := bars[i].Low
	return l < bars[i-1].Low && l < bars[i-2].Low &&
		l < bars[i+1].Low && l < bars[i+2].Low
}

func barHighs(bars []contracts.Bar) []float64 {
	highs := make([]float64, len(bars))
	for i, bar := range bars {
		highs[i] = bar.High
	}
	return highs
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, m float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// slope is the least-squares slope of values against their index.
func slope(values []float64) float64 {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
