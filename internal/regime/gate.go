package regime

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/internal/provider"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/logger"
)

// Gate decides whether the market as a whole is worth scanning today.
// It runs before any per-ticker work and is evaluated exactly once per
// run. The decision is deterministic: the same inputs always produce
// the same status and the same reasons in the same order.
//
// The gate fails OPEN. A broken market data feed must not silently
// freeze the scanner, so a fetch failure yields Tradeable with the
// error recorded on the state.
type Gate struct {
	cfg      config.RegimeConfig
	provider provider.DataProvider
	logger   *logger.Logger
}

// NewGate creates a regime gate.
func NewGate(cfg config.RegimeConfig, p provider.DataProvider, log *logger.Logger) *Gate {
	return &Gate{cfg: cfg, provider: p, logger: log}
}

// Evaluate pulls two months of index and volatility history and applies
// the pause conditions. Error is only returned on context cancellation.
func (g *Gate) Evaluate(ctx context.Context) (*contracts.MarketRegimeState, error) {
	state := &contracts.MarketRegimeState{
		Status:      contracts.RegimeTradeable,
		EvaluatedAt: time.Now(),
	}

	indexBars, err := g.provider.PriceHistory(ctx, g.cfg.IndexSymbol, 60)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return g.failOpen(state, fmt.Errorf("index history: %w", err)), nil
	}

	vixBars, err := g.provider.PriceHistory(ctx, g.cfg.VolatilitySymbol, 10)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return g.failOpen(state, fmt.Errorf("volatility history: %w", err)), nil
	}

	if len(indexBars) < 11 || len(vixBars) == 0 {
		return g.failOpen(state, fmt.Errorf("insufficient history: index=%d vix=%d", len(indexBars), len(vixBars))), nil
	}

	state.Volatility = vixBars[len(vixBars)-1].Close
	state.Change5D = changeOverBars(indexBars, 5)
	state.Change10D = changeOverBars(indexBars, 10)
	state.VolumeRatio = volumeRatio(indexBars, 20)
	state.RedWeeks = redWeekStreak(indexBars)

	state.Reasons = g.pauseReasons(state)
	if len(state.Reasons) > 0 {
		state.Status = contracts.RegimePaused
	}

	g.logger.WithFields(map[string]interface{}{
		"status":       state.Status,
		"vix":          state.Volatility,
		"change_5d":    state.Change5D,
		"change_10d":   state.Change10D,
		"volume_ratio": state.VolumeRatio,
		"red_weeks":    state.RedWeeks,
	}).Info("Market regime evaluated")

	return state, nil
}

// pauseReasons checks every condition in fixed order so the reasons
// list is stable for identical inputs.
func (g *Gate) pauseReasons(state *contracts.MarketRegimeState) []string {
	var reasons []string

	if state.Volatility > g.cfg.MaxVolatility {
		reasons = append(reasons, fmt.Sprintf("volatility %.1f above ceiling %.1f",
			state.Volatility, g.cfg.MaxVolatility))
	}
	if state.Change10D < g.cfg.Min10DChange {
		reasons = append(reasons, fmt.Sprintf("index 10d change %.1f%% below floor %.1f%%",
			state.Change10D, g.cfg.Min10DChange))
	}
	if state.Change5D < g.cfg.Min5DChange {
		reasons = append(reasons, fmt.Sprintf("index 5d change %.1f%% below floor %.1f%%",
			state.Change5D, g.cfg.Min5DChange))
	}
	if state.RedWeeks >= g.cfg.MaxRedWeeks {
		reasons = append(reasons, fmt.Sprintf("%d consecutive down weeks (max %d)",
			state.RedWeeks, g.cfg.MaxRedWeeks))
	}
	if state.Change5D < 0 && state.VolumeRatio > g.cfg.DistributionRatio {
		reasons = append(reasons, fmt.Sprintf("distribution: 5d change %.1f%% on %.1fx volume",
			state.Change5D, state.VolumeRatio))
	}

	return reasons
}

func (g *Gate) failOpen(state *contracts.MarketRegimeState, err error) *contracts.MarketRegimeState {
	g.logger.WithError(err).Warn("Regime feed unavailable, failing open to TRADEABLE")
	state.FetchError = err.Error()
	return state
}

// changeOverBars computes the close-to-close percent change over the
// last n bars.
func changeOverBars(bars []contracts.Bar, n int) float64 {
	if len(bars) <= n {
		return 0
	}
	base := bars[len(bars)-1-n].Close
	if base == 0 {
		return 0
	}
	return (bars[len(bars)-1].Close - base) / base * 100
}

// volumeRatio compares the last bar's volume to the trailing n-bar
// average (excluding the last bar).
func volumeRatio(bars []contracts.Bar, n int) float64 {
	if len(bars) < 2 {
		return 1.0
	}
	window := bars[:len(bars)-1]
	if len(window) > n {
		window = window[len(window)-n:]
	}

	var sum int64
	for _, bar := range window {
		sum += bar.Volume
	}
	avg := float64(sum) / float64(len(window))
	if avg == 0 {
		return 1.0
	}
	return float64(bars[len(bars)-1].Volume) / avg
}

// redWeekStreak counts consecutive down weeks ending at the most recent
// week, short-circuiting at the first week that did not close lower
// than the week before it.
func redWeekStreak(bars []contracts.Bar) int {
	closes := weeklyCloses(bars)
	streak := 0
	for i := len(closes) - 1; i > 0; i-- {
		if closes[i] < closes[i-1] {
			streak++
		} else {
			break
		}
	}
	return streak
}

// weeklyCloses reduces daily bars to one closing price per ISO week,
// oldest first.
func weeklyCloses(bars []contracts.Bar) []float64 {
	var closes []float64
	var lastYear, lastWeek int

	for _, bar := range bars {
		year, week := bar.Date.ISOWeek()
		if len(closes) == 0 || year != lastYear || week != lastWeek {
			closes = append(closes, bar.Close)
			lastYear, lastWeek = year, week
		} else {
			closes[len(closes)-1] = bar.Close
		}
	}
	return closes
}
