package filters

import (
	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/logger"
)

// collapseFloor90D is the 90d change below which a fresh 7d band is
// meaningless: the name is in freefall, not consolidating.
const collapseFloor90D = -40.0

// PriceAction rejects tickers whose recent move disqualifies an entry:
// already-pumped names, single-day spikes, broken long trends, and
// overbought or oversold momentum. RSI and volume ratio come from the
// caller's history computation; a non-positive value means the data
// was unavailable and the corresponding gate is skipped.
type PriceAction struct {
	cfg    config.ScannerConfig
	logger *logger.Logger
}

// NewPriceAction creates a price action filter.
func NewPriceAction(cfg config.ScannerConfig, log *logger.Logger) *PriceAction {
	return &PriceAction{cfg: cfg, logger: log}
}

// Check applies the price action gates to one snapshot.
func (f *PriceAction) Check(s *contracts.Snapshot, rsi, volumeRatio float64) contracts.FilterResult {
	if s.Change7D > f.cfg.Max7DChange {
		return contracts.Reject(s.Ticker, "7d change %.1f%% above ceiling %.1f%%: already pumped",
			s.Change7D, f.cfg.Max7DChange)
	}
	if s.Change1D > f.cfg.Max1DChange {
		return contracts.Reject(s.Ticker, "1d change %.1f%% above ceiling %.1f%%: daily spike",
			s.Change1D, f.cfg.Max1DChange)
	}
	if s.Change90D < f.cfg.Min90DChange {
		return contracts.Reject(s.Ticker, "90d change %.1f%% below floor %.1f%%: broken trend",
			s.Change90D, f.cfg.Min90DChange)
	}

	if rsi > 0 {
		if rsi < f.cfg.MinRSI {
			return contracts.Reject(s.Ticker, "RSI %.1f below floor %.1f", rsi, f.cfg.MinRSI)
		}
		if rsi > f.cfg.MaxRSI {
			return contracts.Reject(s.Ticker, "RSI %.1f above ceiling %.1f", rsi, f.cfg.MaxRSI)
		}
	}

	if volumeRatio > 0 && volumeRatio < f.cfg.MinVolumeRatio {
		return contracts.Reject(s.Ticker, "volume ratio %.2f below floor %.2f: interest drying up",
			volumeRatio, f.cfg.MinVolumeRatio)
	}

	return contracts.Pass(s.Ticker)
}

// IsFresh reports whether the 7d move sits inside the configured entry
// band while the 90d trend is intact. Fresh candidates are early in a
// move rather than chasing one.
func (f *PriceAction) IsFresh(change7D, change90D float64) bool {
	if change7D < f.cfg.FreshMin || change7D > f.cfg.FreshMax {
		return false
	}
	return change90D > collapseFloor90D
}
