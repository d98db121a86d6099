package filters

import (
	"strings"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/logger"
)

// peUnknownSentinel marks P/E values some feeds emit for companies
// without meaningful earnings. Anything at or above it is treated as
// unknown, not as an extreme multiple.
const peUnknownSentinel = 999.0

// Quality rejects tickers that fail basic investability gates: size,
// price, liquidity, sector, and fundamentals. Gates run in a fixed
// order and short-circuit at the first failure, so every rejection
// carries exactly one reason.
type Quality struct {
	cfg    config.ScannerConfig
	logger *logger.Logger
}

// NewQuality creates a quality filter.
func NewQuality(cfg config.ScannerConfig, log *logger.Logger) *Quality {
	return &Quality{cfg: cfg, logger: log}
}

// Check applies the quality gates to one snapshot.
func (q *Quality) Check(s *contracts.Snapshot) contracts.FilterResult {
	if !s.HasData() {
		return contracts.Reject(s.Ticker, "no data from provider")
	}

	if s.MarketCap < q.cfg.MinMarketCap {
		return contracts.Reject(s.Ticker, "market cap $%.0fM below floor $%.0fM",
			s.MarketCap/1e6, q.cfg.MinMarketCap/1e6)
	}
	if s.MarketCap > q.cfg.MaxMarketCap {
		return contracts.Reject(s.Ticker, "market cap $%.0fM above ceiling $%.0fM",
			s.MarketCap/1e6, q.cfg.MaxMarketCap/1e6)
	}

	if s.Price < q.cfg.MinPrice {
		return contracts.Reject(s.Ticker, "price $%.2f below floor $%.2f",
			s.Price, q.cfg.MinPrice)
	}
	if s.Price > q.cfg.MaxPrice {
		return contracts.Reject(s.Ticker, "price $%.2f above ceiling $%.2f",
			s.Price, q.cfg.MaxPrice)
	}

	if dollarVolume := s.DollarVolume(); dollarVolume < q.cfg.MinDailyVolumeUSD {
		return contracts.Reject(s.Ticker, "dollar volume $%.1fM below floor $%.1fM",
			dollarVolume/1e6, q.cfg.MinDailyVolumeUSD/1e6)
	}
	if float64(s.AvgVolume) < q.cfg.MinAvgVolume {
		return contracts.Reject(s.Ticker, "avg volume %d below floor %.0f",
			s.AvgVolume, q.cfg.MinAvgVolume)
	}

	// Unknown sector gets the benefit of the doubt
	if s.Sector != "" && q.sectorBanned(s.Sector) {
		return contracts.Reject(s.Ticker, "sector %q is excluded", s.Sector)
	}

	// Revenue growth is only enforced when the feed reported it
	if q.cfg.MinRevenueGrowth > 0 && s.RevenueGrowth != 0 &&
		s.RevenueGrowth < q.cfg.MinRevenueGrowth {
		return contracts.Reject(s.Ticker, "revenue growth %.1f%% below floor %.1f%%",
			s.RevenueGrowth, q.cfg.MinRevenueGrowth)
	}

	if q.cfg.RequirePositiveEarnings && s.EPS <= 0 {
		return contracts.Reject(s.Ticker, "EPS %.2f not positive", s.EPS)
	}

	// P/E ceiling: skip unprofitable (pe <= 0) and unknown (sentinel)
	if s.PERatio > 0 && s.PERatio < peUnknownSentinel && s.PERatio > q.cfg.MaxPERatio {
		return contracts.Reject(s.Ticker, "P/E %.1f above ceiling %.1f",
			s.PERatio, q.cfg.MaxPERatio)
	}

	return contracts.Pass(s.Ticker)
}

func (q *Quality) sectorBanned(sector string) bool {
	for _, banned := range q.cfg.BannedSectors {
		if strings.EqualFold(sector, banned) {
			return true
		}
	}
	return false
}
