package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/supascan/internal/ai"
	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/internal/filters"
	"github.com/wonny/supascan/internal/notify"
	"github.com/wonny/supascan/internal/provider"
	"github.com/wonny/supascan/internal/regime"
	"github.com/wonny/supascan/internal/scoring"
	"github.com/wonny/supascan/internal/social"
	"github.com/wonny/supascan/internal/store"
	"github.com/wonny/supascan/internal/technical"
	"github.com/wonny/supascan/internal/universe"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/logger"
)

// History depths per stage: the price action filter needs a quarter of
// bars, the pattern detectors want enough history for the long moving
// averages.
const (
	priceActionHistoryDays = 90
	technicalHistoryDays   = 250
)

// Pipeline is the daily scan: regime gate, universe, quality and price
// action filters, social and technical scoring, synthesis, and final
// ranking. One Run is one complete scan.
type Pipeline struct {
	cfg *config.Config

	gate        *regime.Gate
	universe    *universe.Provider
	provider    provider.DataProvider
	quality     *filters.Quality
	priceAction *filters.PriceAction
	social      *social.Scorer
	technical   *technical.Analyzer
	synthesizer *ai.Synthesizer

	ranker     *scoring.Ranker
	store      *store.Store       // nil disables persistence
	dispatcher *notify.Dispatcher // nil disables notifications

	logger *logger.Logger
}

// Deps bundles the pipeline's collaborators.
type Deps struct {
	Gate        *regime.Gate
	Universe    *universe.Provider
	Provider    provider.DataProvider
	Quality     *filters.Quality
	PriceAction *filters.PriceAction
	Social      *social.Scorer
	Technical   *technical.Analyzer
	Synthesizer *ai.Synthesizer
	Ranker      *scoring.Ranker
	Store       *store.Store
	Dispatcher  *notify.Dispatcher
}

// New creates a pipeline from its dependencies.
func New(cfg *config.Config, deps Deps, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		gate:        deps.Gate,
		universe:    deps.Universe,
		provider:    deps.Provider,
		quality:     deps.Quality,
		priceAction: deps.PriceAction,
		social:      deps.Social,
		technical:   deps.Technical,
		synthesizer: deps.Synthesizer,
		ranker:      deps.Ranker,
		store:       deps.Store,
		dispatcher:  deps.Dispatcher,
		logger:      log,
	}
}

// Run executes one complete scan. Per-ticker failures drop the ticker
// and never abort the run; only context cancellation does.
func (p *Pipeline) Run(ctx context.Context) (*contracts.RunResult, error) {
	started := time.Now()
	result := &contracts.RunResult{
		RunID:     started.UTC().Format("20060102-150405"),
		StartedAt: started,
		Status:    contracts.RunCompleted,
	}
	log := p.logger.WithField("run_id", result.RunID)

	log.Info("Scan run starting")

	state, err := p.gate.Evaluate(ctx)
	if err != nil {
		return nil, fmt.Errorf("regime gate: %w", err)
	}
	result.Regime = state

	if !state.Tradeable() {
		result.Status = contracts.RunPaused
		result.Duration = time.Since(started)
		log.WithField("reasons", state.Reasons).Warn("Market regime paused, skipping scan")
		p.finish(ctx, result)
		return result, nil
	}

	tickers := p.universe.Tickers(ctx)
	result.Stages.Universe = len(tickers)

	candidates, err := p.filterStage(ctx, tickers, &result.Stages)
	if err != nil {
		return nil, err
	}

	candidates, err = p.signalStage(ctx, candidates)
	if err != nil {
		return nil, err
	}
	result.Stages.SociallyScored = len(candidates)

	analyzed, err := p.analysisStage(ctx, candidates)
	if err != nil {
		return nil, err
	}
	result.Stages.Analyzed = analyzed

	result.Finalists = p.ranker.Rank(candidates)
	result.Stages.Ranked = len(result.Finalists)

	if result.Empty() {
		result.Status = contracts.RunNoCandidates
	}
	result.Duration = time.Since(started)

	log.WithFields(map[string]interface{}{
		"status":    result.Status,
		"duration":  result.Duration,
		"universe":  result.Stages.Universe,
		"finalists": result.Stages.Ranked,
	}).Info("Scan run finished")

	p.finish(ctx, result)
	return result, nil
}

// filterStage runs the quality and price action gates over the
// universe and returns the surviving candidates.
func (p *Pipeline) filterStage(ctx context.Context, tickers []string, stages *contracts.StageCounts) ([]*contracts.Candidate, error) {
	var candidates []*contracts.Candidate

	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		snapshot, err := p.provider.Snapshot(ctx, ticker)
		if err != nil {
			p.logger.WithField("ticker", ticker).WithError(err).Warn("Snapshot fetch failed, dropping ticker")
			continue
		}

		if result := p.quality.Check(snapshot); !result.Passed {
			p.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"reason": result.Reason,
			}).Debug("Quality filter rejected")
			continue
		}
		stages.QualityPassed++

		bars, err := p.provider.PriceHistory(ctx, ticker, priceActionHistoryDays)
		if err != nil {
			p.logger.WithField("ticker", ticker).WithError(err).Warn("History fetch failed, dropping ticker")
			continue
		}

		rsi := technical.LatestRSI(bars)
		volumeRatio := technical.LatestVolumeRatio(bars)
		if result := p.priceAction.Check(snapshot, rsi, volumeRatio); !result.Passed {
			p.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"reason": result.Reason,
			}).Debug("Price action filter rejected")
			continue
		}
		stages.PriceActionPassed++

		candidates = append(candidates, &contracts.Candidate{
			Snapshot: *snapshot,
			Fresh:    p.priceAction.IsFresh(snapshot.Change7D, snapshot.Change90D),
		})
	}

	return candidates, nil
}

// signalStage attaches the social and technical scores, one candidate
// at a time. Social runs first: names whose composite sits at or below
// the configured floor drop here, before any technical or LLM spend.
func (p *Pipeline) signalStage(ctx context.Context, candidates []*contracts.Candidate) ([]*contracts.Candidate, error) {
	kept := candidates[:0]

	for _, c := range candidates {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		socialScore, err := p.social.Score(ctx, c.Ticker())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.WithField("ticker", c.Ticker()).WithError(err).Warn("Social scoring failed, treating as silent")
			socialScore = &contracts.SocialScore{Ticker: c.Ticker(), Strength: contracts.BuzzWeak}
		}
		c.Social = socialScore

		if socialScore.Composite <= p.cfg.Social.MinCompositeScore {
			p.logger.WithFields(map[string]interface{}{
				"ticker":    c.Ticker(),
				"composite": socialScore.Composite,
				"floor":     p.cfg.Social.MinCompositeScore,
			}).Debug("Social composite at or below floor, dropping")
			continue
		}

		bars, err := p.provider.PriceHistory(ctx, c.Ticker(), technicalHistoryDays)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.WithField("ticker", c.Ticker()).WithError(err).Warn("Technical history fetch failed")
			bars = nil
		}
		c.Technical = p.technical.Analyze(c.Ticker(), bars)

		kept = append(kept, c)
	}

	return kept, nil
}

// analysisStage enriches and synthesizes the candidates that can still
// reach the finalist list: fresh names with accelerating social
// volume. Everything else skips the LLM spend.
func (p *Pipeline) analysisStage(ctx context.Context, candidates []*contracts.Candidate) (int, error) {
	analyzed := 0

	for _, c := range candidates {
		if ctx.Err() != nil {
			return analyzed, ctx.Err()
		}
		if !c.Fresh || c.Social == nil || !c.Social.IsAccelerating {
			continue
		}

		p.enrich(ctx, c)

		if p.synthesizer != nil {
			analysis, err := p.synthesizer.Analyze(ctx, c)
			if err != nil {
				if ctx.Err() != nil {
					return analyzed, ctx.Err()
				}
				p.logger.WithField("ticker", c.Ticker()).WithError(err).Warn("Analysis failed, falling back to signal blend")
			} else {
				c.Analysis = analysis
			}
		}
		analyzed++
	}

	return analyzed, nil
}

// enrich attaches fundamentals, news, and insider activity. Each feed
// is best effort: a missing feed just leaves its boost neutral.
func (p *Pipeline) enrich(ctx context.Context, c *contracts.Candidate) {
	if fundamentals, err := p.provider.Financials(ctx, c.Ticker()); err != nil {
		p.logger.WithField("ticker", c.Ticker()).WithError(err).Warn("Financials fetch failed")
	} else {
		c.Fundamentals = fundamentals
	}

	if news, err := p.provider.News(ctx, c.Ticker()); err != nil {
		p.logger.WithField("ticker", c.Ticker()).WithError(err).Warn("News fetch failed")
	} else {
		c.News = news
	}

	if insider, err := p.provider.InsiderTrades(ctx, c.Ticker()); err != nil {
		p.logger.WithField("ticker", c.Ticker()).WithError(err).Warn("Insider fetch failed")
	} else {
		c.Insider = insider
	}
}

// finish persists and dispatches the result. Neither failure mode
// invalidates the scan itself.
func (p *Pipeline) finish(ctx context.Context, result *contracts.RunResult) {
	if p.store != nil {
		if err := p.store.SaveRun(ctx, result); err != nil {
			p.logger.WithField("run_id", result.RunID).WithError(err).Error("Run persistence failed")
		}
	}
	if p.dispatcher != nil {
		p.dispatcher.Dispatch(ctx, result)
	}
}
