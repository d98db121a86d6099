package commands

import (
	"context"
	"fmt"

	"github.com/wonny/supascan/internal/ai"
	"github.com/wonny/supascan/internal/filters"
	"github.com/wonny/supascan/internal/notify"
	"github.com/wonny/supascan/internal/pipeline"
	"github.com/wonny/supascan/internal/provider"
	"github.com/wonny/supascan/internal/regime"
	"github.com/wonny/supascan/internal/scoring"
	"github.com/wonny/supascan/internal/social"
	"github.com/wonny/supascan/internal/store"
	"github.com/wonny/supascan/internal/technical"
	"github.com/wonny/supascan/internal/universe"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/database"
	"github.com/wonny/supascan/pkg/httputil"
	"github.com/wonny/supascan/pkg/logger"
	"github.com/wonny/supascan/pkg/redis"
)

// appDeps is the fully wired application. Close releases connections.
type appDeps struct {
	cfg      *config.Config
	logger   *logger.Logger
	provider provider.DataProvider
	pipeline *pipeline.Pipeline
	store    *store.Store

	db      *database.DB
	redis   *redis.Client
	limiter *redis.RateLimiter // nil when Redis is disabled
}

func (d *appDeps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		d.redis.Close()
	}
}

// initDeps wires the whole application from config. forceSynthetic
// overrides the provider mode, for offline runs.
func initDeps(forceSynthetic bool) (*appDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if forceSynthetic {
		cfg.Provider.Mode = "synthetic"
	}

	log := logger.New(cfg)
	deps := &appDeps{cfg: cfg, logger: log}

	if err := deps.buildProvider(); err != nil {
		return nil, err
	}
	if err := deps.buildStore(); err != nil {
		return nil, err
	}
	deps.buildPipeline()

	return deps, nil
}

// buildProvider creates the data provider for the configured mode and
// wraps it in a per-run memo cache.
func (d *appDeps) buildProvider() error {
	var inner provider.DataProvider

	if d.cfg.Provider.Mode == "synthetic" {
		inner = provider.NewSynthetic()
	} else {
		redisClient, err := redis.New(d.cfg)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		d.redis = redisClient
		if redisClient.Enabled() {
			d.limiter = redis.NewRateLimiter(redisClient, "supascan")
		}

		inner = provider.NewLive(d.cfg, d.httpClient(redis.QuoteRateLimit), d.logger,
			redis.NewCache(redisClient, "supascan"))
	}

	d.provider = provider.NewMemo(inner, d.cfg.Provider.CacheSize)
	return nil
}

// buildStore connects run persistence when a database is configured.
func (d *appDeps) buildStore() error {
	if d.cfg.Database.URL == "" {
		return nil
	}

	db, err := database.New(d.cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	d.db = db
	d.store = store.New(db, d.logger)

	if err := d.store.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// httpClient builds a client carrying the given distributed rate limit
// when Redis is available; otherwise a plain retrying client.
func (d *appDeps) httpClient(rl redis.RateLimitConfig) *httputil.Client {
	c := httputil.New(d.cfg, d.logger)
	if d.limiter != nil {
		c = c.WithRateLimiter(d.limiter, rl)
	}
	return c
}

// buildPipeline assembles the scan pipeline over the provider.
func (d *appDeps) buildPipeline() {
	cfg, log := d.cfg, d.logger

	scorer := scoring.NewScorer(cfg.Scanner, log)

	d.pipeline = pipeline.New(cfg, pipeline.Deps{
		Gate:        regime.NewGate(cfg.Regime, d.provider, log),
		Universe:    universe.New(cfg, d.httpClient(redis.ScreenerRateLimit), log),
		Provider:    d.provider,
		Quality:     filters.NewQuality(cfg.Scanner, log),
		PriceAction: filters.NewPriceAction(cfg.Scanner, log),
		Social:      social.NewScorer(cfg.Social, d.provider, log),
		Technical:   technical.NewAnalyzer(cfg.Scanner, log),
		Synthesizer: ai.NewSynthesizer(cfg.AI, cfg.Risk, d.buildLLMClient(), log),
		Ranker:      scoring.NewRanker(cfg.Scanner, cfg.Risk, scorer, log),
		Store:       d.store,
		Dispatcher:  d.buildDispatcher(),
	}, log)
}

// regimeGate builds a standalone gate for the regime command.
func (d *appDeps) regimeGate() *regime.Gate {
	return regime.NewGate(d.cfg.Regime, d.provider, d.logger)
}

// universeProvider builds a standalone universe source for the
// universe command.
func (d *appDeps) universeProvider() *universe.Provider {
	return universe.New(d.cfg, httputil.New(d.cfg, d.logger), d.logger)
}

// buildLLMClient picks the live LLM backend when analysis is enabled
// and a key is present; otherwise the deterministic static analyst.
func (d *appDeps) buildLLMClient() ai.LLMClient {
	if d.cfg.AI.Enabled && d.cfg.AI.APIKey != "" && d.cfg.Provider.Mode == "live" {
		return ai.NewOpenAIClient(d.cfg.AI, d.httpClient(redis.LLMRateLimit), d.logger)
	}
	return ai.NewStaticClient()
}

// buildDispatcher assembles notification sinks; every empty setting
// simply disables its sink.
func (d *appDeps) buildDispatcher() *notify.Dispatcher {
	var sinks []notify.Sink

	if url := d.cfg.Notify.DiscordWebhookURL; url != "" {
		sinks = append(sinks, notify.NewDiscordSink(url, httputil.New(d.cfg, d.logger), d.logger))
	}
	if token := d.cfg.Notify.TelegramToken; token != "" && d.cfg.Notify.TelegramChatID != "" {
		sink, err := notify.NewTelegramSink(token, d.cfg.Notify.TelegramChatID, d.logger)
		if err != nil {
			d.logger.WithError(err).Warn("Telegram sink unavailable")
		} else {
			sinks = append(sinks, sink)
		}
	}
	if dir := d.cfg.Notify.CSVOutputDir; dir != "" {
		sinks = append(sinks, notify.NewCSVSink(dir, d.logger))
	}

	return notify.NewDispatcher(d.logger, sinks...)
}
