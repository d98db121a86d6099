package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/database"
	"github.com/wonny/supascan/pkg/logger"
)

// openTestStore connects to the database named by DATABASE_URL, or
// skips when none is configured.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping store integration test")
	}

	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		Database: config.DatabaseConfig{
			URL:             url,
			MaxConns:        2,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	s := New(db, logger.New(cfg))
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestStore_SaveAndLoadRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID := fmt.Sprintf("test-run-%d", time.Now().UnixNano())
	result := &contracts.RunResult{
		RunID:     runID,
		StartedAt: time.Now().UTC().Truncate(time.Millisecond),
		Duration:  42 * time.Second,
		Status:    contracts.RunCompleted,
		Regime:    &contracts.MarketRegimeState{Status: contracts.RegimeTradeable, Volatility: 17.5},
		Stages: contracts.StageCounts{
			Universe:          100,
			QualityPassed:     40,
			PriceActionPassed: 18,
			SociallyScored:    18,
			Analyzed:          6,
			Ranked:            2,
		},
		Finalists: []contracts.RankedCandidate{
			{Rank: 1, Ticker: "NVDA", CompositeScore: 4.4, Rating: contracts.RatingBuy, Conviction: contracts.ConvictionHigh, Price: 120.5},
			{Rank: 2, Ticker: "PLTR", CompositeScore: 3.9, Rating: contracts.RatingBuy, Conviction: contracts.ConvictionMedium, Price: 50.0},
		},
	}

	require.NoError(t, s.SaveRun(ctx, result))

	runs, err := s.RecentRuns(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, runs)

	var loaded *contracts.RunResult
	for i := range runs {
		if runs[i].RunID == runID {
			loaded = &runs[i]
			break
		}
	}
	require.NotNil(t, loaded, "saved run must be in recent runs")

	assert.Equal(t, contracts.RunCompleted, loaded.Status)
	assert.Equal(t, 42*time.Second, loaded.Duration)
	assert.Equal(t, 100, loaded.Stages.Universe)
	require.NotNil(t, loaded.Regime)
	assert.Equal(t, 17.5, loaded.Regime.Volatility)

	require.Len(t, loaded.Finalists, 2)
	assert.Equal(t, "NVDA", loaded.Finalists[0].Ticker)
	assert.Equal(t, 4.4, loaded.Finalists[0].CompositeScore)
}

func TestStore_DuplicateRunIDFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	result := &contracts.RunResult{
		RunID:     fmt.Sprintf("test-dup-%d", time.Now().UnixNano()),
		StartedAt: time.Now().UTC(),
		Status:    contracts.RunNoCandidates,
	}

	require.NoError(t, s.SaveRun(ctx, result))
	assert.Error(t, s.SaveRun(ctx, result), "run_id is the primary key")
}
