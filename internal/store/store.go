package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/database"
	"github.com/wonny/supascan/pkg/logger"
)

// Store persists scan run history to PostgreSQL. Persistence is
// optional: the pipeline runs identically without a database, it just
// keeps no history.
type Store struct {
	db     *database.DB
	logger *logger.Logger
}

// New creates a run history store.
func New(db *database.DB, log *logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS scan_runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	duration_ms BIGINT NOT NULL,
	status      TEXT NOT NULL,
	regime      JSONB,
	stages      JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS scan_finalists (
	run_id     TEXT NOT NULL REFERENCES scan_runs(run_id) ON DELETE CASCADE,
	rank       INT NOT NULL,
	ticker     TEXT NOT NULL,
	composite  DOUBLE PRECISION NOT NULL,
	rating     TEXT NOT NULL,
	conviction TEXT NOT NULL,
	payload    JSONB NOT NULL,
	PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_scan_finalists_ticker ON scan_finalists(ticker);
CREATE INDEX IF NOT EXISTS idx_scan_runs_started_at ON scan_runs(started_at DESC);
`

// EnsureSchema creates the run history tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure scan schema: %w", err)
	}
	return nil
}

// SaveRun writes one run and its finalists in a single transaction.
func (s *Store) SaveRun(ctx context.Context, result *contracts.RunResult) error {
	regimeJSON, err := json.Marshal(result.Regime)
	if err != nil {
		return fmt.Errorf("marshal regime: %w", err)
	}
	stagesJSON, err := json.Marshal(result.Stages)
	if err != nil {
		return fmt.Errorf("marshal stages: %w", err)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO scan_runs (run_id, started_at, duration_ms, status, regime, stages)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		result.RunID, result.StartedAt, result.Duration.Milliseconds(),
		result.Status, regimeJSON, stagesJSON)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}

	for _, finalist := range result.Finalists {
		payload, err := json.Marshal(finalist)
		if err != nil {
			return fmt.Errorf("marshal finalist %s: %w", finalist.Ticker, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO scan_finalists (run_id, rank, ticker, composite, rating, conviction, payload)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			result.RunID, finalist.Rank, finalist.Ticker, finalist.CompositeScore,
			finalist.Rating, finalist.Conviction, payload)
		if err != nil {
			return fmt.Errorf("insert finalist %s: %w", finalist.Ticker, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":    result.RunID,
		"status":    result.Status,
		"finalists": len(result.Finalists),
	}).Info("Scan run persisted")

	return nil
}

// RecentRuns returns the newest runs with their finalists, newest
// first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]contracts.RunResult, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT run_id, started_at, duration_ms, status, regime, stages
		FROM scan_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan runs: %w", err)
	}
	defer rows.Close()

	var results []contracts.RunResult
	for rows.Next() {
		var (
			result     contracts.RunResult
			durationMS int64
			regimeJSON []byte
			stagesJSON []byte
		)
		if err := rows.Scan(&result.RunID, &result.StartedAt, &durationMS,
			&result.Status, &regimeJSON, &stagesJSON); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		result.Duration = time.Duration(durationMS) * time.Millisecond

		if len(regimeJSON) > 0 {
			if err := json.Unmarshal(regimeJSON, &result.Regime); err != nil {
				return nil, fmt.Errorf("unmarshal regime for %s: %w", result.RunID, err)
			}
		}
		if err := json.Unmarshal(stagesJSON, &result.Stages); err != nil {
			return nil, fmt.Errorf("unmarshal stages for %s: %w", result.RunID, err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan runs: %w", err)
	}

	for i := range results {
		finalists, err := s.runFinalists(ctx, results[i].RunID)
		if err != nil {
			return nil, err
		}
		results[i].Finalists = finalists
	}

	return results, nil
}

func (s *Store) runFinalists(ctx context.Context, runID string) ([]contracts.RankedCandidate, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT payload FROM scan_finalists
		WHERE run_id = $1
		ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query finalists for %s: %w", runID, err)
	}
	defer rows.Close()

	var finalists []contracts.RankedCandidate
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan finalist row: %w", err)
		}
		var finalist contracts.RankedCandidate
		if err := json.Unmarshal(payload, &finalist); err != nil {
			return nil, fmt.Errorf("unmarshal finalist: %w", err)
		}
		finalists = append(finalists, finalist)
	}
	return finalists, rows.Err()
}
