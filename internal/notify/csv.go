package notify

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/logger"
)

// CSVSink writes each run's finalists to a dated CSV file so results
// can be diffed and backtested outside the scanner.
type CSVSink struct {
	dir    string
	logger *logger.Logger
}

// NewCSVSink creates a CSV sink writing into dir.
func NewCSVSink(dir string, log *logger.Logger) *CSVSink {
	return &CSVSink{dir: dir, logger: log}
}

func (c *CSVSink) Name() string { return "csv" }

var csvHeader = []string{
	"rank", "ticker", "company", "sector", "price",
	"composite_score", "rating", "conviction", "hold_period",
	"stop_loss", "position_pct", "fresh",
}

// Send writes one file per run, named by scan date and run ID.
func (c *CSVSink) Send(_ context.Context, result *contracts.RunResult) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(c.dir, fmt.Sprintf("scan_%s_%s.csv",
		result.StartedAt.Format("2006-01-02"), result.RunID))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, f := range result.Finalists {
		row := []string{
			strconv.Itoa(f.Rank),
			f.Ticker,
			f.Company,
			f.Sector,
			strconv.FormatFloat(f.Price, 'f', 2, 64),
			strconv.FormatFloat(f.CompositeScore, 'f', 2, 64),
			f.Rating,
			f.Conviction,
			f.HoldPeriod,
			strconv.FormatFloat(f.StopLoss, 'f', 2, 64),
			strconv.FormatFloat(f.PositionPct, 'f', 4, 64),
			strconv.FormatBool(f.Fresh),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", f.Ticker, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"path":      path,
		"finalists": len(result.Finalists),
	}).Info("Scan results written to CSV")

	return nil
}
