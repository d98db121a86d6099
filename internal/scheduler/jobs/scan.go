package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/supascan/internal/pipeline"
	"github.com/wonny/supascan/pkg/logger"
)

// DailyScanJob runs the full candidate scan on a cron schedule.
type DailyScanJob struct {
	pipeline *pipeline.Pipeline
	schedule string
	logger   *logger.Logger
}

// NewDailyScanJob creates the daily scan job with the given cron
// schedule (six-field, with seconds).
func NewDailyScanJob(p *pipeline.Pipeline, schedule string, log *logger.Logger) *DailyScanJob {
	return &DailyScanJob{pipeline: p, schedule: schedule, logger: log}
}

// Name returns the job name
func (j *DailyScanJob) Name() string {
	return "daily_scan"
}

// Schedule returns the cron schedule expression
func (j *DailyScanJob) Schedule() string {
	return j.schedule
}

// Run executes one scan.
func (j *DailyScanJob) Run(ctx context.Context) error {
	result, err := j.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("scan run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":    result.RunID,
		"status":    result.Status,
		"finalists": len(result.Finalists),
	}).Info("Scheduled scan finished")

	return nil
}
