package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/logger"
)

// Sink delivers one run result to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, result *contracts.RunResult) error
}

// Dispatcher fans a run result out to every configured sink. A sink
// failure is logged and does not stop delivery to the others: losing
// one channel must never lose the scan.
type Dispatcher struct {
	sinks  []Sink
	logger *logger.Logger
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(log *logger.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, logger: log}
}

// Dispatch sends the result to every sink, returning the number of
// successful deliveries.
func (d *Dispatcher) Dispatch(ctx context.Context, result *contracts.RunResult) int {
	delivered := 0
	for _, sink := range d.sinks {
		if err := sink.Send(ctx, result); err != nil {
			d.logger.WithFields(map[string]interface{}{
				"sink":   sink.Name(),
				"run_id": result.RunID,
				"error":  err.Error(),
			}).Error("Notification delivery failed")
			continue
		}
		delivered++
	}
	return delivered
}

// summaryTitle builds the one-line headline for a run.
func summaryTitle(result *contracts.RunResult) string {
	switch result.Status {
	case contracts.RunPaused:
		return "Daily scan: PAUSED by market regime"
	case contracts.RunNoCandidates:
		return "Daily scan: no candidates survived"
	default:
		return fmt.Sprintf("Daily scan: %d finalist(s)", len(result.Finalists))
	}
}

// formatRunText renders the run as plain text, shared by the text
// based sinks.
func formatRunText(result *contracts.RunResult) string {
	var b strings.Builder

	b.WriteString(summaryTitle(result))
	b.WriteString("\n")

	if result.Regime != nil && !result.Regime.Tradeable() {
		b.WriteString("\nRegime pause reasons:\n")
		for _, reason := range result.Regime.Reasons {
			fmt.Fprintf(&b, "  - %s\n", reason)
		}
	}

	if len(result.Finalists) > 0 {
		b.WriteString("\n")
		for _, f := range result.Finalists {
			fmt.Fprintf(&b, "%d. %s $%.2f — %.2f/5.0 %s (%s)\n",
				f.Rank, f.Ticker, f.Price, f.CompositeScore, f.Rating, f.Conviction)
			fmt.Fprintf(&b, "   stop $%.2f, size %.1f%%, hold %s\n",
				f.StopLoss, f.PositionPct*100, f.HoldPeriod)
		}
	}

	fmt.Fprintf(&b, "\nFunnel: %d universe -> %d quality -> %d price action -> %d analyzed -> %d ranked\n",
		result.Stages.Universe, result.Stages.QualityPassed, result.Stages.PriceActionPassed,
		result.Stages.Analyzed, result.Stages.Ranked)

	return b.String()
}
