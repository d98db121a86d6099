package contracts

import "time"

// Run status values. An empty finalist list is a normal outcome and is
// reported as such; it must never be confused with a crash.
const (
	RunCompleted    = "COMPLETED"
	RunPaused       = "PAUSED"        // regime gate stopped the run
	RunNoCandidates = "NO_CANDIDATES" // pipeline ran, nothing survived
)

// StageCounts records how many candidates entered each stage, so a run
// report shows where the funnel narrowed.
type StageCounts struct {
	Universe          int `json:"universe"`
	QualityPassed     int `json:"quality_passed"`
	PriceActionPassed int `json:"price_action_passed"`
	SociallyScored    int `json:"socially_scored"`
	Analyzed          int `json:"analyzed"`
	Ranked            int `json:"ranked"`
}

// RunResult is the complete outcome of one scan run.
type RunResult struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Status    string        `json:"status"`

	Regime    *MarketRegimeState `json:"regime,omitempty"`
	Stages    StageCounts        `json:"stages"`
	Finalists []RankedCandidate  `json:"finalists"`
}

// Empty reports whether the run produced no actionable finalists.
func (r *RunResult) Empty() bool {
	return len(r.Finalists) == 0
}
