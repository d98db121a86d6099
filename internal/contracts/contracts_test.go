package contracts

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSnapshot_HasData(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		want     bool
	}{
		{
			name:     "priced snapshot",
			snapshot: Snapshot{Ticker: "NVDA", Price: 128.50},
			want:     true,
		},
		{
			name:     "unknown ticker",
			snapshot: Snapshot{Ticker: "ZZZZ"},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.HasData(); got != tt.want {
				t.Errorf("HasData() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshot_DollarVolume(t *testing.T) {
	s := Snapshot{Price: 10.0, Volume: 1_500_000}

	if got := s.DollarVolume(); got != 15_000_000 {
		t.Errorf("DollarVolume() = %v, want 15000000", got)
	}
}

func TestReject_FormatsReason(t *testing.T) {
	result := Reject("NVDA", "market cap %.0f below minimum %.0f", 100e6, 500e6)

	if result.Passed {
		t.Error("Expected result to fail")
	}
	if result.Ticker != "NVDA" {
		t.Errorf("Ticker = %q, want NVDA", result.Ticker)
	}
	if result.Reason != "market cap 100000000 below minimum 500000000" {
		t.Errorf("Unexpected reason: %q", result.Reason)
	}
}

func TestPass(t *testing.T) {
	result := Pass("AMD")

	if !result.Passed {
		t.Error("Expected result to pass")
	}
	if result.Reason != "" {
		t.Errorf("Expected empty reason, got %q", result.Reason)
	}
}

func TestMarketRegimeState_Tradeable(t *testing.T) {
	tradeable := MarketRegimeState{Status: RegimeTradeable}
	paused := MarketRegimeState{Status: RegimePaused, Reasons: []string{"VIX 32.5 above ceiling 30.0"}}

	if !tradeable.Tradeable() {
		t.Error("Expected TRADEABLE state to be tradeable")
	}
	if paused.Tradeable() {
		t.Error("Expected PAUSED state to not be tradeable")
	}
}

func TestBuzzStrength(t *testing.T) {
	tests := []struct {
		mentions int
		want     string
	}{
		{100, BuzzExplosive},
		{51, BuzzExplosive},
		{50, BuzzStrong},
		{31, BuzzStrong},
		{30, BuzzModerate},
		{20, BuzzModerate},
		{19, BuzzWeak},
		{0, BuzzWeak},
	}

	for _, tt := range tests {
		if got := BuzzStrength(tt.mentions); got != tt.want {
			t.Errorf("BuzzStrength(%d) = %q, want %q", tt.mentions, got, tt.want)
		}
	}
}

func TestTechnicalScore_HasPattern(t *testing.T) {
	score := TechnicalScore{
		Patterns: []string{PatternGoldenCross, PatternBreakout},
	}

	if !score.HasPattern(PatternGoldenCross) {
		t.Error("Expected golden_cross to be detected")
	}
	if score.HasPattern(PatternDeathCross) {
		t.Error("Did not expect death_cross")
	}
}

func TestTechnicalScore_MACDBullish(t *testing.T) {
	bullish := TechnicalScore{MACD: 1.2, MACDSignal: 0.8}
	bearish := TechnicalScore{MACD: -0.5, MACDSignal: 0.1}

	if !bullish.MACDBullish() {
		t.Error("Expected MACD above signal to be bullish")
	}
	if bearish.MACDBullish() {
		t.Error("Expected MACD below signal to not be bullish")
	}
}

func TestAnalysis_Actionable(t *testing.T) {
	tests := []struct {
		rating string
		want   bool
	}{
		{RatingStrongBuy, true},
		{RatingBuy, true},
		{RatingHold, false},
		{RatingWeakHold, false},
		{RatingAvoid, false},
	}

	for _, tt := range tests {
		t.Run(tt.rating, func(t *testing.T) {
			a := Analysis{Rating: tt.rating}
			if got := a.Actionable(); got != tt.want {
				t.Errorf("Actionable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewsBundle_EarningsImminent(t *testing.T) {
	tests := []struct {
		name   string
		days   int
		window int
		want   bool
	}{
		{"earnings in 3 days", 3, 7, true},
		{"earnings in 10 days", 10, 7, false},
		{"unknown date", -1, 7, false},
		{"earnings today", 0, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewsBundle{DaysToEarnings: tt.days}
			if got := n.EarningsImminent(tt.window); got != tt.want {
				t.Errorf("EarningsImminent(%d) = %v, want %v", tt.window, got, tt.want)
			}
		})
	}
}

func TestRunResult_Empty(t *testing.T) {
	empty := RunResult{Status: RunNoCandidates}
	full := RunResult{
		Status:    RunCompleted,
		Finalists: []RankedCandidate{{Rank: 1, Ticker: "NVDA"}},
	}

	if !empty.Empty() {
		t.Error("Expected run with no finalists to be empty")
	}
	if full.Empty() {
		t.Error("Expected run with finalists to not be empty")
	}
}

func TestRunResult_JSON(t *testing.T) {
	original := RunResult{
		RunID:     "20260823-0930",
		StartedAt: time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC),
		Status:    RunCompleted,
		Stages: StageCounts{
			Universe:      100,
			QualityPassed: 40,
			Ranked:        3,
		},
		Finalists: []RankedCandidate{
			{Rank: 1, Ticker: "NVDA", CompositeScore: 4.2, Rating: RatingBuy},
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded RunResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if decoded.RunID != original.RunID {
		t.Errorf("RunID mismatch: got %s, want %s", decoded.RunID, original.RunID)
	}
	if decoded.Stages.Universe != 100 {
		t.Errorf("Stages.Universe = %d, want 100", decoded.Stages.Universe)
	}
	if len(decoded.Finalists) != 1 || decoded.Finalists[0].Ticker != "NVDA" {
		t.Errorf("Finalists mismatch: %+v", decoded.Finalists)
	}
}
