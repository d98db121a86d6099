package social

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/logger"
)

func testSocialConfig() config.SocialConfig {
	return config.SocialConfig{
		RecentWindow:       24 * time.Hour,
		BaselineWindow:     120 * time.Hour,
		MinRecentMentions:  15,
		AccelThreshold:     0.5,
		MinPostLength:      50,
		MinPostEngagement:  3,
		MinCompositeScore:  0.2,
		CatalystBoostCount: 3,
	}
}

func testScorer() *Scorer {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	return NewScorer(testSocialConfig(), nil, log)
}

// qualityPost clears the length and engagement floors.
func qualityPost(source, text string) contracts.Mention {
	for len(text) < 60 {
		text += " with further detail on the setup and catalysts ahead"
	}
	return contracts.Mention{Source: source, Text: text, Engagement: 10}
}

func TestAcceleration(t *testing.T) {
	s := testScorer()

	tests := []struct {
		name     string
		recent   int
		baseline int
		want     float64
	}{
		// baseline 100 over 120h means 20 expected per 24h
		{"matches baseline rate", 20, 100, 1.0},
		{"half the baseline rate", 10, 100, 0.5},
		{"exceeds baseline rate, capped", 60, 100, 1.0},
		{"appeared from nowhere", 30, 0, 1.0},
		{"silent everywhere", 5, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.acceleration(tt.recent, tt.baseline), 1e-9)
		})
	}
}

func TestBuild_AcceleratingTicker(t *testing.T) {
	s := testScorer()

	// 30 recent vs 20 expected per 24h, above both floors
	score := s.build("NVDA", 30, 100, nil)

	assert.True(t, score.IsAccelerating)
	assert.Equal(t, 1.0, score.Acceleration)
	assert.Equal(t, contracts.BuzzModerate, score.Strength)
}

func TestBuild_VolumeFloorBlocksAcceleration(t *testing.T) {
	s := testScorer()

	// Strong ratio but only 10 absolute mentions
	score := s.build("TINY", 10, 20, nil)

	assert.False(t, score.IsAccelerating, "absolute mention floor must hold")
	assert.Equal(t, contracts.BuzzWeak, score.Strength)
}

func TestScanPosts_QualityFloors(t *testing.T) {
	s := testScorer()

	posts := []contracts.Mention{
		qualityPost("reddit", "Thorough writeup on the pipeline and upcoming fda approval decision"),
		{Source: "reddit", Text: "buy now", Engagement: 50},                               // too short
		{Source: "twitter", Text: strings.Repeat("long enough text ", 10), Engagement: 1}, // no engagement
	}

	quality, catalysts, _ := s.scanPosts(posts)

	assert.InDelta(t, 1.0, quality, 1e-9, "only the reddit post clears both floors")
	assert.Equal(t, 1, catalysts)
}

func TestScanPosts_SourceWeights(t *testing.T) {
	s := testScorer()

	posts := []contracts.Mention{
		qualityPost("reddit", "detailed thesis"),
		qualityPost("stocktwits", "detailed thesis"),
		qualityPost("twitter", "detailed thesis"),
		qualityPost("unknownsite", "detailed thesis"),
	}

	quality, _, _ := s.scanPosts(posts)
	assert.InDelta(t, 1.0+0.8+0.6+0.5, quality, 1e-9)
}

func TestScanPosts_CountsKeywordsOnFilteredPosts(t *testing.T) {
	s := testScorer()

	// Short hype posts still count as hype even though they add no quality
	posts := []contracts.Mention{
		{Source: "twitter", Text: "$XYZ to the moon", Engagement: 0},
		{Source: "twitter", Text: "rocket time apes", Engagement: 0},
	}

	quality, catalysts, hype := s.scanPosts(posts)
	assert.Zero(t, quality)
	assert.Zero(t, catalysts)
	assert.Equal(t, 2, hype)
}

func TestBuild_CatalystBoost(t *testing.T) {
	s := testScorer()

	posts := []contracts.Mention{
		qualityPost("reddit", "fda approval expected this quarter"),
		qualityPost("reddit", "new partnership announced with a major supplier"),
		qualityPost("reddit", "earnings beat and raised guidance"),
	}

	boosted := s.build("NVDA", 30, 100, posts)
	plain := s.build("NVDA", 30, 100, posts[:1])

	require.Equal(t, 3, boosted.CatalystCount)
	assert.Greater(t, boosted.Composite, plain.Composite)
	assert.LessOrEqual(t, boosted.Composite, 1.0, "boost saturates at the cap")
}

func TestBuild_CompositeCappedAtOne(t *testing.T) {
	s := testScorer()

	// Saturated acceleration and quality plus the catalyst boost would
	// land at 1.2 unclamped
	posts := make([]contracts.Mention, 6)
	for i := range posts {
		posts[i] = qualityPost("reddit", "fda approval and earnings beat in the same week")
	}

	score := s.build("NVDA", 30, 100, posts)

	require.Equal(t, 1.0, score.Acceleration)
	require.GreaterOrEqual(t, score.CatalystCount, 3)
	assert.Equal(t, 1.0, score.Composite)
}

func TestBuild_HypePenalty(t *testing.T) {
	s := testScorer()

	hypePosts := []contracts.Mention{
		{Source: "twitter", Text: "to the moon", Engagement: 0},
		{Source: "twitter", Text: "rocket rocket rocket", Engagement: 0},
		{Source: "twitter", Text: "yolo all in", Engagement: 0},
	}

	penalized := s.build("MEME", 30, 100, hypePosts)
	clean := s.build("MEME", 30, 100, nil)

	assert.Equal(t, 3, penalized.HypeCount)
	assert.Less(t, penalized.Composite, clean.Composite)
	assert.InDelta(t, clean.Composite*hypePenalty, penalized.Composite, 1e-9)
}

func TestBuild_HypeBalancedByCatalystsNotPenalized(t *testing.T) {
	s := testScorer()

	posts := []contracts.Mention{
		{Source: "twitter", Text: "to the moon", Engagement: 0},
		{Source: "twitter", Text: "squeeze incoming", Engagement: 0},
		qualityPost("reddit", "fda approval decision due next month"),
		qualityPost("reddit", "acquisition rumors from a credible outlet"),
	}

	score := s.build("NVDA", 30, 100, posts)
	assert.Equal(t, 2, score.HypeCount)
	assert.Equal(t, 2, score.CatalystCount)
	// hype (2) not greater than 2x catalysts (4): no penalty
	assert.GreaterOrEqual(t, score.Composite, accelerationWeight*score.Acceleration)
}
