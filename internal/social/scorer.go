package social

import (
	"context"
	"strings"

	"github.com/wonny/supascan/internal/contracts"
	"github.com/wonny/supascan/internal/provider"
	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/logger"
)

// catalystKeywords mark substantive mentions: a named event that can
// move the stock.
var catalystKeywords = []string{
	"fda", "approval", "earnings", "beat", "guidance", "upgrade",
	"contract", "partnership", "acquisition", "merger", "buyout",
	"breakthrough", "patent", "launch", "buyback", "insider buying",
}

// hypeKeywords mark low-information momentum chatter.
var hypeKeywords = []string{
	"to the moon", "rocket", "yolo", "squeeze", "diamond hands",
	"cant go tits up", "lambo", "apes", "hold the line",
}

// sourceWeights favor long-form discussion venues over tickers-only
// streams when scoring mention quality.
var sourceWeights = map[string]float64{
	"reddit":     1.0,
	"stocktwits": 0.8,
	"twitter":    0.6,
}

const defaultSourceWeight = 0.5

// qualityNormalizer is the weighted quality sum treated as "full
// marks". Five substantive reddit-grade posts saturate the quality
// component.
const qualityNormalizer = 5.0

// Composite mixing and adjustment constants.
const (
	accelerationWeight = 0.6
	qualityWeight      = 0.4
	catalystBoost      = 1.2
	hypePenalty        = 0.8
)

// Scorer measures social buzz for one ticker: is mention volume
// accelerating against its own baseline, and is the chatter
// substantive or hype.
type Scorer struct {
	cfg      config.SocialConfig
	provider provider.DataProvider
	logger   *logger.Logger
}

// NewScorer creates a social scorer.
func NewScorer(cfg config.SocialConfig, p provider.DataProvider, log *logger.Logger) *Scorer {
	return &Scorer{cfg: cfg, provider: p, logger: log}
}

// Score fetches mention counts and posts and produces the social score.
func (s *Scorer) Score(ctx context.Context, ticker string) (*contracts.SocialScore, error) {
	recent, err := s.provider.SocialMentions(ctx, ticker, s.cfg.RecentWindow)
	if err != nil {
		return nil, err
	}
	baseline, err := s.provider.SocialMentions(ctx, ticker, s.cfg.BaselineWindow)
	if err != nil {
		return nil, err
	}
	posts, err := s.provider.SocialPosts(ctx, ticker, s.cfg.RecentWindow)
	if err != nil {
		return nil, err
	}

	score := s.build(ticker, recent, baseline, posts)

	s.logger.WithFields(map[string]interface{}{
		"ticker":       ticker,
		"recent":       score.RecentMentions,
		"acceleration": score.Acceleration,
		"accelerating": score.IsAccelerating,
		"composite":    score.Composite,
		"strength":     score.Strength,
	}).Debug("Social score computed")

	return score, nil
}

// build is the pure scoring core, separated from fetching for tests.
func (s *Scorer) build(ticker string, recent, baseline int, posts []contracts.Mention) *contracts.SocialScore {
	score := &contracts.SocialScore{
		Ticker:           ticker,
		RecentMentions:   recent,
		BaselineMentions: baseline,
		Strength:         contracts.BuzzStrength(recent),
	}

	score.Acceleration = s.acceleration(recent, baseline)
	score.IsAccelerating = score.Acceleration >= s.cfg.AccelThreshold &&
		recent >= s.cfg.MinRecentMentions

	score.QualityScore, score.CatalystCount, score.HypeCount = s.scanPosts(posts)

	normQuality := score.QualityScore / qualityNormalizer
	if normQuality > 1.0 {
		normQuality = 1.0
	}

	score.Composite = accelerationWeight*score.Acceleration + qualityWeight*normQuality
	if score.CatalystCount >= s.cfg.CatalystBoostCount {
		score.Composite *= catalystBoost
	}
	if score.HypeCount > 2*score.CatalystCount {
		score.Composite *= hypePenalty
	}
	if score.Composite > 1.0 {
		score.Composite = 1.0
	}

	return score
}

// acceleration compares recent mention volume to the trailing baseline
// scaled to the same window length, capped at 1.0. A zero baseline with
// real recent volume is treated as fully accelerating (a name appearing
// from nowhere), otherwise as silence.
func (s *Scorer) acceleration(recent, baseline int) float64 {
	windowRatio := float64(s.cfg.RecentWindow) / float64(s.cfg.BaselineWindow)
	expected := float64(baseline) * windowRatio

	if expected == 0 {
		if recent >= s.cfg.MinRecentMentions {
			return 1.0
		}
		return 0.0
	}

	accel := float64(recent) / expected
	if accel > 1.0 {
		accel = 1.0
	}
	return accel
}

// scanPosts computes the weighted quality sum and counts catalyst and
// hype mentions. A post contributes quality only when it clears both
// the length and engagement floors; keyword counting sees every post.
func (s *Scorer) scanPosts(posts []contracts.Mention) (quality float64, catalysts, hype int) {
	for _, post := range posts {
		text := strings.ToLower(post.Text)

		if containsAny(text, catalystKeywords) {
			catalysts++
		}
		if containsAny(text, hypeKeywords) {
			hype++
		}

		if len(post.Text) < s.cfg.MinPostLength || post.Engagement < s.cfg.MinPostEngagement {
			continue
		}
		quality += sourceWeight(post.Source)
	}
	return quality, catalysts, hype
}

func sourceWeight(source string) float64 {
	if w, ok := sourceWeights[strings.ToLower(source)]; ok {
		return w
	}
	return defaultSourceWeight
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
