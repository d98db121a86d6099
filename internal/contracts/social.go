package contracts

// Buzz strength labels, bucketed from recent mention volume.
const (
	BuzzExplosive = "EXPLOSIVE"
	BuzzStrong    = "STRONG"
	BuzzModerate  = "MODERATE"
	BuzzWeak      = "WEAK"
)

// SocialScore is the output of the social intelligence stage for one
// ticker. Composite is in [0, 1]; the catalyst boost saturates at the
// cap.
type SocialScore struct {
	Ticker string `json:"ticker"`

	// Mention volume
	RecentMentions   int     `json:"recent_mentions"`
	BaselineMentions int     `json:"baseline_mentions"`
	Acceleration     float64 `json:"acceleration"` // [0, 1]
	IsAccelerating   bool    `json:"is_accelerating"`

	// Mention quality
	QualityScore  float64 `json:"quality_score"` // weighted sum, unnormalized
	CatalystCount int     `json:"catalyst_count"`
	HypeCount     int     `json:"hype_count"`

	Composite float64 `json:"composite"`
	Strength  string  `json:"strength"`
}

// BuzzStrength buckets a recent mention count into a label.
func BuzzStrength(recentMentions int) string {
	switch {
	case recentMentions > 50:
		return BuzzExplosive
	case recentMentions > 30:
		return BuzzStrong
	case recentMentions >= 20:
		return BuzzModerate
	default:
		return BuzzWeak
	}
}

// Mention is a raw social post pulled from a provider.
type Mention struct {
	Source     string `json:"source"` // e.g. "reddit", "stocktwits"
	Text       string `json:"text"`
	Engagement int    `json:"engagement"` // upvotes + comments
}
