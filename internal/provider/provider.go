package provider

import (
	"context"
	"time"

	"github.com/wonny/supascan/internal/contracts"
)

// DataProvider is the single surface through which the pipeline reads
// market, social, news, insider and fundamental data. Implementations
// must treat an unknown ticker as a zero-value result, not an error;
// errors are reserved for transport and decoding failures.
type DataProvider interface {
	// Snapshot returns the current point-in-time view of a ticker.
	Snapshot(ctx context.Context, ticker string) (*contracts.Snapshot, error)

	// PriceHistory returns up to days of daily bars, oldest first.
	PriceHistory(ctx context.Context, ticker string, days int) ([]contracts.Bar, error)

	// SocialMentions counts mentions of the ticker within the window.
	SocialMentions(ctx context.Context, ticker string, window time.Duration) (int, error)

	// SocialPosts returns raw posts mentioning the ticker within the window.
	SocialPosts(ctx context.Context, ticker string, window time.Duration) ([]contracts.Mention, error)

	// News returns recent headlines with derived catalyst signals.
	News(ctx context.Context, ticker string) (*contracts.NewsBundle, error)

	// InsiderTrades summarizes the trailing 90 days of insider activity.
	InsiderTrades(ctx context.Context, ticker string) (*contracts.InsiderActivity, error)

	// Financials returns the fundamental snapshot used for quality boosts.
	Financials(ctx context.Context, ticker string) (*contracts.Fundamentals, error)

	// EarningsCalendar returns days until the next earnings report,
	// or -1 when the date is unknown.
	EarningsCalendar(ctx context.Context, ticker string) (int, error)
}
