package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/supascan/internal/contracts"
)

func TestSynthetic_Deterministic(t *testing.T) {
	p := NewSynthetic()
	ctx := context.Background()

	first, err := p.Snapshot(ctx, "NVDA")
	require.NoError(t, err)
	second, err := p.Snapshot(ctx, "NVDA")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same ticker must yield the same snapshot")

	other, err := p.Snapshot(ctx, "AMD")
	require.NoError(t, err)
	assert.NotEqual(t, first.Price, other.Price, "different tickers should differ")
}

func TestSynthetic_SnapshotBounds(t *testing.T) {
	p := NewSynthetic()
	ctx := context.Background()

	for _, ticker := range []string{"NVDA", "AMD", "CRWD", "BIIB", "SOFI", "PLTR"} {
		snapshot, err := p.Snapshot(ctx, ticker)
		require.NoError(t, err)

		assert.True(t, snapshot.HasData())
		assert.GreaterOrEqual(t, snapshot.Price, 5.0)
		assert.Less(t, snapshot.Price, 305.0)
		assert.Greater(t, snapshot.MarketCap, 0.0)
		assert.Greater(t, snapshot.AvgVolume, int64(0))
		assert.NotEmpty(t, snapshot.Sector)
	}
}

func TestSynthetic_HistoryEndsAtSnapshotPrice(t *testing.T) {
	p := NewSynthetic()
	ctx := context.Background()

	snapshot, err := p.Snapshot(ctx, "NVDA")
	require.NoError(t, err)

	bars, err := p.PriceHistory(ctx, "NVDA", 90)
	require.NoError(t, err)
	require.Len(t, bars, 90)

	assert.Equal(t, snapshot.Price, bars[len(bars)-1].Close)

	// Bars are oldest first
	assert.True(t, bars[0].Date.Before(bars[len(bars)-1].Date))

	for _, bar := range bars {
		assert.Greater(t, bar.Close, 0.0)
		assert.GreaterOrEqual(t, bar.High, bar.Low)
	}
}

func TestSynthetic_MentionsScaleWithWindow(t *testing.T) {
	p := NewSynthetic()
	ctx := context.Background()

	day, err := p.SocialMentions(ctx, "NVDA", 24*time.Hour)
	require.NoError(t, err)
	week, err := p.SocialMentions(ctx, "NVDA", 7*24*time.Hour)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, week, day, "longer window cannot have fewer mentions")
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name string
		fund contracts.Fundamentals
		want float64
	}{
		{
			name: "excellent fundamentals",
			fund: contracts.Fundamentals{
				GrossMargin:     65,
				OperatingMargin: 25,
				FreeCashFlow:    1e9,
				DebtToEquity:    40,
			},
			want: 1.0,
		},
		{
			name: "weak fundamentals",
			fund: contracts.Fundamentals{
				GrossMargin:     15,
				OperatingMargin: -10,
				FreeCashFlow:    -50e6,
				DebtToEquity:    350,
			},
			want: 0.0,
		},
		{
			name: "middling fundamentals",
			fund: contracts.Fundamentals{
				GrossMargin:     30,
				OperatingMargin: 8,
				FreeCashFlow:    10e6,
				DebtToEquity:    150,
			},
			want: 0.625,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, QualityScore(&tt.fund), 1e-9)
		})
	}
}

func TestInsiderScore(t *testing.T) {
	assert.Equal(t, 0.5, InsiderScore(0, 0), "no trades is neutral")
	assert.Equal(t, 1.0, InsiderScore(4, 0))
	assert.Equal(t, 0.0, InsiderScore(0, 3))
	assert.InDelta(t, 0.75, InsiderScore(3, 1), 1e-9)
}

func TestMemo_CachesResults(t *testing.T) {
	counting := &countingProvider{inner: NewSynthetic()}
	memo := NewMemo(counting, 100)
	ctx := context.Background()

	first, err := memo.Snapshot(ctx, "NVDA")
	require.NoError(t, err)
	second, err := memo.Snapshot(ctx, "NVDA")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, counting.snapshotCalls, "second call must hit the cache")
}

func TestMemo_EvictsLRU(t *testing.T) {
	counting := &countingProvider{inner: NewSynthetic()}
	memo := NewMemo(counting, 2)
	ctx := context.Background()

	_, err := memo.Snapshot(ctx, "AAAA")
	require.NoError(t, err)
	_, err = memo.Snapshot(ctx, "BBBB")
	require.NoError(t, err)

	// Touch AAAA so BBBB becomes the eviction candidate
	_, err = memo.Snapshot(ctx, "AAAA")
	require.NoError(t, err)

	_, err = memo.Snapshot(ctx, "CCCC")
	require.NoError(t, err)
	assert.Equal(t, 2, memo.Len())

	// AAAA still cached, BBBB evicted
	_, err = memo.Snapshot(ctx, "AAAA")
	require.NoError(t, err)
	assert.Equal(t, 3, counting.snapshotCalls)

	_, err = memo.Snapshot(ctx, "BBBB")
	require.NoError(t, err)
	assert.Equal(t, 4, counting.snapshotCalls, "evicted entry must refetch")
}

func TestMemo_DoesNotCacheErrors(t *testing.T) {
	failing := &failingProvider{failures: 1, inner: NewSynthetic()}
	memo := NewMemo(failing, 10)
	ctx := context.Background()

	_, err := memo.Snapshot(ctx, "NVDA")
	require.Error(t, err)

	// Retry succeeds once the provider recovers
	snapshot, err := memo.Snapshot(ctx, "NVDA")
	require.NoError(t, err)
	assert.True(t, snapshot.HasData())
}

func TestMemo_MethodKeysDoNotCollide(t *testing.T) {
	memo := NewMemo(NewSynthetic(), 100)
	ctx := context.Background()

	snapshot, err := memo.Snapshot(ctx, "NVDA")
	require.NoError(t, err)
	fund, err := memo.Financials(ctx, "NVDA")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", snapshot.Ticker)
	assert.Equal(t, "NVDA", fund.Ticker)
	assert.Equal(t, 2, memo.Len())
}

// countingProvider counts delegated calls.
type countingProvider struct {
	inner         DataProvider
	snapshotCalls int
}

func (c *countingProvider) Snapshot(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	c.snapshotCalls++
	return c.inner.Snapshot(ctx, ticker)
}

func (c *countingProvider) PriceHistory(ctx context.Context, ticker string, days int) ([]contracts.Bar, error) {
	return c.inner.PriceHistory(ctx, ticker, days)
}

func (c *countingProvider) SocialMentions(ctx context.Context, ticker string, window time.Duration) (int, error) {
	return c.inner.SocialMentions(ctx, ticker, window)
}

func (c *countingProvider) SocialPosts(ctx context.Context, ticker string, window time.Duration) ([]contracts.Mention, error) {
	return c.inner.SocialPosts(ctx, ticker, window)
}

func (c *countingProvider) News(ctx context.Context, ticker string) (*contracts.NewsBundle, error) {
	return c.inner.News(ctx, ticker)
}

func (c *countingProvider) InsiderTrades(ctx context.Context, ticker string) (*contracts.InsiderActivity, error) {
	return c.inner.InsiderTrades(ctx, ticker)
}

func (c *countingProvider) Financials(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	return c.inner.Financials(ctx, ticker)
}

func (c *countingProvider) EarningsCalendar(ctx context.Context, ticker string) (int, error) {
	return c.inner.EarningsCalendar(ctx, ticker)
}

// failingProvider fails the first n Snapshot calls.
type failingProvider struct {
	inner    DataProvider
	failures int
}

func (f *failingProvider) Snapshot(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("transient provider failure")
	}
	return f.inner.Snapshot(ctx, ticker)
}

func (f *failingProvider) PriceHistory(ctx context.Context, ticker string, days int) ([]contracts.Bar, error) {
	return f.inner.PriceHistory(ctx, ticker, days)
}

func (f *failingProvider) SocialMentions(ctx context.Context, ticker string, window time.Duration) (int, error) {
	return f.inner.SocialMentions(ctx, ticker, window)
}

func (f *failingProvider) SocialPosts(ctx context.Context, ticker string, window time.Duration) ([]contracts.Mention, error) {
	return f.inner.SocialPosts(ctx, ticker, window)
}

func (f *failingProvider) News(ctx context.Context, ticker string) (*contracts.NewsBundle, error) {
	return f.inner.News(ctx, ticker)
}

func (f *failingProvider) InsiderTrades(ctx context.Context, ticker string) (*contracts.InsiderActivity, error) {
	return f.inner.InsiderTrades(ctx, ticker)
}

func (f *failingProvider) Financials(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	return f.inner.Financials(ctx, ticker)
}

func (f *failingProvider) EarningsCalendar(ctx context.Context, ticker string) (int, error) {
	return f.inner.EarningsCalendar(ctx, ticker)
}
