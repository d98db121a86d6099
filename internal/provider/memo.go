package provider

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/supascan/internal/contracts"
)

// Memo wraps a DataProvider with a bounded in-process LRU cache so one
// run never fetches the same data twice. Entries live for the process
// lifetime only; capacity eviction is least-recently-used. Keys are
// method-scoped, so a Snapshot and a Financials for the same ticker do
// not collide.
type Memo struct {
	inner    DataProvider
	capacity int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recent
}

type memoEntry struct {
	key   string
	value interface{}
}

// NewMemo wraps inner with an LRU of the given capacity.
func NewMemo(inner DataProvider, capacity int) *Memo {
	if capacity < 1 {
		capacity = 1
	}
	return &Memo{
		inner:    inner,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Len returns the number of cached entries.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *Memo) get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	m.order.MoveToFront(elem)
	return elem.Value.(*memoEntry).value, true
}

func (m *Memo) put(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if elem, ok := m.entries[key]; ok {
		m.order.MoveToFront(elem)
		elem.Value.(*memoEntry).value = value
		return
	}

	m.entries[key] = m.order.PushFront(&memoEntry{key: key, value: value})

	if m.order.Len() > m.capacity {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(*memoEntry).key)
	}
}

// memoize runs fetch on a cache miss and stores the result. Errors are
// never cached: a failed fetch retries on the next call.
func (m *Memo) memoize(key string, fetch func() (interface{}, error)) (interface{}, error) {
	if cached, ok := m.get(key); ok {
		return cached, nil
	}

	value, err := fetch()
	if err != nil {
		return nil, err
	}
	m.put(key, value)
	return value, nil
}

func (m *Memo) Snapshot(ctx context.Context, ticker string) (*contracts.Snapshot, error) {
	v, err := m.memoize("snapshot:"+ticker, func() (interface{}, error) {
		return m.inner.Snapshot(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	return v.(*contracts.Snapshot), nil
}

func (m *Memo) PriceHistory(ctx context.Context, ticker string, days int) ([]contracts.Bar, error) {
	v, err := m.memoize(fmt.Sprintf("history:%s:%d", ticker, days), func() (interface{}, error) {
		return m.inner.PriceHistory(ctx, ticker, days)
	})
	if err != nil {
		return nil, err
	}
	return v.([]contracts.Bar), nil
}

func (m *Memo) SocialMentions(ctx context.Context, ticker string, window time.Duration) (int, error) {
	v, err := m.memoize(fmt.Sprintf("mentions:%s:%s", ticker, window), func() (interface{}, error) {
		return m.inner.SocialMentions(ctx, ticker, window)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (m *Memo) SocialPosts(ctx context.Context, ticker string, window time.Duration) ([]contracts.Mention, error) {
	v, err := m.memoize(fmt.Sprintf("posts:%s:%s", ticker, window), func() (interface{}, error) {
		return m.inner.SocialPosts(ctx, ticker, window)
	})
	if err != nil {
		return nil, err
	}
	return v.([]contracts.Mention), nil
}

func (m *Memo) News(ctx context.Context, ticker string) (*contracts.NewsBundle, error) {
	v, err := m.memoize("news:"+ticker, func() (interface{}, error) {
		return m.inner.News(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	return v.(*contracts.NewsBundle), nil
}

func (m *Memo) InsiderTrades(ctx context.Context, ticker string) (*contracts.InsiderActivity, error) {
	v, err := m.memoize("insider:"+ticker, func() (interface{}, error) {
		return m.inner.InsiderTrades(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	return v.(*contracts.InsiderActivity), nil
}

func (m *Memo) Financials(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	v, err := m.memoize("financials:"+ticker, func() (interface{}, error) {
		return m.inner.Financials(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	return v.(*contracts.Fundamentals), nil
}

func (m *Memo) EarningsCalendar(ctx context.Context, ticker string) (int, error) {
	v, err := m.memoize("earnings:"+ticker, func() (interface{}, error) {
		return m.inner.EarningsCalendar(ctx, ticker)
	})
	if err != nil {
		return -1, err
	}
	return v.(int), nil
}
