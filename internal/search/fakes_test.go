package search

import (
	"context"
	"sync"
	"time"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/logger"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs due timers on the calling goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeBackend struct {
	mu            sync.Mutex
	autocompletes []string
	searches      []catalog.SmartQuery
	suggestions   []catalog.Suggestion
	searchErr     error
	unsuccessful  bool
	gates         map[string]chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		suggestions: []catalog.Suggestion{{Text: "Matrix", Type: "movie"}},
		gates:       make(map[string]chan struct{}),
	}
}

// gate makes searches for q block until the returned func is called.
func (b *fakeBackend) gate(q string) func() {
	ch := make(chan struct{})
	b.mu.Lock()
	b.gates[q] = ch
	b.mu.Unlock()
	return func() { close(ch) }
}

func (b *fakeBackend) Autocomplete(_ context.Context, q string, limit int) (catalog.Response[[]catalog.Suggestion], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autocompletes = append(b.autocompletes, q)
	return catalog.Response[[]catalog.Suggestion]{Success: true, Data: b.suggestions}, nil
}

func (b *fakeBackend) SmartSearch(ctx context.Context, sq catalog.SmartQuery) (catalog.Response[catalog.SearchPage], error) {
	b.mu.Lock()
	b.searches = append(b.searches, sq)
	gate := b.gates[sq.Query]
	err, unsuccessful := b.searchErr, b.unsuccessful
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return catalog.Response[catalog.SearchPage]{}, ctx.Err()
		}
	}
	if err != nil {
		return catalog.Response[catalog.SearchPage]{}, err
	}
	if unsuccessful {
		return catalog.Response[catalog.SearchPage]{Success: false, Message: "search offline"}, nil
	}
	return catalog.Response[catalog.SearchPage]{
		Success: true,
		Data:    catalog.SearchPage{Results: []catalog.SearchResult{{ID: "id-" + sq.Query, Title: sq.Query}}},
	}, nil
}

func (b *fakeBackend) searchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.searches)
}

func (b *fakeBackend) autocompleteCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.autocompletes)
}

func (b *fakeBackend) lastSearch() catalog.SmartQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.searches[len(b.searches)-1]
}

func (b *fakeBackend) setSearchErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searchErr = err
}

func testConfig(b Backend, clock Clock) Config {
	return Config{Backend: b, Clock: clock, Debounce: 300 * time.Millisecond, Logger: logger.Discard()}
}
