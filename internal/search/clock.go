package search

import (
	"sync"
	"time"
)

// Clock abstracts time so debounce behaviour can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// Debouncer runs only the last function triggered within a quiet window.
// A new Trigger before the window elapses cancels the pending call and
// restarts the timer.
type Debouncer struct {
	clock Clock
	delay time.Duration

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

func NewDebouncer(clock Clock, delay time.Duration) *Debouncer {
	if clock == nil {
		clock = RealClock
	}
	return &Debouncer{clock: clock, delay: delay}
}

func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			// superseded after the timer already fired
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Sequence issues increasing request tickets. Only the most recently issued
// ticket is current, so a response carrying an older ticket is stale and
// must be dropped. Callers serialize access.
type Sequence struct {
	latest uint64
}

func (s *Sequence) Next() uint64 {
	s.latest++
	return s.latest
}

func (s *Sequence) Current(ticket uint64) bool {
	return ticket == s.latest
}

// Invalidate makes every issued ticket stale.
func (s *Sequence) Invalidate() {
	s.latest++
}
