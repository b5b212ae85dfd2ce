// Package debounce coalesces bursts of calls per key into one trailing call.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used for crop-anchor drags.
const DefaultDelay = 80 * time.Millisecond

// Scheduler runs at most one trailing callback per key. Keys are
// independent: scheduling "a" never delays or cancels "b".
type Scheduler struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*entry
	wg      sync.WaitGroup
}

type entry struct {
	timer *time.Timer
}

// New creates a scheduler. A non-positive delay uses DefaultDelay.
func New(delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{delay: delay, pending: make(map[string]*entry)}
}

// Delay returns the quiet period.
func (s *Scheduler) Delay() time.Duration { return s.delay }

// Schedule (re)arms the timer for key. fn runs once, delay after the
// last Schedule call for that key, unless Cancel intervenes.
func (s *Scheduler) Schedule(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.pending[key]; ok {
		s.stopLocked(old)
	}

	e := &entry{}
	s.wg.Add(1)
	e.timer = time.AfterFunc(s.delay, func() {
		defer s.wg.Done()

		s.mu.Lock()
		current := s.pending[key] == e
		if current {
			delete(s.pending, key)
		}
		s.mu.Unlock()

		// A callback that fired while being replaced is stale.
		if current {
			fn()
		}
	})
	s.pending[key] = e
}

// Cancel drops the pending callback for key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.pending[key]; ok {
		s.stopLocked(e)
		delete(s.pending, key)
	}
}

// CancelAll drops every pending callback.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.pending {
		s.stopLocked(e)
		delete(s.pending, key)
	}
}

// Pending reports whether key has a callback waiting to fire.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Len returns the number of keys with a pending callback.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Wait blocks until every scheduled callback has fired or been cancelled.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// stopLocked stops e's timer. If the timer already fired, its callback
// sees it was replaced and releases the wait count itself.
func (s *Scheduler) stopLocked(e *entry) {
	if e.timer.Stop() {
		s.wg.Done()
	}
}
