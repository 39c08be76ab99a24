package duration

import (
	"sort"
	"sync"
	"time"
)

// Handle controls a scheduled callback.
type Handle interface {
	// Stop cancels the callback. It returns false if the callback already
	// ran or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// AfterFunc runs fn once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Handle
}

// RealScheduler schedules on the wall clock with time.AfterFunc.
// Callbacks run on their own goroutine.
type RealScheduler struct{}

// Now returns time.Now().
func (RealScheduler) Now() time.Time { return time.Now() }

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, fn func()) Handle {
	return time.AfterFunc(d, fn)
}

// Compile-time interface satisfaction check.
var _ Scheduler = RealScheduler{}

// ManualScheduler is a Scheduler driven by Advance. Due callbacks run on the
// goroutine calling Advance, in deadline order (scheduling order for equal
// deadlines).
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	s        *ManualScheduler
	deadline time.Time
	seq      uint64
	fn       func()
	done     bool
}

// NewManualScheduler creates a manual scheduler starting at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the manual clock's time.
func (s *ManualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc schedules fn at Now()+d.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{s: s, deadline: s.now.Add(d), seq: s.seq, fn: fn}
	s.pending = append(s.pending, t)
	return t
}

// Pending returns the number of callbacks not yet run or stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Advance moves the clock forward by d, running every callback that becomes
// due. Callbacks scheduled by callbacks run too if they fall due in the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.deadline
		next.done = true
		s.removeLocked(next)
		fn := next.fn
		s.mu.Unlock()

		// Run outside the lock so the callback may schedule again.
		fn()
	}
}

func (s *ManualScheduler) nextDueLocked(target time.Time) *manualTimer {
	if len(s.pending) == 0 {
		return nil
	}
	sort.SliceStable(s.pending, func(i, j int) bool {
		a, b := s.pending[i], s.pending[j]
		if a.deadline.Equal(b.deadline) {
			return a.seq < b.seq
		}
		return a.deadline.Before(b.deadline)
	})
	if s.pending[0].deadline.After(target) {
		return nil
	}
	return s.pending[0]
}

func (s *ManualScheduler) removeLocked(t *manualTimer) {
	for i, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// Stop cancels the timer.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.s.removeLocked(t)
	return true
}

// Compile-time interface satisfaction check.
var _ Scheduler = (*ManualScheduler)(nil)
