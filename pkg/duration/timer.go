package duration

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrTimerNotFound   = errors.New("timer not found")
	ErrInvalidDuration = errors.New("invalid duration")
)

// MaxDuration is the longest transition time (62 steps of 10 minutes)
// plus the longest delay (255 steps of 5 ms).
const MaxDuration = 62*10*time.Minute + 1275*time.Millisecond

// TimerKind is the phase of a server transition a timer measures.
type TimerKind uint8

const (
	// TimerDelay runs from reception of a set until the transition starts.
	TimerDelay TimerKind = iota + 1
	// TimerTransition runs until the state reaches its target.
	TimerTransition
)

func (k TimerKind) String() string {
	switch k {
	case TimerDelay:
		return "DELAY"
	case TimerTransition:
		return "TRANSITION"
	}
	return "UNKNOWN"
}

type timerKey struct {
	lid  uint8
	kind TimerKind
}

// Timer is a snapshot of a running timer. Value is passed to the expiry
// callback unchanged.
type Timer struct {
	LocalIndex uint8
	Kind       TimerKind
	StartTime  time.Time
	Duration   time.Duration
	Value      any

	handle Handle
}

func (t *Timer) ExpiresAt() time.Time { return t.StartTime.Add(t.Duration) }

// RemainingAt returns the time left at now, never negative.
func (t *Timer) RemainingAt(now time.Time) time.Duration {
	return max(t.Duration-now.Sub(t.StartTime), 0)
}

// Manager keeps at most one timer per (local index, kind). Setting a timer
// replaces the previous one without firing it.
type Manager struct {
	sched Scheduler

	mu       sync.RWMutex
	timers   map[timerKey]*Timer
	onExpiry func(lid uint8, kind TimerKind, value any)
}

// NewManager returns a Manager on sched, or on the wall clock when nil.
func NewManager(sched Scheduler) *Manager {
	if sched == nil {
		sched = RealScheduler{}
	}
	return &Manager{sched: sched, timers: map[timerKey]*Timer{}}
}

// OnExpiry sets the function called, outside the manager lock, when a
// timer fires.
func (m *Manager) OnExpiry(fn func(lid uint8, kind TimerKind, value any)) {
	m.mu.Lock()
	m.onExpiry = fn
	m.mu.Unlock()
}

// SetTimer starts a timer of d for (lid, kind).
func (m *Manager) SetTimer(lid uint8, kind TimerKind, d time.Duration, value any) error {
	if d <= 0 || d > MaxDuration {
		return ErrInvalidDuration
	}
	key := timerKey{lid, kind}
	t := &Timer{LocalIndex: lid, Kind: kind, Duration: d, Value: value}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(key)
	t.StartTime = m.sched.Now()
	t.handle = m.sched.AfterFunc(d, func() { m.fire(key, t) })
	m.timers[key] = t
	return nil
}

// CancelTimer stops the timer of (lid, kind) without firing it.
func (m *Manager) CancelTimer(lid uint8, kind TimerKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopLocked(timerKey{lid, kind}) {
		return ErrTimerNotFound
	}
	return nil
}

// CancelAll stops every timer of lid.
func (m *Manager) CancelAll(lid uint8) {
	m.cancelWhere(func(k timerKey) bool { return k.lid == lid })
}

// Stop stops every timer.
func (m *Manager) Stop() {
	m.cancelWhere(func(timerKey) bool { return true })
}

func (m *Manager) cancelWhere(match func(timerKey) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.timers {
		if match(key) {
			m.stopLocked(key)
		}
	}
}

func (m *Manager) stopLocked(key timerKey) bool {
	t, ok := m.timers[key]
	if ok {
		t.handle.Stop()
		delete(m.timers, key)
	}
	return ok
}

// GetTimer returns a snapshot of the timer of (lid, kind), or nil.
func (m *Manager) GetTimer(lid uint8, kind TimerKind) *Timer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.timers[timerKey{lid, kind}]
	if !ok {
		return nil
	}
	snap := *t
	snap.handle = nil
	return &snap
}

// Remaining returns the time left on the timer of (lid, kind), or 0.
func (m *Manager) Remaining(lid uint8, kind TimerKind) time.Duration {
	if t := m.GetTimer(lid, kind); t != nil {
		return t.RemainingAt(m.sched.Now())
	}
	return 0
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.timers)
}

func (m *Manager) fire(key timerKey, t *Timer) {
	m.mu.Lock()
	if m.timers[key] != t {
		// replaced or cancelled after the scheduler queued the callback
		m.mu.Unlock()
		return
	}
	delete(m.timers, key)
	fn := m.onExpiry
	m.mu.Unlock()

	if fn != nil {
		fn(key.lid, key.kind, t.Value)
	}
}
