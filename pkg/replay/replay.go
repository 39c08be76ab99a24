package replay

import (
	"sync"
	"time"

	"github.com/meshmodel/mm-go/pkg/duration"
)

// Defaults.
const (
	// DefaultDelay is the validity window of an entry.
	DefaultDelay = 6 * time.Second

	// DefaultCapacity is the number of entries kept before the earliest
	// expiring one is evicted.
	DefaultCapacity = 16
)

// entry is one remembered transaction. delay is relative to the expiry of
// the previous entry; for the head it is relative to armedAt.
type entry struct {
	src   uint16
	tid   uint8
	delay time.Duration
}

// List is a replay protection list. It is safe for concurrent use.
type List struct {
	mu sync.Mutex

	sched    duration.Scheduler
	window   time.Duration
	capacity int

	entries    []entry
	delayTotal time.Duration
	armedAt    time.Time
	handle     duration.Handle
	gen        uint64
	closed     bool

	evicted uint64
}

// Option configures a List.
type Option func(*List)

// WithDelay sets the validity window of an entry.
func WithDelay(d time.Duration) Option {
	return func(l *List) {
		if d > 0 {
			l.window = d
		}
	}
}

// WithCapacity sets the maximum number of entries.
func WithCapacity(n int) Option {
	return func(l *List) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// New creates a replay protection list driven by sched. A nil scheduler
// selects the wall clock.
func New(sched duration.Scheduler, opts ...Option) *List {
	if sched == nil {
		sched = duration.RealScheduler{}
	}
	l := &List{
		sched:    sched,
		window:   DefaultDelay,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsRetransmission reports whether (src, tid) was seen within the validity
// window. If not, the pair is remembered and false is returned.
func (l *List) IsRetransmission(src uint16, tid uint8) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false
	}
	for _, e := range l.entries {
		if e.src == src && e.tid == tid {
			return true
		}
	}

	if len(l.entries) >= l.capacity {
		l.evictHeadLocked()
	}
	l.insertLocked(src, tid)
	return false
}

// Len returns the number of live entries.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Evicted returns the number of entries dropped because the list was full.
func (l *List) Evicted() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.evicted
}

// Window returns the validity window.
func (l *List) Window() time.Duration {
	return l.window
}

// Close stops the timer and forgets every entry.
func (l *List) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.stopLocked()
	l.entries = nil
	l.delayTotal = 0
}

func (l *List) insertLocked(src uint16, tid uint8) {
	now := l.sched.Now()

	if len(l.entries) == 0 {
		l.entries = append(l.entries, entry{src: src, tid: tid, delay: l.window})
		l.delayTotal = 0
		l.armLocked(now)
		return
	}

	// Expiry of the tail, from the head's arming time plus the deltas.
	tail := l.armedAt.Add(l.entries[0].delay + l.delayTotal)
	delta := now.Add(l.window).Sub(tail)
	if delta < 0 {
		delta = 0
	}
	l.entries = append(l.entries, entry{src: src, tid: tid, delay: delta})
	l.delayTotal += delta
}

// evictHeadLocked drops the earliest expiring entry and re-arms for the new
// head with its remaining time.
func (l *List) evictHeadLocked() {
	now := l.sched.Now()
	headExpiry := l.armedAt.Add(l.entries[0].delay)

	l.stopLocked()
	l.entries = l.entries[1:]
	l.evicted++
	if len(l.entries) == 0 {
		l.delayTotal = 0
		return
	}

	next := &l.entries[0]
	l.delayTotal -= next.delay
	remaining := headExpiry.Add(next.delay).Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	next.delay = remaining
	l.armLocked(now)
}

func (l *List) armLocked(now time.Time) {
	l.gen++
	gen := l.gen
	l.armedAt = now
	l.handle = l.sched.AfterFunc(l.entries[0].delay, func() {
		l.expire(gen)
	})
}

func (l *List) stopLocked() {
	if l.handle != nil {
		l.handle.Stop()
		l.handle = nil
	}
	l.gen++
}

// expire removes the head and every following entry expiring at the same
// time, then re-arms for the next delta.
func (l *List) expire(gen uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.gen || len(l.entries) == 0 {
		return
	}
	l.handle = nil
	l.entries = l.entries[1:]
	for len(l.entries) > 0 && l.entries[0].delay == 0 {
		l.entries = l.entries[1:]
	}
	if len(l.entries) == 0 {
		l.delayTotal = 0
		return
	}
	l.delayTotal -= l.entries[0].delay
	l.armLocked(l.sched.Now())
}
