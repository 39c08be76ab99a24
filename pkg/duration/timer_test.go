package duration

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)

func TestTimerRemaining(t *testing.T) {
	timer := &Timer{
		LocalIndex: 1,
		Kind:       TimerTransition,
		StartTime:  epoch,
		Duration:   60 * time.Second,
	}

	if got := timer.RemainingAt(epoch.Add(15 * time.Second)); got != 45*time.Second {
		t.Errorf("RemainingAt(+15s) = %v, want 45s", got)
	}
	if got := timer.RemainingAt(epoch.Add(2 * time.Minute)); got != 0 {
		t.Errorf("RemainingAt(+2m) = %v, want 0", got)
	}
	if got := timer.ExpiresAt(); !got.Equal(epoch.Add(time.Minute)) {
		t.Errorf("ExpiresAt() = %v", got)
	}
}

func TestManagerSetTimer(t *testing.T) {
	m := NewManager(NewManualScheduler(epoch))

	if err := m.SetTimer(1, TimerTransition, 5*time.Second, int32(100)); err != nil {
		t.Fatalf("SetTimer() error = %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}

	timer := m.GetTimer(1, TimerTransition)
	if timer == nil {
		t.Fatal("GetTimer() returned nil")
	}
	if timer.Value != int32(100) {
		t.Errorf("Timer value = %v, want 100", timer.Value)
	}
}

func TestManagerInvalidDuration(t *testing.T) {
	m := NewManager(NewManualScheduler(epoch))

	if err := m.SetTimer(1, TimerDelay, 0, nil); err != ErrInvalidDuration {
		t.Errorf("SetTimer(0) error = %v, want ErrInvalidDuration", err)
	}
	if err := m.SetTimer(1, TimerDelay, MaxDuration+time.Millisecond, nil); err != ErrInvalidDuration {
		t.Errorf("SetTimer(too long) error = %v, want ErrInvalidDuration", err)
	}
	if err := m.SetTimer(1, TimerDelay, MaxDuration, nil); err != nil {
		t.Errorf("SetTimer(MaxDuration) error = %v", err)
	}
}

func TestManagerTimerReplacement(t *testing.T) {
	sched := NewManualScheduler(epoch)
	m := NewManager(sched)

	var fired []any
	m.OnExpiry(func(lid uint8, kind TimerKind, value any) {
		fired = append(fired, value)
	})

	_ = m.SetTimer(1, TimerTransition, 10*time.Second, "first")
	_ = m.SetTimer(1, TimerTransition, 20*time.Second, "second")

	if m.Count() != 1 {
		t.Errorf("Count() = %d after replacement, want 1", m.Count())
	}

	sched.Advance(15 * time.Second)
	if len(fired) != 0 {
		t.Fatalf("replaced timer fired: %v", fired)
	}

	sched.Advance(5 * time.Second)
	if len(fired) != 1 || fired[0] != "second" {
		t.Errorf("fired = %v, want [second]", fired)
	}
}

func TestManagerCancelTimer(t *testing.T) {
	sched := NewManualScheduler(epoch)
	m := NewManager(sched)

	expired := false
	m.OnExpiry(func(uint8, TimerKind, any) { expired = true })

	_ = m.SetTimer(1, TimerDelay, 5*time.Second, nil)
	if err := m.CancelTimer(1, TimerDelay); err != nil {
		t.Fatalf("CancelTimer() error = %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d after cancel, want 0", m.Count())
	}

	sched.Advance(10 * time.Second)
	if expired {
		t.Error("cancelled timer fired")
	}

	if err := m.CancelTimer(1, TimerDelay); err != ErrTimerNotFound {
		t.Errorf("CancelTimer non-existent error = %v, want ErrTimerNotFound", err)
	}
}

func TestManagerCancelAll(t *testing.T) {
	m := NewManager(NewManualScheduler(epoch))

	_ = m.SetTimer(1, TimerDelay, time.Second, nil)
	_ = m.SetTimer(1, TimerTransition, time.Second, nil)
	_ = m.SetTimer(2, TimerTransition, time.Second, nil)

	m.CancelAll(1)
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
	if m.GetTimer(2, TimerTransition) == nil {
		t.Error("timer of other instance was cancelled")
	}

	m.Stop()
	if m.Count() != 0 {
		t.Errorf("Count() = %d after Stop, want 0", m.Count())
	}
}

func TestManagerExpiry(t *testing.T) {
	sched := NewManualScheduler(epoch)
	m := NewManager(sched)

	type fire struct {
		lid  uint8
		kind TimerKind
	}
	var fires []fire
	m.OnExpiry(func(lid uint8, kind TimerKind, value any) {
		fires = append(fires, fire{lid, kind})
	})

	_ = m.SetTimer(2, TimerTransition, 3*time.Second, nil)
	_ = m.SetTimer(1, TimerDelay, time.Second, nil)

	if got := m.Remaining(2, TimerTransition); got != 3*time.Second {
		t.Errorf("Remaining() = %v, want 3s", got)
	}

	sched.Advance(4 * time.Second)

	want := []fire{{1, TimerDelay}, {2, TimerTransition}}
	if len(fires) != len(want) {
		t.Fatalf("fires = %v, want %v", fires, want)
	}
	for i := range want {
		if fires[i] != want[i] {
			t.Errorf("fires[%d] = %v, want %v", i, fires[i], want[i])
		}
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d after expiry, want 0", m.Count())
	}
}

func TestManualSchedulerNested(t *testing.T) {
	sched := NewManualScheduler(epoch)

	var order []string
	sched.AfterFunc(time.Second, func() {
		order = append(order, "a")
		sched.AfterFunc(time.Second, func() { order = append(order, "b") })
	})
	h := sched.AfterFunc(1500*time.Millisecond, func() { order = append(order, "stopped") })
	if !h.Stop() {
		t.Error("Stop() = false for pending timer")
	}
	if h.Stop() {
		t.Error("second Stop() = true")
	}

	sched.Advance(3 * time.Second)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v, want [a b]", order)
	}
	if !sched.Now().Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("Now() = %v", sched.Now())
	}
	if sched.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", sched.Pending())
	}
}

func TestTimerKindString(t *testing.T) {
	if TimerDelay.String() != "DELAY" || TimerTransition.String() != "TRANSITION" || TimerKind(9).String() != "UNKNOWN" {
		t.Error("TimerKind.String() mismatch")
	}
}
