package log

import (
	"sync"
	"testing"
)

func TestNoopLoggerDiscards(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{SessionID: "x"})
}

func TestNoopLoggerConcurrent(t *testing.T) {
	var l NoopLogger
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Log(Event{})
		}()
	}
	wg.Wait()
}

func TestLoggerFunc(t *testing.T) {
	var got []string
	l := LoggerFunc(func(e Event) { got = append(got, e.SessionID) })
	l.Log(Event{SessionID: "a"})
	l.Log(Event{SessionID: "b"})

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("LoggerFunc recorded %v, want [a b]", got)
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	ml := NewMultiLogger()
	if OrNoop(ml) != Logger(ml) {
		t.Error("OrNoop should return a non-nil logger unchanged")
	}
}
