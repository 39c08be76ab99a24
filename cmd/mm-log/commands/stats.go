package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/meshmodel/mm-go/pkg/log"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Stats aggregates a capture file.
type Stats struct {
	TotalEvents      int
	EventsByLayer    map[log.Layer]int
	EventsByCategory map[log.Category]int
	// EventsByDirection counts message events only.
	EventsByDirection map[log.Direction]int
	Opcodes           map[wire.Opcode]int
	Sessions          map[string]*SessionStats
	Dropped           int
	GroupTransitions  int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats aggregates the events of one stack session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	LocalAddr uint16
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     map[log.Layer]int{},
		EventsByCategory:  map[log.Category]int{},
		EventsByDirection: map[log.Direction]int{},
		Opcodes:           map[wire.Opcode]int{},
		Sessions:          map[string]*SessionStats{},
	}
}

func (s *Stats) add(ev log.Event) {
	s.TotalEvents++
	s.EventsByLayer[ev.Layer]++
	s.EventsByCategory[ev.Category]++

	ts := ev.Timestamp
	if s.TimeRange.Start.IsZero() || ts.Before(s.TimeRange.Start) {
		s.TimeRange.Start = ts
	}
	if ts.After(s.TimeRange.End) {
		s.TimeRange.End = ts
	}

	sess := s.Sessions[ev.SessionID]
	if sess == nil {
		sess = &SessionStats{FirstSeen: ts, LastSeen: ts, LocalAddr: ev.LocalAddr}
		s.Sessions[ev.SessionID] = sess
	}
	sess.Events++
	if ts.After(sess.LastSeen) {
		sess.LastSeen = ts
	}

	switch {
	case ev.Message != nil:
		s.EventsByDirection[ev.Direction]++
		s.Opcodes[ev.Message.Opcode]++
		if ev.Message.Dropped {
			s.Dropped++
		}
	case ev.StateChange != nil:
		if ev.StateChange.Entity == log.StateEntityGroup {
			s.GroupTransitions++
		}
	case ev.Error != nil:
		s.Errors++
	}
}

func collectStats(path string) (*Stats, error) {
	s := newStats()
	err := scan(path, log.Filter{}, func(ev log.Event) error {
		s.add(ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// RunStats prints a summary of the capture at path.
func RunStats(path string, w io.Writer) error {
	s, err := collectStats(path)
	if err != nil {
		return err
	}
	printStats(w, s)
	return nil
}

// printCounts prints one "  NAME: n" line per key in keys order, skipping
// zero counts.
func printCounts[K comparable](w io.Writer, title string, width int, counts map[K]int, keys []K) {
	fmt.Fprintln(w, title)
	for _, k := range keys {
		if n := counts[k]; n > 0 {
			fmt.Fprintf(w, "  %-*s %d\n", width, fmt.Sprint(k)+":", n)
		}
	}
	fmt.Fprintln(w)
}

func printStats(w io.Writer, s *Stats) {
	fmt.Fprintln(w, "=== Mesh Model Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if s.TotalEvents > 0 {
		start, end := s.TimeRange.Start, s.TimeRange.End
		fmt.Fprintf(w, "Time Range: %s to %s\n", start.Format(time.RFC3339), end.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n\n", end.Sub(start).Round(time.Second))
	}
	fmt.Fprintf(w, "Total Events: %d\n\n", s.TotalEvents)

	printCounts(w, "Events by Layer:", 12, s.EventsByLayer,
		[]log.Layer{log.LayerTransport, log.LayerAccess, log.LayerModel})
	printCounts(w, "Events by Category:", 12, s.EventsByCategory,
		[]log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError})
	printCounts(w, "Messages by Direction:", 12, s.EventsByDirection,
		[]log.Direction{log.DirectionIn, log.DirectionOut})
	if len(s.Opcodes) > 0 {
		printCounts(w, "Messages by Opcode:", 28, s.Opcodes, slices.Sorted(maps.Keys(s.Opcodes)))
	}

	fmt.Fprintf(w, "Sessions: %d\n", len(s.Sessions))
	ids := slices.SortedFunc(maps.Keys(s.Sessions), func(a, b string) int {
		return s.Sessions[a].FirstSeen.Compare(s.Sessions[b].FirstSeen)
	})
	if len(ids) > 0 {
		fmt.Fprintln(w)
	}
	for _, id := range ids {
		ss := s.Sessions[id]
		fmt.Fprintf(w, "  [%s] node %s, %d events, duration %s\n",
			shortenSessionID(id), wire.Address(ss.LocalAddr), ss.Events,
			ss.LastSeen.Sub(ss.FirstSeen).Round(time.Millisecond))
	}

	for _, tail := range []struct {
		label string
		n     int
	}{
		{"Group Transitions", s.GroupTransitions},
		{"Dropped Messages", s.Dropped},
		{"Errors", s.Errors},
	} {
		if tail.n > 0 {
			fmt.Fprintf(w, "\n%s: %d\n", tail.label, tail.n)
		}
	}
}

func shortenSessionID(id string) string {
	id, _, _ = strings.Cut(id, "-")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
