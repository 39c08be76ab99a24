// Package commands implements the mm-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/meshmodel/mm-go/pkg/log"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// ViewFilter narrows the view command. Nil fields match everything.
type ViewFilter struct {
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
	Opcode    *wire.Opcode
	Dropped   bool
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Layer:       f.Layer,
		Direction:   f.Direction,
		Category:    f.Category,
		Opcode:      f.Opcode,
		DroppedOnly: f.Dropped,
	}
}

// RunView prints the events of path matching filter.
func RunView(path string, filter ViewFilter, w io.Writer) error {
	return scan(path, filter.logFilter(), func(ev log.Event) error {
		formatEvent(w, ev)
		return nil
	})
}

// formatEvent prints a header line followed by indented payload details
// and a blank separator line.
func formatEvent(w io.Writer, ev log.Event) {
	dir := ev.Direction.String()
	if ev.Category == log.CategoryState {
		dir = "-"
	}
	fmt.Fprintf(w, "%s [node:%s] %-3s %s %s\n",
		ev.Timestamp.UTC().Format(timeLayout), wire.Address(ev.LocalAddr), dir, ev.Layer, typeLabel(ev))

	switch {
	case ev.Message != nil:
		writeMessage(w, ev.Message)
	case ev.Frame != nil:
		writeFrame(w, ev.Frame)
	case ev.StateChange != nil:
		writeStateChange(w, ev.StateChange)
	case ev.Error != nil:
		writeError(w, ev.Error)
	}
	fmt.Fprintln(w)
}

func writeMessage(w io.Writer, m *log.MessageEvent) {
	line := fmt.Sprintf("  %s -> %s  AppKey: %d", wire.Address(m.Src), wire.Address(m.Dst), m.AppKey)
	if m.LocalIndex != 0xFF {
		line += fmt.Sprintf("  Model: %d", m.LocalIndex)
	}
	if m.TTL != 0 {
		line += fmt.Sprintf("  TTL: %d", m.TTL)
	}
	fmt.Fprintln(w, line)
	if len(m.Params) > 0 {
		fmt.Fprintln(w, "  Params:", hex.EncodeToString(m.Params))
	}
	if m.Dropped {
		fmt.Fprintln(w, "  Dropped:", m.Reason)
	}
}

func writeFrame(w io.Writer, f *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", f.Size)
	if len(f.Data) == 0 {
		return
	}
	suffix := ""
	if f.Truncated {
		suffix = " (truncated)"
	}
	fmt.Fprintf(w, "  Data: %x%s\n", f.Data, suffix)
}

func writeStateChange(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s %d\n", sc.Entity, sc.ID)
	if sc.OldState == "" {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	} else {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintln(w, "  Reason:", sc.Reason)
	}
}

func writeError(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  %s error: %s\n", e.Layer, e.Message)
	if e.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *e.Code)
	}
	if e.Context != "" {
		fmt.Fprintln(w, "  Context:", e.Context)
	}
}
