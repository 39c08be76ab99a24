package log

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors protocol events into an operational slog.Logger.
// Error events are logged at Warn, everything else at Debug.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger, or slog.Default() when nil.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

func (a *SlogAdapter) Log(event Event) {
	level := slog.LevelDebug
	if event.Error != nil {
		level = slog.LevelWarn
	}
	ctx := context.Background()
	if !a.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, 12)
	attrs = append(attrs,
		slog.String("session", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	)
	if event.LocalAddr != 0 {
		attrs = append(attrs, slog.Uint64("local_addr", uint64(event.LocalAddr)))
	}
	switch {
	case event.Frame != nil:
		attrs = append(attrs, frameAttrs(event.Frame)...)
	case event.Message != nil:
		attrs = append(attrs, messageAttrs(event.Message)...)
	case event.StateChange != nil:
		attrs = append(attrs, stateAttrs(event.StateChange)...)
	case event.Error != nil:
		attrs = append(attrs, errorAttrs(event.Error)...)
	}
	a.logger.LogAttrs(ctx, level, "protocol", attrs...)
}

func frameAttrs(f *FrameEvent) []slog.Attr {
	return []slog.Attr{slog.Int("frame_size", f.Size), slog.Bool("truncated", f.Truncated)}
}

func messageAttrs(m *MessageEvent) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("opcode", m.Opcode.String()),
		slog.Uint64("src", uint64(m.Src)),
		slog.Uint64("dst", uint64(m.Dst)),
		slog.Uint64("app_key", uint64(m.AppKey)),
		slog.Uint64("lid", uint64(m.LocalIndex)),
		slog.Int("params", len(m.Params)),
	}
	if m.Dropped {
		attrs = append(attrs, slog.Bool("dropped", true), slog.String("reason", m.Reason))
	}
	return attrs
}

func stateAttrs(s *StateChangeEvent) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("entity", s.Entity.String()),
		slog.Uint64("id", uint64(s.ID)),
		slog.String("old_state", s.OldState),
		slog.String("new_state", s.NewState),
	}
	if s.Reason != "" {
		attrs = append(attrs, slog.String("reason", s.Reason))
	}
	return attrs
}

func errorAttrs(e *ErrorEventData) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("error_layer", e.Layer.String()),
		slog.String("error_msg", e.Message),
	}
	if e.Context != "" {
		attrs = append(attrs, slog.String("error_context", e.Context))
	}
	if e.Code != nil {
		attrs = append(attrs, slog.Int("error_code", *e.Code))
	}
	return attrs
}

var _ Logger = (*SlogAdapter)(nil)
