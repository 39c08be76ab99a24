package model

import (
	"log/slog"
	"sync"

	"github.com/meshmodel/mm-go/pkg/wire"
)

// DispatchStats counts dispatch outcomes.
type DispatchStats struct {
	// Delivered counts messages handed to a model.
	Delivered uint64

	// NotFound counts messages addressed to no registered instance.
	NotFound uint64

	// Rejected counts messages whose opcode the instance refused.
	Rejected uint64
}

// DispatchObserver is told about every dispatched message. err is nil for
// delivered messages and the drop reason otherwise.
type DispatchObserver func(env *wire.RouteEnv, err error)

// Dispatcher routes received access messages to registered instances.
type Dispatcher struct {
	reg    *Registry
	logger *slog.Logger

	mu       sync.Mutex
	stats    DispatchStats
	observer DispatchObserver
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithObserver sets the dispatch observer.
func WithObserver(fn DispatchObserver) DispatcherOption {
	return func(d *Dispatcher) {
		d.observer = fn
	}
}

// NewDispatcher creates a dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		reg:    reg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers buf to the instance named by buf.Env.LocalIndex. When
// the index is InvalidLocalIndex the first bound instance accepting the
// opcode receives it. The buffer is released when Dispatch returns.
//
// A non-nil error is the drop reason. It is meant for logging only; dropped
// messages are never reported to the application.
func (d *Dispatcher) Dispatch(buf *wire.Buffer) error {
	defer buf.Release()

	lid := LocalIndex(buf.Env.LocalIndex)
	if lid.IsValid() {
		m, ok := d.reg.Model(lid)
		if !ok {
			return d.drop(buf, ErrModelNotFound)
		}
		return d.deliver(m, lid, buf)
	}
	return d.scan(d.reg.Envs(), buf)
}

// DispatchElement delivers buf to the first bound instance on element that
// accepts the opcode. The buffer is released when DispatchElement returns.
func (d *Dispatcher) DispatchElement(element uint8, buf *wire.Buffer) error {
	defer buf.Release()
	return d.scan(d.reg.ElementEnvs(element), buf)
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() DispatchStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Dispatcher) scan(envs []*Env, buf *wire.Buffer) error {
	matched := false
	for _, e := range envs {
		m := e.Model()
		if m == nil {
			continue
		}
		matched = true
		if m.OpcodeAllowed(buf.Env.Opcode) == nil {
			return d.deliver(m, e.LocalIndex(), buf)
		}
	}
	if !matched {
		return d.drop(buf, ErrModelNotFound)
	}
	return d.drop(buf, wire.ErrInvalidOpcode)
}

func (d *Dispatcher) deliver(m Model, lid LocalIndex, buf *wire.Buffer) error {
	if err := m.OpcodeAllowed(buf.Env.Opcode); err != nil {
		return d.drop(buf, err)
	}

	buf.Env.LocalIndex = uint8(lid)
	buf.Env.Info.Rx = true

	d.mu.Lock()
	d.stats.Delivered++
	observer := d.observer
	d.mu.Unlock()

	// Call observer and model outside lock
	if observer != nil {
		observer(&buf.Env, nil)
	}
	m.Receive(buf, &buf.Env)
	return nil
}

func (d *Dispatcher) drop(buf *wire.Buffer, reason error) error {
	d.mu.Lock()
	if reason == ErrModelNotFound {
		d.stats.NotFound++
	} else {
		d.stats.Rejected++
	}
	observer := d.observer
	d.mu.Unlock()

	d.logger.Debug("dropping message",
		"opcode", buf.Env.Opcode,
		"src", buf.Env.Src,
		"lid", buf.Env.LocalIndex,
		"reason", reason)
	if observer != nil {
		observer(&buf.Env, reason)
	}
	return reason
}
