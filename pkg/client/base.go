package client

import (
	"fmt"
	"log/slog"

	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/transition"
	"github.com/meshmodel/mm-go/pkg/transport"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Config holds what every client needs.
type Config struct {
	// LocalIndex is the handle returned by model.Registry.Register.
	LocalIndex model.LocalIndex

	// Transport sends the encoded messages.
	Transport transport.Transport

	// Indicator receives decoded statuses. Nil discards them.
	Indicator model.Indicator

	// Logger is the operational logger. Nil selects slog.Default().
	Logger *slog.Logger
}

// statusHandler decodes one status message. It returns wire.ErrMalformed
// for a parameter length matching no documented form.
type statusHandler func(buf *wire.Buffer, env *wire.RouteEnv) error

// base holds the parts every client shares: identity, transport, indicator
// and the status handler table that doubles as the opcode allow-list.
type base struct {
	kind     model.Kind
	lid      model.LocalIndex
	tr       transport.Transport
	ind      model.Indicator
	logger   *slog.Logger
	handlers map[wire.Opcode]statusHandler
}

func newBase(kind model.Kind, cfg Config) base {
	b := base{
		kind:     kind,
		lid:      cfg.LocalIndex,
		tr:       cfg.Transport,
		ind:      cfg.Indicator,
		logger:   cfg.Logger,
		handlers: make(map[wire.Opcode]statusHandler),
	}
	if b.ind == nil {
		b.ind = model.NoopIndicator{}
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// ID returns the SIG model identifier.
func (b *base) ID() model.ID { return b.kind.ID() }

// Kind returns the client kind.
func (b *base) Kind() model.Kind { return b.kind }

// LocalIndex returns the instance handle.
func (b *base) LocalIndex() model.LocalIndex { return b.lid }

// OpcodeAllowed accepts the status opcodes of the model.
func (b *base) OpcodeAllowed(op wire.Opcode) error {
	if _, ok := b.handlers[op]; !ok {
		return wire.ErrInvalidOpcode
	}
	return nil
}

// Receive decodes a status message. Malformed messages are dropped.
func (b *base) Receive(buf *wire.Buffer, env *wire.RouteEnv) {
	h, ok := b.handlers[env.Opcode]
	if !ok {
		return
	}
	if err := h(buf, env); err != nil {
		b.logger.Debug("dropping status",
			"model", b.kind,
			"opcode", env.Opcode,
			"src", env.Src,
			"len", buf.Len(),
			"error", err)
	}
}

func (b *base) handle(op wire.Opcode, h statusHandler) {
	b.handlers[op] = h
}

// alloc returns a buffer of exactly n parameter bytes addressed to dst.
func (b *base) alloc(op wire.Opcode, appKey wire.AppKeyRef, dst wire.Address, n int) (*wire.Buffer, error) {
	buf, err := b.tr.Alloc(uint16(n))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", b.kind, op, err)
	}
	buf.Env = wire.RouteEnv{
		Opcode:     op,
		Dst:        dst,
		AppKey:     appKey,
		LocalIndex: uint8(b.lid),
	}
	return buf, nil
}

// get sends the parameterless get chosen by selector from ops.
func (b *base) get(ops []wire.Opcode, appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	if int(selector) >= len(ops) {
		return fmt.Errorf("%s get selector %d: %w", b.kind, selector, wire.ErrInvalidParam)
	}
	buf, err := b.alloc(ops[selector], appKey, dst, 0)
	if err != nil {
		return err
	}
	b.send(buf)
	return nil
}

// transitionBuffer allocates a set message in the short or long form. The
// TID is the last byte of the short form; the long form appends the packed
// transition time and delay. State fields are left to the caller.
func (b *base) transitionBuffer(acked, unacked wire.Opcode, appKey wire.AppKeyRef, dst wire.Address,
	shortLen int, req model.TransitionRequest) (*wire.Buffer, error) {
	long := req.IsLong()
	buf, err := b.alloc(setOpcode(req.Info.Ack, acked, unacked), appKey, dst, wire.SetLen(shortLen, long))
	if err != nil {
		return nil, err
	}
	buf.PutU8(shortLen-1, req.Info.TID)
	if long {
		buf.PutU8(shortLen, transition.Pack(req.TransTimeMS))
		buf.PutU8(shortLen+1, transition.PackDelay(req.DelayMS))
	}
	return buf, nil
}

// setOpcode returns the acknowledged or unacknowledged opcode.
func setOpcode(ack bool, acked, unacked wire.Opcode) wire.Opcode {
	if ack {
		return acked
	}
	return unacked
}

func (b *base) invalidKind(what string, kind uint8) error {
	return fmt.Errorf("%s %s kind %d: %w", b.kind, what, kind, wire.ErrInvalidParam)
}

// indicate reports a state with present and target values.
func (b *base) indicate(env *wire.RouteEnv, state model.StateID, present, target, remainingMS uint32) {
	b.ind.StateInd(model.StateIndication{
		Src:         env.Src,
		LocalIndex:  b.lid,
		State:       state,
		Value1:      present,
		Value2:      target,
		RemainingMS: remainingMS,
	})
}

// indicateRange reports a range state with its status code.
func (b *base) indicateRange(env *wire.RouteEnv, state model.StateID, status wire.Status, lo, hi uint32) {
	b.ind.StateInd(model.StateIndication{
		Src:        env.Src,
		LocalIndex: b.lid,
		State:      state,
		Value1:     lo,
		Value2:     hi,
		Status:     status,
	})
}

// u16Status returns a handler for statuses of the form
// present[, target, remaining] with 16-bit fields.
func (b *base) u16Status(state model.StateID, shortLen, longLen int) statusHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		long, ok := wire.StatusForm(buf.Len(), shortLen, longLen)
		if !ok {
			return wire.ErrMalformed
		}
		present := uint32(buf.U16(0))
		target, rem := present, uint32(0)
		if long {
			target = uint32(buf.U16(2))
			rem = unpackRemaining(buf.U8(4))
		}
		b.indicate(env, state, present, target, rem)
		return nil
	}
}

// fixedU16Status returns a handler for a single 16-bit value.
func (b *base) fixedU16Status(state model.StateID) statusHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		if buf.Len() != 2 {
			return wire.ErrMalformed
		}
		v := uint32(buf.U16(0))
		b.indicate(env, state, v, v, 0)
		return nil
	}
}

// rangeStatus returns a handler for status code, min, max.
func (b *base) rangeStatus(state model.StateID) statusHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		if buf.Len() != 5 {
			return wire.ErrMalformed
		}
		b.indicateRange(env, state, wire.Status(buf.U8(0)), uint32(buf.U16(1)), uint32(buf.U16(3)))
		return nil
	}
}

// send hands buf to the transport.
func (b *base) send(buf *wire.Buffer) {
	b.tr.Send(buf)
}

// unpackRemaining decodes a remaining time byte; unknown reads as 0.
func unpackRemaining(b uint8) uint32 {
	return transition.Unpack(b)
}

// setU16 sends a set carrying one 16-bit value.
func (b *base) setU16(op wire.Opcode, appKey wire.AppKeyRef, dst wire.Address, v uint32) error {
	if v > 0xFFFF {
		return wire.ErrInvalidParam
	}
	buf, err := b.alloc(op, appKey, dst, 2)
	if err != nil {
		return err
	}
	buf.PutU16(0, uint16(v))
	b.send(buf)
	return nil
}

// setRange sends a set carrying a 16-bit min and max. min must not exceed
// max.
func (b *base) setRange(op wire.Opcode, appKey wire.AppKeyRef, dst wire.Address, lo, hi uint32) error {
	if lo > 0xFFFF || hi > 0xFFFF || lo > hi {
		return wire.ErrInvalidParam
	}
	buf, err := b.alloc(op, appKey, dst, 4)
	if err != nil {
		return err
	}
	buf.PutU16(0, uint16(lo))
	buf.PutU16(2, uint16(hi))
	b.send(buf)
	return nil
}
