package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Helpers for the three-field Light states (HSL and xyL): a 16-bit first
// field in state1 and two 16-bit fields packed in state2.

const (
	tripleLen      = 6
	doubleRangeLen = 8
)

// setTriple sends a set carrying first, second and third fields.
func (b *base) setTriple(op wire.Opcode, appKey wire.AppKeyRef, dst wire.Address, state1, state2 uint32) error {
	if state1 > 0xFFFF {
		return wire.ErrInvalidParam
	}
	buf, err := b.alloc(op, appKey, dst, tripleLen)
	if err != nil {
		return err
	}
	second, third := model.UnpackPair(state2)
	buf.PutU16(0, uint16(state1))
	buf.PutU16(2, second)
	buf.PutU16(4, third)
	b.send(buf)
	return nil
}

// setDoubleRange sends a set carrying two min/max pairs.
func (b *base) setDoubleRange(op wire.Opcode, appKey wire.AppKeyRef, dst wire.Address, state1, state2 uint32) error {
	min1, max1 := model.UnpackPair(state1)
	min2, max2 := model.UnpackPair(state2)
	if min1 > max1 || min2 > max2 {
		return wire.ErrInvalidParam
	}
	buf, err := b.alloc(op, appKey, dst, doubleRangeLen)
	if err != nil {
		return err
	}
	buf.PutU16(0, min1)
	buf.PutU16(2, max1)
	buf.PutU16(4, min2)
	buf.PutU16(6, max2)
	b.send(buf)
	return nil
}

// transitionTriple sends a three-field set with TID and optional
// transition fields.
func (b *base) transitionTriple(acked, unacked wire.Opcode, appKey wire.AppKeyRef, dst wire.Address,
	shortLen int, req model.TransitionRequest) error {
	if req.State1 > 0xFFFF {
		return wire.ErrInvalidParam
	}
	buf, err := b.transitionBuffer(acked, unacked, appKey, dst, shortLen, req)
	if err != nil {
		return err
	}
	second, third := model.UnpackPair(req.State2)
	buf.PutU16(0, uint16(req.State1))
	buf.PutU16(2, second)
	buf.PutU16(4, third)
	b.send(buf)
	return nil
}

// transitionU16 sends a one-field set with TID and optional transition
// fields.
func (b *base) transitionU16(acked, unacked wire.Opcode, appKey wire.AppKeyRef, dst wire.Address,
	shortLen int, req model.TransitionRequest) error {
	if req.State1 > 0xFFFF {
		return wire.ErrInvalidParam
	}
	buf, err := b.transitionBuffer(acked, unacked, appKey, dst, shortLen, req)
	if err != nil {
		return err
	}
	buf.PutU16(0, uint16(req.State1))
	b.send(buf)
	return nil
}

// tripleStatus returns a handler for first, second, third[, remaining].
// A zero longLen means the status has a single form. The first field is
// reported in Value1, the others packed in Value2.
func (b *base) tripleStatus(state model.StateID, shortLen, longLen int) statusHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		long, ok := wire.StatusForm(buf.Len(), shortLen, longLen)
		if !ok || (longLen == 0 && long) {
			return wire.ErrMalformed
		}
		rem := uint32(0)
		if long {
			rem = unpackRemaining(buf.U8(tripleLen))
		}
		b.indicate(env, state, uint32(buf.U16(0)), model.PackPair(buf.U16(2), buf.U16(4)), rem)
		return nil
	}
}

// doubleRangeStatus returns a handler for status code and two min/max
// pairs, reported packed in Value1 and Value2.
func (b *base) doubleRangeStatus(state model.StateID) statusHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		if buf.Len() != doubleRangeLen+1 {
			return wire.ErrMalformed
		}
		b.indicateRange(env, state, wire.Status(buf.U8(0)),
			model.PackPair(buf.U16(1), buf.U16(3)),
			model.PackPair(buf.U16(5), buf.U16(7)))
		return nil
	}
}
