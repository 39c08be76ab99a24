package server

import (
	"fmt"

	"github.com/meshmodel/mm-go/pkg/binding"
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// OnOff is the Generic OnOff server.
type OnOff struct {
	*base
}

// NewOnOff creates a Generic OnOff server in the Off state.
func NewOnOff(cfg Config) *OnOff {
	s := &OnOff{base: newBase(model.KindOnOffServer, model.StateOnOff, cfg)}
	s.interp = onOffInterp
	s.handle(wire.OpGenOnOffGet, s.onGet)
	s.handle(wire.OpGenOnOffSet, s.onSet(true))
	s.handle(wire.OpGenOnOffSetUnack, s.onSet(false))
	return s
}

// State returns the present OnOff state.
func (s *OnOff) State() uint8 { return uint8(s.present()) }

// SetState sets the OnOff state locally. value is 0 or 1.
func (s *OnOff) SetState(_ model.TransitionKind, value int32, remainingMS uint32) {
	if value != 0 {
		value = 1
	}
	if remainingMS > 0 {
		s.run(value, remainingMS, 0)
		return
	}
	s.set(value)
}

func (s *OnOff) onGet(_ *wire.Buffer, env *wire.RouteEnv) error {
	return s.status(env, wire.OpGenOnOffStatus, 1, putOnOff)
}

func (s *OnOff) onSet(ack bool) requestHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		p, err := s.parseSet(buf, wire.LenGenOnOffSet)
		if err != nil {
			return err
		}
		v := buf.U8(0)
		if v > 1 {
			return fmt.Errorf("%w: onoff %d", wire.ErrMalformed, v)
		}
		if !s.seen(env, p.tid) {
			s.request(model.TransitionMain, int32(v), p)
		}
		if ack {
			return s.status(env, wire.OpGenOnOffStatus, 1, putOnOff)
		}
		return nil
	}
}

func putOnOff(buf *wire.Buffer, off int, v int32) { buf.PutU8(off, uint8(v)) }

// onOffInterp switches On as soon as a transition towards On starts, and
// stays On until a transition towards Off ends.
func onOffInterp(from, target int32, frac float64) int32 {
	if frac >= 1 || target == 1 {
		return target
	}
	return from
}

// Compile-time interface satisfaction checks.
var (
	_ model.Model       = (*OnOff)(nil)
	_ model.StateSetter = (*OnOff)(nil)
	_ binding.Member    = (*OnOff)(nil)
)
