package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Light Lightness get selectors.
const (
	LightnessActual uint8 = iota
	LightnessLinear
	LightnessLast
	LightnessDefault
	LightnessRange
)

// Light Lightness transition kinds.
const (
	LightnessTransActual model.TransitionKind = iota
	LightnessTransLinear
)

var lightnessGets = []wire.Opcode{
	LightnessActual:  wire.OpLightLnGet,
	LightnessLinear:  wire.OpLightLnLinearGet,
	LightnessLast:    wire.OpLightLnLastGet,
	LightnessDefault: wire.OpLightLnDefaultGet,
	LightnessRange:   wire.OpLightLnRangeGet,
}

// Lightness is the Light Lightness client.
type Lightness struct {
	base
}

// NewLightness creates a Light Lightness client.
func NewLightness(cfg Config) *Lightness {
	c := &Lightness{base: newBase(model.KindLightnessClient, cfg)}
	c.handle(wire.OpLightLnStatus,
		c.u16Status(model.StateLightnessActual, wire.LenLightLnStatus, wire.LenLightLnStatusLong))
	c.handle(wire.OpLightLnLinearStatus,
		c.u16Status(model.StateLightnessLinear, wire.LenLightLnStatus, wire.LenLightLnStatusLong))
	c.handle(wire.OpLightLnLastStatus, c.fixedU16Status(model.StateLightnessLast))
	c.handle(wire.OpLightLnDefaultStatus, c.fixedU16Status(model.StateLightnessDefault))
	c.handle(wire.OpLightLnRangeStatus, c.rangeStatus(model.StateLightnessRange))
	return c
}

// Get requests the state chosen by selector (LightnessActual to
// LightnessRange).
func (c *Lightness) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(lightnessGets, appKey, dst, selector)
}

// Set writes Lightness Default (state1) or Lightness Range (state1 min,
// state2 max).
func (c *Lightness) Set(appKey wire.AppKeyRef, dst wire.Address, state1, state2 uint32, info model.SetInfo) error {
	switch info.Kind {
	case model.SetDefault:
		return c.setU16(setOpcode(info.Ack, wire.OpLightLnDefaultSet, wire.OpLightLnDefaultSetUnack),
			appKey, dst, state1)
	case model.SetRange:
		return c.setRange(setOpcode(info.Ack, wire.OpLightLnRangeSet, wire.OpLightLnRangeSetUnack),
			appKey, dst, state1, state2)
	default:
		return c.invalidKind("set", uint8(info.Kind))
	}
}

// Transition sets Lightness Actual or Lightness Linear to state1.
func (c *Lightness) Transition(appKey wire.AppKeyRef, dst wire.Address, req model.TransitionRequest) error {
	var acked, unacked wire.Opcode
	switch req.Info.Kind {
	case LightnessTransActual:
		acked, unacked = wire.OpLightLnSet, wire.OpLightLnSetUnack
	case LightnessTransLinear:
		acked, unacked = wire.OpLightLnLinearSet, wire.OpLightLnLinearSetUnack
	default:
		return c.invalidKind("transition", uint8(req.Info.Kind))
	}
	if req.State1 > 0xFFFF {
		return wire.ErrInvalidParam
	}

	buf, err := c.transitionBuffer(acked, unacked, appKey, dst, wire.LenLightLnSet, req)
	if err != nil {
		return err
	}
	buf.PutU16(0, uint16(req.State1))
	c.send(buf)
	return nil
}

var (
	_ model.Model        = (*Lightness)(nil)
	_ model.Getter       = (*Lightness)(nil)
	_ model.Setter       = (*Lightness)(nil)
	_ model.Transitioner = (*Lightness)(nil)
)
