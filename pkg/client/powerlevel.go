package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Generic Power Level get selectors.
const (
	PowerLevelActual uint8 = iota
	PowerLevelLast
	PowerLevelDefault
	PowerLevelRange
)

var powerLevelGets = []wire.Opcode{
	PowerLevelActual:  wire.OpGenPowerLevelGet,
	PowerLevelLast:    wire.OpGenPowerLastGet,
	PowerLevelDefault: wire.OpGenPowerDefaultGet,
	PowerLevelRange:   wire.OpGenPowerRangeGet,
}

// PowerLevel is the Generic Power Level client.
type PowerLevel struct {
	base
}

// NewPowerLevel creates a Generic Power Level client.
func NewPowerLevel(cfg Config) *PowerLevel {
	c := &PowerLevel{base: newBase(model.KindPowerLevelClient, cfg)}
	c.handle(wire.OpGenPowerLevelStatus,
		c.u16Status(model.StatePowerActual, wire.LenGenPowerLevelStatus, wire.LenGenPowerLevelStatusLong))
	c.handle(wire.OpGenPowerLastStatus, c.fixedU16Status(model.StatePowerLast))
	c.handle(wire.OpGenPowerDefaultStatus, c.fixedU16Status(model.StatePowerDefault))
	c.handle(wire.OpGenPowerRangeStatus, c.rangeStatus(model.StatePowerRange))
	return c
}

// Get requests the state chosen by selector (PowerLevelActual to
// PowerLevelRange).
func (c *PowerLevel) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(powerLevelGets, appKey, dst, selector)
}

// Set writes Power Default (state1) or Power Range (state1 min, state2 max).
func (c *PowerLevel) Set(appKey wire.AppKeyRef, dst wire.Address, state1, state2 uint32, info model.SetInfo) error {
	switch info.Kind {
	case model.SetDefault:
		return c.setU16(setOpcode(info.Ack, wire.OpGenPowerDefaultSet, wire.OpGenPowerDefaultSetUnack),
			appKey, dst, state1)
	case model.SetRange:
		return c.setRange(setOpcode(info.Ack, wire.OpGenPowerRangeSet, wire.OpGenPowerRangeSetUnack),
			appKey, dst, state1, state2)
	default:
		return c.invalidKind("set", uint8(info.Kind))
	}
}

// Transition sets Power Actual to state1.
func (c *PowerLevel) Transition(appKey wire.AppKeyRef, dst wire.Address, req model.TransitionRequest) error {
	if req.Info.Kind != model.TransitionMain {
		return c.invalidKind("transition", uint8(req.Info.Kind))
	}
	if req.State1 > 0xFFFF {
		return wire.ErrInvalidParam
	}
	buf, err := c.transitionBuffer(wire.OpGenPowerLevelSet, wire.OpGenPowerLevelSetUnack, appKey, dst,
		wire.LenGenPowerLevelSet, req)
	if err != nil {
		return err
	}
	buf.PutU16(0, uint16(req.State1))
	c.send(buf)
	return nil
}

var (
	_ model.Model        = (*PowerLevel)(nil)
	_ model.Getter       = (*PowerLevel)(nil)
	_ model.Setter       = (*PowerLevel)(nil)
	_ model.Transitioner = (*PowerLevel)(nil)
)
