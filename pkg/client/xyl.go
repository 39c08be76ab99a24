package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Light xyL get selectors.
const (
	XYLState uint8 = iota
	XYLTarget
	XYLDefault
	XYLRange
)

var xylGets = []wire.Opcode{
	XYLState:   wire.OpLightXYLGet,
	XYLTarget:  wire.OpLightXYLTargetGet,
	XYLDefault: wire.OpLightXYLDefaultGet,
	XYLRange:   wire.OpLightXYLRangeGet,
}

// XYL is the Light xyL client.
type XYL struct {
	base
}

// NewXYL creates a Light xyL client.
func NewXYL(cfg Config) *XYL {
	c := &XYL{base: newBase(model.KindXYLClient, cfg)}
	c.handle(wire.OpLightXYLStatus, c.tripleStatus(model.StateXYL, wire.LenLightXYLStatus, wire.LenLightXYLStatusLong))
	c.handle(wire.OpLightXYLTargetStatus,
		c.tripleStatus(model.StateXYLTarget, wire.LenLightXYLStatus, wire.LenLightXYLStatusLong))
	c.handle(wire.OpLightXYLDefaultStatus, c.tripleStatus(model.StateXYLDefault, wire.LenLightXYLDefaultStatus, 0))
	c.handle(wire.OpLightXYLRangeStatus, c.doubleRangeStatus(model.StateXYLRange))
	return c
}

// Get requests the state chosen by selector (XYLState to XYLRange).
func (c *XYL) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(xylGets, appKey, dst, selector)
}

// Set writes xyL Default (state1 lightness, state2 x and y packed with
// model.PackPair) or xyL Range (state1 x min and max, state2 y min and max,
// each packed with model.PackPair).
func (c *XYL) Set(appKey wire.AppKeyRef, dst wire.Address, state1, state2 uint32, info model.SetInfo) error {
	switch info.Kind {
	case model.SetDefault:
		return c.setTriple(setOpcode(info.Ack, wire.OpLightXYLDefaultSet, wire.OpLightXYLDefaultSetUnack),
			appKey, dst, state1, state2)
	case model.SetRange:
		return c.setDoubleRange(setOpcode(info.Ack, wire.OpLightXYLRangeSet, wire.OpLightXYLRangeSetUnack),
			appKey, dst, state1, state2)
	default:
		return c.invalidKind("set", uint8(info.Kind))
	}
}

// Transition sets the xyL state: lightness in State1, x and y packed in
// State2.
func (c *XYL) Transition(appKey wire.AppKeyRef, dst wire.Address, req model.TransitionRequest) error {
	if req.Info.Kind != model.TransitionMain {
		return c.invalidKind("transition", uint8(req.Info.Kind))
	}
	return c.transitionTriple(wire.OpLightXYLSet, wire.OpLightXYLSetUnack, appKey, dst, wire.LenLightXYLSet, req)
}

var (
	_ model.Model        = (*XYL)(nil)
	_ model.Getter       = (*XYL)(nil)
	_ model.Setter       = (*XYL)(nil)
	_ model.Transitioner = (*XYL)(nil)
)
