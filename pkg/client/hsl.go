package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Light HSL get selectors.
const (
	HSLState uint8 = iota
	HSLHue
	HSLSaturation
	HSLTarget
	HSLDefault
	HSLRange
)

// Light HSL transition kinds.
const (
	// HSLTransHSL sets lightness (State1) and hue and saturation (State2,
	// packed with model.PackPair).
	HSLTransHSL model.TransitionKind = iota

	// HSLTransHue sets hue to State1.
	HSLTransHue

	// HSLTransSaturation sets saturation to State1.
	HSLTransSaturation
)

var hslGets = []wire.Opcode{
	HSLState:      wire.OpLightHSLGet,
	HSLHue:        wire.OpLightHSLHueGet,
	HSLSaturation: wire.OpLightHSLSatGet,
	HSLTarget:     wire.OpLightHSLTargetGet,
	HSLDefault:    wire.OpLightHSLDefaultGet,
	HSLRange:      wire.OpLightHSLRangeGet,
}

// HSL is the Light HSL client.
type HSL struct {
	base
}

// NewHSL creates a Light HSL client.
func NewHSL(cfg Config) *HSL {
	c := &HSL{base: newBase(model.KindHSLClient, cfg)}
	c.handle(wire.OpLightHSLStatus, c.tripleStatus(model.StateHSL, wire.LenLightHSLStatus, wire.LenLightHSLStatusLong))
	c.handle(wire.OpLightHSLTargetStatus,
		c.tripleStatus(model.StateHSLTarget, wire.LenLightHSLStatus, wire.LenLightHSLStatusLong))
	c.handle(wire.OpLightHSLHueStatus,
		c.u16Status(model.StateHSLHue, wire.LenLightHSLHueStatus, wire.LenLightHSLHueStatusLong))
	c.handle(wire.OpLightHSLSatStatus,
		c.u16Status(model.StateHSLSaturation, wire.LenLightHSLHueStatus, wire.LenLightHSLHueStatusLong))
	c.handle(wire.OpLightHSLDefaultStatus, c.tripleStatus(model.StateHSLDefault, wire.LenLightHSLDefaultStatus, 0))
	c.handle(wire.OpLightHSLRangeStatus, c.doubleRangeStatus(model.StateHSLRange))
	return c
}

// Get requests the state chosen by selector (HSLState to HSLRange).
func (c *HSL) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(hslGets, appKey, dst, selector)
}

// Set writes HSL Default (state1 lightness, state2 hue and saturation
// packed with model.PackPair) or HSL Range (state1 hue min and max, state2
// saturation min and max, each packed with model.PackPair).
func (c *HSL) Set(appKey wire.AppKeyRef, dst wire.Address, state1, state2 uint32, info model.SetInfo) error {
	switch info.Kind {
	case model.SetDefault:
		return c.setTriple(setOpcode(info.Ack, wire.OpLightHSLDefaultSet, wire.OpLightHSLDefaultSetUnack),
			appKey, dst, state1, state2)
	case model.SetRange:
		return c.setDoubleRange(setOpcode(info.Ack, wire.OpLightHSLRangeSet, wire.OpLightHSLRangeSetUnack),
			appKey, dst, state1, state2)
	default:
		return c.invalidKind("set", uint8(info.Kind))
	}
}

// Transition sets the HSL state, the hue or the saturation.
func (c *HSL) Transition(appKey wire.AppKeyRef, dst wire.Address, req model.TransitionRequest) error {
	switch req.Info.Kind {
	case HSLTransHSL:
		return c.transitionTriple(wire.OpLightHSLSet, wire.OpLightHSLSetUnack, appKey, dst,
			wire.LenLightHSLSet, req)
	case HSLTransHue:
		return c.transitionU16(wire.OpLightHSLHueSet, wire.OpLightHSLHueSetUnack, appKey, dst,
			wire.LenLightHSLHueSet, req)
	case HSLTransSaturation:
		return c.transitionU16(wire.OpLightHSLSatSet, wire.OpLightHSLSatSetUnack, appKey, dst,
			wire.LenLightHSLHueSet, req)
	default:
		return c.invalidKind("transition", uint8(req.Info.Kind))
	}
}

var (
	_ model.Model        = (*HSL)(nil)
	_ model.Getter       = (*HSL)(nil)
	_ model.Setter       = (*HSL)(nil)
	_ model.Transitioner = (*HSL)(nil)
)
