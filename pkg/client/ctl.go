package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Light CTL get selectors.
const (
	CTLState uint8 = iota
	CTLTemperature
	CTLTemperatureRange
	CTLDefault
)

// Light CTL transition kinds.
const (
	// CTLTransCTL sets lightness (State1) and temperature and delta UV
	// (State2, packed with model.PackPair).
	CTLTransCTL model.TransitionKind = iota

	// CTLTransTemperature sets temperature and delta UV (State2 packed as
	// for CTLTransCTL; State1 is ignored).
	CTLTransTemperature
)

// Temperature limits in kelvin.
const (
	CTLTemperatureMin = 800
	CTLTemperatureMax = 20000
)

var ctlGets = []wire.Opcode{
	CTLState:            wire.OpLightCTLGet,
	CTLTemperature:      wire.OpLightCTLTempGet,
	CTLTemperatureRange: wire.OpLightCTLTempRangeGet,
	CTLDefault:          wire.OpLightCTLDefaultGet,
}

// CTL is the Light CTL client.
type CTL struct {
	base
}

// NewCTL creates a Light CTL client.
func NewCTL(cfg Config) *CTL {
	c := &CTL{base: newBase(model.KindCTLClient, cfg)}
	c.handle(wire.OpLightCTLStatus, c.onStatus)
	c.handle(wire.OpLightCTLTempStatus, c.onTemperatureStatus)
	c.handle(wire.OpLightCTLTempRangeStatus, c.rangeStatus(model.StateCTLTemperatureRange))
	c.handle(wire.OpLightCTLDefaultStatus, c.onDefaultStatus)
	return c
}

// Get requests the state chosen by selector (CTLState to CTLDefault).
func (c *CTL) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(ctlGets, appKey, dst, selector)
}

// Set writes CTL Default (state1 lightness, state2 temperature and delta UV
// packed with model.PackPair) or CTL Temperature Range (state1 min, state2
// max) selected by model.SetRange.
func (c *CTL) Set(appKey wire.AppKeyRef, dst wire.Address, state1, state2 uint32, info model.SetInfo) error {
	switch info.Kind {
	case model.SetDefault:
		temp, deltaUV := model.UnpackPair(state2)
		if state1 > 0xFFFF || !validTemperature(temp) {
			return wire.ErrInvalidParam
		}
		buf, err := c.alloc(setOpcode(info.Ack, wire.OpLightCTLDefaultSet, wire.OpLightCTLDefaultSetUnack),
			appKey, dst, wire.LenLightCTLDefaultSet)
		if err != nil {
			return err
		}
		buf.PutU16(0, uint16(state1))
		buf.PutU16(2, temp)
		buf.PutU16(4, deltaUV)
		c.send(buf)
		return nil
	case model.SetRange:
		if state1 > 0xFFFF || state2 > 0xFFFF || !validTemperature(uint16(state1)) || !validTemperature(uint16(state2)) {
			return wire.ErrInvalidParam
		}
		return c.setRange(setOpcode(info.Ack, wire.OpLightCTLTempRangeSet, wire.OpLightCTLTempRangeSetUnack),
			appKey, dst, state1, state2)
	default:
		return c.invalidKind("set", uint8(info.Kind))
	}
}

// Transition sets the CTL state or the CTL Temperature state.
func (c *CTL) Transition(appKey wire.AppKeyRef, dst wire.Address, req model.TransitionRequest) error {
	temp, deltaUV := model.UnpackPair(req.State2)
	if !validTemperature(temp) {
		return wire.ErrInvalidParam
	}

	switch req.Info.Kind {
	case CTLTransCTL:
		if req.State1 > 0xFFFF {
			return wire.ErrInvalidParam
		}
		buf, err := c.transitionBuffer(wire.OpLightCTLSet, wire.OpLightCTLSetUnack, appKey, dst,
			wire.LenLightCTLSet, req)
		if err != nil {
			return err
		}
		buf.PutU16(0, uint16(req.State1))
		buf.PutU16(2, temp)
		buf.PutU16(4, deltaUV)
		c.send(buf)
		return nil
	case CTLTransTemperature:
		buf, err := c.transitionBuffer(wire.OpLightCTLTempSet, wire.OpLightCTLTempSetUnack, appKey, dst,
			wire.LenLightCTLTempSet, req)
		if err != nil {
			return err
		}
		buf.PutU16(0, temp)
		buf.PutU16(2, deltaUV)
		c.send(buf)
		return nil
	default:
		return c.invalidKind("transition", uint8(req.Info.Kind))
	}
}

// onStatus decodes lightness and temperature[, targets, remaining].
func (c *CTL) onStatus(buf *wire.Buffer, env *wire.RouteEnv) error {
	long, ok := wire.StatusForm(buf.Len(), wire.LenLightCTLStatus, wire.LenLightCTLStatusLong)
	if !ok {
		return wire.ErrMalformed
	}
	lightness, temp := uint32(buf.U16(0)), uint32(buf.U16(2))
	targetLightness, targetTemp, rem := lightness, temp, uint32(0)
	if long {
		targetLightness = uint32(buf.U16(4))
		targetTemp = uint32(buf.U16(6))
		rem = unpackRemaining(buf.U8(8))
	}
	c.indicate(env, model.StateCTLLightness, lightness, targetLightness, rem)
	c.indicate(env, model.StateCTLTemperature, temp, targetTemp, rem)
	return nil
}

// onTemperatureStatus decodes temperature and delta UV[, targets,
// remaining].
func (c *CTL) onTemperatureStatus(buf *wire.Buffer, env *wire.RouteEnv) error {
	long, ok := wire.StatusForm(buf.Len(), wire.LenLightCTLTempStatus, wire.LenLightCTLTempStatusLong)
	if !ok {
		return wire.ErrMalformed
	}
	temp, deltaUV := uint32(buf.U16(0)), uint32(buf.U16(2))
	targetTemp, targetDeltaUV, rem := temp, deltaUV, uint32(0)
	if long {
		targetTemp = uint32(buf.U16(4))
		targetDeltaUV = uint32(buf.U16(6))
		rem = unpackRemaining(buf.U8(8))
	}
	c.indicate(env, model.StateCTLTemperature, temp, targetTemp, rem)
	c.indicate(env, model.StateCTLDeltaUV, deltaUV, targetDeltaUV, rem)
	return nil
}

// onDefaultStatus reports lightness in Value1 and temperature and delta UV
// packed in Value2.
func (c *CTL) onDefaultStatus(buf *wire.Buffer, env *wire.RouteEnv) error {
	if buf.Len() != wire.LenLightCTLDefaultStatus {
		return wire.ErrMalformed
	}
	c.indicate(env, model.StateCTLDefault, uint32(buf.U16(0)), model.PackPair(buf.U16(2), buf.U16(4)), 0)
	return nil
}

func validTemperature(k uint16) bool {
	return k >= CTLTemperatureMin && k <= CTLTemperatureMax
}

var (
	_ model.Model        = (*CTL)(nil)
	_ model.Getter       = (*CTL)(nil)
	_ model.Setter       = (*CTL)(nil)
	_ model.Transitioner = (*CTL)(nil)
)
