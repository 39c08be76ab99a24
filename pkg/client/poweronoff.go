package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// OnPowerUp states.
const (
	OnPowerUpOff     uint32 = 0x00
	OnPowerUpDefault uint32 = 0x01
	OnPowerUpRestore uint32 = 0x02
)

var powerOnOffGets = []wire.Opcode{wire.OpGenOnPowerUpGet}

// PowerOnOff is the Generic Power OnOff client.
type PowerOnOff struct {
	base
}

// NewPowerOnOff creates a Generic Power OnOff client.
func NewPowerOnOff(cfg Config) *PowerOnOff {
	c := &PowerOnOff{base: newBase(model.KindPowerOnOffClient, cfg)}
	c.handle(wire.OpGenOnPowerUpStatus, c.onStatus)
	return c
}

// Get requests the OnPowerUp state. The only selector is 0.
func (c *PowerOnOff) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(powerOnOffGets, appKey, dst, selector)
}

// Set sets the OnPowerUp state to state1. The kind must be
// model.SetDefault.
func (c *PowerOnOff) Set(appKey wire.AppKeyRef, dst wire.Address, state1, _ uint32, info model.SetInfo) error {
	if info.Kind != model.SetDefault {
		return c.invalidKind("set", uint8(info.Kind))
	}
	if state1 > OnPowerUpRestore {
		return wire.ErrInvalidParam
	}
	buf, err := c.alloc(setOpcode(info.Ack, wire.OpGenOnPowerUpSet, wire.OpGenOnPowerUpSetUnack),
		appKey, dst, wire.LenGenOnPowerUpSet)
	if err != nil {
		return err
	}
	buf.PutU8(0, uint8(state1))
	c.send(buf)
	return nil
}

func (c *PowerOnOff) onStatus(buf *wire.Buffer, env *wire.RouteEnv) error {
	if buf.Len() != wire.LenGenOnPowerUpStatus {
		return wire.ErrMalformed
	}
	v := uint32(buf.U8(0))
	c.indicate(env, model.StateOnPowerUp, v, v, 0)
	return nil
}

var (
	_ model.Model  = (*PowerOnOff)(nil)
	_ model.Getter = (*PowerOnOff)(nil)
	_ model.Setter = (*PowerOnOff)(nil)
)
