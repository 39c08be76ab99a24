package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Battery values meaning unknown.
const (
	BatteryLevelUnknown uint8  = 0xFF
	BatteryTimeUnknown  uint32 = 0xFFFFFF
)

var batteryGets = []wire.Opcode{wire.OpGenBatteryGet}

// Battery is the Generic Battery client.
type Battery struct {
	base
}

// NewBattery creates a Generic Battery client.
func NewBattery(cfg Config) *Battery {
	c := &Battery{base: newBase(model.KindBatteryClient, cfg)}
	c.handle(wire.OpGenBatteryStatus, c.onStatus)
	return c
}

// Get requests the battery state. The only selector is 0.
func (c *Battery) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(batteryGets, appKey, dst, selector)
}

func (c *Battery) onStatus(buf *wire.Buffer, env *wire.RouteEnv) error {
	if buf.Len() != wire.LenGenBatteryStatus {
		return wire.ErrMalformed
	}
	c.ind.BatteryInd(env.Src, c.lid, model.BatteryState{
		Level:           buf.U8(0),
		TimeToDischarge: buf.U24(1),
		TimeToCharge:    buf.U24(4),
		Flags:           buf.U8(7),
	})
	return nil
}

var (
	_ model.Model  = (*Battery)(nil)
	_ model.Getter = (*Battery)(nil)
)
