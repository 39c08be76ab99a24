package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Generic Location get selectors.
const (
	LocationGlobal uint8 = iota
	LocationLocal
)

var locationGets = []wire.Opcode{
	LocationGlobal: wire.OpGenLocGlobalGet,
	LocationLocal:  wire.OpGenLocLocalGet,
}

// Location is the Generic Location client.
type Location struct {
	base
}

// NewLocation creates a Generic Location client.
func NewLocation(cfg Config) *Location {
	c := &Location{base: newBase(model.KindLocationClient, cfg)}
	c.handle(wire.OpGenLocGlobalStatus, c.onGlobalStatus)
	c.handle(wire.OpGenLocLocalStatus, c.onLocalStatus)
	return c
}

// Get requests the global or local location.
func (c *Location) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(locationGets, appKey, dst, selector)
}

// SetGlobal writes the global location.
func (c *Location) SetGlobal(appKey wire.AppKeyRef, dst wire.Address, loc model.GlobalLocation, ack bool) error {
	buf, err := c.alloc(setOpcode(ack, wire.OpGenLocGlobalSet, wire.OpGenLocGlobalSetUnack), appKey, dst,
		wire.LenGenLocGlobal)
	if err != nil {
		return err
	}
	buf.PutI32(0, loc.Latitude)
	buf.PutI32(4, loc.Longitude)
	buf.PutI16(8, loc.Altitude)
	c.send(buf)
	return nil
}

// SetLocal writes the local location.
func (c *Location) SetLocal(appKey wire.AppKeyRef, dst wire.Address, loc model.LocalLocation, ack bool) error {
	buf, err := c.alloc(setOpcode(ack, wire.OpGenLocLocalSet, wire.OpGenLocLocalSetUnack), appKey, dst,
		wire.LenGenLocLocal)
	if err != nil {
		return err
	}
	buf.PutI16(0, loc.North)
	buf.PutI16(2, loc.East)
	buf.PutI16(4, loc.Altitude)
	buf.PutU8(6, loc.Floor)
	buf.PutU16(7, loc.Uncertainty)
	c.send(buf)
	return nil
}

func (c *Location) onGlobalStatus(buf *wire.Buffer, env *wire.RouteEnv) error {
	if buf.Len() != wire.LenGenLocGlobal {
		return wire.ErrMalformed
	}
	c.ind.LocationGlobalInd(env.Src, c.lid, model.GlobalLocation{
		Latitude:  buf.I32(0),
		Longitude: buf.I32(4),
		Altitude:  buf.I16(8),
	})
	return nil
}

func (c *Location) onLocalStatus(buf *wire.Buffer, env *wire.RouteEnv) error {
	if buf.Len() != wire.LenGenLocLocal {
		return wire.ErrMalformed
	}
	c.ind.LocationLocalInd(env.Src, c.lid, model.LocalLocation{
		North:       buf.I16(0),
		East:        buf.I16(2),
		Altitude:    buf.I16(4),
		Floor:       buf.U8(6),
		Uncertainty: buf.U16(7),
	})
	return nil
}

var (
	_ model.Model  = (*Location)(nil)
	_ model.Getter = (*Location)(nil)
)
