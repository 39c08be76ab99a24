package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Property access values.
const (
	PropertyAccessNone      uint8 = 0x00
	PropertyAccessRead      uint8 = 0x01
	PropertyAccessWrite     uint8 = 0x02
	PropertyAccessReadWrite uint8 = 0x03
)

// Get selectors of the property list messages, one per property server.
const (
	PropertiesUser         = uint8(model.PropertyUser)
	PropertiesAdmin        = uint8(model.PropertyAdmin)
	PropertiesManufacturer = uint8(model.PropertyManufacturer)
	PropertiesClient       = uint8(model.PropertyClient)
)

// maxPropertyValue bounds a property value by the access payload, less the
// one-octet set opcode and the fixed fields.
const maxPropertyValue = wire.MaxAccessPayload - 1 - wire.LenGenAdminPropSetMin

var propertyListGets = []wire.Opcode{
	PropertiesUser:         wire.OpGenUserPropsGet,
	PropertiesAdmin:        wire.OpGenAdminPropsGet,
	PropertiesManufacturer: wire.OpGenManuPropsGet,
	PropertiesClient:       wire.OpGenClientPropsGet,
}

var propertyGets = []wire.Opcode{
	model.PropertyUser:         wire.OpGenUserPropGet,
	model.PropertyAdmin:        wire.OpGenAdminPropGet,
	model.PropertyManufacturer: wire.OpGenManuPropGet,
}

// Property is the Generic Property client.
type Property struct {
	base
}

// NewProperty creates a Generic Property client.
func NewProperty(cfg Config) *Property {
	c := &Property{base: newBase(model.KindPropertyClient, cfg)}
	c.handle(wire.OpGenUserPropsStatus, c.listStatus(model.PropertyUser))
	c.handle(wire.OpGenAdminPropsStatus, c.listStatus(model.PropertyAdmin))
	c.handle(wire.OpGenManuPropsStatus, c.listStatus(model.PropertyManufacturer))
	c.handle(wire.OpGenClientPropsStatus, c.listStatus(model.PropertyClient))
	c.handle(wire.OpGenUserPropStatus, c.propertyStatus(model.PropertyUser))
	c.handle(wire.OpGenAdminPropStatus, c.propertyStatus(model.PropertyAdmin))
	c.handle(wire.OpGenManuPropStatus, c.propertyStatus(model.PropertyManufacturer))
	return c
}

// Get requests the property id list of the server chosen by selector
// (PropertiesUser to PropertiesClient). The client list starts at id 0.
func (c *Property) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	if selector != PropertiesClient {
		return c.get(propertyListGets, appKey, dst, selector)
	}
	buf, err := c.alloc(wire.OpGenClientPropsGet, appKey, dst, wire.LenGenClientPropsGet)
	if err != nil {
		return err
	}
	buf.PutU16(0, 0)
	c.send(buf)
	return nil
}

// GetProperty requests one property of a user, admin or manufacturer server.
func (c *Property) GetProperty(appKey wire.AppKeyRef, dst wire.Address, kind model.PropertyKind, id uint16) error {
	if int(kind) >= len(propertyGets) || id == 0 {
		return wire.ErrInvalidParam
	}
	buf, err := c.alloc(propertyGets[kind], appKey, dst, wire.LenGenPropID)
	if err != nil {
		return err
	}
	buf.PutU16(0, id)
	c.send(buf)
	return nil
}

// SetUser writes a user property value.
func (c *Property) SetUser(appKey wire.AppKeyRef, dst wire.Address, id uint16, value []byte, ack bool) error {
	if id == 0 || len(value) > maxPropertyValue {
		return wire.ErrInvalidParam
	}
	buf, err := c.alloc(setOpcode(ack, wire.OpGenUserPropSet, wire.OpGenUserPropSetUnack), appKey, dst,
		wire.LenGenUserPropSetMin+len(value))
	if err != nil {
		return err
	}
	buf.PutU16(0, id)
	buf.PutBytes(2, value)
	c.send(buf)
	return nil
}

// SetAdmin writes an admin property access and value.
func (c *Property) SetAdmin(appKey wire.AppKeyRef, dst wire.Address, id uint16, access uint8, value []byte, ack bool) error {
	if id == 0 || access > PropertyAccessReadWrite || len(value) > maxPropertyValue {
		return wire.ErrInvalidParam
	}
	buf, err := c.alloc(setOpcode(ack, wire.OpGenAdminPropSet, wire.OpGenAdminPropSetUnack), appKey, dst,
		wire.LenGenAdminPropSetMin+len(value))
	if err != nil {
		return err
	}
	buf.PutU16(0, id)
	buf.PutU8(2, access)
	buf.PutBytes(3, value)
	c.send(buf)
	return nil
}

// SetManufacturer writes a manufacturer property access.
func (c *Property) SetManufacturer(appKey wire.AppKeyRef, dst wire.Address, id uint16, access uint8, ack bool) error {
	if id == 0 || access > PropertyAccessRead {
		return wire.ErrInvalidParam
	}
	buf, err := c.alloc(setOpcode(ack, wire.OpGenManuPropSet, wire.OpGenManuPropSetUnack), appKey, dst,
		wire.LenGenManuPropSet)
	if err != nil {
		return err
	}
	buf.PutU16(0, id)
	buf.PutU8(2, access)
	c.send(buf)
	return nil
}

func (c *Property) listStatus(kind model.PropertyKind) statusHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		if buf.Len()%2 != 0 {
			return wire.ErrMalformed
		}
		ids := make([]uint16, buf.Len()/2)
		for i := range ids {
			ids[i] = buf.U16(2 * i)
		}
		c.ind.PropertyListInd(env.Src, c.lid, kind, ids)
		return nil
	}
}

// propertyStatus decodes id[, access, value]. The id-only form reports an
// unknown property.
func (c *Property) propertyStatus(kind model.PropertyKind) statusHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		if buf.Len() < wire.LenGenPropStatusMin {
			return wire.ErrMalformed
		}
		prop := model.Property{Kind: kind, ID: buf.U16(0)}
		if buf.Len() >= wire.LenGenPropStatusHeader {
			prop.Access = buf.U8(2)
			prop.Value = append([]byte(nil), buf.Slice(3)...)
		}
		c.ind.PropertyInd(env.Src, c.lid, prop)
		return nil
	}
}

var (
	_ model.Model  = (*Property)(nil)
	_ model.Getter = (*Property)(nil)
)
