package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/transition"
	"github.com/meshmodel/mm-go/pkg/wire"
)

var dttGets = []wire.Opcode{wire.OpGenDTTGet}

// DTT is the Generic Default Transition Time client.
type DTT struct {
	base
}

// NewDTT creates a Generic Default Transition Time client.
func NewDTT(cfg Config) *DTT {
	c := &DTT{base: newBase(model.KindDTTClient, cfg)}
	c.handle(wire.OpGenDTTStatus, c.onStatus)
	return c
}

// Get requests the default transition time. The only selector is 0.
func (c *DTT) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(dttGets, appKey, dst, selector)
}

// Set sets the default transition time to state1 milliseconds. The kind
// must be model.SetDefault.
func (c *DTT) Set(appKey wire.AppKeyRef, dst wire.Address, state1, _ uint32, info model.SetInfo) error {
	if info.Kind != model.SetDefault {
		return c.invalidKind("set", uint8(info.Kind))
	}
	buf, err := c.alloc(setOpcode(info.Ack, wire.OpGenDTTSet, wire.OpGenDTTSetUnack), appKey, dst,
		wire.LenGenDTTSet)
	if err != nil {
		return err
	}
	buf.PutU8(0, transition.Pack(state1))
	c.send(buf)
	return nil
}

func (c *DTT) onStatus(buf *wire.Buffer, env *wire.RouteEnv) error {
	if buf.Len() != wire.LenGenDTTStatus {
		return wire.ErrMalformed
	}
	ms := unpackRemaining(buf.U8(0))
	c.indicate(env, model.StateDTT, ms, ms, 0)
	return nil
}

var (
	_ model.Model  = (*DTT)(nil)
	_ model.Getter = (*DTT)(nil)
	_ model.Setter = (*DTT)(nil)
)
