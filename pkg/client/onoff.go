package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

var onOffGets = []wire.Opcode{wire.OpGenOnOffGet}

// OnOff is the Generic OnOff client.
type OnOff struct {
	base
}

// NewOnOff creates a Generic OnOff client.
func NewOnOff(cfg Config) *OnOff {
	c := &OnOff{base: newBase(model.KindOnOffClient, cfg)}
	c.handle(wire.OpGenOnOffStatus, c.onStatus)
	return c
}

// Get requests the OnOff state. The only selector is 0.
func (c *OnOff) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(onOffGets, appKey, dst, selector)
}

// Transition sets the OnOff state to req.State1 (0 or 1).
func (c *OnOff) Transition(appKey wire.AppKeyRef, dst wire.Address, req model.TransitionRequest) error {
	if req.Info.Kind != model.TransitionMain {
		return c.invalidKind("transition", uint8(req.Info.Kind))
	}
	if req.State1 > 1 {
		return wire.ErrInvalidParam
	}

	buf, err := c.transitionBuffer(wire.OpGenOnOffSet, wire.OpGenOnOffSetUnack, appKey, dst,
		wire.LenGenOnOffSet, req)
	if err != nil {
		return err
	}
	buf.PutU8(0, uint8(req.State1))
	c.send(buf)
	return nil
}

func (c *OnOff) onStatus(buf *wire.Buffer, env *wire.RouteEnv) error {
	long, ok := wire.StatusForm(buf.Len(), wire.LenGenOnOffStatus, wire.LenGenOnOffStatusLong)
	if !ok {
		return wire.ErrMalformed
	}
	present := uint32(buf.U8(0))
	target, rem := present, uint32(0)
	if long {
		target = uint32(buf.U8(1))
		rem = unpackRemaining(buf.U8(2))
	}
	c.indicate(env, model.StateOnOff, present, target, rem)
	return nil
}

var (
	_ model.Model        = (*OnOff)(nil)
	_ model.Getter       = (*OnOff)(nil)
	_ model.Transitioner = (*OnOff)(nil)
)
