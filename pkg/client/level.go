package client

import (
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Generic Level transition kinds.
const (
	// LevelSet sets the level to int16(State1).
	LevelSet model.TransitionKind = iota

	// LevelDelta changes the level by int32(State1).
	LevelDelta

	// LevelMove moves the level by int16(State1) per transition time.
	LevelMove
)

var levelGets = []wire.Opcode{wire.OpGenLevelGet}

// Level is the Generic Level client.
type Level struct {
	base
}

// NewLevel creates a Generic Level client.
func NewLevel(cfg Config) *Level {
	c := &Level{base: newBase(model.KindLevelClient, cfg)}
	c.handle(wire.OpGenLevelStatus,
		c.u16Status(model.StateLevel, wire.LenGenLevelStatus, wire.LenGenLevelStatusLong))
	return c
}

// Get requests the Level state. The only selector is 0.
func (c *Level) Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error {
	return c.get(levelGets, appKey, dst, selector)
}

// Transition sends a Level, Delta or Move set selected by req.Info.Kind.
// Signed values travel in State1 as their two's complement bit pattern.
func (c *Level) Transition(appKey wire.AppKeyRef, dst wire.Address, req model.TransitionRequest) error {
	var (
		acked, unacked wire.Opcode
		shortLen       int
	)
	switch req.Info.Kind {
	case LevelSet:
		acked, unacked, shortLen = wire.OpGenLevelSet, wire.OpGenLevelSetUnack, wire.LenGenLevelSet
	case LevelDelta:
		acked, unacked, shortLen = wire.OpGenDeltaSet, wire.OpGenDeltaSetUnack, wire.LenGenDeltaSet
	case LevelMove:
		acked, unacked, shortLen = wire.OpGenMoveSet, wire.OpGenMoveSetUnack, wire.LenGenMoveSet
	default:
		return c.invalidKind("transition", uint8(req.Info.Kind))
	}

	buf, err := c.transitionBuffer(acked, unacked, appKey, dst, shortLen, req)
	if err != nil {
		return err
	}
	if req.Info.Kind == LevelDelta {
		buf.PutU32(0, req.State1)
	} else {
		buf.PutU16(0, uint16(req.State1))
	}
	c.send(buf)
	return nil
}

var (
	_ model.Model        = (*Level)(nil)
	_ model.Getter       = (*Level)(nil)
	_ model.Transitioner = (*Level)(nil)
)
