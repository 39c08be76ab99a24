package server

import (
	"math"
	"time"

	"github.com/meshmodel/mm-go/pkg/binding"
	"github.com/meshmodel/mm-go/pkg/duration"
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/replay"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Level transition kinds, as carried in group requests.
const (
	LevelSet model.TransitionKind = iota
	LevelDelta
	LevelMove
)

// delta is the open Delta Set transaction.
type delta struct {
	src   wire.Address
	tid   uint8
	base  int32
	at    time.Time
	valid bool
}

// Level is the Generic Level server.
type Level struct {
	*base

	tx delta
}

// NewLevel creates a Generic Level server at level 0.
func NewLevel(cfg Config) *Level {
	s := &Level{base: newBase(model.KindLevelServer, model.StateLevel, cfg)}
	s.encode = encodeLevel
	s.handle(wire.OpGenLevelGet, s.onGet)
	s.handle(wire.OpGenLevelSet, s.onSet(true))
	s.handle(wire.OpGenLevelSetUnack, s.onSet(false))
	s.handle(wire.OpGenDeltaSet, s.onDelta(true))
	s.handle(wire.OpGenDeltaSetUnack, s.onDelta(false))
	s.handle(wire.OpGenMoveSet, s.onMove(true))
	s.handle(wire.OpGenMoveSetUnack, s.onMove(false))
	return s
}

// State returns the present level.
func (s *Level) State() int16 { return int16(s.present()) }

// SetState sets the level locally.
func (s *Level) SetState(_ model.TransitionKind, value int32, remainingMS uint32) {
	value = clampLevel(int64(value))
	if remainingMS > 0 {
		s.run(value, remainingMS, 0)
		return
	}
	s.set(value)
}

func (s *Level) onGet(_ *wire.Buffer, env *wire.RouteEnv) error {
	return s.levelStatus(env)
}

func (s *Level) levelStatus(env *wire.RouteEnv) error {
	return s.status(env, wire.OpGenLevelStatus, 2, putLevel)
}

func (s *Level) onSet(ack bool) requestHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		p, err := s.parseSet(buf, wire.LenGenLevelSet)
		if err != nil {
			return err
		}
		if !s.seen(env, p.tid) {
			s.closeDelta()
			s.request(LevelSet, int32(buf.I16(0)), p)
		}
		if ack {
			return s.levelStatus(env)
		}
		return nil
	}
}

// onDelta handles Delta Set. A delta repeating the src and TID of the open
// transaction replaces the previous delta rather than adding to it.
func (s *Level) onDelta(ack bool) requestHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		p, err := s.parseSet(buf, wire.LenGenDeltaSet)
		if err != nil {
			return err
		}
		d := int64(buf.I32(0))

		from, ok := s.openDelta(env.Src, p.tid)
		if !ok {
			if s.seen(env, p.tid) {
				if ack {
					return s.levelStatus(env)
				}
				return nil
			}
			from = s.present()
			s.beginDelta(env.Src, p.tid, from)
		}
		s.request(LevelSet, clampLevel(int64(from)+d), p)
		if ack {
			return s.levelStatus(env)
		}
		return nil
	}
}

// onMove handles Move Set. The level moves by delta every transition time
// until it reaches the end of the range. A zero delta or transition time
// stops the move.
func (s *Level) onMove(ack bool) requestHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		p, err := s.parseSet(buf, wire.LenGenMoveSet)
		if err != nil {
			return err
		}
		if !s.seen(env, p.tid) {
			s.closeDelta()
			s.move(int32(buf.I16(0)), p)
		}
		if ack {
			return s.levelStatus(env)
		}
		return nil
	}
}

// move starts a Level move. Stopping the move of a bound server freezes the
// whole group where it stands.
func (s *Level) move(step int32, p setParams) {
	if step == 0 || p.ttMS == 0 {
		if halt := s.halter(); halt != nil {
			halt()
			return
		}
		s.stop()
		return
	}
	present := s.present()
	target := int32(math.MaxInt16)
	if step < 0 {
		target = math.MinInt16
	}
	ms := moveDuration(present, target, step, p.ttMS)
	s.requestTransition(LevelMove, target, setParams{tid: p.tid, ttMS: ms, delayMS: p.delayMS}, true)
}

// moveDuration is the time to cover target-present at step per ttMS,
// bounded by the longest timer.
func moveDuration(present, target, step int32, ttMS uint32) uint32 {
	span := math.Abs(float64(target - present))
	per := math.Abs(float64(step))
	d := span / per * float64(ttMS)
	limit := float64(duration.MaxDuration / time.Millisecond)
	if d > limit {
		d = limit
	}
	return uint32(d)
}

func (s *Level) openDelta(src wire.Address, tid uint8) (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.tx
	if !tx.valid || tx.src != src || tx.tid != tid || s.sched.Now().Sub(tx.at) >= replay.DefaultDelay {
		return 0, false
	}
	return tx.base, true
}

func (s *Level) beginDelta(src wire.Address, tid uint8, from int32) {
	s.mu.Lock()
	s.tx = delta{src: src, tid: tid, base: from, at: s.sched.Now(), valid: true}
	s.mu.Unlock()
}

func (s *Level) closeDelta() {
	s.mu.Lock()
	s.tx.valid = false
	s.mu.Unlock()
}

func putLevel(buf *wire.Buffer, off int, v int32) { buf.PutI16(off, int16(v)) }

func encodeLevel(v int32) uint32 { return uint32(uint16(int16(v))) }

func clampLevel(v int64) int32 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int32(v)
}

// Compile-time interface satisfaction checks.
var (
	_ model.Model       = (*Level)(nil)
	_ model.StateSetter = (*Level)(nil)
	_ binding.Member    = (*Level)(nil)
)
