package server

import (
	"fmt"
	"maps"
	"math"
	"sync"

	"github.com/meshmodel/mm-go/pkg/binding"
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Light Lightness transition kinds.
const (
	LightnessActual model.TransitionKind = iota
	LightnessLinear
)

const levelOffset = 32768

// Lightness is the Light Lightness server, setup operations included. It
// is the main model of the group binding it to OnOff and Level servers.
type Lightness struct {
	*base

	lmu     sync.Mutex
	last    uint16
	def     uint16
	min     uint16
	max     uint16
	members map[model.LocalIndex]Bindable
}

// NewLightness creates a Light Lightness server at lightness 0 with the
// full range.
func NewLightness(cfg Config) *Lightness {
	s := &Lightness{
		base:    newBase(model.KindLightnessServer, model.StateLightnessActual, cfg),
		last:    math.MaxUint16,
		min:     1,
		max:     math.MaxUint16,
		members: make(map[model.LocalIndex]Bindable),
	}
	s.observe = s.noteLast
	s.done = s.endGroup
	s.handle(wire.OpLightLnGet, s.onGet)
	s.handle(wire.OpLightLnSet, s.onSet(true))
	s.handle(wire.OpLightLnSetUnack, s.onSet(false))
	s.handle(wire.OpLightLnLinearGet, s.onLinearGet)
	s.handle(wire.OpLightLnLinearSet, s.onLinearSet(true))
	s.handle(wire.OpLightLnLinearSetUnack, s.onLinearSet(false))
	s.handle(wire.OpLightLnLastGet, s.onLastGet)
	s.handle(wire.OpLightLnDefaultGet, s.onDefaultGet)
	s.handle(wire.OpLightLnDefaultSet, s.onDefaultSet(true))
	s.handle(wire.OpLightLnDefaultSetUnack, s.onDefaultSet(false))
	s.handle(wire.OpLightLnRangeGet, s.onRangeGet)
	s.handle(wire.OpLightLnRangeSet, s.onRangeSet(true))
	s.handle(wire.OpLightLnRangeSetUnack, s.onRangeSet(false))
	return s
}

// Actual returns the present Lightness Actual state.
func (s *Lightness) Actual() uint16 { return uint16(s.present()) }

// Linear returns the present Lightness Linear state.
func (s *Lightness) Linear() uint16 { return ToLinear(s.Actual()) }

// Last returns the last non-zero Lightness Actual state.
func (s *Lightness) Last() uint16 {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	return s.last
}

// Default returns the Lightness Default state. 0 means use Last.
func (s *Lightness) Default() uint16 {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	return s.def
}

// Range returns the Lightness Range state.
func (s *Lightness) Range() (lo, hi uint16) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	return s.min, s.max
}

// SetState sets Lightness Actual, or Linear for LightnessLinear, locally.
func (s *Lightness) SetState(kind model.TransitionKind, value int32, remainingMS uint32) {
	v := uint16(value)
	if kind == LightnessLinear {
		v = FromLinear(v)
	}
	if remainingMS > 0 {
		s.run(int32(v), remainingMS, 0)
		return
	}
	s.set(int32(v))
}

func (s *Lightness) onGet(_ *wire.Buffer, env *wire.RouteEnv) error {
	return s.status(env, wire.OpLightLnStatus, 2, putU16)
}

func (s *Lightness) onSet(ack bool) requestHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		p, err := s.parseSet(buf, wire.LenLightLnSet)
		if err != nil {
			return err
		}
		if !s.seen(env, p.tid) {
			s.request(LightnessActual, int32(s.clamp(buf.U16(0))), p)
		}
		if ack {
			return s.status(env, wire.OpLightLnStatus, 2, putU16)
		}
		return nil
	}
}

func (s *Lightness) onLinearGet(_ *wire.Buffer, env *wire.RouteEnv) error {
	return s.linearStatus(env)
}

func (s *Lightness) linearStatus(env *wire.RouteEnv) error {
	s.mu.Lock()
	present, target, rem := s.snapshotLocked()
	s.mu.Unlock()
	return s.statusOf(env, wire.OpLightLnLinearStatus, 2, putU16,
		int32(ToLinear(uint16(present))), int32(ToLinear(uint16(target))), remainingByte(rem))
}

func (s *Lightness) onLinearSet(ack bool) requestHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		p, err := s.parseSet(buf, wire.LenLightLnSet)
		if err != nil {
			return err
		}
		if !s.seen(env, p.tid) {
			s.request(LightnessLinear, int32(s.clamp(FromLinear(buf.U16(0)))), p)
		}
		if ack {
			return s.linearStatus(env)
		}
		return nil
	}
}

func (s *Lightness) onLastGet(_ *wire.Buffer, env *wire.RouteEnv) error {
	return s.u16Reply(env, wire.OpLightLnLastStatus, s.Last())
}

func (s *Lightness) onDefaultGet(_ *wire.Buffer, env *wire.RouteEnv) error {
	return s.u16Reply(env, wire.OpLightLnDefaultStatus, s.Default())
}

func (s *Lightness) onDefaultSet(ack bool) requestHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		if buf.Len() != wire.LenLightLnDefaultSet {
			return wire.ErrMalformed
		}
		v := buf.U16(0)
		s.lmu.Lock()
		changed := s.def != v
		s.def = v
		s.lmu.Unlock()

		if changed {
			s.ind.StateInd(model.StateIndication{
				LocalIndex: s.lid,
				State:      model.StateLightnessDefault,
				Value1:     uint32(v),
				Value2:     uint32(v),
			})
		}
		if ack {
			return s.u16Reply(env, wire.OpLightLnDefaultStatus, v)
		}
		return nil
	}
}

func (s *Lightness) onRangeGet(_ *wire.Buffer, env *wire.RouteEnv) error {
	return s.rangeReply(env, wire.StatusSuccess)
}

// onRangeSet rejects a zero bound with the matching status code and drops a
// range whose minimum exceeds its maximum.
func (s *Lightness) onRangeSet(ack bool) requestHandler {
	return func(buf *wire.Buffer, env *wire.RouteEnv) error {
		if buf.Len() != wire.LenLightLnRangeSet {
			return wire.ErrMalformed
		}
		lo, hi := buf.U16(0), buf.U16(2)
		if lo > hi {
			return fmt.Errorf("%w: range min %d above max %d", wire.ErrMalformed, lo, hi)
		}

		code := wire.StatusSuccess
		switch {
		case lo == 0:
			code = wire.StatusCannotSetRangeMin
		case hi == 0:
			code = wire.StatusCannotSetRangeMax
		default:
			s.lmu.Lock()
			changed := s.min != lo || s.max != hi
			s.min, s.max = lo, hi
			s.lmu.Unlock()

			if changed {
				s.ind.StateInd(model.StateIndication{
					LocalIndex: s.lid,
					State:      model.StateLightnessRange,
					Value1:     uint32(lo),
					Value2:     uint32(hi),
				})
			}
		}
		if ack {
			return s.rangeReply(env, code)
		}
		return nil
	}
}

func (s *Lightness) u16Reply(env *wire.RouteEnv, op wire.Opcode, v uint16) error {
	buf, err := s.reply(env, op, 2)
	if err != nil {
		return err
	}
	buf.PutU16(0, v)
	s.tr.Send(buf)
	return nil
}

func (s *Lightness) rangeReply(env *wire.RouteEnv, code wire.Status) error {
	buf, err := s.reply(env, wire.OpLightLnRangeStatus, wire.LenLightLnRangeStatus)
	if err != nil {
		return err
	}
	lo, hi := s.Range()
	buf.PutU8(0, uint8(code))
	buf.PutU16(1, lo)
	buf.PutU16(3, hi)
	s.tr.Send(buf)
	return nil
}

// clamp bounds a non-zero lightness to the range.
func (s *Lightness) clamp(v uint16) uint16 {
	if v == 0 {
		return 0
	}
	lo, hi := s.Range()
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Lightness) noteLast(present, target int32) {
	if present == target && present != 0 {
		s.lmu.Lock()
		s.last = uint16(present)
		s.lmu.Unlock()
	}
}

// addMember records a bound server.
func (s *Lightness) addMember(m Bindable) {
	s.lmu.Lock()
	s.members[m.LocalIndex()] = m
	s.lmu.Unlock()
}

func (s *Lightness) memberKind(lid model.LocalIndex) model.Kind {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	if m, ok := s.members[lid]; ok {
		return m.Kind()
	}
	return 0
}

// syncMembers sets every member to the state derived from actual at once.
func (s *Lightness) syncMembers(actual uint16) {
	s.lmu.Lock()
	members := maps.Clone(s.members)
	s.lmu.Unlock()

	for lid, m := range members {
		m.SetState(model.TransitionMain, s.targetFor(lid, actual), 0)
	}
}

// halt freezes the group where it stands and ends its transition.
func (s *Lightness) halt() {
	s.stop()
	s.syncMembers(s.Actual())
	s.endGroup()
}

// OnTransitionRequest maps a member's request onto Lightness Actual, sets
// every member's derived target and starts the transition.
func (s *Lightness) OnTransitionRequest(g *binding.Group, req binding.Request) {
	actual := s.actualFor(req)

	if err := g.Accept(req.TransTimeMS, req.DelayMS); err != nil {
		s.logger.Warn("group accept failed", "group", g.ID(), "error", err)
		return
	}
	for _, lid := range g.Members() {
		if err := g.SetTarget(lid, s.targetFor(lid, actual)); err != nil {
			s.logger.Warn("group target failed", "group", g.ID(), "lid", lid, "error", err)
		}
	}
	if err := g.Start(); err != nil {
		s.logger.Warn("group start failed", "group", g.ID(), "error", err)
		return
	}
	if req.TransTimeMS == 0 && req.DelayMS == 0 {
		_ = g.End()
	}
}

// actualFor returns the Lightness Actual target a request asks for.
func (s *Lightness) actualFor(req binding.Request) uint16 {
	if req.Requester == s.lid {
		return uint16(req.State)
	}
	switch s.memberKind(req.Requester) {
	case model.KindOnOffServer:
		if req.State == 0 {
			return 0
		}
		if d := s.Default(); d != 0 {
			return s.clamp(d)
		}
		return s.clamp(s.Last())
	case model.KindLevelServer:
		return s.clamp(uint16(req.State + levelOffset))
	default:
		return s.clamp(uint16(req.State))
	}
}

// targetFor derives a member's target from Lightness Actual.
func (s *Lightness) targetFor(lid model.LocalIndex, actual uint16) int32 {
	if lid == s.lid {
		return int32(actual)
	}
	switch s.memberKind(lid) {
	case model.KindOnOffServer:
		if actual > 0 {
			return 1
		}
		return 0
	case model.KindLevelServer:
		return int32(actual) - levelOffset
	default:
		return int32(actual)
	}
}

// endGroup ends the group transition once the main transition completes.
func (s *Lightness) endGroup() {
	g := s.Group()
	if g == nil || g.State() != binding.StateInProgress {
		return
	}
	if err := g.End(); err != nil {
		s.logger.Debug("group end failed", "group", g.ID(), "error", err)
	}
}

// ToLinear converts Lightness Actual to Lightness Linear.
func ToLinear(actual uint16) uint16 {
	a := uint64(actual)
	return uint16((a*a + math.MaxUint16 - 1) / math.MaxUint16)
}

// FromLinear converts Lightness Linear to Lightness Actual.
func FromLinear(linear uint16) uint16 {
	return uint16(math.Round(math.Sqrt(float64(math.MaxUint16) * float64(linear))))
}

func putU16(buf *wire.Buffer, off int, v int32) { buf.PutU16(off, uint16(v)) }

// Compile-time interface satisfaction checks.
var (
	_ model.Model       = (*Lightness)(nil)
	_ model.StateSetter = (*Lightness)(nil)
	_ binding.Main      = (*Lightness)(nil)
)
