package server

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meshmodel/mm-go/pkg/binding"
	"github.com/meshmodel/mm-go/pkg/duration"
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/replay"
	"github.com/meshmodel/mm-go/pkg/transition"
	"github.com/meshmodel/mm-go/pkg/transport"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Config holds what every server needs.
type Config struct {
	// LocalIndex is the handle returned by model.Registry.Register.
	LocalIndex model.LocalIndex

	// Transport sends status replies.
	Transport transport.Transport

	// Scheduler drives transition timers and replay expiry. Nil selects the
	// wall clock.
	Scheduler duration.Scheduler

	// ReplayOptions configure the server's replay protection list.
	ReplayOptions []replay.Option

	// DefaultTransitionMS applies to sets carrying no transition fields.
	DefaultTransitionMS uint32

	// Indicator is told about every local state change. Nil discards.
	Indicator model.Indicator

	// Logger is the operational logger. Nil selects slog.Default().
	Logger *slog.Logger
}

// requestHandler handles one request opcode. It returns wire.ErrMalformed
// for parameters the server cannot accept.
type requestHandler func(buf *wire.Buffer, env *wire.RouteEnv) error

// phase is where a server's transition stands.
type phase uint8

const (
	phaseIdle phase = iota
	phaseDelay
	phaseMoving
)

// track is the transition state of one scalar state.
type track struct {
	present int32
	target  int32
	from    int32
	ttMS    uint32
	started time.Time
	phase   phase

	// move marks a transition of unknown length, such as a Level move.
	move bool
}

// base holds the parts every server shares: identity, transport, replay
// protection, the transition engine and group membership.
type base struct {
	kind      model.Kind
	lid       model.LocalIndex
	state     model.StateID
	tr        transport.Transport
	sched     duration.Scheduler
	timers    *duration.Manager
	replay    *replay.List
	ind       model.Indicator
	logger    *slog.Logger
	defaultTT uint32
	handlers  map[wire.Opcode]requestHandler

	// interp returns the present value a fraction of the way through a
	// transition. Linear unless the server overrides it.
	interp func(from, target int32, frac float64) int32

	// encode maps a state value to its indication representation.
	encode func(v int32) uint32

	// observe sees every reported change, outside the lock.
	observe func(present, target int32)

	// done runs after a timer-driven transition completes, outside the lock.
	done func()

	mu    sync.Mutex
	t     track
	group *binding.Group

	// halt stops the group transition, set while the server is bound.
	halt func()
}

func newBase(kind model.Kind, state model.StateID, cfg Config) *base {
	b := &base{
		kind:      kind,
		lid:       cfg.LocalIndex,
		state:     state,
		tr:        cfg.Transport,
		sched:     cfg.Scheduler,
		ind:       cfg.Indicator,
		logger:    cfg.Logger,
		defaultTT: cfg.DefaultTransitionMS,
		handlers:  make(map[wire.Opcode]requestHandler),
		interp:    linear,
		encode:    func(v int32) uint32 { return uint32(v) },
	}
	if b.sched == nil {
		b.sched = duration.RealScheduler{}
	}
	if b.ind == nil {
		b.ind = model.NoopIndicator{}
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.replay = replay.New(b.sched, cfg.ReplayOptions...)
	b.timers = duration.NewManager(b.sched)
	b.timers.OnExpiry(b.onTimer)
	return b
}

// ID returns the SIG model identifier.
func (b *base) ID() model.ID { return b.kind.ID() }

// Kind returns the server kind.
func (b *base) Kind() model.Kind { return b.kind }

// LocalIndex returns the instance handle.
func (b *base) LocalIndex() model.LocalIndex { return b.lid }

// OpcodeAllowed accepts the request opcodes of the model.
func (b *base) OpcodeAllowed(op wire.Opcode) error {
	if _, ok := b.handlers[op]; !ok {
		return wire.ErrInvalidOpcode
	}
	return nil
}

// Receive handles a request. Malformed requests are dropped.
func (b *base) Receive(buf *wire.Buffer, env *wire.RouteEnv) {
	h, ok := b.handlers[env.Opcode]
	if !ok {
		return
	}
	if err := h(buf, env); err != nil {
		b.logger.Debug("dropping request",
			"model", b.kind,
			"opcode", env.Opcode,
			"src", env.Src,
			"len", buf.Len(),
			"error", err)
	}
}

// Close stops the server's timers and replay list.
func (b *base) Close() {
	b.timers.Stop()
	b.replay.Close()
}

// Group returns the binding group the server belongs to, if any.
func (b *base) Group() *binding.Group {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.group
}

func (b *base) joinGroup(g *binding.Group, halt func()) {
	b.mu.Lock()
	b.group = g
	b.halt = halt
	b.mu.Unlock()
}

// halter returns the group halt function, or nil when unbound.
func (b *base) halter() func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.halt
}

func (b *base) handle(op wire.Opcode, h requestHandler) {
	b.handlers[op] = h
}

// setParams holds the decoded common tail of a set message.
type setParams struct {
	tid     uint8
	ttMS    uint32
	delayMS uint32
}

// parseSet checks a set message of the given short length and decodes its
// TID and optional transition fields.
func (b *base) parseSet(buf *wire.Buffer, shortLen int) (setParams, error) {
	var p setParams
	long, ok := wire.StatusForm(buf.Len(), shortLen, shortLen+wire.TransitionFieldsLen)
	if !ok {
		return p, wire.ErrMalformed
	}
	p.tid = buf.U8(shortLen - 1)
	p.ttMS = b.defaultTT
	if long {
		tt := buf.U8(shortLen)
		if transition.IsUnknown(tt) {
			return p, fmt.Errorf("%w: unknown transition time", wire.ErrMalformed)
		}
		p.ttMS = transition.Unpack(tt)
		p.delayMS = transition.UnpackDelay(buf.U8(shortLen + 1))
	}
	return p, nil
}

// seen reports whether the set is a retransmission.
func (b *base) seen(env *wire.RouteEnv, tid uint8) bool {
	return b.replay.IsRetransmission(uint16(env.Src), tid)
}

// reply allocates a status addressed to the sender of env.
func (b *base) reply(env *wire.RouteEnv, op wire.Opcode, n int) (*wire.Buffer, error) {
	buf, err := b.tr.Alloc(uint16(n))
	if err != nil {
		b.logger.Warn("status allocation failed", "model", b.kind, "opcode", op, "error", err)
		return nil, fmt.Errorf("%s %s: %w", b.kind, op, err)
	}
	buf.Env = env.Reply(op, uint8(b.lid))
	return buf, nil
}

// snapshot returns the present value, target and remaining time.
func (b *base) snapshot() (present, target int32, remainingMS uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *base) snapshotLocked() (present, target int32, remainingMS uint32) {
	t := &b.t
	switch t.phase {
	case phaseDelay:
		rem := b.timers.Remaining(uint8(b.lid), duration.TimerDelay)
		return t.present, t.target, uint32(rem.Milliseconds()) + t.ttMS
	case phaseMoving:
		rem := b.timers.Remaining(uint8(b.lid), duration.TimerTransition)
		total := transition.Duration(t.ttMS)
		frac := float64(total-rem) / float64(total)
		return b.interp(t.from, t.target, frac), t.target, uint32(rem.Milliseconds())
	default:
		return t.present, t.present, 0
	}
}

// run starts a transition to target, replacing any transition in progress.
// It reports whether the state changed immediately.
func (b *base) run(target int32, ttMS, delayMS uint32) bool {
	return b.start(target, ttMS, delayMS, false)
}

// start is run for a transition that is a move when move is set. Status
// messages report the remaining time of a move as unknown.
func (b *base) start(target int32, ttMS, delayMS uint32, move bool) bool {
	b.mu.Lock()
	changed := b.runLocked(target, ttMS, delayMS)
	b.t.move = move && b.t.phase != phaseIdle
	b.mu.Unlock()

	if changed {
		b.indicate()
	}
	return changed
}

func (b *base) runLocked(target int32, ttMS, delayMS uint32) bool {
	b.settleLocked()
	b.timers.CancelAll(uint8(b.lid))

	t := &b.t
	t.target = target
	t.ttMS = ttMS
	t.move = false
	if delayMS > 0 {
		t.phase = phaseDelay
		if err := b.timers.SetTimer(uint8(b.lid), duration.TimerDelay, transition.Duration(delayMS), nil); err == nil {
			return false
		}
	}
	return b.beginLocked()
}

// beginLocked starts the moving phase, or applies the target at once when
// there is no transition time.
func (b *base) beginLocked() bool {
	t := &b.t
	if t.ttMS > 0 {
		t.from = t.present
		t.started = b.sched.Now()
		t.phase = phaseMoving
		if err := b.timers.SetTimer(uint8(b.lid), duration.TimerTransition, transition.Duration(t.ttMS), nil); err == nil {
			// Some states change at the start of a transition.
			if p := b.interp(t.from, t.target, 0); p != t.present {
				t.present = p
				return true
			}
			return false
		}
	}
	t.phase = phaseIdle
	changed := t.present != t.target
	t.present = t.target
	return changed
}

// settleLocked freezes a moving transition at its current value.
func (b *base) settleLocked() {
	if b.t.phase == phaseMoving {
		b.t.present, _, _ = b.snapshotLocked()
	}
	b.t.phase = phaseIdle
}

// set moves the state to v at once, cancelling any transition.
func (b *base) set(v int32) {
	b.mu.Lock()
	b.timers.CancelAll(uint8(b.lid))
	changed := b.t.present != v || b.t.phase != phaseIdle
	b.t = track{present: v, target: v}
	b.mu.Unlock()

	if changed {
		b.indicate()
	}
}

func (b *base) onTimer(_ uint8, kind duration.TimerKind, _ any) {
	b.mu.Lock()
	var changed, finished bool
	switch kind {
	case duration.TimerDelay:
		if b.t.phase != phaseDelay {
			b.mu.Unlock()
			return
		}
		changed = b.beginLocked()
		finished = b.t.phase == phaseIdle
	case duration.TimerTransition:
		if b.t.phase != phaseMoving {
			b.mu.Unlock()
			return
		}
		b.t.phase = phaseIdle
		changed = b.t.present != b.t.target
		b.t.present = b.t.target
		finished = true
	}
	done := b.done
	b.mu.Unlock()

	if changed || finished {
		b.indicate()
	}
	if finished && done != nil {
		done()
	}
}

// status replies with the present state, in the long form while a
// transition is pending or running. size is the width of one state value.
func (b *base) status(env *wire.RouteEnv, op wire.Opcode, size int, put func(buf *wire.Buffer, off int, v int32)) error {
	b.mu.Lock()
	present, target, rem := b.snapshotLocked()
	remByte := remainingByte(rem)
	if b.t.move && b.t.phase != phaseIdle {
		remByte = transition.Unknown
	}
	b.mu.Unlock()
	return b.statusOf(env, op, size, put, present, target, remByte)
}

func (b *base) statusOf(env *wire.RouteEnv, op wire.Opcode, size int, put func(buf *wire.Buffer, off int, v int32),
	present, target int32, remByte uint8) error {
	long := remByte != 0 || present != target
	n := size
	if long {
		n = 2*size + 1
	}
	buf, err := b.reply(env, op, n)
	if err != nil {
		return err
	}
	put(buf, 0, present)
	if long {
		put(buf, size, target)
		buf.PutU8(2*size, remByte)
	}
	b.tr.Send(buf)
	return nil
}

// request drives the state towards target, through the binding group when
// the server is bound. A busy group leaves the state unchanged.
func (b *base) request(kind model.TransitionKind, target int32, p setParams) {
	b.requestTransition(kind, target, p, false)
}

func (b *base) requestTransition(kind model.TransitionKind, target int32, p setParams, move bool) {
	g := b.Group()
	if g == nil {
		b.start(target, p.ttMS, p.delayMS, move)
		return
	}
	err := g.RequestTransition(binding.Request{
		Requester:   b.lid,
		Kind:        kind,
		State:       target,
		TransTimeMS: p.ttMS,
		DelayMS:     p.delayMS,
		Move:        move,
	})
	if err != nil {
		b.logger.Debug("group transition refused", "model", b.kind, "group", g.ID(), "error", err)
	}
}

// OnTransitionStart runs the member's share of a group transition.
func (b *base) OnTransitionStart(ev binding.StartEvent) {
	if ev.HasTarget {
		b.start(ev.Target, ev.TransTimeMS, ev.DelayMS, ev.Move)
	}
}

// OnTransitionEnd snaps the member to its target.
func (b *base) OnTransitionEnd(binding.EndEvent) {
	b.finish()
}

// finish completes a pending or running transition at once.
func (b *base) finish() {
	b.mu.Lock()
	if b.t.phase == phaseIdle {
		b.mu.Unlock()
		return
	}
	b.timers.CancelAll(uint8(b.lid))
	b.t.phase = phaseIdle
	b.t.present = b.t.target
	b.mu.Unlock()

	b.indicate()
}

// stop freezes a running transition where it stands.
func (b *base) stop() {
	b.mu.Lock()
	wasIdle := b.t.phase == phaseIdle
	b.settleLocked()
	b.timers.CancelAll(uint8(b.lid))
	b.t.target = b.t.present
	b.mu.Unlock()

	if !wasIdle {
		b.indicate()
	}
}

// present returns the present value.
func (b *base) present() int32 {
	p, _, _ := b.snapshot()
	return p
}

// indicate reports the local state to the application.
func (b *base) indicate() {
	present, target, rem := b.snapshot()
	if b.observe != nil {
		b.observe(present, target)
	}
	b.ind.StateInd(model.StateIndication{
		LocalIndex:  b.lid,
		State:       b.state,
		Value1:      b.encode(present),
		Value2:      b.encode(target),
		RemainingMS: rem,
	})
}

// remainingByte packs a remaining time for a status message.
func remainingByte(ms uint32) uint8 {
	return transition.Pack(ms)
}

func linear(from, target int32, frac float64) int32 {
	if frac <= 0 {
		return from
	}
	if frac >= 1 {
		return target
	}
	return from + int32(float64(target-from)*frac)
}
