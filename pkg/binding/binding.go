package binding

import (
	"errors"
	"fmt"
	"sync"

	"github.com/meshmodel/mm-go/pkg/model"
)

// Binding errors.
var (
	ErrBusy           = errors.New("group transition in progress")
	ErrInvalidState   = errors.New("invalid group state")
	ErrAlreadyGrouped = errors.New("model already in a group")
	ErrNotMember      = errors.New("model not in group")
)

// State is the transition state of a group.
type State uint8

const (
	// StateIdle means no transition is pending.
	StateIdle State = iota

	// StateRequested means a request waits for the main model.
	StateRequested

	// StateApproved means the main model accepted and targets are being set.
	StateApproved

	// StateInProgress means the transition is running.
	StateInProgress
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRequested:
		return "REQUESTED"
	case StateApproved:
		return "APPROVED"
	case StateInProgress:
		return "IN_PROGRESS"
	default:
		return "UNKNOWN"
	}
}

// Request describes a transition asked for by a group member.
type Request struct {
	// Requester is the member asking for the transition.
	Requester model.LocalIndex

	// Kind is the requester's transition kind.
	Kind model.TransitionKind

	// State is the requested target, or the delta/move for delta kinds.
	State int32

	TransTimeMS uint32
	DelayMS     uint32

	// Move marks a transition of unknown length, such as a Level move.
	Move bool
}

// StartEvent is delivered to every member when a transition starts.
type StartEvent struct {
	GroupID   uint8
	Requester model.LocalIndex

	// Target is the member's own target, valid when HasTarget is set.
	Target    int32
	HasTarget bool

	TransTimeMS uint32
	DelayMS     uint32
	Move        bool
}

// EndEvent is delivered to every member when a transition ends.
type EndEvent struct {
	GroupID   uint8
	Requester model.LocalIndex
}

// Member is a model bound in a group.
type Member interface {
	OnTransitionStart(ev StartEvent)
	OnTransitionEnd(ev EndEvent)
}

// Main is the arbitrating model of a group. OnTransitionRequest must end with
// Accept or Reject on g, either before returning or later.
type Main interface {
	Member
	OnTransitionRequest(g *Group, req Request)
}

// Group is a set of bound models sharing one transition.
type Group struct {
	mu sync.Mutex

	id          uint8
	coord       *Coordinator
	main        model.LocalIndex
	mainHandler Main
	members     map[model.LocalIndex]Member
	order       []model.LocalIndex

	state   State
	request Request
	targets map[model.LocalIndex]int32

	transTimeMS uint32
	delayMS     uint32

	onStateChange func(g *Group, oldState, newState State)
}

// ID returns the group identifier.
func (g *Group) ID() uint8 { return g.id }

// Main returns the local index of the main model.
func (g *Group) Main() model.LocalIndex { return g.main }

// State returns the current state.
func (g *Group) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Pending returns the request being handled, if any.
func (g *Group) Pending() (Request, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.request, g.state != StateIdle
}

// Members returns the member local indices, main first.
func (g *Group) Members() []model.LocalIndex {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make([]model.LocalIndex, len(g.order))
	copy(result, g.order)
	return result
}

// RequestTransition asks the main model for a transition. It fails with
// ErrBusy, leaving the group unchanged, unless the group is Idle.
func (g *Group) RequestTransition(req Request) error {
	g.mu.Lock()
	if _, ok := g.members[req.Requester]; !ok {
		g.mu.Unlock()
		return ErrNotMember
	}
	if g.state != StateIdle {
		g.mu.Unlock()
		return ErrBusy
	}
	g.request = req
	g.targets = make(map[model.LocalIndex]int32)
	notify := g.setStateLocked(StateRequested)
	g.mu.Unlock()

	// Notify outside lock; the main model calls back into the group
	notify()
	g.mainHandler.OnTransitionRequest(g, req)
	return nil
}

// Accept approves the pending request with the given timing.
func (g *Group) Accept(transTimeMS, delayMS uint32) error {
	g.mu.Lock()
	if g.state != StateRequested {
		g.mu.Unlock()
		return fmt.Errorf("accept in %s: %w", g.state, ErrInvalidState)
	}
	g.transTimeMS = transTimeMS
	g.delayMS = delayMS
	notify := g.setStateLocked(StateApproved)
	g.mu.Unlock()

	notify()
	return nil
}

// Reject drops a request that has not started.
func (g *Group) Reject() error {
	g.mu.Lock()
	if g.state != StateRequested && g.state != StateApproved {
		g.mu.Unlock()
		return fmt.Errorf("reject in %s: %w", g.state, ErrInvalidState)
	}
	g.request = Request{}
	g.targets = nil
	notify := g.setStateLocked(StateIdle)
	g.mu.Unlock()

	notify()
	return nil
}

// SetTarget records the target of member lid for the approved transition.
func (g *Group) SetTarget(lid model.LocalIndex, value int32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateApproved {
		return fmt.Errorf("set target in %s: %w", g.state, ErrInvalidState)
	}
	if _, ok := g.members[lid]; !ok {
		return ErrNotMember
	}
	g.targets[lid] = value
	return nil
}

// Start moves an approved transition in progress and tells every member.
func (g *Group) Start() error {
	g.mu.Lock()
	if g.state != StateApproved {
		g.mu.Unlock()
		return fmt.Errorf("start in %s: %w", g.state, ErrInvalidState)
	}
	notify := g.setStateLocked(StateInProgress)

	type delivery struct {
		m  Member
		ev StartEvent
	}
	deliveries := make([]delivery, 0, len(g.order))
	for _, lid := range g.order {
		target, has := g.targets[lid]
		deliveries = append(deliveries, delivery{g.members[lid], StartEvent{
			GroupID:     g.id,
			Requester:   g.request.Requester,
			Target:      target,
			HasTarget:   has,
			TransTimeMS: g.transTimeMS,
			DelayMS:     g.delayMS,
			Move:        g.request.Move,
		}})
	}
	g.mu.Unlock()

	notify()
	for _, d := range deliveries {
		d.m.OnTransitionStart(d.ev)
	}
	return nil
}

// End completes the running transition and tells every member.
func (g *Group) End() error {
	g.mu.Lock()
	if g.state != StateInProgress {
		g.mu.Unlock()
		return fmt.Errorf("end in %s: %w", g.state, ErrInvalidState)
	}
	ev := EndEvent{GroupID: g.id, Requester: g.request.Requester}
	members := make([]Member, 0, len(g.order))
	for _, lid := range g.order {
		members = append(members, g.members[lid])
	}
	g.request = Request{}
	g.targets = nil
	notify := g.setStateLocked(StateIdle)
	g.mu.Unlock()

	notify()
	for _, m := range members {
		m.OnTransitionEnd(ev)
	}
	return nil
}

// setStateLocked changes the state and returns the notification to run once
// the lock is released.
func (g *Group) setStateLocked(s State) func() {
	old := g.state
	g.state = s
	cb := g.onStateChange
	if cb == nil || old == s {
		return func() {}
	}
	return func() { cb(g, old, s) }
}
