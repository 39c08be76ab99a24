package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshmodel/mm-go/pkg/model"
)

type recordingMember struct {
	starts []StartEvent
	ends   []EndEvent
}

func (m *recordingMember) OnTransitionStart(ev StartEvent) { m.starts = append(m.starts, ev) }
func (m *recordingMember) OnTransitionEnd(ev EndEvent) { m.ends = append(m.ends, ev) }

// testMain records requests and optionally handles them inline.
type testMain struct {
	recordingMember
	requests []Request
	handle   func(g *Group, req Request)
}

func (m *testMain) OnTransitionRequest(g *Group, req Request) {
	m.requests = append(m.requests, req)
	if m.handle != nil {
		m.handle(g, req)
	}
}

func newTestGroup(t *testing.T) (*Coordinator, *Group, *testMain, *recordingMember) {
	t.Helper()
	c := NewCoordinator()
	mainModel := &testMain{}
	g, err := c.NewGroup(0, mainModel)
	require.NoError(t, err)

	member := &recordingMember{}
	require.NoError(t, g.Bind(1, member))
	return c, g, mainModel, member
}

func TestGroupHappyPath(t *testing.T) {
	_, g, mainModel, member := newTestGroup(t)

	req := Request{Requester: 1, State: -100, TransTimeMS: 1000}
	require.NoError(t, g.RequestTransition(req))
	assert.Equal(t, StateRequested, g.State())
	require.Len(t, mainModel.requests, 1)
	assert.Equal(t, req, mainModel.requests[0])

	require.NoError(t, g.Accept(1000, 50))
	assert.Equal(t, StateApproved, g.State())

	require.NoError(t, g.SetTarget(0, 32668))
	require.NoError(t, g.SetTarget(1, -100))
	require.NoError(t, g.Start())
	assert.Equal(t, StateInProgress, g.State())

	require.Len(t, member.starts, 1)
	assert.Equal(t, StartEvent{
		GroupID: g.ID(), Requester: 1, Target: -100, HasTarget: true,
		TransTimeMS: 1000, DelayMS: 50,
	}, member.starts[0])
	require.Len(t, mainModel.starts, 1)
	assert.Equal(t, int32(32668), mainModel.starts[0].Target)

	require.NoError(t, g.End())
	assert.Equal(t, StateIdle, g.State())
	assert.Len(t, member.ends, 1)
	assert.Len(t, mainModel.ends, 1)

	_, pending := g.Pending()
	assert.False(t, pending)
}

func TestGroupBusyLeavesStateUnchanged(t *testing.T) {
	_, g, mainModel, _ := newTestGroup(t)

	first := Request{Requester: 0, State: 10}
	require.NoError(t, g.RequestTransition(first))
	require.NoError(t, g.Accept(0, 0))
	require.NoError(t, g.Start())

	err := g.RequestTransition(Request{Requester: 1, State: 20})
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, StateInProgress, g.State())

	pending, ok := g.Pending()
	assert.True(t, ok)
	assert.Equal(t, first, pending)
	assert.Len(t, mainModel.requests, 1, "busy request must not reach the main model")
}

func TestGroupBusyInEveryNonIdleState(t *testing.T) {
	steps := []struct {
		state   State
		advance func(g *Group) error
	}{
		{StateRequested, func(g *Group) error { return nil }},
		{StateApproved, func(g *Group) error { return g.Accept(0, 0) }},
		{StateInProgress, func(g *Group) error {
			if err := g.Accept(0, 0); err != nil {
				return err
			}
			return g.Start()
		}},
	}

	for _, tt := range steps {
		t.Run(tt.state.String(), func(t *testing.T) {
			_, g, _, _ := newTestGroup(t)
			require.NoError(t, g.RequestTransition(Request{Requester: 1}))
			require.NoError(t, tt.advance(g))
			require.Equal(t, tt.state, g.State())

			assert.ErrorIs(t, g.RequestTransition(Request{Requester: 0}), ErrBusy)
			assert.Equal(t, tt.state, g.State())
		})
	}
}

func TestGroupReject(t *testing.T) {
	_, g, _, member := newTestGroup(t)

	require.NoError(t, g.RequestTransition(Request{Requester: 1}))
	require.NoError(t, g.Reject())
	assert.Equal(t, StateIdle, g.State())

	require.NoError(t, g.RequestTransition(Request{Requester: 1}))
	require.NoError(t, g.Accept(0, 0))
	require.NoError(t, g.Reject())
	assert.Equal(t, StateIdle, g.State())
	assert.Empty(t, member.starts)

	// A running transition cannot be cancelled.
	require.NoError(t, g.RequestTransition(Request{Requester: 1}))
	require.NoError(t, g.Accept(0, 0))
	require.NoError(t, g.Start())
	assert.ErrorIs(t, g.Reject(), ErrInvalidState)
	assert.Equal(t, StateInProgress, g.State())
}

func TestGroupWrongStateCalls(t *testing.T) {
	_, g, _, _ := newTestGroup(t)

	assert.ErrorIs(t, g.Accept(0, 0), ErrInvalidState)
	assert.ErrorIs(t, g.Reject(), ErrInvalidState)
	assert.ErrorIs(t, g.SetTarget(1, 0), ErrInvalidState)
	assert.ErrorIs(t, g.Start(), ErrInvalidState)
	assert.ErrorIs(t, g.End(), ErrInvalidState)
	assert.Equal(t, StateIdle, g.State())
}

func TestGroupMembership(t *testing.T) {
	c, g, _, _ := newTestGroup(t)

	assert.ErrorIs(t, g.RequestTransition(Request{Requester: 7}), ErrNotMember)
	assert.ErrorIs(t, g.Bind(1, &recordingMember{}), ErrAlreadyGrouped)
	assert.ErrorIs(t, g.Bind(model.InvalidLocalIndex, &recordingMember{}), ErrNotMember)

	_, err := c.NewGroup(0, &testMain{})
	assert.ErrorIs(t, err, ErrAlreadyGrouped)

	got, ok := c.GroupOf(1)
	require.True(t, ok)
	assert.Same(t, g, got)
	_, ok = c.GroupOf(5)
	assert.False(t, ok)

	assert.Equal(t, []model.LocalIndex{0, 1}, g.Members())
	assert.Equal(t, model.LocalIndex(0), g.Main())

	require.NoError(t, g.RequestTransition(Request{Requester: 0}))
	require.NoError(t, g.Accept(0, 0))
	assert.ErrorIs(t, g.SetTarget(9, 1), ErrNotMember)
	assert.ErrorIs(t, g.Bind(2, &recordingMember{}), ErrBusy)
}

func TestMainHandlesInline(t *testing.T) {
	c := NewCoordinator()

	var transitions []string
	c.OnStateChange(func(g *Group, oldState, newState State) {
		transitions = append(transitions, oldState.String()+"->"+newState.String())
	})

	mainModel := &testMain{}
	mainModel.handle = func(g *Group, req Request) {
		require.NoError(t, g.Accept(req.TransTimeMS, req.DelayMS))
		require.NoError(t, g.SetTarget(g.Main(), req.State))
		require.NoError(t, g.Start())
	}
	g, err := c.NewGroup(3, mainModel)
	require.NoError(t, err)

	require.NoError(t, g.RequestTransition(Request{Requester: 3, State: 500}))
	assert.Equal(t, StateInProgress, g.State())
	require.NoError(t, g.End())

	assert.Equal(t, []string{
		"IDLE->REQUESTED", "REQUESTED->APPROVED", "APPROVED->IN_PROGRESS", "IN_PROGRESS->IDLE",
	}, transitions)
	assert.Len(t, c.Groups(), 1)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "UNKNOWN", State(99).String())
}
