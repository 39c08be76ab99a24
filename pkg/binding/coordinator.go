package binding

import (
	"errors"
	"sync"

	"github.com/meshmodel/mm-go/pkg/model"
)

// ErrTooManyGroups is returned when every group identifier is in use.
var ErrTooManyGroups = errors.New("too many groups")

// Coordinator owns the groups of a node.
type Coordinator struct {
	mu sync.RWMutex

	groups []*Group
	byLID  map[model.LocalIndex]*Group

	onStateChange func(g *Group, oldState, newState State)
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		byLID: make(map[model.LocalIndex]*Group),
	}
}

// OnStateChange registers a callback run on every group state change.
// It applies to groups created afterwards.
func (c *Coordinator) OnStateChange(fn func(g *Group, oldState, newState State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = fn
}

// NewGroup creates a group arbitrated by the main model at lid.
func (c *Coordinator) NewGroup(lid model.LocalIndex, mainHandler Main) (*Group, error) {
	if !lid.IsValid() || mainHandler == nil {
		return nil, ErrNotMember
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byLID[lid]; ok {
		return nil, ErrAlreadyGrouped
	}
	if len(c.groups) >= 0xFF {
		return nil, ErrTooManyGroups
	}

	g := &Group{
		id:            uint8(len(c.groups)),
		coord:         c,
		main:          lid,
		mainHandler:   mainHandler,
		members:       map[model.LocalIndex]Member{lid: mainHandler},
		order:         []model.LocalIndex{lid},
		onStateChange: c.onStateChange,
	}
	c.groups = append(c.groups, g)
	c.byLID[lid] = g
	return g, nil
}

// Bind adds the member at lid to the group.
func (g *Group) Bind(lid model.LocalIndex, m Member) error {
	return g.coord.bind(g, lid, m)
}

func (c *Coordinator) bind(g *Group, lid model.LocalIndex, m Member) error {
	if !lid.IsValid() || m == nil {
		return ErrNotMember
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byLID[lid]; ok {
		return ErrAlreadyGrouped
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateIdle {
		return ErrBusy
	}
	g.members[lid] = m
	g.order = append(g.order, lid)
	c.byLID[lid] = g
	return nil
}

// GroupOf returns the group lid belongs to.
func (c *Coordinator) GroupOf(lid model.LocalIndex) (*Group, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.byLID[lid]
	return g, ok
}

// Groups returns every group in creation order.
func (c *Coordinator) Groups() []*Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*Group, len(c.groups))
	copy(result, c.groups)
	return result
}
