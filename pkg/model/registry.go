package model

import (
	"errors"
	"sync"
)

// Registry errors.
var (
	ErrRegistryFull   = errors.New("model registry full")
	ErrDuplicateModel = errors.New("model already registered on element")
	ErrModelNotFound  = errors.New("model not found")
	ErrAlreadyBound   = errors.New("model already bound")
	ErrRoleMismatch   = errors.New("model role mismatch")
	ErrRegistryClosed = errors.New("model registry closed")
)

// LocalIndex is the handle of a registered model instance.
type LocalIndex uint8

// InvalidLocalIndex is the sentinel for "no such instance".
const InvalidLocalIndex LocalIndex = 0xFF

// IsValid reports whether lid is not the sentinel.
func (lid LocalIndex) IsValid() bool {
	return lid != InvalidLocalIndex
}

// DefaultCapacity is the registry capacity used when none is configured.
const DefaultCapacity = 32

// MaxCapacity is the largest capacity a registry can have: every valid
// LocalIndex below the sentinel.
const MaxCapacity = int(InvalidLocalIndex)

// ConfigFlags configures a registered instance.
type ConfigFlags uint8

// Configuration flags.
const (
	// FlagAllowDuplicate allows more than one instance of the same model on
	// one element.
	FlagAllowDuplicate ConfigFlags = 1 << iota

	// FlagPublish enables publication of unsolicited statuses.
	FlagPublish

	// FlagSubscribe enables reception on subscribed group addresses.
	FlagSubscribe
)

// Has reports whether all bits of f are set.
func (c ConfigFlags) Has(f ConfigFlags) bool {
	return c&f == f
}

// Env is the per-instance model environment. It is created by Register and
// completed by BindState; it lives until the registry is closed.
type Env struct {
	id      ID
	element uint8
	lid     LocalIndex
	flags   ConfigFlags
	role    Role
	model   Model
}

// ID returns the model identifier.
func (e *Env) ID() ID { return e.id }

// Element returns the index of the hosting element.
func (e *Env) Element() uint8 { return e.element }

// LocalIndex returns the instance handle.
func (e *Env) LocalIndex() LocalIndex { return e.lid }

// Flags returns the configuration flags.
func (e *Env) Flags() ConfigFlags { return e.flags }

// Role returns the role of the instance.
func (e *Env) Role() Role { return e.role }

// Model returns the bound implementation, or nil before BindState.
func (e *Env) Model() Model { return e.model }

// Bound reports whether an implementation has been attached.
func (e *Env) Bound() bool { return e.model != nil }

// Registry owns every model environment of a node. Local indices are handed
// out in increasing order and never reused.
type Registry struct {
	mu       sync.RWMutex
	capacity int
	envs     []*Env
	closed   bool
}

// NewRegistry creates a registry holding at most capacity instances.
// Values outside 1..MaxCapacity select DefaultCapacity or MaxCapacity.
func NewRegistry(capacity int) *Registry {
	switch {
	case capacity <= 0:
		capacity = DefaultCapacity
	case capacity > MaxCapacity:
		capacity = MaxCapacity
	}
	return &Registry{
		capacity: capacity,
		envs:     make([]*Env, 0, capacity),
	}
}

// Capacity returns the maximum number of instances.
func (r *Registry) Capacity() int {
	return r.capacity
}

// Register reserves a local index for model id on element.
// It fails with ErrRegistryFull when no index is left and with
// ErrDuplicateModel when the model is already present on the element and
// neither registration allows duplicates.
func (r *Registry) Register(id ID, element uint8, flags ConfigFlags) (LocalIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return InvalidLocalIndex, ErrRegistryClosed
	}
	if len(r.envs) >= r.capacity {
		return InvalidLocalIndex, ErrRegistryFull
	}
	for _, e := range r.envs {
		if e.id == id && e.element == element {
			if !flags.Has(FlagAllowDuplicate) || !e.flags.Has(FlagAllowDuplicate) {
				return InvalidLocalIndex, ErrDuplicateModel
			}
		}
	}

	lid := LocalIndex(len(r.envs))
	r.envs = append(r.envs, &Env{
		id:      id,
		element: element,
		lid:     lid,
		flags:   flags,
		role:    id.Role(),
	})
	return lid, nil
}

// BindState attaches the implementation m to the instance registered as
// (element, id) under lid. The role must match the role implied by id and
// the role m reports for its kind.
func (r *Registry) BindState(element uint8, id ID, lid LocalIndex, role Role, m Model) (*Env, error) {
	if m == nil {
		return nil, ErrModelNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	e := r.lookup(lid)
	if e == nil || e.id != id || e.element != element || m.ID() != id {
		return nil, ErrModelNotFound
	}
	if e.role != role || m.Kind().Role() != role {
		return nil, ErrRoleMismatch
	}
	if e.model != nil {
		return nil, ErrAlreadyBound
	}
	e.model = m
	return e, nil
}

// Env returns the environment for lid.
func (r *Registry) Env(lid LocalIndex) (*Env, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e := r.lookup(lid)
	return e, e != nil
}

// Model returns the bound implementation for lid.
func (r *Registry) Model(lid LocalIndex) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e := r.lookup(lid)
	if e == nil || e.model == nil {
		return nil, false
	}
	return e.model, true
}

// LocalIndex returns the first instance of model id on element.
func (r *Registry) LocalIndex(element uint8, id ID) (LocalIndex, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.envs {
		if e.id == id && e.element == element {
			return e.lid, true
		}
	}
	return InvalidLocalIndex, false
}

// Envs returns every environment in local index order.
func (r *Registry) Envs() []*Env {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Env, len(r.envs))
	copy(result, r.envs)
	return result
}

// ElementEnvs returns the environments hosted by element.
func (r *Registry) ElementEnvs(element uint8) []*Env {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*Env
	for _, e := range r.envs {
		if e.element == element {
			result = append(result, e)
		}
	}
	return result
}

// Count returns the number of registered instances.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.envs)
}

// Close tears the registry down. Every lookup fails afterwards and no
// further registration is accepted, so no index is ever handed out twice.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.envs = nil
}

func (r *Registry) lookup(lid LocalIndex) *Env {
	if !lid.IsValid() || int(lid) >= len(r.envs) {
		return nil
	}
	return r.envs[lid]
}
