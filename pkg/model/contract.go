package model

import "github.com/meshmodel/mm-go/pkg/wire"

// Model is the dispatch contract every registered instance implements.
type Model interface {
	// ID returns the SIG model identifier.
	ID() ID

	// Kind returns the implementation variant.
	Kind() Kind

	// OpcodeAllowed reports whether the instance handles op. It returns
	// wire.ErrInvalidOpcode otherwise. It must not have side effects.
	OpcodeAllowed(op wire.Opcode) error

	// Receive handles a message whose opcode passed OpcodeAllowed.
	// Neither buf nor env may be retained after the call returns.
	Receive(buf *wire.Buffer, env *wire.RouteEnv)
}

// Getter is implemented by clients able to request a state.
type Getter interface {
	// Get sends the get message chosen by selector. A selector beyond the
	// model's maximum fails with wire.ErrInvalidParam before anything is
	// allocated.
	Get(appKey wire.AppKeyRef, dst wire.Address, selector uint8) error
}

// Setter is implemented by clients able to set a state without a
// transition.
type Setter interface {
	Set(appKey wire.AppKeyRef, dst wire.Address, state1, state2 uint32, info SetInfo) error
}

// Transitioner is implemented by clients able to start a transition.
type Transitioner interface {
	Transition(appKey wire.AppKeyRef, dst wire.Address, req TransitionRequest) error
}

// StateSetter is implemented by servers whose state can be driven by a
// bound group.
type StateSetter interface {
	// SetState sets the state identified by kind to value without sending
	// anything. remainingMS is the time left until value is reached.
	SetState(kind TransitionKind, value int32, remainingMS uint32)
}

// SetKind selects which state a Set call writes.
type SetKind uint8

const (
	// SetDefault writes the default state (or the only settable state, for
	// the Default Transition Time and Power OnOff models).
	SetDefault SetKind = iota

	// SetRange writes the range state.
	SetRange
)

// String returns the set kind name.
func (k SetKind) String() string {
	switch k {
	case SetDefault:
		return "DEFAULT"
	case SetRange:
		return "RANGE"
	default:
		return "UNKNOWN"
	}
}

// SetInfo qualifies a Set call.
type SetInfo struct {
	// Ack selects the acknowledged opcode.
	Ack bool

	// Kind selects the state to write.
	Kind SetKind
}

// TransitionKind selects which state a Transition call drives. Values are
// model specific; 0 always selects the main state of the model.
type TransitionKind uint8

// TransitionMain selects the main state of a model.
const TransitionMain TransitionKind = 0

// TransitionInfo qualifies a Transition call.
type TransitionInfo struct {
	// Ack selects the acknowledged opcode.
	Ack bool

	// Long forces the long message form even with zero transition time
	// and delay.
	Long bool

	// Kind selects the state to drive.
	Kind TransitionKind

	// TID is the transaction identifier.
	TID uint8
}

// TransitionRequest is the argument of Transitioner.Transition.
type TransitionRequest struct {
	// State1 and State2 carry the target. Three-field states pack two
	// 16-bit values into State2 with PackPair.
	State1 uint32
	State2 uint32

	// TransTimeMS is the transition time in milliseconds.
	TransTimeMS uint32

	// DelayMS is the delay before the transition starts, in milliseconds.
	DelayMS uint32

	Info TransitionInfo
}

// IsLong reports whether the request needs the long message form.
func (r TransitionRequest) IsLong() bool {
	return r.Info.Long || r.TransTimeMS != 0 || r.DelayMS != 0
}

// PackPair packs two 16-bit values into one state argument, lo in the low
// half.
func PackPair(lo, hi uint16) uint32 {
	return uint32(lo) | uint32(hi)<<16
}

// UnpackPair splits a state argument built by PackPair.
func UnpackPair(v uint32) (lo, hi uint16) {
	return uint16(v), uint16(v >> 16)
}
