package log

import (
	"time"

	"github.com/meshmodel/mm-go/pkg/wire"
)

// Event is one protocol log record. Exactly one of Frame, Message,
// StateChange or Error is set. Integer CBOR keys keep records small.
type Event struct {
	Timestamp time.Time `cbor:"1,keyasint"`
	SessionID string    `cbor:"2,keyasint"`
	Direction Direction `cbor:"3,keyasint"`
	Layer     Layer     `cbor:"4,keyasint"`
	Category  Category  `cbor:"5,keyasint"`

	// LocalAddr is the primary address of the logging node.
	LocalAddr uint16 `cbor:"6,keyasint,omitempty"`

	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"`
}

// Direction of a message relative to the logging node.
type Direction uint8

const (
	DirectionIn  Direction = 0
	DirectionOut Direction = 1
)

// Layer that captured an event.
type Layer uint8

const (
	// LayerTransport sees length-prefixed frames.
	LayerTransport Layer = 0
	// LayerAccess sees opcodes and parameters.
	LayerAccess Layer = 1
	// LayerModel sees model state and binding groups.
	LayerModel Layer = 2
)

// Category classifies an event. Value 1 is unassigned.
type Category uint8

const (
	CategoryMessage Category = 0
	CategoryState   Category = 2
	CategoryError   Category = 3
)

// StateEntity identifies what changed state.
type StateEntity uint8

const (
	StateEntityGroup StateEntity = 0
	StateEntityModel StateEntity = 1
	StateEntityPeer  StateEntity = 2
)

var (
	directionNames = []string{DirectionIn: "IN", DirectionOut: "OUT"}
	layerNames     = []string{LayerTransport: "TRANSPORT", LayerAccess: "ACCESS", LayerModel: "MODEL"}
	categoryNames  = []string{CategoryMessage: "MESSAGE", CategoryState: "STATE", CategoryError: "ERROR"}
	entityNames    = []string{StateEntityGroup: "GROUP", StateEntityModel: "MODEL", StateEntityPeer: "PEER"}
)

func enumName(names []string, v uint8) string {
	if int(v) < len(names) && names[v] != "" {
		return names[v]
	}
	return "UNKNOWN"
}

func (d Direction) String() string   { return enumName(directionNames, uint8(d)) }
func (l Layer) String() string       { return enumName(layerNames, uint8(l)) }
func (c Category) String() string    { return enumName(categoryNames, uint8(c)) }
func (e StateEntity) String() string { return enumName(entityNames, uint8(e)) }

// FrameEvent is a length-prefixed frame seen by a stream bearer. Data holds
// at most transport.MaxLogFrameDataSize bytes.
type FrameEvent struct {
	Size      int    `cbor:"1,keyasint"`
	Data      []byte `cbor:"2,keyasint"`
	Truncated bool   `cbor:"3,keyasint,omitempty"`
}

// MessageEvent is an access message sent or received by a node.
type MessageEvent struct {
	Opcode wire.Opcode `cbor:"1,keyasint"`
	Src    uint16      `cbor:"2,keyasint"`
	Dst    uint16      `cbor:"3,keyasint"`
	AppKey uint8       `cbor:"4,keyasint"`

	// LocalIndex is 0xFF when no model claimed the message.
	LocalIndex uint8  `cbor:"5,keyasint"`
	TTL        uint8  `cbor:"6,keyasint,omitempty"`
	Params     []byte `cbor:"7,keyasint,omitempty"`

	// Dropped messages were not delivered to any model; Reason says why.
	Dropped bool   `cbor:"8,keyasint,omitempty"`
	Reason  string `cbor:"9,keyasint,omitempty"`
}

// StateChangeEvent records a transition of a binding group, a server's
// state or a bearer peer. ID is the group id or local index.
type StateChangeEvent struct {
	Entity   StateEntity `cbor:"1,keyasint"`
	ID       uint8       `cbor:"2,keyasint,omitempty"`
	OldState string      `cbor:"3,keyasint"`
	NewState string      `cbor:"4,keyasint"`
	Reason   string      `cbor:"5,keyasint,omitempty"`
}

// ErrorEventData records a failure at Layer.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`
	Code    *int   `cbor:"3,keyasint,omitempty"`
	Context string `cbor:"4,keyasint,omitempty"`
}
