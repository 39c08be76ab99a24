package wire

import "fmt"

// Address is a 16-bit mesh address.
type Address uint16

// Address ranges.
const (
	// AddrUnassigned is the unassigned address.
	AddrUnassigned Address = 0x0000

	// AddrAllProxies is the all-proxies fixed group address.
	AddrAllProxies Address = 0xFFFC

	// AddrAllFriends is the all-friends fixed group address.
	AddrAllFriends Address = 0xFFFD

	// AddrAllRelays is the all-relays fixed group address.
	AddrAllRelays Address = 0xFFFE

	// AddrAllNodes is the all-nodes fixed group address.
	AddrAllNodes Address = 0xFFFF
)

// IsUnassigned reports whether a is the unassigned address.
func (a Address) IsUnassigned() bool { return a == AddrUnassigned }

// IsUnicast reports whether a is a unicast address.
func (a Address) IsUnicast() bool { return a != AddrUnassigned && a&0x8000 == 0 }

// IsVirtual reports whether a is a virtual address.
func (a Address) IsVirtual() bool { return a&0xC000 == 0x8000 }

// IsGroup reports whether a is a group address.
func (a Address) IsGroup() bool { return a&0xC000 == 0xC000 }

// String returns the address as four hex digits.
func (a Address) String() string {
	return fmt.Sprintf("0x%04X", uint16(a))
}

// AppKeyRef references an application key bound to the local node.
type AppKeyRef uint8

// AppKeyInvalid marks an absent application key reference.
const AppKeyInvalid AppKeyRef = 0xFF

// RouteInfo carries the routing flags of a message.
type RouteInfo struct {
	// Rx is set for received messages and clear for messages being sent.
	Rx bool

	// Publish is set when the message is a publication rather than a reply.
	Publish bool

	// Relay allows relaying of the message.
	Relay bool

	// Segmented forces the lower transport to segment the message.
	Segmented bool

	// TTL is the time-to-live (0 selects the default TTL).
	TTL uint8
}

// RouteEnv is the per-message routing environment. It is built just before a
// send or supplied by the transport on receive, and it is never retained
// after the call it was passed to.
type RouteEnv struct {
	// Opcode of the message.
	Opcode Opcode

	// Info holds the routing flags.
	Info RouteInfo

	// Src is the source address. Meaningful for received messages.
	Src Address

	// Dst is the destination address. Meaningful for messages being sent.
	Dst Address

	// AppKey references the application key protecting the message.
	AppKey AppKeyRef

	// LocalIndex is the local index of the model instance sending or
	// receiving the message.
	LocalIndex uint8

	// RSSI of the received message, if known.
	RSSI int8
}

// Addr returns the meaningful address for the message direction: the source
// for received messages, the destination otherwise.
func (e *RouteEnv) Addr() Address {
	if e.Info.Rx {
		return e.Src
	}
	return e.Dst
}

// Reply returns the route environment for a reply to a received message.
func (e *RouteEnv) Reply(op Opcode, localIndex uint8) RouteEnv {
	return RouteEnv{
		Opcode:     op,
		Dst:        e.Src,
		AppKey:     e.AppKey,
		LocalIndex: localIndex,
	}
}
