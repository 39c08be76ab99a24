// Package wire defines the Bluetooth Mesh access layer wire format used by the
// model layer.
//
// An access message is an opcode followed by a model-specific parameter
// block. Parameters are packed little-endian at fixed offsets; there is no
// self-describing framing, so a receiver tells optional fields apart only by
// the parameter length.
//
// # Opcodes
//
// Opcodes are 1, 2 or 3 bytes long, distinguished by the two most significant
// bits of the first byte:
//
//	0xxxxxxx            1-octet SIG opcode (0x7F reserved)
//	10xxxxxx xxxxxxxx   2-octet SIG opcode
//	11xxxxxx cid cid    3-octet vendor opcode (company identifier, little-endian)
//
// Opcodes are kept as uint32 holding the octets in transmission order, so the
// Generic OnOff Get opcode 0x82 0x01 is Opcode(0x8201).
//
// # Route Environment
//
// Every message travels with a RouteEnv carrying the opcode, the source or
// destination address, the application key reference and the local index of
// the model instance handling it. A RouteEnv is borrowed for one dispatch and
// never retained.
//
// # Message Length
//
// Set messages exist in a short form (state + TID) and a long form that adds
// the transition time and delay bytes. Status messages carry either the
// present state only or the present state, target state and remaining time.
// The Len* constants document both forms of every message.
package wire
