// Package transport is the boundary between mesh models and whatever moves
// their messages.
//
// Models only see the Transport interface: Alloc a buffer, fill it, Send it.
// Sending transfers ownership and there is no delivery confirmation. Inbound
// buffers reach a Receiver with Info.Rx set and an unresolved local index.
//
// # Bearers
//
//   - Loopback connects stacks inside one process. It bounds outstanding
//     buffers, counts allocations and delivers in FIFO order from Flush or
//     Run, never from inside Send.
//   - Stream carries one PDU per length-prefixed frame over a byte stream.
//   - Hub listens for Stream peers over TCP and broadcasts to all of them,
//     optionally relaying between peers.
//
// # Frame Format
//
//	len(2, big-endian) | src(2) dst(2) appkey(1) ttl(1) flags(1) | opcode | params
package transport
