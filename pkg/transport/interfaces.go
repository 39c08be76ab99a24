package transport

import "github.com/meshmodel/mm-go/pkg/wire"

// Transport is the lower layer a mesh node sends access messages through.
type Transport interface {
	// Alloc returns a buffer with payloadLen parameter bytes, or
	// wire.ErrInsufficientResources when none is available.
	Alloc(payloadLen uint16) (*wire.Buffer, error)

	// Send hands buf to the transport, which owns it from then on. There is
	// no delivery confirmation: the message is transmitted or dropped.
	Send(buf *wire.Buffer)
}

// FrameReadWriter provides length-prefixed frame I/O.
// Implemented by Framer.
type FrameReadWriter interface {
	// ReadFrame reads a length-prefixed frame.
	ReadFrame() ([]byte, error)

	// WriteFrame writes a length-prefixed frame.
	WriteFrame(data []byte) error
}

// Compile-time interface satisfaction checks.
var (
	_ FrameReadWriter = (*Framer)(nil)
)
