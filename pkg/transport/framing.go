package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/meshmodel/mm-go/pkg/log"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Framing constants. A frame is a big-endian 16-bit length followed by one
// PDU of that many octets.
const (
	LengthPrefixSize      = 2
	DefaultMaxMessageSize = MaxPDUSize

	// MaxLogFrameDataSize caps the frame bytes copied into log events.
	MaxLogFrameDataSize = 64
)

// Framing errors.
var (
	ErrMessageTooLarge = errors.New("message too large")
	ErrMessageEmpty    = errors.New("message is empty")
	ErrFrameTruncated  = errors.New("frame truncated")
)

// FrameSize returns the octets a PDU of pduLen occupies on the stream.
func FrameSize(pduLen int) int {
	return LengthPrefixSize + pduLen
}

// Framer reads and writes frames on a byte stream. WriteFrame is safe for
// concurrent use; ReadFrame must be called from one goroutine.
type Framer struct {
	rw  io.ReadWriter
	max int

	wmu    sync.Mutex
	prefix [LengthPrefixSize]byte

	logger  log.Logger
	session string
	local   uint16
}

// NewFramer creates a framer on rw accepting PDUs up to maxSize octets.
// Zero selects DefaultMaxMessageSize; sizes the prefix cannot express are
// clamped.
func NewFramer(rw io.ReadWriter, maxSize uint32) *Framer {
	switch {
	case maxSize == 0:
		maxSize = DefaultMaxMessageSize
	case maxSize > 0xFFFF:
		maxSize = 0xFFFF
	}
	return &Framer{rw: rw, max: int(maxSize)}
}

// SetLogger captures every frame into logger, tagged with sessionID and the
// local node address. Pass nil to disable capture.
func (f *Framer) SetLogger(logger log.Logger, sessionID string, local wire.Address) {
	f.logger = logger
	f.session = sessionID
	f.local = uint16(local)
}

// WriteFrame writes pdu as one frame.
func (f *Framer) WriteFrame(pdu []byte) error {
	if len(pdu) == 0 {
		return ErrMessageEmpty
	}
	if len(pdu) > f.max {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(pdu), f.max)
	}

	frame := make([]byte, FrameSize(len(pdu)))
	binary.BigEndian.PutUint16(frame, uint16(len(pdu)))
	copy(frame[LengthPrefixSize:], pdu)

	// One write per frame keeps concurrent senders from interleaving.
	f.wmu.Lock()
	_, err := f.rw.Write(frame)
	f.wmu.Unlock()
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	f.capture(pdu, log.DirectionOut)
	return nil
}

// ReadFrame reads the next frame and returns its PDU. A clean end of stream
// between frames returns io.EOF.
func (f *Framer) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(f.rw, f.prefix[:]); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("read length prefix: %w", err)
	}

	n := int(binary.BigEndian.Uint16(f.prefix[:]))
	if n == 0 {
		return nil, ErrMessageEmpty
	}
	if n > f.max {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, n, f.max)
	}

	pdu := make([]byte, n)
	if _, err := io.ReadFull(f.rw, pdu); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}

	f.capture(pdu, log.DirectionIn)
	return pdu, nil
}

func (f *Framer) capture(pdu []byte, dir log.Direction) {
	if f.logger == nil {
		return
	}
	data := pdu
	if len(data) > MaxLogFrameDataSize {
		data = data[:MaxLogFrameDataSize]
	}
	f.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: f.session,
		Direction: dir,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		LocalAddr: f.local,
		Frame: &log.FrameEvent{
			Size:      FrameSize(len(pdu)),
			Data:      append([]byte(nil), data...),
			Truncated: len(data) < len(pdu),
		},
	})
}
