package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meshmodel/mm-go/pkg/log"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// StreamState is the lifecycle state of a Stream.
type StreamState int

const (
	// StateOpen indicates the stream accepts sends.
	StateOpen StreamState = iota

	// StateClosing indicates Close is in progress.
	StateClosing

	// StateClosed indicates the stream is closed.
	StateClosed
)

// String returns the stream state name.
func (s StreamState) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Stream errors.
var (
	ErrStreamClosed = errors.New("stream closed")
	ErrAlreadyServe = errors.New("stream already serving")
)

// StreamConfig configures a Stream.
type StreamConfig struct {
	// Address replaces an unassigned source address on sent PDUs.
	Address wire.Address

	// MaxMessageSize is the largest frame accepted (default MaxPDUSize).
	MaxMessageSize uint32

	// WriteTimeout bounds each frame write when the stream is a net.Conn
	// (0 = no timeout).
	WriteTimeout time.Duration

	// ProtocolLogger captures frames (optional).
	ProtocolLogger log.Logger

	// SessionID tags protocol log events.
	SessionID string

	// Logger is the operational logger (default slog.Default()).
	Logger *slog.Logger
}

// Stream carries PDUs over a byte stream such as a TCP connection, one PDU
// per frame. It implements Transport for the sending side; Serve runs the
// receiving side.
type Stream struct {
	config StreamConfig
	conn   io.ReadWriteCloser
	framer *Framer

	state     atomic.Int32
	serving   atomic.Bool
	closeOnce sync.Once
	sent      atomic.Uint64
	dropped   atomic.Uint64
}

// NewStream wraps conn. The stream owns conn and closes it on Close.
func NewStream(conn io.ReadWriteCloser, config StreamConfig) *Stream {
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	s := &Stream{
		config: config,
		conn:   conn,
		framer: NewFramer(conn, config.MaxMessageSize),
	}
	if config.ProtocolLogger != nil {
		s.framer.SetLogger(config.ProtocolLogger, config.SessionID, config.Address)
	}
	s.state.Store(int32(StateOpen))
	return s
}

// Dial connects to a peer over TCP and returns the stream.
func Dial(ctx context.Context, address string, config StreamConfig) (*Stream, error) {
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return NewStream(conn, config), nil
}

// State returns the current stream state.
func (s *Stream) State() StreamState {
	return StreamState(s.state.Load())
}

// Sent returns the number of PDUs written.
func (s *Stream) Sent() uint64 { return s.sent.Load() }

// Dropped returns the number of PDUs that could not be written.
func (s *Stream) Dropped() uint64 { return s.dropped.Load() }

// RemoteAddr returns the peer address when the stream is a net.Conn.
func (s *Stream) RemoteAddr() net.Addr {
	if c, ok := s.conn.(net.Conn); ok {
		return c.RemoteAddr()
	}
	return nil
}

// Alloc returns an unpooled buffer. A stream only fails allocation when it
// is closed.
func (s *Stream) Alloc(payloadLen uint16) (*wire.Buffer, error) {
	if s.State() != StateOpen {
		return nil, fmt.Errorf("%w: %w", wire.ErrInsufficientResources, ErrStreamClosed)
	}
	if int(payloadLen) > wire.MaxAccessPayload {
		return nil, fmt.Errorf("%w: payload %d", wire.ErrInvalidParam, payloadLen)
	}
	return wire.NewBuffer(int(payloadLen)), nil
}

// Send encodes and writes buf. Failures are logged and counted; the caller
// gets no delivery confirmation.
func (s *Stream) Send(buf *wire.Buffer) {
	defer buf.Release()

	pdu, err := EncodePDU(buf, s.config.Address)
	if err != nil {
		s.dropped.Add(1)
		s.config.Logger.Warn("stream encode failed", "opcode", buf.Env.Opcode, "error", err)
		return
	}
	if err := s.writePDU(pdu); err != nil {
		s.dropped.Add(1)
		s.config.Logger.Warn("stream write failed", "opcode", buf.Env.Opcode, "error", err)
	}
}

func (s *Stream) writePDU(pdu []byte) error {
	if s.State() != StateOpen {
		return ErrStreamClosed
	}
	if c, ok := s.conn.(net.Conn); ok && s.config.WriteTimeout > 0 {
		_ = c.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		defer func() { _ = c.SetWriteDeadline(time.Time{}) }()
	}
	if err := s.framer.WriteFrame(pdu); err != nil {
		return err
	}
	s.sent.Add(1)
	return nil
}

// Serve reads PDUs and hands each decoded buffer to r until the stream
// ends, ctx is done, or Close is called. Malformed PDUs are skipped. It
// returns nil on a clean end.
func (s *Stream) Serve(ctx context.Context, r Receiver) error {
	return s.serve(ctx, func(_ []byte, buf *wire.Buffer) { r.Receive(buf) })
}

// serve is Serve with access to the raw frame, for relaying.
func (s *Stream) serve(ctx context.Context, handle func(frame []byte, buf *wire.Buffer)) error {
	if !s.serving.CompareAndSwap(false, true) {
		return ErrAlreadyServe
	}
	defer s.serving.Store(false)

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		frame, err := s.framer.ReadFrame()
		if err != nil {
			if s.State() != StateOpen || errors.Is(err, io.EOF) {
				return nil
			}
			// A bad prefix leaves the stream unsynchronized.
			_ = s.Close()
			return fmt.Errorf("read frame: %w", err)
		}

		buf, err := DecodePDU(frame)
		if err != nil {
			s.config.Logger.Debug("stream drop", "reason", err)
			continue
		}
		handle(frame, buf)
	}
}

// Close closes the underlying connection. It is safe to call more than once.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosing))
		err = s.conn.Close()
		s.state.Store(int32(StateClosed))
	})
	return err
}

// Compile-time interface satisfaction check.
var _ Transport = (*Stream)(nil)
