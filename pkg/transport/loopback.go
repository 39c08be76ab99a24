package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// DefaultPoolSize is the default number of buffers a Loopback hands out
// before Alloc fails.
const DefaultPoolSize = 32

// Loopback errors.
var (
	ErrAddressInUse   = errors.New("address range overlaps an attached port")
	ErrInvalidAddress = errors.New("port address must be unicast")
	ErrDetached       = errors.New("port detached")
)

// Receiver consumes buffers delivered by a transport. It owns the buffer
// and must release it.
type Receiver interface {
	Receive(buf *wire.Buffer)
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(buf *wire.Buffer)

// Receive calls f(buf).
func (f ReceiverFunc) Receive(buf *wire.Buffer) { f(buf) }

// LoopbackStats counts traffic through a Loopback.
type LoopbackStats struct {
	Allocs    uint64
	Delivered uint64
	Dropped   uint64
}

// Loopback connects in-process nodes. Sent buffers are queued and delivered
// in FIFO order by Flush or Run, never from inside Send, so a receiver that
// replies does not re-enter its own caller.
type Loopback struct {
	mu       sync.Mutex
	poolSize int
	inUse    int
	stats    LoopbackStats
	ports    []*Port
	queue    []*wire.Buffer
	notify   chan struct{}
	logger   *slog.Logger
}

// LoopbackOption configures a Loopback.
type LoopbackOption func(*Loopback)

// WithPoolSize bounds the number of outstanding buffers.
func WithPoolSize(n int) LoopbackOption {
	return func(l *Loopback) {
		if n > 0 {
			l.poolSize = n
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(logger *slog.Logger) LoopbackOption {
	return func(l *Loopback) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoopback creates an empty Loopback.
func NewLoopback(opts ...LoopbackOption) *Loopback {
	l := &Loopback{
		poolSize: DefaultPoolSize,
		notify:   make(chan struct{}, 1),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Attach adds a node owning the unicast range [addr, addr+elements) and
// returns its port.
func (l *Loopback) Attach(addr wire.Address, elements uint8, r Receiver) (*Port, error) {
	if elements == 0 {
		elements = 1
	}
	last := uint32(addr) + uint32(elements) - 1
	if !addr.IsUnicast() || last > 0x7FFF {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, addr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range l.ports {
		if uint32(addr) <= p.last() && last >= uint32(p.addr) {
			return nil, fmt.Errorf("%w: %s", ErrAddressInUse, addr)
		}
	}
	p := &Port{lb: l, addr: addr, elements: elements, recv: r}
	l.ports = append(l.ports, p)
	return p, nil
}

// Stats returns a snapshot of the traffic counters.
func (l *Loopback) Stats() LoopbackStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Allocs returns the number of successful allocations.
func (l *Loopback) Allocs() uint64 {
	return l.Stats().Allocs
}

// InUse returns the number of buffers allocated and not yet released.
func (l *Loopback) InUse() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inUse
}

// Pending returns the number of queued, undelivered buffers.
func (l *Loopback) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Flush delivers queued buffers on the calling goroutine until the queue is
// empty, including buffers queued by receivers during the flush. It returns
// the number delivered.
func (l *Loopback) Flush() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		buf := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		n += l.deliver(buf)
	}
}

// Run delivers queued buffers until ctx is done.
func (l *Loopback) Run(ctx context.Context) error {
	for {
		l.Flush()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.notify:
		}
	}
}

func (l *Loopback) alloc(payloadLen uint16) (*wire.Buffer, error) {
	if int(payloadLen) > wire.MaxAccessPayload {
		return nil, fmt.Errorf("%w: payload %d", wire.ErrInvalidParam, payloadLen)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inUse >= l.poolSize {
		return nil, fmt.Errorf("%w: %d buffers in use", wire.ErrInsufficientResources, l.inUse)
	}
	l.inUse++
	l.stats.Allocs++

	buf := wire.NewBuffer(int(payloadLen))
	buf.SetRelease(l.release)
	return buf, nil
}

func (l *Loopback) release() {
	l.mu.Lock()
	l.inUse--
	l.mu.Unlock()
}

func (l *Loopback) enqueue(buf *wire.Buffer) {
	l.mu.Lock()
	l.queue = append(l.queue, buf)
	l.mu.Unlock()

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// targets returns the ports a buffer from sender is addressed to.
func (l *Loopback) targets(sender *Port, dst wire.Address) []*Port {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []*Port
	for _, p := range l.ports {
		if p.detached {
			continue
		}
		if dst.IsUnicast() {
			if p.owns(dst) {
				return []*Port{p}
			}
			continue
		}
		if p != sender {
			out = append(out, p)
		}
	}
	return out
}

// deliver hands buf to every target. Extra targets get copies from the pool.
func (l *Loopback) deliver(buf *wire.Buffer) int {
	sender := l.portOf(buf.Env.Src)
	targets := l.targets(sender, buf.Env.Dst)
	if len(targets) == 0 {
		l.drop(buf, "no port for destination")
		return 0
	}

	env := buf.Env
	env.Info.Rx = true
	env.LocalIndex = uint8(model.InvalidLocalIndex)

	n := 0
	for i, p := range targets {
		out := buf
		if i < len(targets)-1 {
			cp, err := l.alloc(uint16(buf.Len()))
			if err != nil {
				l.logger.Warn("loopback copy failed", "dst", p.addr, "error", err)
				l.count(func(s *LoopbackStats) { s.Dropped++ })
				continue
			}
			cp.PutBytes(0, buf.Bytes())
			out = cp
		}
		out.Env = env
		l.count(func(s *LoopbackStats) { s.Delivered++ })
		p.receive(out)
		n++
	}
	return n
}

func (l *Loopback) drop(buf *wire.Buffer, reason string) {
	l.count(func(s *LoopbackStats) { s.Dropped++ })
	l.logger.Debug("loopback drop", "opcode", buf.Env.Opcode, "dst", buf.Env.Dst, "reason", reason)
	buf.Release()
}

func (l *Loopback) count(fn func(*LoopbackStats)) {
	l.mu.Lock()
	fn(&l.stats)
	l.mu.Unlock()
}

func (l *Loopback) portOf(addr wire.Address) *Port {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.ports {
		if p.owns(addr) {
			return p
		}
	}
	return nil
}

// Port is one node's attachment to a Loopback. It implements Transport.
type Port struct {
	lb       *Loopback
	addr     wire.Address
	elements uint8
	recv     Receiver
	detached bool
}

// Address returns the port's primary unicast address.
func (p *Port) Address() wire.Address { return p.addr }

// Alloc allocates a buffer from the shared pool.
func (p *Port) Alloc(payloadLen uint16) (*wire.Buffer, error) {
	return p.lb.alloc(payloadLen)
}

// Send queues buf for delivery. An unassigned source is replaced by the
// port's primary address.
func (p *Port) Send(buf *wire.Buffer) {
	p.lb.mu.Lock()
	detached := p.detached
	p.lb.mu.Unlock()
	if detached {
		p.lb.drop(buf, ErrDetached.Error())
		return
	}
	if buf.Env.Src == wire.AddrUnassigned {
		buf.Env.Src = p.addr
	}
	p.lb.enqueue(buf)
}

// Detach removes the port. Later sends are dropped and nothing is delivered
// to it.
func (p *Port) Detach() {
	p.lb.mu.Lock()
	defer p.lb.mu.Unlock()
	p.detached = true
}

func (p *Port) last() uint32 {
	return uint32(p.addr) + uint32(p.elements) - 1
}

func (p *Port) owns(a wire.Address) bool {
	return uint32(a) >= uint32(p.addr) && uint32(a) <= p.last()
}

func (p *Port) receive(buf *wire.Buffer) {
	if p.recv == nil {
		buf.Release()
		return
	}
	p.recv.Receive(buf)
}

// Compile-time interface satisfaction checks.
var (
	_ Transport = (*Port)(nil)
	_ Receiver  = ReceiverFunc(nil)
)
