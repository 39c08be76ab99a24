package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/meshmodel/mm-go/pkg/log"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// ErrHubRunning is returned by Start on a running hub.
var ErrHubRunning = errors.New("hub already running")

// HubConfig configures a Hub.
type HubConfig struct {
	// Address to listen on, e.g. "127.0.0.1:7040" or ":0".
	Address string

	// Local is the unicast address of the node the hub serves. It replaces
	// an unassigned source on sent PDUs.
	Local wire.Address

	// Relay forwards every PDU received from one peer to all other peers,
	// making the hub the center of a star.
	Relay bool

	// Receiver gets every PDU received from any peer.
	Receiver Receiver

	// ProtocolLogger captures frames and peer state (optional).
	ProtocolLogger log.Logger

	// Logger is the operational logger (default slog.Default()).
	Logger *slog.Logger

	// OnPeer is called when a peer connects or disconnects.
	OnPeer func(remote net.Addr, connected bool)
}

// Hub accepts TCP peers and acts as a broadcast bearer across them: a sent
// PDU goes to every peer, and a PDU from any peer is delivered locally.
type Hub struct {
	config   HubConfig
	listener net.Listener

	peers   map[*Stream]struct{}
	peersMu sync.RWMutex

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewHub creates a hub. Call Start to listen.
func NewHub(config HubConfig) *Hub {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Hub{
		config: config,
		peers:  make(map[*Stream]struct{}),
	}
}

// Start listens and begins accepting peers.
func (h *Hub) Start(ctx context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return ErrHubRunning
	}

	listener, err := net.Listen("tcp", h.config.Address)
	if err != nil {
		h.running.Store(false)
		return fmt.Errorf("listen: %w", err)
	}
	h.listener = listener
	h.ctx, h.cancel = context.WithCancel(ctx)

	h.wg.Add(1)
	go h.acceptLoop()
	return nil
}

// Stop closes the listener and every peer, and waits for their goroutines.
func (h *Hub) Stop() error {
	if !h.running.CompareAndSwap(true, false) {
		return nil
	}
	h.cancel()
	_ = h.listener.Close()

	h.peersMu.Lock()
	for p := range h.peers {
		_ = p.Close()
	}
	h.peersMu.Unlock()

	h.wg.Wait()
	return nil
}

// Addr returns the listen address.
func (h *Hub) Addr() net.Addr {
	if h.listener != nil {
		return h.listener.Addr()
	}
	return nil
}

// PeerCount returns the number of connected peers.
func (h *Hub) PeerCount() int {
	h.peersMu.RLock()
	defer h.peersMu.RUnlock()
	return len(h.peers)
}

// Connect dials a remote hub and adds it as a peer.
func (h *Hub) Connect(ctx context.Context, address string) error {
	if !h.running.Load() {
		return ErrStreamClosed
	}
	s, err := Dial(ctx, address, h.streamConfig())
	if err != nil {
		return err
	}
	h.wg.Add(1)
	go h.servePeer(s)
	return nil
}

// Alloc returns an unpooled buffer.
func (h *Hub) Alloc(payloadLen uint16) (*wire.Buffer, error) {
	if !h.running.Load() {
		return nil, fmt.Errorf("%w: hub stopped", wire.ErrInsufficientResources)
	}
	if int(payloadLen) > wire.MaxAccessPayload {
		return nil, fmt.Errorf("%w: payload %d", wire.ErrInvalidParam, payloadLen)
	}
	return wire.NewBuffer(int(payloadLen)), nil
}

// Send writes buf to every peer.
func (h *Hub) Send(buf *wire.Buffer) {
	defer buf.Release()

	pdu, err := EncodePDU(buf, h.config.Local)
	if err != nil {
		h.config.Logger.Warn("hub encode failed", "opcode", buf.Env.Opcode, "error", err)
		return
	}
	h.broadcast(pdu, nil)
}

func (h *Hub) broadcast(pdu []byte, except *Stream) {
	h.peersMu.RLock()
	peers := make([]*Stream, 0, len(h.peers))
	for p := range h.peers {
		if p != except {
			peers = append(peers, p)
		}
	}
	h.peersMu.RUnlock()

	// Write outside lock
	for _, p := range peers {
		if err := p.writePDU(pdu); err != nil {
			h.config.Logger.Debug("hub peer write failed", "peer", p.RemoteAddr(), "error", err)
		}
	}
}

func (h *Hub) acceptLoop() {
	defer h.wg.Done()

	for h.running.Load() {
		conn, err := h.listener.Accept()
		if err != nil {
			if h.running.Load() {
				h.config.Logger.Warn("hub accept failed", "error", err)
				continue
			}
			return
		}
		s := NewStream(conn, h.streamConfig())
		h.wg.Add(1)
		go h.servePeer(s)
	}
}

// streamConfig gives each peer its own session id.
func (h *Hub) streamConfig() StreamConfig {
	return StreamConfig{
		Address:        h.config.Local,
		ProtocolLogger: h.config.ProtocolLogger,
		SessionID:      uuid.New().String(),
		Logger:         h.config.Logger,
	}
}

func (h *Hub) servePeer(s *Stream) {
	defer h.wg.Done()

	h.peersMu.Lock()
	h.peers[s] = struct{}{}
	h.peersMu.Unlock()
	h.peerEvent(s, true)

	err := s.serve(h.ctx, func(frame []byte, buf *wire.Buffer) {
		if h.config.Relay {
			h.broadcast(frame, s)
		}
		if h.config.Receiver == nil {
			buf.Release()
			return
		}
		h.config.Receiver.Receive(buf)
	})
	if err != nil {
		h.config.Logger.Debug("hub peer ended", "peer", s.RemoteAddr(), "error", err)
	}
	_ = s.Close()

	h.peersMu.Lock()
	delete(h.peers, s)
	h.peersMu.Unlock()
	h.peerEvent(s, false)
}

func (h *Hub) peerEvent(s *Stream, connected bool) {
	if h.config.ProtocolLogger != nil {
		ev := &log.StateChangeEvent{Entity: log.StateEntityPeer, OldState: "DISCONNECTED", NewState: "CONNECTED"}
		if !connected {
			ev.OldState, ev.NewState = ev.NewState, ev.OldState
		}
		h.config.ProtocolLogger.Log(log.Event{
			Timestamp:   time.Now(),
			SessionID:   s.config.SessionID,
			LocalAddr:   uint16(h.config.Local),
			Layer:       log.LayerTransport,
			Category:    log.CategoryState,
			StateChange: ev,
		})
	}
	if h.config.OnPeer != nil {
		h.config.OnPeer(s.RemoteAddr(), connected)
	}
}

// Compile-time interface satisfaction check.
var _ Transport = (*Hub)(nil)
