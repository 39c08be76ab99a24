package stack

import (
	"fmt"
	"time"

	"github.com/meshmodel/mm-go/pkg/binding"
	"github.com/meshmodel/mm-go/pkg/log"
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/transport"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// sender stamps outgoing buffers with the sending element's address and
// logs them before handing them to the transport.
type sender struct {
	next transport.Transport
	st   *Stack
}

func (t *sender) Alloc(payloadLen uint16) (*wire.Buffer, error) {
	if t.st.isClosed() {
		return nil, fmt.Errorf("%w: %w", wire.ErrInsufficientResources, ErrClosed)
	}
	return t.next.Alloc(payloadLen)
}

func (t *sender) Send(buf *wire.Buffer) {
	if buf.Env.Src == wire.AddrUnassigned {
		buf.Env.Src = t.st.cfg.Address
		if e, ok := t.st.reg.Env(model.LocalIndex(buf.Env.LocalIndex)); ok {
			buf.Env.Src += wire.Address(e.Element())
		}
	}
	t.st.logMessage(log.DirectionOut, messageEvent(buf))
	t.next.Send(buf)
}

func messageEvent(buf *wire.Buffer) *log.MessageEvent {
	params := make([]byte, buf.Len())
	copy(params, buf.Bytes())
	return &log.MessageEvent{
		Opcode:     buf.Env.Opcode,
		Src:        uint16(buf.Env.Src),
		Dst:        uint16(buf.Env.Dst),
		AppKey:     uint8(buf.Env.AppKey),
		LocalIndex: buf.Env.LocalIndex,
		TTL:        buf.Env.Info.TTL,
		Params:     params,
	}
}

func (s *Stack) logMessage(dir log.Direction, ev *log.MessageEvent) {
	s.plog.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.sessionID,
		Direction: dir,
		Layer:     log.LayerAccess,
		Category:  log.CategoryMessage,
		LocalAddr: uint16(s.cfg.Address),
		Message:   ev,
	})
}

func (s *Stack) groupStateChanged(g *binding.Group, oldState, newState binding.State) {
	s.logger.Debug("group state", "group", g.ID(), "from", oldState, "to", newState)
	s.plog.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.sessionID,
		Layer:     log.LayerModel,
		Category:  log.CategoryState,
		LocalAddr: uint16(s.cfg.Address),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityGroup,
			ID:       g.ID(),
			OldState: oldState.String(),
			NewState: newState.String(),
		},
	})
}

// stateTap logs local server state changes and forwards them.
type stateTap struct {
	model.NoopIndicator
	next model.Indicator
	st   *Stack
}

func (t *stateTap) StateInd(ind model.StateIndication) {
	t.st.plog.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: t.st.sessionID,
		Layer:     log.LayerModel,
		Category:  log.CategoryState,
		LocalAddr: uint16(t.st.cfg.Address),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityModel,
			ID:       uint8(ind.LocalIndex),
			NewState: fmt.Sprintf("%s=%d", ind.State, ind.Value1),
			Reason:   remainingReason(ind),
		},
	})
	t.next.StateInd(ind)
}

func remainingReason(ind model.StateIndication) string {
	if ind.RemainingMS == 0 {
		return ""
	}
	return fmt.Sprintf("target %d in %dms", ind.Value2, ind.RemainingMS)
}

// Compile-time interface satisfaction checks.
var (
	_ transport.Transport = (*sender)(nil)
	_ model.Indicator     = (*stateTap)(nil)
)
