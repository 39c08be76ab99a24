package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshmodel/mm-go/pkg/wire"
)

// sink records delivered buffers and releases them.
type sink struct {
	mu   sync.Mutex
	envs []wire.RouteEnv
	data [][]byte
}

func (s *sink) Receive(buf *wire.Buffer) {
	s.mu.Lock()
	s.envs = append(s.envs, buf.Env)
	s.data = append(s.data, append([]byte(nil), buf.Bytes()...))
	s.mu.Unlock()
	buf.Release()
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.envs)
}

func send(t *testing.T, p *Port, op wire.Opcode, dst wire.Address, params ...byte) {
	t.Helper()
	buf, err := p.Alloc(uint16(len(params)))
	require.NoError(t, err)
	buf.PutBytes(0, params)
	buf.Env = wire.RouteEnv{Opcode: op, Dst: dst, AppKey: 1, LocalIndex: 2}
	p.Send(buf)
}

func TestLoopbackUnicast(t *testing.T) {
	lb := NewLoopback()
	a, b := &sink{}, &sink{}
	pa, err := lb.Attach(0x0001, 1, a)
	require.NoError(t, err)
	_, err = lb.Attach(0x0010, 3, b)
	require.NoError(t, err)

	send(t, pa, wire.OpGenOnOffSet, 0x0012, 0x01, 0x07)
	assert.Equal(t, 0, b.count(), "Send must not deliver synchronously")
	assert.Equal(t, 1, lb.Pending())

	assert.Equal(t, 1, lb.Flush())
	require.Equal(t, 1, b.count())
	assert.Equal(t, 0, a.count())

	env := b.envs[0]
	assert.True(t, env.Info.Rx)
	assert.Equal(t, wire.Address(0x0001), env.Src)
	assert.Equal(t, wire.Address(0x0012), env.Dst)
	assert.Equal(t, uint8(0xFF), env.LocalIndex)
	assert.Equal(t, wire.AppKeyRef(1), env.AppKey)
	assert.Equal(t, []byte{0x01, 0x07}, b.data[0])
	assert.Equal(t, 0, lb.InUse())
}

func TestLoopbackGroupSkipsSender(t *testing.T) {
	lb := NewLoopback()
	a, b, c := &sink{}, &sink{}, &sink{}
	pa, _ := lb.Attach(0x0001, 1, a)
	_, _ = lb.Attach(0x0002, 1, b)
	_, _ = lb.Attach(0x0003, 1, c)

	send(t, pa, wire.OpGenOnOffSetUnack, 0xC000, 0x01, 0x01)
	assert.Equal(t, 2, lb.Flush())

	assert.Equal(t, 0, a.count())
	assert.Equal(t, 1, b.count())
	assert.Equal(t, 1, c.count())
	assert.Equal(t, b.data[0], c.data[0])
	assert.Equal(t, 0, lb.InUse())
	assert.Equal(t, uint64(2), lb.Allocs(), "one copy for the second target")
}

func TestLoopbackPoolExhaustion(t *testing.T) {
	lb := NewLoopback(WithPoolSize(2))
	p, _ := lb.Attach(0x0001, 1, &sink{})

	b1, err := p.Alloc(1)
	require.NoError(t, err)
	_, err = p.Alloc(1)
	require.NoError(t, err)

	_, err = p.Alloc(1)
	assert.ErrorIs(t, err, wire.ErrInsufficientResources)
	assert.Equal(t, uint64(2), lb.Allocs())

	b1.Release()
	_, err = p.Alloc(1)
	assert.NoError(t, err)
}

func TestLoopbackAllocTooLarge(t *testing.T) {
	lb := NewLoopback()
	p, _ := lb.Attach(0x0001, 1, nil)
	_, err := p.Alloc(wire.MaxAccessPayload + 1)
	assert.ErrorIs(t, err, wire.ErrInvalidParam)
	assert.Equal(t, uint64(0), lb.Allocs())
}

func TestLoopbackUnknownDestinationDrops(t *testing.T) {
	lb := NewLoopback()
	p, _ := lb.Attach(0x0001, 1, &sink{})

	send(t, p, wire.OpGenOnOffGet, 0x0400)
	assert.Equal(t, 0, lb.Flush())
	assert.Equal(t, uint64(1), lb.Stats().Dropped)
	assert.Equal(t, 0, lb.InUse())
}

func TestLoopbackAttachErrors(t *testing.T) {
	lb := NewLoopback()
	_, err := lb.Attach(0x0010, 4, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		addr     wire.Address
		elements uint8
		want     error
	}{
		{"overlap start", 0x0013, 1, ErrAddressInUse},
		{"overlap span", 0x000E, 3, ErrAddressInUse},
		{"group", 0xC000, 1, ErrInvalidAddress},
		{"unassigned", 0x0000, 1, ErrInvalidAddress},
		{"past unicast range", 0x7FFF, 2, ErrInvalidAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lb.Attach(tt.addr, tt.elements, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Attach() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoopbackDetach(t *testing.T) {
	lb := NewLoopback()
	a, b := &sink{}, &sink{}
	pa, _ := lb.Attach(0x0001, 1, a)
	pb, _ := lb.Attach(0x0002, 1, b)

	pb.Detach()
	send(t, pa, wire.OpGenOnOffGet, 0x0002)
	lb.Flush()
	assert.Equal(t, 0, b.count())

	send(t, pb, wire.OpGenOnOffGet, 0x0001)
	lb.Flush()
	assert.Equal(t, 0, a.count())
	assert.Equal(t, uint64(2), lb.Stats().Dropped)
	assert.Equal(t, 0, lb.InUse())
}

func TestLoopbackFIFOIncludingReplies(t *testing.T) {
	lb := NewLoopback()
	var order []wire.Opcode
	var pb *Port

	pa, _ := lb.Attach(0x0001, 1, ReceiverFunc(func(buf *wire.Buffer) {
		order = append(order, buf.Env.Opcode)
		buf.Release()
	}))
	pb, _ = lb.Attach(0x0002, 1, ReceiverFunc(func(buf *wire.Buffer) {
		order = append(order, buf.Env.Opcode)
		buf.Release()
		reply, err := pb.Alloc(1)
		if err != nil {
			t.Errorf("Alloc: %v", err)
			return
		}
		reply.Env = wire.RouteEnv{Opcode: wire.OpGenOnOffStatus, Dst: 0x0001}
		pb.Send(reply)
	}))

	send(t, pa, wire.OpGenOnOffGet, 0x0002)
	send(t, pa, wire.OpGenLevelGet, 0x0002)
	assert.Equal(t, 4, lb.Flush())

	assert.Equal(t, []wire.Opcode{
		wire.OpGenOnOffGet,
		wire.OpGenLevelGet,
		wire.OpGenOnOffStatus,
		wire.OpGenOnOffStatus,
	}, order)
}

func TestLoopbackRun(t *testing.T) {
	lb := NewLoopback()
	got := make(chan wire.Opcode, 1)
	pa, _ := lb.Attach(0x0001, 1, nil)
	_, _ = lb.Attach(0x0002, 1, ReceiverFunc(func(buf *wire.Buffer) {
		got <- buf.Env.Opcode
		buf.Release()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lb.Run(ctx) }()

	send(t, pa, wire.OpGenOnOffGet, 0x0002)

	select {
	case op := <-got:
		assert.Equal(t, wire.OpGenOnOffGet, op)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not deliver")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
