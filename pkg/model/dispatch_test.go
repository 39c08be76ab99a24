package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshmodel/mm-go/pkg/wire"
)

func setupDispatcher(t *testing.T) (*Registry, *Dispatcher, *fakeModel, *fakeModel) {
	t.Helper()

	reg := NewRegistry(0)
	onoff := newFakeModel(KindOnOffClient, wire.OpGenOnOffStatus)
	level := newFakeModel(KindLevelClient, wire.OpGenLevelStatus)

	for _, m := range []*fakeModel{onoff, level} {
		lid, err := reg.Register(m.ID(), 0, 0)
		require.NoError(t, err)
		_, err = reg.BindState(0, m.ID(), lid, RoleClient, m)
		require.NoError(t, err)
	}
	return reg, NewDispatcher(reg), onoff, level
}

func rxBuffer(op wire.Opcode, lid LocalIndex, data ...byte) (*wire.Buffer, *bool) {
	released := false
	buf := wire.NewBufferFrom(wire.RouteEnv{
		Opcode:     op,
		Src:        0x0042,
		LocalIndex: uint8(lid),
	}, data)
	buf.SetRelease(func() { released = true })
	return buf, &released
}

func TestDispatchByLocalIndex(t *testing.T) {
	_, d, onoff, level := setupDispatcher(t)

	buf, released := rxBuffer(wire.OpGenOnOffStatus, 0, 0x01)
	require.NoError(t, d.Dispatch(buf))

	require.Len(t, onoff.received, 1)
	assert.Empty(t, level.received)
	assert.True(t, onoff.received[0].Info.Rx)
	assert.Equal(t, wire.Address(0x0042), onoff.received[0].Addr())
	assert.Equal(t, []byte{0x01}, onoff.payloads[0])
	assert.True(t, *released)
	assert.Equal(t, uint64(1), d.Stats().Delivered)
}

func TestDispatchRejectedOpcodeIsDropped(t *testing.T) {
	_, d, onoff, _ := setupDispatcher(t)

	buf, released := rxBuffer(wire.OpGenLevelStatus, 0, 0x00, 0x00)
	err := d.Dispatch(buf)

	assert.ErrorIs(t, err, wire.ErrInvalidOpcode)
	assert.True(t, wire.IsDropped(err))
	assert.Empty(t, onoff.received)
	assert.True(t, *released)
	assert.Equal(t, uint64(1), d.Stats().Rejected)
}

func TestDispatchUnknownIndex(t *testing.T) {
	_, d, _, _ := setupDispatcher(t)

	buf, released := rxBuffer(wire.OpGenOnOffStatus, 9, 0x01)
	assert.ErrorIs(t, d.Dispatch(buf), ErrModelNotFound)
	assert.True(t, *released)
	assert.Equal(t, uint64(1), d.Stats().NotFound)
}

func TestDispatchScanByOpcode(t *testing.T) {
	_, d, onoff, level := setupDispatcher(t)

	buf, _ := rxBuffer(wire.OpGenLevelStatus, InvalidLocalIndex, 0x10, 0x00)
	require.NoError(t, d.Dispatch(buf))
	assert.Empty(t, onoff.received)
	require.Len(t, level.received, 1)
	assert.Equal(t, uint8(1), level.received[0].LocalIndex)

	buf, _ = rxBuffer(wire.OpLightCTLStatus, InvalidLocalIndex)
	assert.ErrorIs(t, d.Dispatch(buf), wire.ErrInvalidOpcode)
}

func TestDispatchElement(t *testing.T) {
	_, d, onoff, _ := setupDispatcher(t)

	buf, _ := rxBuffer(wire.OpGenOnOffStatus, InvalidLocalIndex, 0x00)
	require.NoError(t, d.DispatchElement(0, buf))
	assert.Len(t, onoff.received, 1)

	buf, released := rxBuffer(wire.OpGenOnOffStatus, InvalidLocalIndex, 0x00)
	assert.ErrorIs(t, d.DispatchElement(1, buf), ErrModelNotFound)
	assert.True(t, *released)
}

func TestDispatchObserver(t *testing.T) {
	reg, _, _, _ := setupDispatcher(t)

	var seen []error
	d := NewDispatcher(reg, WithObserver(func(env *wire.RouteEnv, err error) {
		seen = append(seen, err)
	}))

	buf, _ := rxBuffer(wire.OpGenOnOffStatus, 0, 0x01)
	_ = d.Dispatch(buf)
	buf, _ = rxBuffer(wire.OpGenOnOffGet, 0)
	_ = d.Dispatch(buf)

	require.Len(t, seen, 2)
	assert.NoError(t, seen[0])
	assert.ErrorIs(t, seen[1], wire.ErrInvalidOpcode)
}

func TestDispatchUnboundInstanceIsSkipped(t *testing.T) {
	reg := NewRegistry(0)
	_, err := reg.Register(IDGenOnOffClient, 0, 0)
	require.NoError(t, err)
	d := NewDispatcher(reg)

	buf, _ := rxBuffer(wire.OpGenOnOffStatus, 0, 0x01)
	assert.ErrorIs(t, d.Dispatch(buf), ErrModelNotFound)
}
