package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshmodel/mm-go/pkg/wire"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 4, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp: ts,
		SessionID: "abc12345-def6-7890-abcd-ef1234567890",
		Direction: DirectionOut,
		Layer:     LayerAccess,
		Category:  CategoryMessage,
		LocalAddr: 0x0001,
	}

	data, err := EncodeEvent(original)
	require.NoError(t, err)

	decoded, err := DecodeEvent(data)
	require.NoError(t, err)

	assert.True(t, decoded.Timestamp.Equal(ts), "timestamp keeps nanoseconds")
	assert.Equal(t, original.SessionID, decoded.SessionID)
	assert.Equal(t, original.Direction, decoded.Direction)
	assert.Equal(t, original.Layer, decoded.Layer)
	assert.Equal(t, original.Category, decoded.Category)
	assert.Equal(t, original.LocalAddr, decoded.LocalAddr)
	assert.Nil(t, decoded.Message)
	assert.Nil(t, decoded.Frame)
}

func TestMessageEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		SessionID: "s1",
		Direction: DirectionIn,
		Layer:     LayerAccess,
		Category:  CategoryMessage,
		Message: &MessageEvent{
			Opcode:     wire.OpGenOnOffSet,
			Src:        0x0002,
			Dst:        0xC000,
			AppKey:     1,
			LocalIndex: 0xFF,
			TTL:        5,
			Params:     []byte{0x01, 0x07},
			Dropped:    true,
			Reason:     "retransmission",
		},
	}

	data, err := EncodeEvent(original)
	require.NoError(t, err)
	decoded, err := DecodeEvent(data)
	require.NoError(t, err)

	require.NotNil(t, decoded.Message)
	assert.Equal(t, *original.Message, *decoded.Message)
}

func TestStateAndErrorEventCBORRoundTrip(t *testing.T) {
	code := 3
	events := []Event{
		{
			Layer:    LayerModel,
			Category: CategoryState,
			StateChange: &StateChangeEvent{
				Entity:   StateEntityGroup,
				ID:       2,
				OldState: "REQUESTED",
				NewState: "APPROVED",
				Reason:   "accepted",
			},
		},
		{
			Layer:    LayerTransport,
			Category: CategoryError,
			Error: &ErrorEventData{
				Layer:   LayerTransport,
				Message: "frame too large",
				Code:    &code,
				Context: "read",
			},
		},
	}

	for _, ev := range events {
		data, err := EncodeEvent(ev)
		require.NoError(t, err)
		decoded, err := DecodeEvent(data)
		require.NoError(t, err)
		assert.Equal(t, ev.StateChange, decoded.StateChange)
		if ev.Error != nil {
			require.NotNil(t, decoded.Error)
			assert.Equal(t, ev.Error.Message, decoded.Error.Message)
			require.NotNil(t, decoded.Error.Code)
			assert.Equal(t, code, *decoded.Error.Code)
		}
	}
}

func TestEncodeEventIsDeterministic(t *testing.T) {
	ev := Event{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		SessionID: "s1",
		Message:   &MessageEvent{Opcode: wire.OpGenLevelGet, Src: 1, Dst: 2},
	}
	a, err := EncodeEvent(ev)
	require.NoError(t, err)
	b, err := EncodeEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := DecodeEvent([]byte{0xFF, 0x00, 0x13})
	assert.Error(t, err)
}

func TestStreamEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i := 0; i < 3; i++ {
		require.NoError(t, enc.Encode(Event{SessionID: "s", LocalAddr: uint16(i + 1)}))
	}

	dec := NewDecoder(&buf)
	for i := 0; i < 3; i++ {
		var ev Event
		require.NoError(t, dec.Decode(&ev))
		assert.Equal(t, uint16(i+1), ev.LocalAddr)
	}
}
