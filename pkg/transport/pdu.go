package transport

import (
	"encoding/binary"
	"fmt"

	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// PDU header layout, big-endian like the mesh network header:
//
//	src(2) dst(2) appkey(1) ttl(1) flags(1) | access payload
const (
	PDUHeaderSize = 7
	MaxPDUSize    = PDUHeaderSize + wire.MaxAccessPayload
)

// PDU flag bits.
const (
	flagPublish   = 1 << 0
	flagRelay     = 1 << 1
	flagSegmented = 1 << 2
)

// EncodePDU serializes buf for a stream bearer. A zero Src in buf.Env is
// replaced by src.
func EncodePDU(buf *wire.Buffer, src wire.Address) ([]byte, error) {
	access, err := wire.EncodeAccess(buf)
	if err != nil {
		return nil, err
	}
	env := buf.Env
	if env.Src == wire.AddrUnassigned {
		env.Src = src
	}

	out := make([]byte, PDUHeaderSize, PDUHeaderSize+len(access))
	binary.BigEndian.PutUint16(out[0:], uint16(env.Src))
	binary.BigEndian.PutUint16(out[2:], uint16(env.Dst))
	out[4] = uint8(env.AppKey)
	out[5] = env.Info.TTL
	var flags uint8
	if env.Info.Publish {
		flags |= flagPublish
	}
	if env.Info.Relay {
		flags |= flagRelay
	}
	if env.Info.Segmented {
		flags |= flagSegmented
	}
	out[6] = flags
	return append(out, access...), nil
}

// DecodePDU parses a PDU into a received buffer: Info.Rx is set and the
// local index is unresolved so the dispatcher picks the model.
func DecodePDU(data []byte) (*wire.Buffer, error) {
	if len(data) <= PDUHeaderSize {
		return nil, fmt.Errorf("%w: pdu length %d", wire.ErrMalformed, len(data))
	}
	flags := data[6]
	env := wire.RouteEnv{
		Src:    wire.Address(binary.BigEndian.Uint16(data[0:])),
		Dst:    wire.Address(binary.BigEndian.Uint16(data[2:])),
		AppKey: wire.AppKeyRef(data[4]),
		Info: wire.RouteInfo{
			Rx:        true,
			TTL:       data[5],
			Publish:   flags&flagPublish != 0,
			Relay:     flags&flagRelay != 0,
			Segmented: flags&flagSegmented != 0,
		},
		LocalIndex: uint8(model.InvalidLocalIndex),
	}
	return wire.DecodeAccess(env, data[PDUHeaderSize:])
}
