package wire

import "fmt"

// MaxAccessPayload is the largest access payload (opcode + parameters) of a
// segmented message.
const MaxAccessPayload = 380

// EncodeAccess encodes the opcode and parameters of b into an access payload.
func EncodeAccess(b *Buffer) ([]byte, error) {
	out := make([]byte, 0, b.Env.Opcode.Size()+b.Len())
	out, err := AppendOpcode(out, b.Env.Opcode)
	if err != nil {
		return nil, err
	}
	out = append(out, b.data...)
	if len(out) > MaxAccessPayload {
		return nil, fmt.Errorf("%w: access payload %d > %d", ErrInvalidParam, len(out), MaxAccessPayload)
	}
	return out, nil
}

// DecodeAccess decodes an access payload into a buffer with the opcode set in
// its route environment. The rest of env is copied as given.
func DecodeAccess(env RouteEnv, payload []byte) (*Buffer, error) {
	if len(payload) > MaxAccessPayload {
		return nil, fmt.Errorf("%w: access payload %d > %d", ErrMalformed, len(payload), MaxAccessPayload)
	}
	op, n, err := ParseOpcode(payload)
	if err != nil {
		return nil, err
	}
	env.Opcode = op
	params := make([]byte, len(payload)-n)
	copy(params, payload[n:])
	return NewBufferFrom(env, params), nil
}
