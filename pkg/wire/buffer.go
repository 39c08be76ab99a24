package wire

import "encoding/binary"

// Buffer holds one access message: its route environment and its parameter
// bytes (the opcode is carried in Env.Opcode, not in the data).
//
// A Buffer is owned by whoever holds it. Handing it to a transport's Send
// transfers ownership; the sender must not touch it afterwards.
type Buffer struct {
	// Env is the route environment of the message.
	Env RouteEnv

	data    []byte
	release func()
}

// NewBuffer returns a buffer with n zeroed parameter bytes.
func NewBuffer(n int) *Buffer {
	return &Buffer{data: make([]byte, n)}
}

// NewBufferFrom returns a buffer wrapping data. The buffer takes ownership of
// the slice.
func NewBufferFrom(env RouteEnv, data []byte) *Buffer {
	return &Buffer{Env: env, data: data}
}

// SetRelease installs the function returning the buffer to its pool.
func (b *Buffer) SetRelease(fn func()) {
	b.release = fn
}

// Release returns the buffer to its pool. It is safe to call more than once.
func (b *Buffer) Release() {
	if b.release != nil {
		fn := b.release
		b.release = nil
		fn()
	}
}

// Len returns the parameter length.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the parameter bytes.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Field accessors read and write little-endian values at fixed offsets.
// Callers check the parameter length before reading.

// U8 returns the byte at off.
func (b *Buffer) U8(off int) uint8 { return b.data[off] }

// U16 returns the little-endian uint16 at off.
func (b *Buffer) U16(off int) uint16 { return binary.LittleEndian.Uint16(b.data[off:]) }

// I16 returns the little-endian int16 at off.
func (b *Buffer) I16(off int) int16 { return int16(b.U16(off)) }

// U24 returns the little-endian 24-bit value at off.
func (b *Buffer) U24(off int) uint32 {
	return uint32(b.data[off]) | uint32(b.data[off+1])<<8 | uint32(b.data[off+2])<<16
}

// U32 returns the little-endian uint32 at off.
func (b *Buffer) U32(off int) uint32 { return binary.LittleEndian.Uint32(b.data[off:]) }

// I32 returns the little-endian int32 at off.
func (b *Buffer) I32(off int) int32 { return int32(b.U32(off)) }

// PutU8 writes v at off.
func (b *Buffer) PutU8(off int, v uint8) { b.data[off] = v }

// PutU16 writes v little-endian at off.
func (b *Buffer) PutU16(off int, v uint16) { binary.LittleEndian.PutUint16(b.data[off:], v) }

// PutI16 writes v little-endian at off.
func (b *Buffer) PutI16(off int, v int16) { b.PutU16(off, uint16(v)) }

// PutU24 writes the low 24 bits of v little-endian at off.
func (b *Buffer) PutU24(off int, v uint32) {
	b.data[off] = byte(v)
	b.data[off+1] = byte(v >> 8)
	b.data[off+2] = byte(v >> 16)
}

// PutU32 writes v little-endian at off.
func (b *Buffer) PutU32(off int, v uint32) { binary.LittleEndian.PutUint32(b.data[off:], v) }

// PutI32 writes v little-endian at off.
func (b *Buffer) PutI32(off int, v int32) { b.PutU32(off, uint32(v)) }

// PutBytes copies p at off.
func (b *Buffer) PutBytes(off int, p []byte) { copy(b.data[off:], p) }

// Slice returns the bytes from off to the end.
func (b *Buffer) Slice(off int) []byte {
	if off >= len(b.data) {
		return nil
	}
	return b.data[off:]
}
