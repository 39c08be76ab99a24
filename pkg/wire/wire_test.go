package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestOpcodeSize(t *testing.T) {
	tests := []struct {
		op   Opcode
		size int
	}{
		{OpGenLocGlobalStatus, 1},
		{0x00, 1},
		{0x7F, 0},
		{OpGenOnOffGet, 2},
		{0xBFFF, 2},
		{0xC000, 0},
		{0x4000, 0},
		{0xC00102, 3},
		{0x800102, 0},
		{0x1000000, 0},
	}
	for _, tt := range tests {
		if got := tt.op.Size(); got != tt.size {
			t.Errorf("Opcode(%#x).Size() = %d, want %d", uint32(tt.op), got, tt.size)
		}
	}
}

func TestOpcodeEncodeParse(t *testing.T) {
	for _, op := range []Opcode{OpGenLocGlobalSet, OpGenOnOffSet, OpLightXYLRangeSetUnack, 0xC15900} {
		b, err := AppendOpcode(nil, op)
		if err != nil {
			t.Fatalf("AppendOpcode(%s) error = %v", op, err)
		}
		if len(b) != op.Size() {
			t.Errorf("AppendOpcode(%s) len = %d, want %d", op, len(b), op.Size())
		}
		got, n, err := ParseOpcode(append(b, 0xAA))
		if err != nil {
			t.Fatalf("ParseOpcode(%x) error = %v", b, err)
		}
		if got != op || n != op.Size() {
			t.Errorf("ParseOpcode(%x) = %s/%d, want %s/%d", b, got, n, op, op.Size())
		}
	}
}

func TestOpcodeWireOrder(t *testing.T) {
	b, _ := AppendOpcode(nil, OpGenOnOffSet)
	if !bytes.Equal(b, []byte{0x82, 0x02}) {
		t.Errorf("AppendOpcode(GEN_ONOFF_SET) = %x, want 8202", b)
	}
}

func TestParseOpcodeErrors(t *testing.T) {
	if _, _, err := ParseOpcode(nil); !errors.Is(err, ErrMalformed) {
		t.Errorf("ParseOpcode(nil) error = %v, want ErrMalformed", err)
	}
	if _, _, err := ParseOpcode([]byte{0x82}); !errors.Is(err, ErrMalformed) {
		t.Errorf("ParseOpcode(truncated) error = %v, want ErrMalformed", err)
	}
	if _, _, err := ParseOpcode([]byte{0x7F}); !errors.Is(err, ErrInvalidOpcode) {
		t.Errorf("ParseOpcode(0x7F) error = %v, want ErrInvalidOpcode", err)
	}
	if _, err := AppendOpcode(nil, 0x7F); !errors.Is(err, ErrInvalidOpcode) {
		t.Errorf("AppendOpcode(0x7F) error = %v, want ErrInvalidOpcode", err)
	}
}

func TestOpcodeString(t *testing.T) {
	if got := OpGenOnOffSet.String(); got != "GEN_ONOFF_SET" {
		t.Errorf("String() = %q", got)
	}
	if got := Opcode(0xC15900).String(); got != "0xC15900" {
		t.Errorf("String() = %q", got)
	}
}

func TestMalformedIsDropped(t *testing.T) {
	if !errors.Is(ErrMalformed, ErrInvalidOpcode) {
		t.Error("ErrMalformed should match ErrInvalidOpcode")
	}
	if !IsDropped(ErrInvalidOpcode) {
		t.Error("IsDropped(ErrInvalidOpcode) = false")
	}
	if IsDropped(ErrInvalidParam) {
		t.Error("IsDropped(ErrInvalidParam) = true")
	}
}

func TestBufferFields(t *testing.T) {
	b := NewBuffer(16)
	b.PutU8(0, 0xA5)
	b.PutU16(1, 0xBEEF)
	b.PutI16(3, math.MinInt16)
	b.PutU24(5, 0x123456)
	b.PutI32(8, math.MinInt32)
	b.PutU32(12, 0xDEADBEEF)

	if got := b.U8(0); got != 0xA5 {
		t.Errorf("U8 = %#x", got)
	}
	if got := b.U16(1); got != 0xBEEF {
		t.Errorf("U16 = %#x", got)
	}
	if got := b.I16(3); got != math.MinInt16 {
		t.Errorf("I16 = %d", got)
	}
	if got := b.U24(5); got != 0x123456 {
		t.Errorf("U24 = %#x", got)
	}
	if got := b.I32(8); got != math.MinInt32 {
		t.Errorf("I32 = %d", got)
	}
	if got := b.U32(12); got != 0xDEADBEEF {
		t.Errorf("U32 = %#x", got)
	}
	// Little-endian layout.
	if !bytes.Equal(b.Bytes()[1:3], []byte{0xEF, 0xBE}) {
		t.Errorf("PutU16 layout = %x, want efbe", b.Bytes()[1:3])
	}
	if b.Slice(16) != nil {
		t.Error("Slice past end should be nil")
	}
}

func TestBufferRelease(t *testing.T) {
	calls := 0
	b := NewBuffer(1)
	b.SetRelease(func() { calls++ })
	b.Release()
	b.Release()
	if calls != 1 {
		t.Errorf("release called %d times, want 1", calls)
	}
}

func TestAccessRoundTrip(t *testing.T) {
	b := NewBuffer(2)
	b.Env.Opcode = OpGenOnOffSet
	b.PutU8(0, 1)
	b.PutU8(1, 7)

	payload, err := EncodeAccess(b)
	if err != nil {
		t.Fatalf("EncodeAccess error = %v", err)
	}
	if !bytes.Equal(payload, []byte{0x82, 0x02, 0x01, 0x07}) {
		t.Errorf("EncodeAccess = %x", payload)
	}

	got, err := DecodeAccess(RouteEnv{Src: 0x0002, Info: RouteInfo{Rx: true}}, payload)
	if err != nil {
		t.Fatalf("DecodeAccess error = %v", err)
	}
	if got.Env.Opcode != OpGenOnOffSet || got.Env.Addr() != 0x0002 {
		t.Errorf("DecodeAccess env = %+v", got.Env)
	}
	if !bytes.Equal(got.Bytes(), []byte{0x01, 0x07}) {
		t.Errorf("DecodeAccess params = %x", got.Bytes())
	}
}

func TestAccessTooLarge(t *testing.T) {
	b := NewBuffer(MaxAccessPayload)
	b.Env.Opcode = OpGenUserPropSet
	if _, err := EncodeAccess(b); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("EncodeAccess oversized error = %v, want ErrInvalidParam", err)
	}
}

func TestStatusForm(t *testing.T) {
	tests := []struct {
		n        int
		wantLong bool
		wantOK   bool
	}{
		{LenGenLevelStatus, false, true},
		{LenGenLevelStatusLong, true, true},
		{3, false, false},
		{4, false, false},
		{0, false, false},
		{6, false, false},
	}
	for _, tt := range tests {
		long, ok := StatusForm(tt.n, LenGenLevelStatus, LenGenLevelStatusLong)
		if long != tt.wantLong || ok != tt.wantOK {
			t.Errorf("StatusForm(%d) = %v,%v want %v,%v", tt.n, long, ok, tt.wantLong, tt.wantOK)
		}
	}
}

func TestAddressKinds(t *testing.T) {
	if !Address(0x0001).IsUnicast() || Address(0).IsUnicast() {
		t.Error("unicast classification wrong")
	}
	if !AddrAllNodes.IsGroup() || !Address(0x8001).IsVirtual() {
		t.Error("group/virtual classification wrong")
	}
	if got := Address(0x1A).String(); got != "0x001A" {
		t.Errorf("String() = %q", got)
	}
}

func TestRouteReply(t *testing.T) {
	rx := RouteEnv{Opcode: OpGenOnOffGet, Src: 0x0005, Dst: 0x0001, AppKey: 2, Info: RouteInfo{Rx: true}}
	reply := rx.Reply(OpGenOnOffStatus, 3)
	if reply.Dst != 0x0005 || reply.AppKey != 2 || reply.LocalIndex != 3 || reply.Info.Rx {
		t.Errorf("Reply() = %+v", reply)
	}
}
