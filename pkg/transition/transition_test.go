package transition

import (
	"testing"
	"time"
)

func TestPackZero(t *testing.T) {
	if got := Pack(0); got != 0 {
		t.Errorf("Pack(0) = %#x, want 0", got)
	}
	if got := Unpack(0); got != 0 {
		t.Errorf("Unpack(0) = %d, want 0", got)
	}
}

func TestPack(t *testing.T) {
	tests := []struct {
		ms        uint32
		wantSteps uint8
		wantRes   Resolution
	}{
		{1, 1, Resolution100ms},
		{100, 1, Resolution100ms},
		{500, 5, Resolution100ms},
		{6200, 62, Resolution100ms},
		{6201, 7, Resolution1s},
		{62000, 62, Resolution1s},
		{62001, 7, Resolution10s},
		{620000, 62, Resolution10s},
		{620001, 2, Resolution10min},
		{MaxMS, 62, Resolution10min},
		{MaxMS + 1, 62, Resolution10min},
		{^uint32(0), 62, Resolution10min},
	}

	for _, tt := range tests {
		b := Pack(tt.ms)
		steps, res := Split(b)
		if steps != tt.wantSteps || res != tt.wantRes {
			t.Errorf("Pack(%d) = %d steps @ %s, want %d steps @ %s",
				tt.ms, steps, res, tt.wantSteps, tt.wantRes)
		}
	}
}

func TestPackWireLayout(t *testing.T) {
	// 5 steps of 100ms: resolution bits clear.
	if got := Pack(500); got != 0x05 {
		t.Errorf("Pack(500) = %#x, want 0x05", got)
	}
	// 7 steps of 1s: resolution 0b01 in the high bits.
	if got := Pack(7000); got != 0x47 {
		t.Errorf("Pack(7000) = %#x, want 0x47", got)
	}
	if got := Make(10, Resolution10s); got != 0x8A {
		t.Errorf("Make(10, 10s) = %#x, want 0x8A", got)
	}
}

func TestUnpack(t *testing.T) {
	tests := []struct {
		b    uint8
		want uint32
	}{
		{0x00, 0},
		{0x01, 100},
		{0x3E, 6200},
		{0x3F, 0}, // unknown
		{0x41, 1000},
		{0x81, 10000},
		{0xC1, 600000},
		{0xFE, MaxMS},
		{0xFF, 0}, // unknown at 10 min resolution
	}

	for _, tt := range tests {
		if got := Unpack(tt.b); got != tt.want {
			t.Errorf("Unpack(%#x) = %d, want %d", tt.b, got, tt.want)
		}
	}
}

func TestPackUnpackMonotonic(t *testing.T) {
	var prev uint32
	for ms := uint32(0); ms <= 700000; ms += 37 {
		got := Unpack(Pack(ms))
		if got < prev {
			t.Fatalf("Unpack(Pack(%d)) = %d decreased from %d", ms, got, prev)
		}
		prev = got
	}
}

func TestPackUnpackBounded(t *testing.T) {
	for _, ms := range []uint32{1, 99, 101, 6199, 6250, 61999, 62500, 619999, 700000, MaxMS} {
		b := Pack(ms)
		_, res := Split(b)
		got := Unpack(b)
		if got < ms {
			t.Errorf("Unpack(Pack(%d)) = %d, below requested", ms, got)
		}
		if got-ms >= res.StepMS() {
			t.Errorf("Unpack(Pack(%d)) = %d, more than one %s step above", ms, got, res)
		}
	}
}

func TestIsUnknown(t *testing.T) {
	if !IsUnknown(Unknown) {
		t.Error("IsUnknown(Unknown) = false")
	}
	if IsUnknown(Pack(1000)) {
		t.Error("IsUnknown(Pack(1000)) = true")
	}
}

func TestMakeClampsSteps(t *testing.T) {
	steps, res := Split(Make(200, Resolution1s))
	if steps != UnknownSteps || res != Resolution1s {
		t.Errorf("Make(200, 1s) = %d steps @ %s, want 63 @ 1s", steps, res)
	}
}

func TestDelay(t *testing.T) {
	tests := []struct {
		ms   uint32
		want uint8
	}{
		{0, 0},
		{4, 0},
		{5, 1},
		{9, 1},
		{100, 20},
		{MaxDelayMS, 255},
		{MaxDelayMS + 100, 255},
	}
	for _, tt := range tests {
		if got := PackDelay(tt.ms); got != tt.want {
			t.Errorf("PackDelay(%d) = %d, want %d", tt.ms, got, tt.want)
		}
	}
	if got := UnpackDelay(20); got != 100 {
		t.Errorf("UnpackDelay(20) = %d, want 100", got)
	}
}

func TestDurationConversions(t *testing.T) {
	if got := Duration(1500); got != 1500*time.Millisecond {
		t.Errorf("Duration(1500) = %v", got)
	}
	if got := Milliseconds(2 * time.Second); got != 2000 {
		t.Errorf("Milliseconds(2s) = %d", got)
	}
	if got := Milliseconds(-time.Second); got != 0 {
		t.Errorf("Milliseconds(-1s) = %d, want 0", got)
	}
}
