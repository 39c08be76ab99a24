package transition

import "time"

// Resolution is the 2-bit step resolution code of a transition time byte.
type Resolution uint8

const (
	// Resolution100ms selects 100 millisecond steps.
	Resolution100ms Resolution = 0

	// Resolution1s selects 1 second steps.
	Resolution1s Resolution = 1

	// Resolution10s selects 10 second steps.
	Resolution10s Resolution = 2

	// Resolution10min selects 10 minute steps.
	Resolution10min Resolution = 3
)

// Wire format limits.
const (
	// MaxSteps is the largest step count representing a known duration.
	MaxSteps = 62

	// UnknownSteps marks an unknown remaining time.
	UnknownSteps = 63

	// Unknown is the transition time byte for an unknown duration (63 steps, 100 ms).
	Unknown uint8 = UnknownSteps

	// DelayUnitMS is the unit of the delay byte.
	DelayUnitMS = 5

	// MaxDelayMS is the largest delay representable on the wire.
	MaxDelayMS = 255 * DelayUnitMS

	// MaxMS is the longest representable transition time (62 steps of 10 minutes).
	MaxMS uint32 = MaxSteps * 600000

	stepsMask = 0x3F
	resShift  = 6
)

// stepMS holds the step duration in milliseconds, indexed by resolution code.
var stepMS = [4]uint32{100, 1000, 10000, 600000}

// StepMS returns the step duration of the resolution in milliseconds.
func (r Resolution) StepMS() uint32 {
	return stepMS[r&0x03]
}

// String returns the resolution name.
func (r Resolution) String() string {
	switch r {
	case Resolution100ms:
		return "100ms"
	case Resolution1s:
		return "1s"
	case Resolution10s:
		return "10s"
	case Resolution10min:
		return "10min"
	default:
		return "UNKNOWN"
	}
}

// Make builds a transition time byte from a step count and resolution.
// Step counts above UnknownSteps are clamped.
func Make(steps uint8, res Resolution) uint8 {
	if steps > UnknownSteps {
		steps = UnknownSteps
	}
	return uint8(res&0x03)<<resShift | steps
}

// Split returns the step count and resolution of a transition time byte.
func Split(b uint8) (steps uint8, res Resolution) {
	return b & stepsMask, Resolution(b >> resShift)
}

// Pack encodes a duration in milliseconds as a transition time byte.
//
// Zero encodes as zero (immediate). The finest resolution holding the
// duration in at most MaxSteps steps is chosen and the step count rounded
// up, so a non-zero duration never encodes as immediate. Durations beyond
// MaxMS saturate.
func Pack(ms uint32) uint8 {
	if ms == 0 {
		return 0
	}
	for res := Resolution100ms; res <= Resolution10min; res++ {
		step := stepMS[res]
		steps := (uint64(ms) + uint64(step) - 1) / uint64(step)
		if steps <= MaxSteps {
			return Make(uint8(steps), res)
		}
	}
	return Make(MaxSteps, Resolution10min)
}

// Unpack decodes a transition time byte to milliseconds.
// An unknown step count decodes to zero.
func Unpack(b uint8) uint32 {
	steps, res := Split(b)
	if steps == UnknownSteps {
		return 0
	}
	return uint32(steps) * res.StepMS()
}

// IsUnknown reports whether the byte encodes an unknown duration.
func IsUnknown(b uint8) bool {
	steps, _ := Split(b)
	return steps == UnknownSteps
}

// PackDelay encodes a delay in milliseconds in 5 ms units.
// The remainder is truncated and delays beyond MaxDelayMS saturate.
func PackDelay(ms uint32) uint8 {
	units := ms / DelayUnitMS
	if units > 0xFF {
		return 0xFF
	}
	return uint8(units)
}

// UnpackDelay decodes a delay byte to milliseconds.
func UnpackDelay(b uint8) uint32 {
	return uint32(b) * DelayUnitMS
}

// Duration converts milliseconds to a time.Duration.
func Duration(ms uint32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Milliseconds converts a time.Duration to milliseconds, saturating at the
// uint32 range. Negative durations convert to zero.
func Milliseconds(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	ms := d.Milliseconds()
	if ms > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(ms)
}
