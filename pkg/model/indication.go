package model

import (
	"fmt"

	"github.com/meshmodel/mm-go/pkg/wire"
)

// StateID identifies the state carried by a StateIndication.
type StateID uint8

// State identifiers.
//
// Signed 16-bit states travel as their two's complement bit pattern:
// int16(value) recovers them. Three-field states pack their second and
// third field with PackPair into Value2; ranges carry min in Value1 and max
// in Value2 unless noted.
const (
	StateOnOff StateID = iota + 1
	StateLevel
	StateDTT
	StateOnPowerUp
	StatePowerActual
	StatePowerLast
	StatePowerDefault
	StatePowerRange
	StateLightnessActual
	StateLightnessLinear
	StateLightnessLast
	StateLightnessDefault
	StateLightnessRange
	StateCTLLightness
	StateCTLTemperature
	StateCTLDeltaUV
	StateCTLTemperatureRange
	StateCTLDefault
	StateHSL
	StateHSLTarget
	StateHSLHue
	StateHSLSaturation
	StateHSLDefault
	StateHSLRange
	StateXYL
	StateXYLTarget
	StateXYLDefault
	StateXYLRange
)

var stateNames = map[StateID]string{
	StateOnOff:               "ONOFF",
	StateLevel:               "LEVEL",
	StateDTT:                 "DTT",
	StateOnPowerUp:           "ON_POWER_UP",
	StatePowerActual:         "POWER_ACTUAL",
	StatePowerLast:           "POWER_LAST",
	StatePowerDefault:        "POWER_DEFAULT",
	StatePowerRange:          "POWER_RANGE",
	StateLightnessActual:     "LIGHTNESS_ACTUAL",
	StateLightnessLinear:     "LIGHTNESS_LINEAR",
	StateLightnessLast:       "LIGHTNESS_LAST",
	StateLightnessDefault:    "LIGHTNESS_DEFAULT",
	StateLightnessRange:      "LIGHTNESS_RANGE",
	StateCTLLightness:        "CTL_LIGHTNESS",
	StateCTLTemperature:      "CTL_TEMPERATURE",
	StateCTLDeltaUV:          "CTL_DELTA_UV",
	StateCTLTemperatureRange: "CTL_TEMPERATURE_RANGE",
	StateCTLDefault:          "CTL_DEFAULT",
	StateHSL:                 "HSL",
	StateHSLTarget:           "HSL_TARGET",
	StateHSLHue:              "HSL_HUE",
	StateHSLSaturation:       "HSL_SATURATION",
	StateHSLDefault:          "HSL_DEFAULT",
	StateHSLRange:            "HSL_RANGE",
	StateXYL:                 "XYL",
	StateXYLTarget:           "XYL_TARGET",
	StateXYLDefault:          "XYL_DEFAULT",
	StateXYLRange:            "XYL_RANGE",
}

// String returns the state name.
func (s StateID) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE(%d)", s)
}

// StateIndication reports a decoded state to the application.
type StateIndication struct {
	// Src is the address of the reporting server.
	Src wire.Address

	// LocalIndex is the client instance that received the status.
	LocalIndex LocalIndex

	// State identifies the reported state.
	State StateID

	// Value1 is the present value, Value2 the target value. Without a
	// transition in progress both are equal.
	Value1 uint32
	Value2 uint32

	// RemainingMS is the time left until the target is reached.
	RemainingMS uint32

	// Status is the outcome code of range statuses.
	Status wire.Status
}

// GlobalLocation is the Generic Location global state.
type GlobalLocation struct {
	Latitude  int32
	Longitude int32
	Altitude  int16
}

// LocalLocation is the Generic Location local state.
type LocalLocation struct {
	North       int16
	East        int16
	Altitude    int16
	Floor       uint8
	Uncertainty uint16
}

// BatteryState is the Generic Battery state. Times are in minutes; the
// 24-bit all-ones value means unknown.
type BatteryState struct {
	Level           uint8
	TimeToDischarge uint32
	TimeToCharge    uint32
	Flags           uint8
}

// PropertyKind selects a property server.
type PropertyKind uint8

// Property kinds.
const (
	PropertyUser PropertyKind = iota
	PropertyAdmin
	PropertyManufacturer
	PropertyClient
)

// String returns the property kind name.
func (k PropertyKind) String() string {
	switch k {
	case PropertyUser:
		return "USER"
	case PropertyAdmin:
		return "ADMIN"
	case PropertyManufacturer:
		return "MANUFACTURER"
	case PropertyClient:
		return "CLIENT"
	default:
		return fmt.Sprintf("PROPERTY_KIND(%d)", k)
	}
}

// Property is one device property value.
type Property struct {
	Kind   PropertyKind
	ID     uint16
	Access uint8
	Value  []byte
}

// Indicator receives decoded state from clients. Calls are fire-and-forget
// and must not block.
type Indicator interface {
	StateInd(ind StateIndication)
	LocationGlobalInd(src wire.Address, lid LocalIndex, loc GlobalLocation)
	LocationLocalInd(src wire.Address, lid LocalIndex, loc LocalLocation)
	BatteryInd(src wire.Address, lid LocalIndex, bat BatteryState)
	PropertyInd(src wire.Address, lid LocalIndex, prop Property)
	PropertyListInd(src wire.Address, lid LocalIndex, kind PropertyKind, ids []uint16)
}

// NoopIndicator discards every indication.
type NoopIndicator struct{}

func (NoopIndicator) StateInd(StateIndication) {}
func (NoopIndicator) LocationGlobalInd(wire.Address, LocalIndex, GlobalLocation) {}
func (NoopIndicator) LocationLocalInd(wire.Address, LocalIndex, LocalLocation) {}
func (NoopIndicator) BatteryInd(wire.Address, LocalIndex, BatteryState) {}
func (NoopIndicator) PropertyInd(wire.Address, LocalIndex, Property) {}
func (NoopIndicator) PropertyListInd(wire.Address, LocalIndex, PropertyKind, []uint16) {}

// IndicatorFunc adapts a function to an Indicator that only receives state
// indications.
type IndicatorFunc func(ind StateIndication)

func (f IndicatorFunc) StateInd(ind StateIndication) { f(ind) }
func (IndicatorFunc) LocationGlobalInd(wire.Address, LocalIndex, GlobalLocation) {}
func (IndicatorFunc) LocationLocalInd(wire.Address, LocalIndex, LocalLocation) {}
func (IndicatorFunc) BatteryInd(wire.Address, LocalIndex, BatteryState) {}
func (IndicatorFunc) PropertyInd(wire.Address, LocalIndex, Property) {}
func (IndicatorFunc) PropertyListInd(wire.Address, LocalIndex, PropertyKind, []uint16) {}

var (
	_ Indicator = NoopIndicator{}
	_ Indicator = IndicatorFunc(nil)
)
