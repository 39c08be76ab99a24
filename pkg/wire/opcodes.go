package wire

import "fmt"

// Opcode identifies an access layer message. The value holds the opcode
// octets in transmission order.
type Opcode uint32

// Generic OnOff.
const (
	OpGenOnOffGet      Opcode = 0x8201
	OpGenOnOffSet      Opcode = 0x8202
	OpGenOnOffSetUnack Opcode = 0x8203
	OpGenOnOffStatus   Opcode = 0x8204
)

// Generic Level.
const (
	OpGenLevelGet      Opcode = 0x8205
	OpGenLevelSet      Opcode = 0x8206
	OpGenLevelSetUnack Opcode = 0x8207
	OpGenLevelStatus   Opcode = 0x8208
	OpGenDeltaSet      Opcode = 0x8209
	OpGenDeltaSetUnack Opcode = 0x820A
	OpGenMoveSet       Opcode = 0x820B
	OpGenMoveSetUnack  Opcode = 0x820C
)

// Generic Default Transition Time.
const (
	OpGenDTTGet      Opcode = 0x820D
	OpGenDTTSet      Opcode = 0x820E
	OpGenDTTSetUnack Opcode = 0x820F
	OpGenDTTStatus   Opcode = 0x8210
)

// Generic Power OnOff.
const (
	OpGenOnPowerUpGet      Opcode = 0x8211
	OpGenOnPowerUpStatus   Opcode = 0x8212
	OpGenOnPowerUpSet      Opcode = 0x8213
	OpGenOnPowerUpSetUnack Opcode = 0x8214
)

// Generic Power Level.
const (
	OpGenPowerLevelGet        Opcode = 0x8215
	OpGenPowerLevelSet        Opcode = 0x8216
	OpGenPowerLevelSetUnack   Opcode = 0x8217
	OpGenPowerLevelStatus     Opcode = 0x8218
	OpGenPowerLastGet         Opcode = 0x8219
	OpGenPowerLastStatus      Opcode = 0x821A
	OpGenPowerDefaultGet      Opcode = 0x821B
	OpGenPowerDefaultStatus   Opcode = 0x821C
	OpGenPowerRangeGet        Opcode = 0x821D
	OpGenPowerRangeStatus     Opcode = 0x821E
	OpGenPowerDefaultSet      Opcode = 0x821F
	OpGenPowerDefaultSetUnack Opcode = 0x8220
	OpGenPowerRangeSet        Opcode = 0x8221
	OpGenPowerRangeSetUnack   Opcode = 0x8222
)

// Generic Battery.
const (
	OpGenBatteryGet    Opcode = 0x8223
	OpGenBatteryStatus Opcode = 0x8224
)

// Generic Location.
const (
	OpGenLocGlobalGet      Opcode = 0x8225
	OpGenLocGlobalStatus   Opcode = 0x40
	OpGenLocLocalGet       Opcode = 0x8226
	OpGenLocLocalStatus    Opcode = 0x8227
	OpGenLocGlobalSet      Opcode = 0x41
	OpGenLocGlobalSetUnack Opcode = 0x42
	OpGenLocLocalSet       Opcode = 0x8228
	OpGenLocLocalSetUnack  Opcode = 0x8229
)

// Generic Property.
const (
	OpGenManuPropsGet      Opcode = 0x822A
	OpGenManuPropsStatus   Opcode = 0x43
	OpGenManuPropGet       Opcode = 0x822B
	OpGenManuPropSet       Opcode = 0x44
	OpGenManuPropSetUnack  Opcode = 0x45
	OpGenManuPropStatus    Opcode = 0x46
	OpGenAdminPropsGet     Opcode = 0x822C
	OpGenAdminPropsStatus  Opcode = 0x47
	OpGenAdminPropGet      Opcode = 0x822D
	OpGenAdminPropSet      Opcode = 0x48
	OpGenAdminPropSetUnack Opcode = 0x49
	OpGenAdminPropStatus   Opcode = 0x4A
	OpGenUserPropsGet      Opcode = 0x822E
	OpGenUserPropsStatus   Opcode = 0x4B
	OpGenUserPropGet       Opcode = 0x822F
	OpGenUserPropSet       Opcode = 0x4C
	OpGenUserPropSetUnack  Opcode = 0x4D
	OpGenUserPropStatus    Opcode = 0x4E
	OpGenClientPropsGet    Opcode = 0x4F
	OpGenClientPropsStatus Opcode = 0x50
)

// Light Lightness.
const (
	OpLightLnGet             Opcode = 0x824B
	OpLightLnSet             Opcode = 0x824C
	OpLightLnSetUnack        Opcode = 0x824D
	OpLightLnStatus          Opcode = 0x824E
	OpLightLnLinearGet       Opcode = 0x824F
	OpLightLnLinearSet       Opcode = 0x8250
	OpLightLnLinearSetUnack  Opcode = 0x8251
	OpLightLnLinearStatus    Opcode = 0x8252
	OpLightLnLastGet         Opcode = 0x8253
	OpLightLnLastStatus      Opcode = 0x8254
	OpLightLnDefaultGet      Opcode = 0x8255
	OpLightLnDefaultStatus   Opcode = 0x8256
	OpLightLnRangeGet        Opcode = 0x8257
	OpLightLnRangeStatus     Opcode = 0x8258
	OpLightLnDefaultSet      Opcode = 0x8259
	OpLightLnDefaultSetUnack Opcode = 0x825A
	OpLightLnRangeSet        Opcode = 0x825B
	OpLightLnRangeSetUnack   Opcode = 0x825C
)

// Light CTL.
const (
	OpLightCTLGet               Opcode = 0x825D
	OpLightCTLSet               Opcode = 0x825E
	OpLightCTLSetUnack          Opcode = 0x825F
	OpLightCTLStatus            Opcode = 0x8260
	OpLightCTLTempGet           Opcode = 0x8261
	OpLightCTLTempRangeGet      Opcode = 0x8262
	OpLightCTLTempRangeStatus   Opcode = 0x8263
	OpLightCTLTempSet           Opcode = 0x8264
	OpLightCTLTempSetUnack      Opcode = 0x8265
	OpLightCTLTempStatus        Opcode = 0x8266
	OpLightCTLDefaultGet        Opcode = 0x8267
	OpLightCTLDefaultStatus     Opcode = 0x8268
	OpLightCTLDefaultSet        Opcode = 0x8269
	OpLightCTLDefaultSetUnack   Opcode = 0x826A
	OpLightCTLTempRangeSet      Opcode = 0x826B
	OpLightCTLTempRangeSetUnack Opcode = 0x826C
)

// Light HSL.
const (
	OpLightHSLGet             Opcode = 0x826D
	OpLightHSLHueGet          Opcode = 0x826E
	OpLightHSLHueSet          Opcode = 0x826F
	OpLightHSLHueSetUnack     Opcode = 0x8270
	OpLightHSLHueStatus       Opcode = 0x8271
	OpLightHSLSatGet          Opcode = 0x8272
	OpLightHSLSatSet          Opcode = 0x8273
	OpLightHSLSatSetUnack     Opcode = 0x8274
	OpLightHSLSatStatus       Opcode = 0x8275
	OpLightHSLSet             Opcode = 0x8276
	OpLightHSLSetUnack        Opcode = 0x8277
	OpLightHSLStatus          Opcode = 0x8278
	OpLightHSLTargetGet       Opcode = 0x8279
	OpLightHSLTargetStatus    Opcode = 0x827A
	OpLightHSLDefaultGet      Opcode = 0x827B
	OpLightHSLDefaultStatus   Opcode = 0x827C
	OpLightHSLRangeGet        Opcode = 0x827D
	OpLightHSLRangeStatus     Opcode = 0x827E
	OpLightHSLDefaultSet      Opcode = 0x827F
	OpLightHSLDefaultSetUnack Opcode = 0x8280
	OpLightHSLRangeSet        Opcode = 0x8281
	OpLightHSLRangeSetUnack   Opcode = 0x8282
)

// Light xyL.
const (
	OpLightXYLGet             Opcode = 0x8283
	OpLightXYLSet             Opcode = 0x8284
	OpLightXYLSetUnack        Opcode = 0x8285
	OpLightXYLStatus          Opcode = 0x8286
	OpLightXYLTargetGet       Opcode = 0x8287
	OpLightXYLTargetStatus    Opcode = 0x8288
	OpLightXYLDefaultGet      Opcode = 0x8289
	OpLightXYLDefaultStatus   Opcode = 0x828A
	OpLightXYLRangeGet        Opcode = 0x828B
	OpLightXYLRangeStatus     Opcode = 0x828C
	OpLightXYLDefaultSet      Opcode = 0x828D
	OpLightXYLDefaultSetUnack Opcode = 0x828E
	OpLightXYLRangeSet        Opcode = 0x828F
	OpLightXYLRangeSetUnack   Opcode = 0x8290
)

// Opcode encoding limits.
const (
	opcode1Reserved Opcode = 0x7F
	opcode2Prefix          = 0x80
	opcode3Prefix          = 0xC0
)

// Size returns the number of octets of the opcode on the wire, or 0 if the
// value is not a valid opcode.
func (o Opcode) Size() int {
	switch {
	case o < 0x80:
		if o == opcode1Reserved {
			return 0
		}
		return 1
	case o <= 0xFFFF:
		if o>>8&0xC0 == opcode2Prefix {
			return 2
		}
		return 0
	case o <= 0xFFFFFF:
		if o>>16&0xC0 == opcode3Prefix {
			return 3
		}
		return 0
	default:
		return 0
	}
}

// IsValid reports whether the opcode follows the encoding rules.
func (o Opcode) IsValid() bool {
	return o.Size() != 0
}

// IsVendor reports whether the opcode is a 3-octet vendor opcode.
func (o Opcode) IsVendor() bool {
	return o.Size() == 3
}

// AppendOpcode appends the opcode octets to b.
func AppendOpcode(b []byte, o Opcode) ([]byte, error) {
	switch o.Size() {
	case 1:
		return append(b, byte(o)), nil
	case 2:
		return append(b, byte(o>>8), byte(o)), nil
	case 3:
		return append(b, byte(o>>16), byte(o>>8), byte(o)), nil
	default:
		return b, fmt.Errorf("%w: opcode %#x", ErrInvalidOpcode, uint32(o))
	}
}

// ParseOpcode reads an opcode from the start of b and returns it with its size.
func ParseOpcode(b []byte) (Opcode, int, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("%w: empty access message", ErrMalformed)
	}
	var size int
	switch {
	case b[0]&0x80 == 0:
		size = 1
	case b[0]&0xC0 == opcode2Prefix:
		size = 2
	default:
		size = 3
	}
	if len(b) < size {
		return 0, 0, fmt.Errorf("%w: truncated opcode", ErrMalformed)
	}
	var o Opcode
	for i := 0; i < size; i++ {
		o = o<<8 | Opcode(b[i])
	}
	if !o.IsValid() {
		return 0, 0, fmt.Errorf("%w: opcode %#x", ErrInvalidOpcode, uint32(o))
	}
	return o, size, nil
}

// String returns the opcode name, or its hex value if unknown.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("0x%X", uint32(o))
}

var opcodeNames = map[Opcode]string{
	OpGenOnOffGet:      "GEN_ONOFF_GET",
	OpGenOnOffSet:      "GEN_ONOFF_SET",
	OpGenOnOffSetUnack: "GEN_ONOFF_SET_UNACK",
	OpGenOnOffStatus:   "GEN_ONOFF_STATUS",

	OpGenLevelGet:      "GEN_LEVEL_GET",
	OpGenLevelSet:      "GEN_LEVEL_SET",
	OpGenLevelSetUnack: "GEN_LEVEL_SET_UNACK",
	OpGenLevelStatus:   "GEN_LEVEL_STATUS",
	OpGenDeltaSet:      "GEN_DELTA_SET",
	OpGenDeltaSetUnack: "GEN_DELTA_SET_UNACK",
	OpGenMoveSet:       "GEN_MOVE_SET",
	OpGenMoveSetUnack:  "GEN_MOVE_SET_UNACK",

	OpGenDTTGet:      "GEN_DTT_GET",
	OpGenDTTSet:      "GEN_DTT_SET",
	OpGenDTTSetUnack: "GEN_DTT_SET_UNACK",
	OpGenDTTStatus:   "GEN_DTT_STATUS",

	OpGenOnPowerUpGet:      "GEN_ONPOWERUP_GET",
	OpGenOnPowerUpStatus:   "GEN_ONPOWERUP_STATUS",
	OpGenOnPowerUpSet:      "GEN_ONPOWERUP_SET",
	OpGenOnPowerUpSetUnack: "GEN_ONPOWERUP_SET_UNACK",

	OpGenPowerLevelGet:        "GEN_POWER_LEVEL_GET",
	OpGenPowerLevelSet:        "GEN_POWER_LEVEL_SET",
	OpGenPowerLevelSetUnack:   "GEN_POWER_LEVEL_SET_UNACK",
	OpGenPowerLevelStatus:     "GEN_POWER_LEVEL_STATUS",
	OpGenPowerLastGet:         "GEN_POWER_LAST_GET",
	OpGenPowerLastStatus:      "GEN_POWER_LAST_STATUS",
	OpGenPowerDefaultGet:      "GEN_POWER_DEFAULT_GET",
	OpGenPowerDefaultStatus:   "GEN_POWER_DEFAULT_STATUS",
	OpGenPowerRangeGet:        "GEN_POWER_RANGE_GET",
	OpGenPowerRangeStatus:     "GEN_POWER_RANGE_STATUS",
	OpGenPowerDefaultSet:      "GEN_POWER_DEFAULT_SET",
	OpGenPowerDefaultSetUnack: "GEN_POWER_DEFAULT_SET_UNACK",
	OpGenPowerRangeSet:        "GEN_POWER_RANGE_SET",
	OpGenPowerRangeSetUnack:   "GEN_POWER_RANGE_SET_UNACK",

	OpGenBatteryGet:    "GEN_BATTERY_GET",
	OpGenBatteryStatus: "GEN_BATTERY_STATUS",

	OpGenLocGlobalGet:      "GEN_LOC_GLOBAL_GET",
	OpGenLocGlobalStatus:   "GEN_LOC_GLOBAL_STATUS",
	OpGenLocLocalGet:       "GEN_LOC_LOCAL_GET",
	OpGenLocLocalStatus:    "GEN_LOC_LOCAL_STATUS",
	OpGenLocGlobalSet:      "GEN_LOC_GLOBAL_SET",
	OpGenLocGlobalSetUnack: "GEN_LOC_GLOBAL_SET_UNACK",
	OpGenLocLocalSet:       "GEN_LOC_LOCAL_SET",
	OpGenLocLocalSetUnack:  "GEN_LOC_LOCAL_SET_UNACK",

	OpGenManuPropsGet:      "GEN_MANU_PROPS_GET",
	OpGenManuPropsStatus:   "GEN_MANU_PROPS_STATUS",
	OpGenManuPropGet:       "GEN_MANU_PROP_GET",
	OpGenManuPropSet:       "GEN_MANU_PROP_SET",
	OpGenManuPropSetUnack:  "GEN_MANU_PROP_SET_UNACK",
	OpGenManuPropStatus:    "GEN_MANU_PROP_STATUS",
	OpGenAdminPropsGet:     "GEN_ADMIN_PROPS_GET",
	OpGenAdminPropsStatus:  "GEN_ADMIN_PROPS_STATUS",
	OpGenAdminPropGet:      "GEN_ADMIN_PROP_GET",
	OpGenAdminPropSet:      "GEN_ADMIN_PROP_SET",
	OpGenAdminPropSetUnack: "GEN_ADMIN_PROP_SET_UNACK",
	OpGenAdminPropStatus:   "GEN_ADMIN_PROP_STATUS",
	OpGenUserPropsGet:      "GEN_USER_PROPS_GET",
	OpGenUserPropsStatus:   "GEN_USER_PROPS_STATUS",
	OpGenUserPropGet:       "GEN_USER_PROP_GET",
	OpGenUserPropSet:       "GEN_USER_PROP_SET",
	OpGenUserPropSetUnack:  "GEN_USER_PROP_SET_UNACK",
	OpGenUserPropStatus:    "GEN_USER_PROP_STATUS",
	OpGenClientPropsGet:    "GEN_CLIENT_PROPS_GET",
	OpGenClientPropsStatus: "GEN_CLIENT_PROPS_STATUS",

	OpLightLnGet:             "LIGHT_LN_GET",
	OpLightLnSet:             "LIGHT_LN_SET",
	OpLightLnSetUnack:        "LIGHT_LN_SET_UNACK",
	OpLightLnStatus:          "LIGHT_LN_STATUS",
	OpLightLnLinearGet:       "LIGHT_LN_LINEAR_GET",
	OpLightLnLinearSet:       "LIGHT_LN_LINEAR_SET",
	OpLightLnLinearSetUnack:  "LIGHT_LN_LINEAR_SET_UNACK",
	OpLightLnLinearStatus:    "LIGHT_LN_LINEAR_STATUS",
	OpLightLnLastGet:         "LIGHT_LN_LAST_GET",
	OpLightLnLastStatus:      "LIGHT_LN_LAST_STATUS",
	OpLightLnDefaultGet:      "LIGHT_LN_DEFAULT_GET",
	OpLightLnDefaultStatus:   "LIGHT_LN_DEFAULT_STATUS",
	OpLightLnRangeGet:        "LIGHT_LN_RANGE_GET",
	OpLightLnRangeStatus:     "LIGHT_LN_RANGE_STATUS",
	OpLightLnDefaultSet:      "LIGHT_LN_DEFAULT_SET",
	OpLightLnDefaultSetUnack: "LIGHT_LN_DEFAULT_SET_UNACK",
	OpLightLnRangeSet:        "LIGHT_LN_RANGE_SET",
	OpLightLnRangeSetUnack:   "LIGHT_LN_RANGE_SET_UNACK",

	OpLightCTLGet:               "LIGHT_CTL_GET",
	OpLightCTLSet:               "LIGHT_CTL_SET",
	OpLightCTLSetUnack:          "LIGHT_CTL_SET_UNACK",
	OpLightCTLStatus:            "LIGHT_CTL_STATUS",
	OpLightCTLTempGet:           "LIGHT_CTL_TEMP_GET",
	OpLightCTLTempRangeGet:      "LIGHT_CTL_TEMP_RANGE_GET",
	OpLightCTLTempRangeStatus:   "LIGHT_CTL_TEMP_RANGE_STATUS",
	OpLightCTLTempSet:           "LIGHT_CTL_TEMP_SET",
	OpLightCTLTempSetUnack:      "LIGHT_CTL_TEMP_SET_UNACK",
	OpLightCTLTempStatus:        "LIGHT_CTL_TEMP_STATUS",
	OpLightCTLDefaultGet:        "LIGHT_CTL_DEFAULT_GET",
	OpLightCTLDefaultStatus:     "LIGHT_CTL_DEFAULT_STATUS",
	OpLightCTLDefaultSet:        "LIGHT_CTL_DEFAULT_SET",
	OpLightCTLDefaultSetUnack:   "LIGHT_CTL_DEFAULT_SET_UNACK",
	OpLightCTLTempRangeSet:      "LIGHT_CTL_TEMP_RANGE_SET",
	OpLightCTLTempRangeSetUnack: "LIGHT_CTL_TEMP_RANGE_SET_UNACK",

	OpLightHSLGet:             "LIGHT_HSL_GET",
	OpLightHSLHueGet:          "LIGHT_HSL_HUE_GET",
	OpLightHSLHueSet:          "LIGHT_HSL_HUE_SET",
	OpLightHSLHueSetUnack:     "LIGHT_HSL_HUE_SET_UNACK",
	OpLightHSLHueStatus:       "LIGHT_HSL_HUE_STATUS",
	OpLightHSLSatGet:          "LIGHT_HSL_SAT_GET",
	OpLightHSLSatSet:          "LIGHT_HSL_SAT_SET",
	OpLightHSLSatSetUnack:     "LIGHT_HSL_SAT_SET_UNACK",
	OpLightHSLSatStatus:       "LIGHT_HSL_SAT_STATUS",
	OpLightHSLSet:             "LIGHT_HSL_SET",
	OpLightHSLSetUnack:        "LIGHT_HSL_SET_UNACK",
	OpLightHSLStatus:          "LIGHT_HSL_STATUS",
	OpLightHSLTargetGet:       "LIGHT_HSL_TARGET_GET",
	OpLightHSLTargetStatus:    "LIGHT_HSL_TARGET_STATUS",
	OpLightHSLDefaultGet:      "LIGHT_HSL_DEFAULT_GET",
	OpLightHSLDefaultStatus:   "LIGHT_HSL_DEFAULT_STATUS",
	OpLightHSLRangeGet:        "LIGHT_HSL_RANGE_GET",
	OpLightHSLRangeStatus:     "LIGHT_HSL_RANGE_STATUS",
	OpLightHSLDefaultSet:      "LIGHT_HSL_DEFAULT_SET",
	OpLightHSLDefaultSetUnack: "LIGHT_HSL_DEFAULT_SET_UNACK",
	OpLightHSLRangeSet:        "LIGHT_HSL_RANGE_SET",
	OpLightHSLRangeSetUnack:   "LIGHT_HSL_RANGE_SET_UNACK",

	OpLightXYLGet:             "LIGHT_XYL_GET",
	OpLightXYLSet:             "LIGHT_XYL_SET",
	OpLightXYLSetUnack:        "LIGHT_XYL_SET_UNACK",
	OpLightXYLStatus:          "LIGHT_XYL_STATUS",
	OpLightXYLTargetGet:       "LIGHT_XYL_TARGET_GET",
	OpLightXYLTargetStatus:    "LIGHT_XYL_TARGET_STATUS",
	OpLightXYLDefaultGet:      "LIGHT_XYL_DEFAULT_GET",
	OpLightXYLDefaultStatus:   "LIGHT_XYL_DEFAULT_STATUS",
	OpLightXYLRangeGet:        "LIGHT_XYL_RANGE_GET",
	OpLightXYLRangeStatus:     "LIGHT_XYL_RANGE_STATUS",
	OpLightXYLDefaultSet:      "LIGHT_XYL_DEFAULT_SET",
	OpLightXYLDefaultSetUnack: "LIGHT_XYL_DEFAULT_SET_UNACK",
	OpLightXYLRangeSet:        "LIGHT_XYL_RANGE_SET",
	OpLightXYLRangeSetUnack:   "LIGHT_XYL_RANGE_SET_UNACK",
}
