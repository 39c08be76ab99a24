package wire

// Transition fields appended to the long form of a set message.
const (
	// TransitionFieldsLen is the size of the transition time and delay bytes.
	TransitionFieldsLen = 2

	// RemainingFieldLen is the size of the remaining time byte of a status.
	RemainingFieldLen = 1
)

// Generic OnOff parameter lengths.
const (
	LenGenOnOffSet        = 2
	LenGenOnOffSetLong    = LenGenOnOffSet + TransitionFieldsLen
	LenGenOnOffStatus     = 1
	LenGenOnOffStatusLong = 3
)

// Generic Level parameter lengths.
const (
	LenGenLevelSet        = 3
	LenGenLevelSetLong    = LenGenLevelSet + TransitionFieldsLen
	LenGenDeltaSet        = 5
	LenGenDeltaSetLong    = LenGenDeltaSet + TransitionFieldsLen
	LenGenMoveSet         = 3
	LenGenMoveSetLong     = LenGenMoveSet + TransitionFieldsLen
	LenGenLevelStatus     = 2
	LenGenLevelStatusLong = 5
)

// Generic Default Transition Time and Power OnOff parameter lengths.
const (
	LenGenDTTSet          = 1
	LenGenDTTStatus       = 1
	LenGenOnPowerUpSet    = 1
	LenGenOnPowerUpStatus = 1
)

// Generic Power Level parameter lengths.
const (
	LenGenPowerLevelSet        = 3
	LenGenPowerLevelSetLong    = LenGenPowerLevelSet + TransitionFieldsLen
	LenGenPowerLevelStatus     = 2
	LenGenPowerLevelStatusLong = 5
	LenGenPowerLastStatus      = 2
	LenGenPowerDefaultSet      = 2
	LenGenPowerDefaultStatus   = 2
	LenGenPowerRangeSet        = 4
	LenGenPowerRangeStatus     = 5
)

// Generic Battery parameter lengths.
const (
	LenGenBatteryStatus = 8
)

// Generic Location parameter lengths.
const (
	LenGenLocGlobal = 10
	LenGenLocLocal  = 9
)

// Generic Property parameter lengths (fixed parts).
const (
	LenGenPropID           = 2
	LenGenUserPropSetMin   = 2
	LenGenAdminPropSetMin  = 3
	LenGenManuPropSet      = 3
	LenGenPropStatusMin    = 2
	LenGenPropStatusHeader = 3
	LenGenClientPropsGet   = 2
)

// Light Lightness parameter lengths.
const (
	LenLightLnSet           = 3
	LenLightLnSetLong       = LenLightLnSet + TransitionFieldsLen
	LenLightLnStatus        = 2
	LenLightLnStatusLong    = 5
	LenLightLnLastStatus    = 2
	LenLightLnDefaultSet    = 2
	LenLightLnDefaultStatus = 2
	LenLightLnRangeSet      = 4
	LenLightLnRangeStatus   = 5
)

// Light CTL parameter lengths.
const (
	LenLightCTLSet             = 7
	LenLightCTLSetLong         = LenLightCTLSet + TransitionFieldsLen
	LenLightCTLStatus          = 4
	LenLightCTLStatusLong      = 9
	LenLightCTLTempSet         = 5
	LenLightCTLTempSetLong     = LenLightCTLTempSet + TransitionFieldsLen
	LenLightCTLTempStatus      = 4
	LenLightCTLTempStatusLong  = 9
	LenLightCTLDefaultSet      = 6
	LenLightCTLDefaultStatus   = 6
	LenLightCTLTempRangeSet    = 4
	LenLightCTLTempRangeStatus = 5
)

// Light HSL parameter lengths.
const (
	LenLightHSLSet           = 7
	LenLightHSLSetLong       = LenLightHSLSet + TransitionFieldsLen
	LenLightHSLStatus        = 6
	LenLightHSLStatusLong    = 7
	LenLightHSLHueSet        = 3
	LenLightHSLHueSetLong    = LenLightHSLHueSet + TransitionFieldsLen
	LenLightHSLHueStatus     = 2
	LenLightHSLHueStatusLong = 5
	LenLightHSLDefaultSet    = 6
	LenLightHSLDefaultStatus = 6
	LenLightHSLRangeSet      = 8
	LenLightHSLRangeStatus   = 9
)

// Light xyL parameter lengths.
const (
	LenLightXYLSet           = 7
	LenLightXYLSetLong       = LenLightXYLSet + TransitionFieldsLen
	LenLightXYLStatus        = 6
	LenLightXYLStatusLong    = 7
	LenLightXYLDefaultSet    = 6
	LenLightXYLDefaultStatus = 6
	LenLightXYLRangeSet      = 8
	LenLightXYLRangeStatus   = 9
)

// StatusForm reports which form a status parameter block of length n takes
// given its short and long lengths: long is true for the long form, ok is
// false when n matches neither.
func StatusForm(n, shortLen, longLen int) (long, ok bool) {
	switch n {
	case shortLen:
		return false, true
	case longLen:
		return true, true
	default:
		return false, false
	}
}

// SetLen returns the parameter length of a set message: the short length, or
// the short length plus the transition fields when long is set.
func SetLen(shortLen int, long bool) int {
	if long {
		return shortLen + TransitionFieldsLen
	}
	return shortLen
}
