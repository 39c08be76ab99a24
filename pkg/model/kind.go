package model

import "fmt"

// Kind is the closed set of model implementations hosted by this module.
type Kind uint8

// Client kinds.
const (
	KindOnOffClient Kind = iota + 1
	KindLevelClient
	KindDTTClient
	KindPowerOnOffClient
	KindPowerLevelClient
	KindBatteryClient
	KindLocationClient
	KindPropertyClient
	KindLightnessClient
	KindCTLClient
	KindHSLClient
	KindXYLClient
)

// Server kinds.
const (
	KindOnOffServer Kind = iota + 0x40
	KindLevelServer
	KindLightnessServer
)

var kinds = map[Kind]struct {
	name string
	id   ID
}{
	KindOnOffClient:      {"ONOFF_CLIENT", IDGenOnOffClient},
	KindLevelClient:      {"LEVEL_CLIENT", IDGenLevelClient},
	KindDTTClient:        {"DTT_CLIENT", IDGenDTTClient},
	KindPowerOnOffClient: {"POWER_ONOFF_CLIENT", IDGenPowerOnOffClient},
	KindPowerLevelClient: {"POWER_LEVEL_CLIENT", IDGenPowerLevelClient},
	KindBatteryClient:    {"BATTERY_CLIENT", IDGenBatteryClient},
	KindLocationClient:   {"LOCATION_CLIENT", IDGenLocationClient},
	KindPropertyClient:   {"PROPERTY_CLIENT", IDGenPropertyClient},
	KindLightnessClient:  {"LIGHTNESS_CLIENT", IDLightLnClient},
	KindCTLClient:        {"CTL_CLIENT", IDLightCTLClient},
	KindHSLClient:        {"HSL_CLIENT", IDLightHSLClient},
	KindXYLClient:        {"XYL_CLIENT", IDLightXYLClient},
	KindOnOffServer:      {"ONOFF_SERVER", IDGenOnOffServer},
	KindLevelServer:      {"LEVEL_SERVER", IDGenLevelServer},
	KindLightnessServer:  {"LIGHTNESS_SERVER", IDLightLnServer},
}

// ClientKinds lists every client kind in declaration order.
func ClientKinds() []Kind {
	return []Kind{
		KindOnOffClient, KindLevelClient, KindDTTClient, KindPowerOnOffClient,
		KindPowerLevelClient, KindBatteryClient, KindLocationClient, KindPropertyClient,
		KindLightnessClient, KindCTLClient, KindHSLClient, KindXYLClient,
	}
}

// IsValid reports whether k is a declared kind.
func (k Kind) IsValid() bool {
	_, ok := kinds[k]
	return ok
}

// ID returns the SIG model identifier of the kind.
func (k Kind) ID() ID {
	return kinds[k].id
}

// Role returns the role of the kind.
func (k Kind) Role() Role {
	return k.ID().Role()
}

// String returns the kind name.
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("KIND(%d)", k)
}

// ParseKind returns the kind named s, case-sensitive as printed by String.
func ParseKind(s string) (Kind, error) {
	for k, info := range kinds {
		if info.name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown model kind %q", s)
}
