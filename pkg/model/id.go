package model

import "fmt"

// ID is a SIG model identifier.
type ID uint32

// Generic model identifiers.
const (
	IDGenOnOffServer      ID = 0x1000
	IDGenOnOffClient      ID = 0x1001
	IDGenLevelServer      ID = 0x1002
	IDGenLevelClient      ID = 0x1003
	IDGenDTTServer        ID = 0x1004
	IDGenDTTClient        ID = 0x1005
	IDGenPowerOnOffServer ID = 0x1006
	IDGenPowerOnOffSetup  ID = 0x1007
	IDGenPowerOnOffClient ID = 0x1008
	IDGenPowerLevelServer ID = 0x1009
	IDGenPowerLevelSetup  ID = 0x100A
	IDGenPowerLevelClient ID = 0x100B
	IDGenBatteryServer    ID = 0x100C
	IDGenBatteryClient    ID = 0x100D
	IDGenLocationServer   ID = 0x100E
	IDGenLocationSetup    ID = 0x100F
	IDGenLocationClient   ID = 0x1010
	IDGenAdminPropServer  ID = 0x1011
	IDGenManuPropServer   ID = 0x1012
	IDGenUserPropServer   ID = 0x1013
	IDGenClientPropServer ID = 0x1014
	IDGenPropertyClient   ID = 0x1015
)

// Lighting model identifiers.
const (
	IDLightLnServer      ID = 0x1300
	IDLightLnSetup       ID = 0x1301
	IDLightLnClient      ID = 0x1302
	IDLightCTLServer     ID = 0x1303
	IDLightCTLSetup      ID = 0x1304
	IDLightCTLClient     ID = 0x1305
	IDLightCTLTempServer ID = 0x1306
	IDLightHSLServer     ID = 0x1307
	IDLightHSLSetup      ID = 0x1308
	IDLightHSLClient     ID = 0x1309
	IDLightHSLHueServer  ID = 0x130A
	IDLightHSLSatServer  ID = 0x130B
	IDLightXYLServer     ID = 0x130C
	IDLightXYLSetup      ID = 0x130D
	IDLightXYLClient     ID = 0x130E
)

// Role is the role of a model instance.
type Role uint8

const (
	// RoleServer holds state and answers requests.
	RoleServer Role = iota

	// RoleClient sends requests and reports statuses to the application.
	RoleClient
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleServer:
		return "SERVER"
	case RoleClient:
		return "CLIENT"
	default:
		return fmt.Sprintf("ROLE(%d)", r)
	}
}

type idInfo struct {
	name string
	role Role
}

var ids = map[ID]idInfo{
	IDGenOnOffServer:      {"GenOnOffServer", RoleServer},
	IDGenOnOffClient:      {"GenOnOffClient", RoleClient},
	IDGenLevelServer:      {"GenLevelServer", RoleServer},
	IDGenLevelClient:      {"GenLevelClient", RoleClient},
	IDGenDTTServer:        {"GenDTTServer", RoleServer},
	IDGenDTTClient:        {"GenDTTClient", RoleClient},
	IDGenPowerOnOffServer: {"GenPowerOnOffServer", RoleServer},
	IDGenPowerOnOffSetup:  {"GenPowerOnOffSetupServer", RoleServer},
	IDGenPowerOnOffClient: {"GenPowerOnOffClient", RoleClient},
	IDGenPowerLevelServer: {"GenPowerLevelServer", RoleServer},
	IDGenPowerLevelSetup:  {"GenPowerLevelSetupServer", RoleServer},
	IDGenPowerLevelClient: {"GenPowerLevelClient", RoleClient},
	IDGenBatteryServer:    {"GenBatteryServer", RoleServer},
	IDGenBatteryClient:    {"GenBatteryClient", RoleClient},
	IDGenLocationServer:   {"GenLocationServer", RoleServer},
	IDGenLocationSetup:    {"GenLocationSetupServer", RoleServer},
	IDGenLocationClient:   {"GenLocationClient", RoleClient},
	IDGenAdminPropServer:  {"GenAdminPropertyServer", RoleServer},
	IDGenManuPropServer:   {"GenManufacturerPropertyServer", RoleServer},
	IDGenUserPropServer:   {"GenUserPropertyServer", RoleServer},
	IDGenClientPropServer: {"GenClientPropertyServer", RoleServer},
	IDGenPropertyClient:   {"GenPropertyClient", RoleClient},
	IDLightLnServer:       {"LightLightnessServer", RoleServer},
	IDLightLnSetup:        {"LightLightnessSetupServer", RoleServer},
	IDLightLnClient:       {"LightLightnessClient", RoleClient},
	IDLightCTLServer:      {"LightCTLServer", RoleServer},
	IDLightCTLSetup:       {"LightCTLSetupServer", RoleServer},
	IDLightCTLClient:      {"LightCTLClient", RoleClient},
	IDLightCTLTempServer:  {"LightCTLTemperatureServer", RoleServer},
	IDLightHSLServer:      {"LightHSLServer", RoleServer},
	IDLightHSLSetup:       {"LightHSLSetupServer", RoleServer},
	IDLightHSLClient:      {"LightHSLClient", RoleClient},
	IDLightHSLHueServer:   {"LightHSLHueServer", RoleServer},
	IDLightHSLSatServer:   {"LightHSLSaturationServer", RoleServer},
	IDLightXYLServer:      {"LightXYLServer", RoleServer},
	IDLightXYLSetup:       {"LightXYLSetupServer", RoleServer},
	IDLightXYLClient:      {"LightXYLClient", RoleClient},
}

// IsKnown reports whether id is one of the declared SIG model identifiers.
func (id ID) IsKnown() bool {
	_, ok := ids[id]
	return ok
}

// Role returns the role implied by the identifier. Unknown identifiers
// report RoleServer.
func (id ID) Role() Role {
	return ids[id].role
}

// String returns the model name, or the hex identifier if unknown.
func (id ID) String() string {
	if info, ok := ids[id]; ok {
		return info.name
	}
	return fmt.Sprintf("MODEL(0x%04X)", uint32(id))
}
