package client

import (
	"fmt"

	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// New creates the client implementing kind.
func New(kind model.Kind, cfg Config) (model.Model, error) {
	switch kind {
	case model.KindOnOffClient:
		return NewOnOff(cfg), nil
	case model.KindLevelClient:
		return NewLevel(cfg), nil
	case model.KindDTTClient:
		return NewDTT(cfg), nil
	case model.KindPowerOnOffClient:
		return NewPowerOnOff(cfg), nil
	case model.KindPowerLevelClient:
		return NewPowerLevel(cfg), nil
	case model.KindBatteryClient:
		return NewBattery(cfg), nil
	case model.KindLocationClient:
		return NewLocation(cfg), nil
	case model.KindPropertyClient:
		return NewProperty(cfg), nil
	case model.KindLightnessClient:
		return NewLightness(cfg), nil
	case model.KindCTLClient:
		return NewCTL(cfg), nil
	case model.KindHSLClient:
		return NewHSL(cfg), nil
	case model.KindXYLClient:
		return NewXYL(cfg), nil
	default:
		return nil, fmt.Errorf("client kind %s: %w", kind, wire.ErrInvalidParam)
	}
}

// MaxGetSelector returns the largest get selector kind accepts.
func MaxGetSelector(kind model.Kind) (uint8, bool) {
	var ops []wire.Opcode
	switch kind {
	case model.KindOnOffClient:
		ops = onOffGets
	case model.KindLevelClient:
		ops = levelGets
	case model.KindDTTClient:
		ops = dttGets
	case model.KindPowerOnOffClient:
		ops = powerOnOffGets
	case model.KindPowerLevelClient:
		ops = powerLevelGets
	case model.KindBatteryClient:
		ops = batteryGets
	case model.KindLocationClient:
		ops = locationGets
	case model.KindPropertyClient:
		ops = propertyListGets
	case model.KindLightnessClient:
		ops = lightnessGets
	case model.KindCTLClient:
		ops = ctlGets
	case model.KindHSLClient:
		ops = hslGets
	case model.KindXYLClient:
		ops = xylGets
	default:
		return 0, false
	}
	return uint8(len(ops) - 1), true
}
