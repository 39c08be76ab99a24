package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshmodel/mm-go/pkg/stack"
	"github.com/meshmodel/mm-go/pkg/wire"
)

func TestLoadConfigFlagOverrides(t *testing.T) {
	cfg, err := loadConfig(Flags{Address: "0x0010", Elements: 2, LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, wire.Address(0x0010), cfg.Address)
	assert.Equal(t, uint8(2), cfg.Elements)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsBadFlags(t *testing.T) {
	for _, f := range []Flags{
		{Address: "C000"},
		{Address: "nope"},
		{Elements: 300},
		{LogLevel: "loud"},
	} {
		_, err := loadConfig(f)
		assert.ErrorIs(t, err, stack.ErrInvalidConfig, "%+v", f)
	}
}

func TestNodeConfigSplitsProtocolLog(t *testing.T) {
	cfg := stack.DefaultConfig()
	cfg.ProtocolLogPath = "/tmp/run.mmlog"

	got := nodeConfig(cfg, "light", 0x0002)
	assert.Equal(t, wire.Address(0x0002), got.Address)
	assert.Equal(t, "/tmp/run-light.mmlog", got.ProtocolLogPath)
}
