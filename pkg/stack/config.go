package stack

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/replay"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// ErrInvalidConfig is returned by Validate and LoadConfig.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config configures a Stack.
type Config struct {
	// Address is the unicast address of the primary element.
	Address wire.Address `yaml:"address"`

	// Elements is the number of elements of the node. Element i has
	// address Address+i.
	Elements uint8 `yaml:"elements"`

	// MaxModels bounds the number of registered model instances.
	MaxModels int `yaml:"max_models"`

	// ReplayDelay is how long a (source, TID) pair is remembered by a server.
	ReplayDelay time.Duration `yaml:"replay_delay"`

	// ReplayCapacity bounds the entries of each server's replay list.
	ReplayCapacity int `yaml:"replay_capacity"`

	// DefaultAppKey is used by the Get, Set and Transition call-throughs.
	DefaultAppKey wire.AppKeyRef `yaml:"default_app_key"`

	// DefaultTransitionMS applies to server sets without transition fields.
	DefaultTransitionMS uint32 `yaml:"default_transition_ms"`

	// ProtocolLogPath enables CBOR protocol logging to this file.
	ProtocolLogPath string `yaml:"protocol_log"`

	// LogLevel is the operational log level: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Logger overrides the operational logger built from LogLevel.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:        0x0001,
		Elements:       1,
		MaxModels:      model.DefaultCapacity,
		ReplayDelay:    replay.DefaultDelay,
		ReplayCapacity: replay.DefaultCapacity,
		DefaultAppKey:  0,
		LogLevel:       "info",
	}
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if !c.Address.IsUnicast() {
		return fmt.Errorf("%w: address %s is not unicast", ErrInvalidConfig, c.Address)
	}
	if c.Elements == 0 || uint32(c.Address)+uint32(c.Elements)-1 > 0x7FFF {
		return fmt.Errorf("%w: %d elements at %s", ErrInvalidConfig, c.Elements, c.Address)
	}
	if c.MaxModels < 0 || c.MaxModels > model.MaxCapacity {
		return fmt.Errorf("%w: max_models %d", ErrInvalidConfig, c.MaxModels)
	}
	if c.ReplayDelay < 0 || c.ReplayCapacity < 0 {
		return fmt.Errorf("%w: negative replay setting", ErrInvalidConfig)
	}
	if c.DefaultAppKey == wire.AppKeyInvalid {
		return fmt.Errorf("%w: default_app_key", ErrInvalidConfig)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseLevel parses an operational log level. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q", s)
	}
	return level, nil
}

func (c *Config) replayOptions() []replay.Option {
	return []replay.Option{
		replay.WithDelay(c.ReplayDelay),
		replay.WithCapacity(c.ReplayCapacity),
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	level, _ := ParseLevel(c.LogLevel)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
