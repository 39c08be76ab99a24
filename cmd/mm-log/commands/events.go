package commands

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/meshmodel/mm-go/pkg/log"
	"github.com/meshmodel/mm-go/pkg/wire"
)

const timeLayout = "2006-01-02T15:04:05.000000Z"

// scan calls fn for every event of the capture at path matching filter.
func scan(path string, filter log.Filter, fn func(log.Event) error) error {
	r, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

// typeLabel names the payload of ev: the opcode for messages, otherwise
// the payload kind.
func typeLabel(ev log.Event) string {
	switch {
	case ev.Message != nil:
		return ev.Message.Opcode.String()
	case ev.Frame != nil:
		return "frame"
	case ev.StateChange != nil:
		return "state"
	case ev.Error != nil:
		return "error"
	}
	return "unknown"
}

var (
	layerNames = map[string]log.Layer{
		"transport": log.LayerTransport,
		"access":    log.LayerAccess,
		"model":     log.LayerModel,
	}
	directionNames = map[string]log.Direction{
		"in":  log.DirectionIn,
		"out": log.DirectionOut,
	}
	categoryNames = map[string]log.Category{
		"message": log.CategoryMessage,
		"state":   log.CategoryState,
		"error":   log.CategoryError,
	}
)

func lookup[T any](what string, names map[string]T, s string) (T, error) {
	v, ok := names[strings.ToLower(s)]
	if !ok {
		keys := slices.Sorted(maps.Keys(names))
		return v, fmt.Errorf("invalid %s %q (one of %s)", what, s, strings.Join(keys, ", "))
	}
	return v, nil
}

func parseLayer(s string) (log.Layer, error)         { return lookup("layer", layerNames, s) }
func parseDirection(s string) (log.Direction, error) { return lookup("direction", directionNames, s) }
func parseCategory(s string) (log.Category, error)   { return lookup("category", categoryNames, s) }

func parseHex(s string, bits int) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, bits)
}

// parseOpcode accepts hex with or without 0x, e.g. 8202.
func parseOpcode(s string) (wire.Opcode, error) {
	v, err := parseHex(s, 32)
	if op := wire.Opcode(v); err == nil && op.IsValid() {
		return op, nil
	}
	return 0, fmt.Errorf("invalid opcode %q", s)
}

// parseAddress accepts a 16-bit hex element address.
func parseAddress(s string) (uint16, error) {
	v, err := parseHex(s, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}
