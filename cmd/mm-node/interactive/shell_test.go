package interactive

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/stack"
	"github.com/meshmodel/mm-go/pkg/transport"
	"github.com/meshmodel/mm-go/pkg/wire"
)

func newShellPair(t *testing.T) (*Shell, *bytes.Buffer, *transport.Loopback) {
	t.Helper()
	out := &bytes.Buffer{}
	sh := New(out)
	lb := transport.NewLoopback()

	for _, n := range []struct {
		name string
		addr wire.Address
	}{{"ctl", 0x0001}, {"light", 0x0002}} {
		cfg := stack.DefaultConfig()
		cfg.Address = n.addr
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		st, _, err := stack.NewAttached(cfg, lb, stack.WithIndicator(sh.Indicator(n.name)))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		sh.AddNode(n.name, st)
	}
	return sh, out, lb
}

func TestShellOnOffTransition(t *testing.T) {
	sh, out, lb := newShellPair(t)

	require.True(t, sh.Exec("add onoff-client"))
	require.True(t, sh.Exec("use light"))
	require.True(t, sh.Exec("add onoff-server"))
	require.True(t, sh.Exec("use ctl"))
	require.True(t, sh.Exec("tx 0 0002 1 ack"))
	lb.Flush()

	assert.Contains(t, out.String(), "Added ONOFF_CLIENT at lid=0")
	assert.Contains(t, out.String(), "Added ONOFF_SERVER at lid=0")
	assert.Contains(t, out.String(), "[ctl] ONOFF from 0x0002 lid=0: 1")

	out.Reset()
	require.True(t, sh.Exec("use light"))
	require.True(t, sh.Exec("state 0"))
	assert.Equal(t, "OnOff: 1\n", out.String())
}

func TestShellBindAndModels(t *testing.T) {
	sh, out, lb := newShellPair(t)

	require.True(t, sh.Exec("add level-client"))
	require.True(t, sh.Exec("use light"))
	for _, kind := range []string{"lightness-server", "onoff-server", "level-server"} {
		require.True(t, sh.Exec("add "+kind))
	}
	require.True(t, sh.Exec("bind 0 1 2"))
	assert.Contains(t, out.String(), "Bound 2 members in group")

	out.Reset()
	require.True(t, sh.Exec("models"))
	assert.Equal(t, 3, strings.Count(out.String(), "group="))

	require.True(t, sh.Exec("use ctl"))
	require.True(t, sh.Exec("tx 0 0002 0"))
	lb.Flush()

	out.Reset()
	require.True(t, sh.Exec("use light"))
	require.True(t, sh.Exec("state 0"))
	assert.Contains(t, out.String(), "actual=32768")
}

func TestShellErrors(t *testing.T) {
	sh, out, _ := newShellPair(t)

	tests := []struct {
		line string
		want string
	}{
		{"frobnicate", "Unknown command"},
		{"use nowhere", "unknown node"},
		{"add toaster", "unknown model kind"},
		{"add onoff-client 9", "element"},
		{"get 0 0002", "no model at"},
		{"tx 0 zz 1", "invalid address"},
		{"set 0 0002", "usage"},
		{"state 0", "no model at lid 0"},
		{"bind 0 1", "not a lightness server"},
	}
	for _, tt := range tests {
		out.Reset()
		assert.True(t, sh.Exec(tt.line), tt.line)
		assert.Contains(t, out.String(), tt.want, tt.line)
	}

	assert.False(t, sh.Exec("quit"))
}

func TestShellStats(t *testing.T) {
	sh, out, _ := newShellPair(t)

	require.True(t, sh.Exec("add onoff-client"))
	out.Reset()
	require.True(t, sh.Exec("stats"))
	assert.Contains(t, out.String(), "Models: 1/32")
	assert.Contains(t, out.String(), "delivered=0")

	out.Reset()
	require.True(t, sh.Exec("nodes"))
	assert.Contains(t, out.String(), "* ctl")
	assert.Contains(t, out.String(), "  light")
}

func TestSplitArgs(t *testing.T) {
	pos, opts, err := splitArgs([]string{"0", "0002", "-5", "tt=500", "delay=0x10", "ACK"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0002", "-5"}, pos)
	assert.Equal(t, int64(500), opts.num["tt"])
	assert.Equal(t, int64(16), opts.num["delay"])
	assert.True(t, opts.flags["ack"])

	_, _, err = splitArgs([]string{"tt=-1"})
	assert.Error(t, err)
}

func TestParseValues(t *testing.T) {
	v, err := parseValues([]string{"-1", "0xFFFF"})
	require.NoError(t, err)
	assert.Equal(t, [2]uint32{0xFFFFFFFF, 0xFFFF}, v)

	_, err = parseValues([]string{"1.5"})
	assert.Error(t, err)
}

func TestParseKindArg(t *testing.T) {
	k, err := ParseKindArg("lightness-client")
	require.NoError(t, err)
	assert.Equal(t, model.KindLightnessClient, k)
}
