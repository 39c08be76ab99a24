package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshmodel/mm-go/pkg/wire"
)

// fakeModel accepts a fixed opcode set and records what it receives.
type fakeModel struct {
	id       ID
	kind     Kind
	allowed  map[wire.Opcode]bool
	received []wire.RouteEnv
	payloads [][]byte
}

func newFakeModel(kind Kind, ops ...wire.Opcode) *fakeModel {
	m := &fakeModel{id: kind.ID(), kind: kind, allowed: make(map[wire.Opcode]bool)}
	for _, op := range ops {
		m.allowed[op] = true
	}
	return m
}

func (m *fakeModel) ID() ID { return m.id }
func (m *fakeModel) Kind() Kind { return m.kind }

func (m *fakeModel) OpcodeAllowed(op wire.Opcode) error {
	if m.allowed[op] {
		return nil
	}
	return wire.ErrInvalidOpcode
}

func (m *fakeModel) Receive(buf *wire.Buffer, env *wire.RouteEnv) {
	m.received = append(m.received, *env)
	m.payloads = append(m.payloads, append([]byte(nil), buf.Bytes()...))
}

var _ Model = (*fakeModel)(nil)

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry(4)

	lid0, err := reg.Register(IDGenOnOffClient, 0, 0)
	require.NoError(t, err)
	lid1, err := reg.Register(IDGenLevelClient, 0, 0)
	require.NoError(t, err)
	lid2, err := reg.Register(IDGenOnOffClient, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, LocalIndex(0), lid0)
	assert.Equal(t, LocalIndex(1), lid1)
	assert.Equal(t, LocalIndex(2), lid2)
	assert.Equal(t, 3, reg.Count())

	env, ok := reg.Env(lid2)
	require.True(t, ok)
	assert.Equal(t, IDGenOnOffClient, env.ID())
	assert.Equal(t, uint8(1), env.Element())
	assert.Equal(t, RoleClient, env.Role())
	assert.False(t, env.Bound())
}

func TestRegistryFull(t *testing.T) {
	reg := NewRegistry(2)
	_, err := reg.Register(IDGenOnOffClient, 0, 0)
	require.NoError(t, err)
	_, err = reg.Register(IDGenLevelClient, 0, 0)
	require.NoError(t, err)

	lid, err := reg.Register(IDGenDTTClient, 0, 0)
	assert.ErrorIs(t, err, ErrRegistryFull)
	assert.Equal(t, InvalidLocalIndex, lid)
}

func TestRegistryDuplicate(t *testing.T) {
	tests := []struct {
		name   string
		first  ConfigFlags
		second ConfigFlags
		want   error
	}{
		{"neither allows", 0, 0, ErrDuplicateModel},
		{"only second allows", 0, FlagAllowDuplicate, ErrDuplicateModel},
		{"only first allows", FlagAllowDuplicate, 0, ErrDuplicateModel},
		{"both allow", FlagAllowDuplicate, FlagAllowDuplicate | FlagPublish, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry(0)
			_, err := reg.Register(IDLightCTLClient, 3, tt.first)
			require.NoError(t, err)

			_, err = reg.Register(IDLightCTLClient, 3, tt.second)
			if !errors.Is(err, tt.want) {
				t.Errorf("Register() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRegistryCapacityBounds(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultCapacity},
		{-1, DefaultCapacity},
		{10, 10},
		{1000, MaxCapacity},
	}
	for _, tt := range tests {
		if got := NewRegistry(tt.in).Capacity(); got != tt.want {
			t.Errorf("NewRegistry(%d).Capacity() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRegistryNeverHandsOutSentinel(t *testing.T) {
	reg := NewRegistry(MaxCapacity + 10)
	for i := 0; i < MaxCapacity; i++ {
		lid, err := reg.Register(IDGenOnOffClient, uint8(i), 0)
		require.NoError(t, err)
		require.True(t, lid.IsValid())
	}
	_, err := reg.Register(IDGenOnOffClient, 0xFF, 0)
	assert.ErrorIs(t, err, ErrRegistryFull)
}

func TestRegistryBindState(t *testing.T) {
	reg := NewRegistry(0)
	lid, err := reg.Register(IDGenOnOffClient, 0, 0)
	require.NoError(t, err)

	m := newFakeModel(KindOnOffClient)

	_, err = reg.BindState(0, IDGenOnOffClient, lid, RoleServer, m)
	assert.ErrorIs(t, err, ErrRoleMismatch)

	_, err = reg.BindState(1, IDGenOnOffClient, lid, RoleClient, m)
	assert.ErrorIs(t, err, ErrModelNotFound)

	_, err = reg.BindState(0, IDGenOnOffClient, InvalidLocalIndex, RoleClient, m)
	assert.ErrorIs(t, err, ErrModelNotFound)

	_, err = reg.BindState(0, IDGenOnOffClient, lid, RoleClient, newFakeModel(KindLevelClient))
	assert.ErrorIs(t, err, ErrModelNotFound)

	env, err := reg.BindState(0, IDGenOnOffClient, lid, RoleClient, m)
	require.NoError(t, err)
	assert.True(t, env.Bound())
	assert.Same(t, m, env.Model())

	_, err = reg.BindState(0, IDGenOnOffClient, lid, RoleClient, m)
	assert.ErrorIs(t, err, ErrAlreadyBound)

	got, ok := reg.Model(lid)
	require.True(t, ok)
	assert.Same(t, m, got)
}

func TestRegistryLocalIndex(t *testing.T) {
	reg := NewRegistry(0)
	_, _ = reg.Register(IDGenOnOffClient, 0, 0)
	want, _ := reg.Register(IDLightHSLClient, 2, 0)

	lid, ok := reg.LocalIndex(2, IDLightHSLClient)
	assert.True(t, ok)
	assert.Equal(t, want, lid)

	lid, ok = reg.LocalIndex(0, IDLightHSLClient)
	assert.False(t, ok)
	assert.Equal(t, InvalidLocalIndex, lid)

	assert.Len(t, reg.ElementEnvs(2), 1)
	assert.Len(t, reg.Envs(), 2)
}

func TestRegistryClose(t *testing.T) {
	reg := NewRegistry(0)
	lid, _ := reg.Register(IDGenOnOffClient, 0, 0)
	reg.Close()

	_, ok := reg.Env(lid)
	assert.False(t, ok)
	_, err := reg.Register(IDGenLevelClient, 0, 0)
	assert.ErrorIs(t, err, ErrRegistryClosed)
	assert.Equal(t, 0, reg.Count())
}

func TestKindTable(t *testing.T) {
	for _, k := range ClientKinds() {
		if !k.IsValid() {
			t.Errorf("%v.IsValid() = false", k)
		}
		if k.Role() != RoleClient {
			t.Errorf("%v.Role() = %v, want CLIENT", k, k.Role())
		}
		parsed, err := ParseKind(k.String())
		if err != nil || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), parsed, err)
		}
	}
	for _, k := range []Kind{KindOnOffServer, KindLevelServer, KindLightnessServer} {
		if k.Role() != RoleServer {
			t.Errorf("%v.Role() = %v, want SERVER", k, k.Role())
		}
	}
	_, err := ParseKind("NOPE")
	assert.Error(t, err)
	assert.False(t, Kind(0).IsValid())
}

func TestIDString(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{IDGenOnOffClient, "GenOnOffClient"},
		{IDLightXYLSetup, "LightXYLSetupServer"},
		{ID(0x1FFF), "MODEL(0x1FFF)"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("ID(0x%04X).String() = %q, want %q", uint32(tt.id), got, tt.want)
		}
	}
	assert.False(t, ID(0x1FFF).IsKnown())
}

func TestPackPair(t *testing.T) {
	v := PackPair(0x1234, 0xABCD)
	assert.Equal(t, uint32(0xABCD1234), v)
	lo, hi := UnpackPair(v)
	assert.Equal(t, uint16(0x1234), lo)
	assert.Equal(t, uint16(0xABCD), hi)

	// Signed fields survive through their bit pattern.
	minDeltaUV := int16(-32768)
	lo, hi = UnpackPair(PackPair(0xFFFF, uint16(minDeltaUV)))
	assert.Equal(t, uint16(0xFFFF), lo)
	assert.Equal(t, int16(-32768), int16(hi))
}

func TestTransitionRequestIsLong(t *testing.T) {
	tests := []struct {
		name string
		req  TransitionRequest
		want bool
	}{
		{"zero", TransitionRequest{}, false},
		{"time", TransitionRequest{TransTimeMS: 1}, true},
		{"delay", TransitionRequest{DelayMS: 5}, true},
		{"forced", TransitionRequest{Info: TransitionInfo{Long: true}}, true},
		{"ack only", TransitionRequest{Info: TransitionInfo{Ack: true}}, false},
	}
	for _, tt := range tests {
		if got := tt.req.IsLong(); got != tt.want {
			t.Errorf("%s: IsLong() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
