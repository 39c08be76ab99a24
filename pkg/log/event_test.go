package log

import "testing"

func TestEnumNames(t *testing.T) {
	tests := []struct {
		name string
		got  fmtStringer
		want string
	}{
		{"in", DirectionIn, "IN"},
		{"out", DirectionOut, "OUT"},
		{"direction out of range", Direction(7), "UNKNOWN"},
		{"transport", LayerTransport, "TRANSPORT"},
		{"access", LayerAccess, "ACCESS"},
		{"model", LayerModel, "MODEL"},
		{"layer out of range", Layer(3), "UNKNOWN"},
		{"message", CategoryMessage, "MESSAGE"},
		{"state", CategoryState, "STATE"},
		{"error", CategoryError, "ERROR"},
		{"unassigned category", Category(1), "UNKNOWN"},
		{"group", StateEntityGroup, "GROUP"},
		{"model entity", StateEntityModel, "MODEL"},
		{"peer", StateEntityPeer, "PEER"},
		{"entity out of range", StateEntity(255), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.got.String(); got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

type fmtStringer interface{ String() string }
