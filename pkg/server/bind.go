package server

import (
	"fmt"

	"github.com/meshmodel/mm-go/pkg/binding"
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Bindable is a server that can be bound under a Lightness server.
type Bindable interface {
	binding.Member
	model.StateSetter
	LocalIndex() model.LocalIndex
	Kind() model.Kind
	joinGroup(g *binding.Group, halt func())
}

// Bind creates the group arbitrated by main and binds members to it. Only
// OnOff and Level servers can be members. Members take the state derived
// from main's present Lightness Actual.
func Bind(coord *binding.Coordinator, main *Lightness, members ...Bindable) (*binding.Group, error) {
	for _, m := range members {
		if k := m.Kind(); k != model.KindOnOffServer && k != model.KindLevelServer {
			return nil, fmt.Errorf("%w: cannot bind %s", wire.ErrInvalidParam, k)
		}
	}

	g, err := coord.NewGroup(main.LocalIndex(), main)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", main.Kind(), err)
	}
	for _, m := range members {
		if err := g.Bind(m.LocalIndex(), m); err != nil {
			return nil, fmt.Errorf("bind %s %d: %w", m.Kind(), m.LocalIndex(), err)
		}
		main.addMember(m)
		m.joinGroup(g, main.halt)
	}
	main.joinGroup(g, main.halt)
	main.syncMembers(main.Actual())
	return g, nil
}

// Compile-time interface satisfaction checks.
var (
	_ Bindable = (*OnOff)(nil)
	_ Bindable = (*Level)(nil)
)
