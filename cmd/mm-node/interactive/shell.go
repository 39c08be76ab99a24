// Package interactive provides the interactive command-line interface
// for mm-node.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/meshmodel/mm-go/pkg/binding"
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/server"
	"github.com/meshmodel/mm-go/pkg/stack"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// Shell drives one or more node stacks from typed commands.
type Shell struct {
	mu    sync.Mutex
	out   io.Writer
	nodes map[string]*stack.Stack
	order []string
	cur   string
	tid   uint8
}

// New creates a shell writing to out. Add nodes before calling Run.
func New(out io.Writer) *Shell {
	return &Shell{
		out:   out,
		nodes: make(map[string]*stack.Stack),
	}
}

// AddNode makes st available under name. The first node added is current.
func (s *Shell) AddNode(name string, st *stack.Stack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[name] = st
	s.order = append(s.order, name)
	if s.cur == "" {
		s.cur = name
	}
}

// Indicator returns an indicator printing the indications of node name.
func (s *Shell) Indicator(name string) model.Indicator {
	return model.IndicatorFunc(func(ind model.StateIndication) {
		line := fmt.Sprintf("[%s] %s from %s lid=%d: %d", name, ind.State, ind.Src, ind.LocalIndex, ind.Value1)
		if ind.Value1 != ind.Value2 || ind.RemainingMS != 0 {
			line += fmt.Sprintf(" -> %d in %dms", ind.Value2, ind.RemainingMS)
		}
		if ind.Status != wire.StatusSuccess {
			line += fmt.Sprintf(" status=%s", ind.Status)
		}
		s.println(line)
	})
}

func (s *Shell) println(a ...any) {
	s.mu.Lock()
	w := s.out
	s.mu.Unlock()
	fmt.Fprintln(w, a...)
}

func (s *Shell) printf(format string, a ...any) {
	s.mu.Lock()
	w := s.out
	s.mu.Unlock()
	fmt.Fprintf(w, format, a...)
}

// Run reads commands until quit, EOF or ctx is done.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mm> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.mu.Lock()
	s.out = rl.Stdout()
	s.mu.Unlock()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			s.println("Exiting...")
			cancel()
			return nil
		}

		if !s.Exec(line) {
			s.println("Exiting...")
			cancel()
			return nil
		}
	}
}

// Exec runs one command line. It returns false when the shell should exit.
func (s *Shell) Exec(line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		s.printHelp()
	case "nodes", "n":
		s.cmdNodes()
	case "use":
		err = s.cmdUse(args)
	case "models", "m":
		err = s.cmdModels()
	case "add":
		err = s.cmdAdd(args)
	case "bind":
		err = s.cmdBind(args)
	case "get", "g":
		err = s.cmdGet(args)
	case "set", "s":
		err = s.cmdSet(args)
	case "tx", "transition":
		err = s.cmdTransition(args)
	case "state":
		err = s.cmdState(args)
	case "stats":
		err = s.cmdStats()
	case "quit", "exit", "q":
		return false
	default:
		s.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	if err != nil {
		s.printf("Error: %v\n", err)
	}
	return true
}

func (s *Shell) printHelp() {
	s.println(`
Mesh Model Node Commands:
  Nodes:
    nodes                          - List nodes
    use <node>                     - Select the current node
    models                         - List models of the current node
    stats                          - Show dispatcher statistics

  Models:
    add <kind> [element]           - Add a model, e.g. onoff-client, level-server
    bind <lightness-lid> <lid>...  - Bind OnOff and Level servers to a Lightness server
    state <lid>                    - Show a local server's state

  Messages (dst in hex, values decimal or 0x hex):
    get <lid> <dst> [sel=N]                   - Send a get
    set <lid> <dst> <v1> [v2] [kind=N] [ack]  - Send a set
    tx <lid> <dst> <v1> [v2] [tt=MS] [delay=MS] [kind=N] [long] [ack]
                                              - Start a transition

  General:
    help                           - Show this help
    quit                           - Exit`)
}

func (s *Shell) current() (*stack.Stack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.nodes[s.cur]
	if !ok {
		return nil, errors.New("no node selected")
	}
	return st, nil
}

func (s *Shell) nextTID() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tid++
	return s.tid
}

func (s *Shell) cmdNodes() {
	s.mu.Lock()
	names := append([]string(nil), s.order...)
	stacks := make([]*stack.Stack, len(names))
	for i, name := range names {
		stacks[i] = s.nodes[name]
	}
	cur := s.cur
	s.mu.Unlock()

	for i, name := range names {
		st := stacks[i]
		mark := " "
		if name == cur {
			mark = "*"
		}
		s.printf("%s %-8s %s  models=%d  session=%s\n", mark, name, st.Address(), st.Registry().Count(), st.SessionID())
	}
}

func (s *Shell) cmdUse(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: use <node>")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[args[0]]; !ok {
		return fmt.Errorf("unknown node %q", args[0])
	}
	s.cur = args[0]
	return nil
}

func (s *Shell) cmdModels() error {
	st, err := s.current()
	if err != nil {
		return err
	}
	envs := st.Registry().Envs()
	sort.Slice(envs, func(i, j int) bool { return envs[i].LocalIndex() < envs[j].LocalIndex() })
	for _, e := range envs {
		kind := "-"
		if m := e.Model(); m != nil {
			kind = m.Kind().String()
		}
		group := ""
		if g, ok := e.Model().(interface{ Group() *binding.Group }); ok && g.Group() != nil {
			group = fmt.Sprintf("  group=%d", g.Group().ID())
		}
		s.printf("  lid=%-3d element=%d %-18s %s%s\n", e.LocalIndex(), e.Element(), kind, e.Role(), group)
	}
	return nil
}

// ParseKindArg accepts kind names such as "onoff-client" or "LEVEL_SERVER".
func ParseKindArg(s string) (model.Kind, error) {
	return model.ParseKind(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
}

func (s *Shell) cmdAdd(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: add <kind> [element]")
	}
	st, err := s.current()
	if err != nil {
		return err
	}
	kind, err := ParseKindArg(args[0])
	if err != nil {
		return err
	}
	var element uint8
	if len(args) == 2 {
		v, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			return fmt.Errorf("invalid element %q", args[1])
		}
		element = uint8(v)
	}

	var lid model.LocalIndex
	switch kind {
	case model.KindOnOffServer:
		var srv *server.OnOff
		if srv, err = st.AddOnOffServer(element); err == nil {
			lid = srv.LocalIndex()
		}
	case model.KindLevelServer:
		var srv *server.Level
		if srv, err = st.AddLevelServer(element); err == nil {
			lid = srv.LocalIndex()
		}
	case model.KindLightnessServer:
		var srv *server.Lightness
		if srv, err = st.AddLightnessServer(element); err == nil {
			lid = srv.LocalIndex()
		}
	default:
		lid, err = st.AddClient(kind, element)
	}
	if err != nil {
		return err
	}
	s.printf("Added %s at lid=%d\n", kind, lid)
	return nil
}

func (s *Shell) cmdBind(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: bind <lightness-lid> <lid>...")
	}
	st, err := s.current()
	if err != nil {
		return err
	}
	lids, err := parseLIDs(args)
	if err != nil {
		return err
	}

	m, _ := st.Model(lids[0])
	light, ok := m.(*server.Lightness)
	if !ok {
		return fmt.Errorf("lid %d is not a lightness server", lids[0])
	}
	members := make([]server.Bindable, 0, len(lids)-1)
	for _, lid := range lids[1:] {
		m, _ := st.Model(lid)
		b, ok := m.(server.Bindable)
		if !ok {
			return fmt.Errorf("lid %d cannot be bound", lid)
		}
		members = append(members, b)
	}

	g, err := st.BindLightness(light, members...)
	if err != nil {
		return err
	}
	s.printf("Bound %d members in group %d\n", len(members), g.ID())
	return nil
}

func (s *Shell) cmdGet(args []string) error {
	pos, opts, err := splitArgs(args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return errors.New("usage: get <lid> <dst> [sel=N]")
	}
	st, err := s.current()
	if err != nil {
		return err
	}
	lid, dst, err := parseTarget(pos[0], pos[1])
	if err != nil {
		return err
	}
	return st.Get(lid, dst, uint8(opts.num["sel"]))
}

func (s *Shell) cmdSet(args []string) error {
	pos, opts, err := splitArgs(args)
	if err != nil {
		return err
	}
	if len(pos) < 3 || len(pos) > 4 {
		return errors.New("usage: set <lid> <dst> <v1> [v2] [kind=N] [ack]")
	}
	st, err := s.current()
	if err != nil {
		return err
	}
	lid, dst, err := parseTarget(pos[0], pos[1])
	if err != nil {
		return err
	}
	v, err := parseValues(pos[2:])
	if err != nil {
		return err
	}
	return st.Set(lid, dst, v[0], v[1], model.SetInfo{
		Ack:  opts.flags["ack"],
		Kind: model.SetKind(opts.num["kind"]),
	})
}

func (s *Shell) cmdTransition(args []string) error {
	pos, opts, err := splitArgs(args)
	if err != nil {
		return err
	}
	if len(pos) < 3 || len(pos) > 4 {
		return errors.New("usage: tx <lid> <dst> <v1> [v2] [tt=MS] [delay=MS] [kind=N] [long] [ack]")
	}
	st, err := s.current()
	if err != nil {
		return err
	}
	lid, dst, err := parseTarget(pos[0], pos[1])
	if err != nil {
		return err
	}
	v, err := parseValues(pos[2:])
	if err != nil {
		return err
	}
	return st.Transition(lid, dst, model.TransitionRequest{
		State1:      v[0],
		State2:      v[1],
		TransTimeMS: uint32(opts.num["tt"]),
		DelayMS:     uint32(opts.num["delay"]),
		Info: model.TransitionInfo{
			Ack:  opts.flags["ack"],
			Long: opts.flags["long"],
			Kind: model.TransitionKind(opts.num["kind"]),
			TID:  s.nextTID(),
		},
	})
}

func (s *Shell) cmdState(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: state <lid>")
	}
	st, err := s.current()
	if err != nil {
		return err
	}
	lids, err := parseLIDs(args)
	if err != nil {
		return err
	}
	m, ok := st.Model(lids[0])
	if !ok {
		return fmt.Errorf("no model at lid %d", lids[0])
	}

	switch srv := m.(type) {
	case *server.OnOff:
		s.printf("OnOff: %d\n", srv.State())
	case *server.Level:
		s.printf("Level: %d\n", srv.State())
	case *server.Lightness:
		lo, hi := srv.Range()
		s.printf("Lightness: actual=%d linear=%d last=%d default=%d range=[%d,%d]\n",
			srv.Actual(), srv.Linear(), srv.Last(), srv.Default(), lo, hi)
	default:
		return fmt.Errorf("lid %d is a %s, not a local server", lids[0], m.Kind())
	}
	return nil
}

func (s *Shell) cmdStats() error {
	st, err := s.current()
	if err != nil {
		return err
	}
	ds := st.Dispatcher().Stats()
	s.printf("Models: %d/%d\n", st.Registry().Count(), st.Registry().Capacity())
	s.printf("Dispatch: delivered=%d not-found=%d rejected=%d\n", ds.Delivered, ds.NotFound, ds.Rejected)
	return nil
}

// options holds key=value and bare-word options of a command.
type options struct {
	num   map[string]int64
	flags map[string]bool
}

var knownFlags = map[string]bool{"ack": true, "long": true}

// splitArgs separates positional arguments from options.
func splitArgs(args []string) ([]string, options, error) {
	opts := options{num: map[string]int64{}, flags: map[string]bool{}}
	var pos []string
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok {
			n, err := strconv.ParseInt(v, 0, 64)
			if err != nil || n < 0 {
				return nil, opts, fmt.Errorf("invalid option %q", a)
			}
			opts.num[strings.ToLower(k)] = n
			continue
		}
		if knownFlags[strings.ToLower(a)] {
			opts.flags[strings.ToLower(a)] = true
			continue
		}
		pos = append(pos, a)
	}
	return pos, opts, nil
}

func parseLIDs(args []string) ([]model.LocalIndex, error) {
	out := make([]model.LocalIndex, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid local index %q", a)
		}
		out = append(out, model.LocalIndex(v))
	}
	return out, nil
}

// ParseAddress parses a hex element address with or without 0x prefix.
func ParseAddress(s string) (wire.Address, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return wire.Address(v), nil
}

func parseTarget(lidArg, dstArg string) (model.LocalIndex, wire.Address, error) {
	lids, err := parseLIDs([]string{lidArg})
	if err != nil {
		return 0, 0, err
	}
	dst, err := ParseAddress(dstArg)
	if err != nil {
		return 0, 0, err
	}
	return lids[0], dst, nil
}

// parseValues parses one or two state values. Negative values keep their
// two's complement bit pattern.
func parseValues(args []string) ([2]uint32, error) {
	var out [2]uint32
	for i, a := range args {
		v, err := strconv.ParseInt(a, 0, 64)
		if err != nil || v < -1<<31 || v > 1<<32-1 {
			return out, fmt.Errorf("invalid value %q", a)
		}
		out[i] = uint32(v)
	}
	return out, nil
}
