package stack

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/meshmodel/mm-go/pkg/binding"
	"github.com/meshmodel/mm-go/pkg/client"
	"github.com/meshmodel/mm-go/pkg/duration"
	"github.com/meshmodel/mm-go/pkg/log"
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/server"
	"github.com/meshmodel/mm-go/pkg/transport"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// ErrClosed is returned by every operation on a closed stack.
var ErrClosed = errors.New("stack closed")

// Option configures a Stack.
type Option func(*Stack)

// WithScheduler sets the scheduler driving transitions and replay expiry.
func WithScheduler(s duration.Scheduler) Option {
	return func(st *Stack) {
		if s != nil {
			st.sched = s
		}
	}
}

// WithIndicator sets the application indicator.
func WithIndicator(ind model.Indicator) Option {
	return func(st *Stack) {
		if ind != nil {
			st.ind = ind
		}
	}
}

// WithProtocolLogger adds a protocol logger next to the file named by
// Config.ProtocolLogPath.
func WithProtocolLogger(l log.Logger) Option {
	return func(st *Stack) {
		st.extraLog = l
	}
}

// Stack is the context of one node: its model registry, dispatcher, binding
// coordinator and the transport it sends through.
type Stack struct {
	cfg       Config
	sessionID string
	logger    *slog.Logger
	plog      log.Logger
	extraLog  log.Logger
	file      *log.FileLogger
	sched     duration.Scheduler
	ind       model.Indicator

	reg   *model.Registry
	disp  *model.Dispatcher
	coord *binding.Coordinator
	tr    *sender

	mu      sync.Mutex
	servers []interface{ Close() }
	closed  bool
}

// New creates a stack sending through tr. Call Receive with every buffer
// the transport delivers.
func New(cfg Config, tr transport.Transport, opts ...Option) (*Stack, error) {
	if tr == nil {
		return nil, fmt.Errorf("%w: nil transport", wire.ErrInvalidParam)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Stack{
		cfg:       cfg,
		sessionID: uuid.New().String(),
		logger:    cfg.logger(),
		sched:     duration.RealScheduler{},
		ind:       model.NoopIndicator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.ProtocolLogPath != "" {
		file, err := log.NewFileLogger(cfg.ProtocolLogPath)
		if err != nil {
			return nil, err
		}
		s.file = file
	}
	s.plog = s.protocolLogger()

	s.reg = model.NewRegistry(cfg.MaxModels)
	s.disp = model.NewDispatcher(s.reg, model.WithLogger(s.logger))
	s.coord = binding.NewCoordinator()
	s.coord.OnStateChange(s.groupStateChanged)
	s.tr = &sender{next: tr, st: s}

	s.logger.Debug("stack created", "address", cfg.Address, "elements", cfg.Elements, "session", s.sessionID)
	return s, nil
}

// protocolLogger combines the file logger and the optional extra logger.
func (s *Stack) protocolLogger() log.Logger {
	var file log.Logger
	if s.file != nil {
		file = s.file
	}
	m := log.NewMultiLogger(file, s.extraLog)
	if m.Len() == 0 {
		return log.NoopLogger{}
	}
	return m
}

// SessionID identifies the stack in protocol logs.
func (s *Stack) SessionID() string { return s.sessionID }

// Address returns the primary element address.
func (s *Stack) Address() wire.Address { return s.cfg.Address }

// Registry returns the model registry.
func (s *Stack) Registry() *model.Registry { return s.reg }

// Dispatcher returns the message dispatcher.
func (s *Stack) Dispatcher() *model.Dispatcher { return s.disp }

// Coordinator returns the binding coordinator.
func (s *Stack) Coordinator() *binding.Coordinator { return s.coord }

// Transport returns the transport models send through.
func (s *Stack) Transport() transport.Transport { return s.tr }

// Receive dispatches a received buffer. Unicast messages go to the element
// they address; other destinations to the first instance accepting the
// opcode. The buffer is released before Receive returns.
func (s *Stack) Receive(buf *wire.Buffer) {
	if s.isClosed() {
		buf.Release()
		return
	}

	ev := messageEvent(buf)
	var err error
	if element, ok := s.element(buf.Env.Dst); ok && !model.LocalIndex(buf.Env.LocalIndex).IsValid() {
		err = s.disp.DispatchElement(element, buf)
	} else {
		err = s.disp.Dispatch(buf)
	}
	if err != nil {
		ev.Dropped = true
		ev.Reason = err.Error()
	}
	s.logMessage(log.DirectionIn, ev)
}

// element returns the element index owning dst.
func (s *Stack) element(dst wire.Address) (uint8, bool) {
	if !dst.IsUnicast() || dst < s.cfg.Address {
		return 0, false
	}
	off := uint32(dst) - uint32(s.cfg.Address)
	if off >= uint32(s.cfg.Elements) {
		return 0, false
	}
	return uint8(off), true
}

// AddClient registers a client of kind on element.
func (s *Stack) AddClient(kind model.Kind, element uint8) (model.LocalIndex, error) {
	if !kind.IsValid() || kind.Role() != model.RoleClient {
		return model.InvalidLocalIndex, fmt.Errorf("%w: %s is not a client", wire.ErrInvalidParam, kind)
	}
	return s.add(kind, element, func(lid model.LocalIndex) (model.Model, error) {
		return client.New(kind, client.Config{
			LocalIndex: lid,
			Transport:  s.tr,
			Indicator:  s.ind,
			Logger:     s.logger,
		})
	})
}

// AddOnOffServer registers a Generic OnOff server on element.
func (s *Stack) AddOnOffServer(element uint8) (*server.OnOff, error) {
	var srv *server.OnOff
	_, err := s.add(model.KindOnOffServer, element, func(lid model.LocalIndex) (model.Model, error) {
		srv = server.NewOnOff(s.serverConfig(lid))
		return srv, nil
	})
	if err != nil {
		return nil, err
	}
	return srv, nil
}

// AddLevelServer registers a Generic Level server on element.
func (s *Stack) AddLevelServer(element uint8) (*server.Level, error) {
	var srv *server.Level
	_, err := s.add(model.KindLevelServer, element, func(lid model.LocalIndex) (model.Model, error) {
		srv = server.NewLevel(s.serverConfig(lid))
		return srv, nil
	})
	if err != nil {
		return nil, err
	}
	return srv, nil
}

// AddLightnessServer registers a Light Lightness server on element.
func (s *Stack) AddLightnessServer(element uint8) (*server.Lightness, error) {
	var srv *server.Lightness
	_, err := s.add(model.KindLightnessServer, element, func(lid model.LocalIndex) (model.Model, error) {
		srv = server.NewLightness(s.serverConfig(lid))
		return srv, nil
	})
	if err != nil {
		return nil, err
	}
	return srv, nil
}

// BindLightness groups OnOff and Level servers under light.
func (s *Stack) BindLightness(light *server.Lightness, members ...server.Bindable) (*binding.Group, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	return server.Bind(s.coord, light, members...)
}

func (s *Stack) add(kind model.Kind, element uint8, build func(lid model.LocalIndex) (model.Model, error)) (model.LocalIndex, error) {
	if s.isClosed() {
		return model.InvalidLocalIndex, ErrClosed
	}
	if element >= s.cfg.Elements {
		return model.InvalidLocalIndex, fmt.Errorf("%w: element %d of %d", wire.ErrInvalidParam, element, s.cfg.Elements)
	}

	lid, err := s.reg.Register(kind.ID(), element, 0)
	if err != nil {
		return model.InvalidLocalIndex, fmt.Errorf("register %s: %w", kind, err)
	}
	m, err := build(lid)
	if err != nil {
		return model.InvalidLocalIndex, err
	}
	c, closable := m.(interface{ Close() })
	if _, err := s.reg.BindState(element, kind.ID(), lid, kind.Role(), m); err != nil {
		if closable {
			c.Close()
		}
		return model.InvalidLocalIndex, fmt.Errorf("bind %s: %w", kind, err)
	}
	if closable {
		s.mu.Lock()
		s.servers = append(s.servers, c)
		s.mu.Unlock()
	}

	s.logger.Debug("model added", "kind", kind, "element", element, "lid", lid)
	return lid, nil
}

func (s *Stack) serverConfig(lid model.LocalIndex) server.Config {
	return server.Config{
		LocalIndex:          lid,
		Transport:           s.tr,
		Scheduler:           s.sched,
		ReplayOptions:       s.cfg.replayOptions(),
		DefaultTransitionMS: s.cfg.DefaultTransitionMS,
		Indicator:           &stateTap{next: s.ind, st: s},
		Logger:              s.logger,
	}
}

// Model returns the instance registered under lid.
func (s *Stack) Model(lid model.LocalIndex) (model.Model, bool) {
	return s.reg.Model(lid)
}

// Get sends a get from the client at lid using the default app key.
func (s *Stack) Get(lid model.LocalIndex, dst wire.Address, selector uint8) error {
	g, err := capability[model.Getter](s, lid, "get")
	if err != nil {
		return err
	}
	return g.Get(s.cfg.DefaultAppKey, dst, selector)
}

// Set sends a set from the client at lid using the default app key.
func (s *Stack) Set(lid model.LocalIndex, dst wire.Address, state1, state2 uint32, info model.SetInfo) error {
	c, err := capability[model.Setter](s, lid, "set")
	if err != nil {
		return err
	}
	return c.Set(s.cfg.DefaultAppKey, dst, state1, state2, info)
}

// Transition starts a transition from the client at lid using the default
// app key.
func (s *Stack) Transition(lid model.LocalIndex, dst wire.Address, req model.TransitionRequest) error {
	c, err := capability[model.Transitioner](s, lid, "transition")
	if err != nil {
		return err
	}
	return c.Transition(s.cfg.DefaultAppKey, dst, req)
}

// capability returns the instance at lid as T, or wire.ErrInvalidParam.
func capability[T any](s *Stack, lid model.LocalIndex, what string) (T, error) {
	var zero T
	if s.isClosed() {
		return zero, ErrClosed
	}
	m, ok := s.reg.Model(lid)
	if !ok {
		return zero, fmt.Errorf("%w: no model at %d", wire.ErrInvalidParam, lid)
	}
	c, ok := m.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s cannot %s", wire.ErrInvalidParam, m.Kind(), what)
	}
	return c, nil
}

// Close stops every server, closes the registry and the protocol log.
// It is safe to call more than once.
func (s *Stack) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	servers := s.servers
	s.servers = nil
	s.mu.Unlock()

	for _, srv := range servers {
		srv.Close()
	}
	s.reg.Close()
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func (s *Stack) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// NewAttached creates a stack attached to lb at cfg.Address, owning
// cfg.Elements addresses.
func NewAttached(cfg Config, lb *transport.Loopback, opts ...Option) (*Stack, *transport.Port, error) {
	var st *Stack
	port, err := lb.Attach(cfg.Address, cfg.Elements, transport.ReceiverFunc(func(buf *wire.Buffer) {
		st.Receive(buf)
	}))
	if err != nil {
		return nil, nil, err
	}
	st, err = New(cfg, port, opts...)
	if err != nil {
		port.Detach()
		return nil, nil, err
	}
	return st, port, nil
}
