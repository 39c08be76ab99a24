package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"path/filepath"
	"strings"

	"github.com/meshmodel/mm-go/cmd/mm-node/interactive"
	"github.com/meshmodel/mm-go/pkg/model"
	"github.com/meshmodel/mm-go/pkg/stack"
	"github.com/meshmodel/mm-go/pkg/transport"
	"github.com/meshmodel/mm-go/pkg/wire"
)

// network owns the stacks and the bearer they run on.
type network struct {
	stacks []*stack.Stack
	stop   func()
}

// Close stops the bearer and closes every stack.
func (n *network) Close() {
	if n.stop != nil {
		n.stop()
	}
	for _, st := range n.stacks {
		if err := st.Close(); err != nil {
			log.Printf("Error closing stack %s: %v", st.Address(), err)
		}
	}
}

// nodeConfig derives the config of a simulated node. Protocol logs get one
// file per node.
func nodeConfig(cfg stack.Config, name string, addr wire.Address) stack.Config {
	cfg.Address = addr
	if cfg.ProtocolLogPath != "" {
		ext := filepath.Ext(cfg.ProtocolLogPath)
		cfg.ProtocolLogPath = strings.TrimSuffix(cfg.ProtocolLogPath, ext) + "-" + name + ext
	}
	return cfg
}

// startSimulation attaches a controller and a light to a loopback bearer.
func startSimulation(ctx context.Context, cfg stack.Config, shell *interactive.Shell) (*network, error) {
	lb := transport.NewLoopback(transport.WithLogger(cfg.Logger))
	n := &network{}

	ctlCfg := nodeConfig(cfg, "ctl", cfg.Address)
	lightCfg := nodeConfig(cfg, "light", cfg.Address+wire.Address(cfg.Elements))
	if err := lightCfg.Validate(); err != nil {
		return nil, err
	}

	ctl, _, err := stack.NewAttached(ctlCfg, lb, stack.WithIndicator(shell.Indicator("ctl")))
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}
	n.stacks = append(n.stacks, ctl)

	light, _, err := stack.NewAttached(lightCfg, lb, stack.WithIndicator(shell.Indicator("light")))
	if err != nil {
		n.Close()
		return nil, fmt.Errorf("light: %w", err)
	}
	n.stacks = append(n.stacks, light)

	if err := populateLight(light); err != nil {
		n.Close()
		return nil, err
	}
	for _, kind := range []model.Kind{model.KindOnOffClient, model.KindLevelClient, model.KindLightnessClient} {
		if _, err := ctl.AddClient(kind, 0); err != nil {
			n.Close()
			return nil, err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = lb.Run(runCtx)
	}()
	n.stop = func() {
		cancel()
		<-done
	}

	shell.AddNode("ctl", ctl)
	shell.AddNode("light", light)
	log.Printf("Simulating controller at %s and light at %s", ctl.Address(), light.Address())
	return n, nil
}

// populateLight adds a Lightness server with bound OnOff and Level servers.
func populateLight(st *stack.Stack) error {
	light, err := st.AddLightnessServer(0)
	if err != nil {
		return err
	}
	onoff, err := st.AddOnOffServer(0)
	if err != nil {
		return err
	}
	level, err := st.AddLevelServer(0)
	if err != nil {
		return err
	}
	_, err = st.BindLightness(light, onoff, level)
	return err
}

// startHubNode runs one node on a TCP hub.
func startHubNode(ctx context.Context, cfg stack.Config, f Flags, shell *interactive.Shell) (*network, error) {
	var st *stack.Stack
	hub := transport.NewHub(transport.HubConfig{
		Address: f.Listen,
		Local:   cfg.Address,
		Relay:   f.Relay,
		Receiver: transport.ReceiverFunc(func(buf *wire.Buffer) {
			st.Receive(buf)
		}),
		Logger: cfg.Logger,
		OnPeer: func(remote net.Addr, connected bool) {
			log.Printf("Peer %s connected=%v", remote, connected)
		},
	})

	var err error
	st, err = stack.New(cfg, hub, stack.WithIndicator(shell.Indicator("node")))
	if err != nil {
		return nil, err
	}
	n := &network{stacks: []*stack.Stack{st}}

	if err := hub.Start(ctx); err != nil {
		n.Close()
		return nil, err
	}
	n.stop = func() { _ = hub.Stop() }
	log.Printf("Node %s listening on %s", st.Address(), hub.Addr())

	for _, addr := range strings.Split(f.Connect, ",") {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if err := hub.Connect(ctx, addr); err != nil {
			n.Close()
			return nil, fmt.Errorf("connect %s: %w", addr, err)
		}
	}

	shell.AddNode("node", st)
	return n, nil
}
