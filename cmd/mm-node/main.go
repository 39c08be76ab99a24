// Command mm-node runs mesh model nodes with an interactive shell.
//
// Without -listen it simulates a controller node and a light node over an
// in-memory bearer. The light hosts Lightness, OnOff and Level servers bound
// together; the controller hosts the matching clients.
//
// With -listen it runs a single node on a TCP hub, optionally connecting to
// other hubs with -connect.
//
// Usage:
//
//	mm-node [flags]
//
// Flags:
//
//	-config string        YAML configuration file
//	-address string       Primary element address in hex (default "0001")
//	-elements int         Number of elements per node
//	-listen string        Run a single node on a TCP hub at this address
//	-connect string       Comma separated hub addresses to connect to
//	-relay                Forward PDUs between hub peers
//	-protocol-log string  Write a protocol log (.mmlog)
//	-log-level string     Log level: debug, info, warn, error
//	-interactive          Start the interactive shell (default true)
//
// Examples:
//
//	# Simulated controller and light
//	mm-node
//
//	# Two processes on one machine
//	mm-node -listen :7040 -address 0001
//	mm-node -listen :7041 -address 0010 -connect 127.0.0.1:7040
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/meshmodel/mm-go/cmd/mm-node/interactive"
	"github.com/meshmodel/mm-go/pkg/stack"
)

// Flags holds the command line options.
type Flags struct {
	ConfigFile  string
	Address     string
	Elements    int
	Listen      string
	Connect     string
	Relay       bool
	ProtocolLog string
	LogLevel    string
	Interactive bool
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "YAML configuration file")
	flag.StringVar(&flags.Address, "address", "", "Primary element address in hex")
	flag.IntVar(&flags.Elements, "elements", 0, "Number of elements per node")
	flag.StringVar(&flags.Listen, "listen", "", "Run a single node on a TCP hub at this address")
	flag.StringVar(&flags.Connect, "connect", "", "Comma separated hub addresses to connect to")
	flag.BoolVar(&flags.Relay, "relay", false, "Forward PDUs between hub peers")
	flag.StringVar(&flags.ProtocolLog, "protocol-log", "", "Write a protocol log (.mmlog)")
	flag.StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&flags.Interactive, "interactive", true, "Start the interactive shell")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig(flags)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shell := interactive.New(os.Stdout)

	var nw *network
	if flags.Listen != "" {
		nw, err = startHubNode(ctx, cfg, flags, shell)
	} else {
		nw, err = startSimulation(ctx, cfg, shell)
	}
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer nw.Close()

	if flags.Interactive {
		go func() {
			if err := shell.Run(ctx, cancel); err != nil {
				log.Printf("Shell error: %v", err)
				cancel()
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}
	log.Println("Shutting down...")
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(f Flags) (stack.Config, error) {
	cfg := stack.DefaultConfig()
	if f.ConfigFile != "" {
		var err error
		if cfg, err = stack.LoadConfig(f.ConfigFile); err != nil {
			return cfg, err
		}
	}

	if f.Address != "" {
		addr, err := interactive.ParseAddress(f.Address)
		if err != nil {
			return cfg, fmt.Errorf("%w: %w", stack.ErrInvalidConfig, err)
		}
		cfg.Address = addr
	}
	if f.Elements != 0 {
		if f.Elements < 0 || f.Elements > 255 {
			return cfg, fmt.Errorf("%w: elements %d", stack.ErrInvalidConfig, f.Elements)
		}
		cfg.Elements = uint8(f.Elements)
	}
	if f.ProtocolLog != "" {
		cfg.ProtocolLogPath = f.ProtocolLog
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	return cfg, cfg.Validate()
}
