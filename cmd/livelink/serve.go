// cmd/livelink/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tamzrod/livelink-bridge/internal/config"
	"github.com/tamzrod/livelink-bridge/internal/coordinator"
	"github.com/tamzrod/livelink-bridge/internal/inbound"
	"github.com/tamzrod/livelink-bridge/internal/receiver"
	"github.com/tamzrod/livelink-bridge/internal/remote"
	"github.com/tamzrod/livelink-bridge/internal/transfer"
	"github.com/tamzrod/livelink-bridge/internal/writer"
)

type serveFlags struct {
	configPath string
	device     string
	logLevel   string // set only when --log-level was given
}

func newServeCmd() *cobra.Command {
	opts := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the control loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
				opts.logLevel = f.Value.String()
			}
			return serve(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to YAML config (defaults + LIVELINK_* env when empty)")
	cmd.Flags().StringVar(&opts.device, "device", "", "device host to handshake with at startup (overrides control.device_host)")
	return cmd
}

func serve(parent context.Context, opts *serveFlags) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if opts.device != "" {
		cfg.Control.DeviceHost = opts.device
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	// an explicit --log-level wins over the file
	if opts.logLevel == "" {
		if err := InitLogger(cfg.LogLevel); err != nil {
			return err
		}
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Control socket
	// --------------------

	conn, err := net.ListenPacket("udp", cfg.Control.Listen)
	if err != nil {
		return fmt.Errorf("control listen %s: %w", cfg.Control.Listen, err)
	}
	rcv, err := receiver.New(conn)
	if err != nil {
		return err
	}
	defer rcv.Close()

	returnPort := rcv.LocalAddr().(*net.UDPAddr).Port
	returnHost := cfg.Control.AdvertiseHost
	if returnHost == "" {
		returnHost = detectAdvertiseHost(cfg.Control.DeviceHost)
	}
	log.Infof("control channel on %s, advertising %s:%d", rcv.LocalAddr(), returnHost, returnPort)

	// --------------------
	// Status mirror (optional)
	// --------------------

	sw, closeStatus, err := writer.BuildStatusWriter(cfg.StatusMemory)
	if err != nil {
		return fmt.Errorf("status writer failed: %w", err)
	}
	if closeStatus != nil {
		defer closeStatus()
	}

	// --------------------
	// Session
	// --------------------

	client := remote.New(remote.Config{
		ReturnHost: returnHost,
		ReturnPort: returnPort,
		DevicePort: cfg.Control.DevicePort,
		Slate:      cfg.Session.Slate,
		CSVDir:     cfg.Transfer.CSVDir,
		CSVPort:    cfg.Transfer.CSVPort,
		VideoDir:   cfg.Transfer.VideoDir,
		VideoPort:  cfg.Transfer.VideoPort,
	})

	if cfg.Control.DeviceHost != "" {
		if err := client.Handshake(cfg.Control.DeviceHost); err != nil {
			log.Warningf("handshake with %s: %v", cfg.Control.DeviceHost, err)
		}
	}

	coordCfg := coordinator.Config{
		HealthInterval: time.Duration(cfg.Health.IntervalMs) * time.Millisecond,
		AutoHandshake:  cfg.Control.AutoHandshake,
		OnTransfer: func(r transfer.Result) {
			if r.OK() {
				log.Noticef("saved %s (%d bytes, blake3 %s)", r.Path, r.Received, r.Digest)
			}
		},
	}
	if sw != nil {
		coordCfg.Status = sw
	}
	coord := coordinator.New(coordCfg, client)

	// --------------------
	// Run: receiver produces, control loop consumes
	// --------------------

	msgs := make(chan inbound.Message)
	go rcv.Run(ctx, msgs)

	err = coord.Run(ctx, msgs)
	if errors.Is(err, coordinator.ErrQuit) {
		log.Noticef("server stopped by remote request")
		return nil
	}
	if err == nil {
		log.Noticef("server stopped")
	}
	return err
}

// detectAdvertiseHost picks the local address the OS would route
// towards the device. No packet is sent.
func detectAdvertiseHost(deviceHost string) string {
	target := "192.0.2.1:9"
	if deviceHost != "" {
		target = net.JoinHostPort(deviceHost, "9")
	}
	c, err := net.Dial("udp", target)
	if err != nil {
		log.Warningf("could not detect advertise host, using 127.0.0.1: %v", err)
		return "127.0.0.1"
	}
	defer c.Close()
	return c.LocalAddr().(*net.UDPAddr).IP.String()
}
