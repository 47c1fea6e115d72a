// cmd/livelink/tools.go
package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/spf13/cobra"

	"github.com/tamzrod/livelink-bridge/internal/config"
	"github.com/tamzrod/livelink-bridge/internal/transfer"
)

// ----
// push: plays the device side of the data channel
// ----

func newPushCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "push FILE",
		Short: "Push a file to a transfer listener using the length-prefixed framing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				return fmt.Errorf("--addr is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := transfer.NewPusher(timeout).PushFile(ctx, addr, args[0]); err != nil {
				return err
			}
			log.Infof("pushed %s to %s", args[0], addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listener host:port")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline")
	return cmd
}

// ----
// send: one control message, for poking the device or the server
// ----

func newSendCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "send /Address [ARG...]",
		Short: "Send one OSC control message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			host, portStr, err := net.SplitHostPort(addr)
			if err != nil {
				return fmt.Errorf("--addr: %w", err)
			}
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return fmt.Errorf("--addr: invalid port %q", portStr)
			}

			msg := osc.NewMessage(args[0], parseArgs(args[1:])...)
			if err := osc.NewClient(host, port).Send(msg); err != nil {
				return err
			}
			log.Infof("sent %s %v to %s", msg.Address, msg.Arguments, addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "destination host:port")
	return cmd
}

// parseArgs types each word as int32, then float32, then string.
func parseArgs(words []string) []interface{} {
	out := make([]interface{}, 0, len(words))
	for _, w := range words {
		if i, err := strconv.ParseInt(w, 10, 32); err == nil {
			out = append(out, int32(i))
			continue
		}
		if f, err := strconv.ParseFloat(w, 32); err == nil {
			out = append(out, float32(f))
			continue
		}
		out = append(out, w)
	}
	return out
}

// ----
// config: prints the effective configuration
// ----

func newConfigCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration after defaults and environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			config.Normalize(cfg)
			b, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVar(&path, "config", "", "path to YAML config")
	return cmd
}
