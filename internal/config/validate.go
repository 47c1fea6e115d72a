// internal/config/validate.go
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/op/go-logging"

	"github.com/tamzrod/livelink-bridge/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if _, err := logging.LogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level %q: %w", cfg.LogLevel, err)
	}

	// ------------------------------------------------------------
	// CONTROL CHANNEL
	// ------------------------------------------------------------

	if _, err := listenPort(cfg.Control.Listen); err != nil {
		return fmt.Errorf("control.listen: %w", err)
	}
	if err := checkPort("control.device_port", cfg.Control.DevicePort, false); err != nil {
		return err
	}
	if cfg.Control.AdvertiseHost != "" && net.ParseIP(cfg.Control.AdvertiseHost) == nil {
		return fmt.Errorf("control.advertise_host %q: must be an IP address", cfg.Control.AdvertiseHost)
	}

	// ------------------------------------------------------------
	// DATA CHANNEL
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Transfer.CSVDir) == "" {
		return fmt.Errorf("transfer.csv_dir is required")
	}
	if strings.TrimSpace(cfg.Transfer.VideoDir) == "" {
		return fmt.Errorf("transfer.video_dir is required")
	}
	if err := checkPort("transfer.csv_port", cfg.Transfer.CSVPort, true); err != nil {
		return err
	}
	if err := checkPort("transfer.video_port", cfg.Transfer.VideoPort, true); err != nil {
		return err
	}
	if cfg.Transfer.CSVPort != 0 && cfg.Transfer.CSVPort == cfg.Transfer.VideoPort {
		return fmt.Errorf(
			"transfer port collision: csv_port and video_port are both %d",
			cfg.Transfer.CSVPort,
		)
	}

	if cfg.Health.IntervalMs < 0 {
		return fmt.Errorf("health.interval_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// STATUS MEMORY (OPT-IN)
	// ------------------------------------------------------------

	sm := cfg.StatusMemory
	if !sm.Enabled() {
		return nil
	}

	// device_name sanity (ASCII only)
	for i := 0; i < len(sm.DeviceName); i++ {
		if sm.DeviceName[i] > 0x7F {
			return fmt.Errorf("status_memory.device_name must contain ASCII characters only")
		}
	}
	if sm.BaseSlot > status.MaxBaseSlot {
		return fmt.Errorf("status_memory.base_slot %d out of range (max %d)", sm.BaseSlot, status.MaxBaseSlot)
	}
	if sm.TimeoutMs < 0 {
		return fmt.Errorf("status_memory.timeout_ms must be >= 0")
	}
	if _, _, err := net.SplitHostPort(sm.Endpoint); err != nil {
		return fmt.Errorf("status_memory.endpoint %q: %w", sm.Endpoint, err)
	}

	return nil
}

// listenPort returns the port of a host:port listen address.
func listenPort(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	port, err := strconv.Atoi(p)
	if err != nil || port < 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", p)
	}
	return port, nil
}

func checkPort(name string, port int, allowZero bool) error {
	if port < 0 || port > 65535 || (port == 0 && !allowZero) {
		return fmt.Errorf("%s %d out of range", name, port)
	}
	return nil
}
