// internal/config/normalize.go
package config

import (
	"strings"

	"github.com/tamzrod/livelink-bridge/internal/status"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)

	// Device name: ASCII already validated, truncate to the status block width.
	if len(cfg.StatusMemory.DeviceName) > status.DeviceNameMaxChars {
		cfg.StatusMemory.DeviceName = cfg.StatusMemory.DeviceName[:status.DeviceNameMaxChars]
	}

	// Slate: the device rejects an empty label.
	if strings.TrimSpace(cfg.Session.Slate) == "" {
		cfg.Session.Slate = "take"
	}
}
