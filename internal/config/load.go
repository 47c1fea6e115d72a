// internal/config/load.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. LIVELINK_CONTROL_LISTEN.
const EnvPrefix = "LIVELINK"

// defaults are registered so every key can be overridden from the environment.
var defaults = map[string]interface{}{
	"log_level":                 "INFO",
	"control.listen":            "0.0.0.0:5000",
	"control.advertise_host":    "",
	"control.device_host":       "",
	"control.device_port":       5000,
	"control.auto_handshake":    false,
	"session.slate":             "take",
	"transfer.csv_dir":          "recordings/csv",
	"transfer.csv_port":         0,
	"transfer.video_dir":        "recordings/video",
	"transfer.video_port":       0,
	"health.interval_ms":        0,
	"status_memory.endpoint":    "",
	"status_memory.unit_id":     1,
	"status_memory.base_slot":   0,
	"status_memory.device_name": "",
	"status_memory.timeout_ms":  1000,
}

// Load reads a YAML config file. Environment variables take precedence.
// An empty path loads defaults + environment only.
// Load does not validate.
func Load(path string) (*Config, error) {
	v := viper.New()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Marshal renders the effective configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
