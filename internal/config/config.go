// internal/config/config.go
package config

type Config struct {
	LogLevel     string             `mapstructure:"log_level" yaml:"log_level"`
	Control      ControlConfig      `mapstructure:"control" yaml:"control"`
	Session      SessionConfig      `mapstructure:"session" yaml:"session"`
	Transfer     TransferConfig     `mapstructure:"transfer" yaml:"transfer"`
	Health       HealthConfig       `mapstructure:"health" yaml:"health"`
	StatusMemory StatusMemoryConfig `mapstructure:"status_memory" yaml:"status_memory"`
}

// ---- CONTROL CHANNEL ----

type ControlConfig struct {
	Listen        string `mapstructure:"listen" yaml:"listen"`                 // UDP host:port
	AdvertiseHost string `mapstructure:"advertise_host" yaml:"advertise_host"` // announced to the device; empty = detect
	DeviceHost    string `mapstructure:"device_host" yaml:"device_host"`       // optional handshake at startup
	DevicePort    int    `mapstructure:"device_port" yaml:"device_port"`
	AutoHandshake bool   `mapstructure:"auto_handshake" yaml:"auto_handshake"`
}

// ---- SESSION ----

type SessionConfig struct {
	Slate string `mapstructure:"slate" yaml:"slate"`
}

// ---- DATA CHANNEL ----

type TransferConfig struct {
	CSVDir    string `mapstructure:"csv_dir" yaml:"csv_dir"`
	CSVPort   int    `mapstructure:"csv_port" yaml:"csv_port"` // 0 = ephemeral
	VideoDir  string `mapstructure:"video_dir" yaml:"video_dir"`
	VideoPort int    `mapstructure:"video_port" yaml:"video_port"`
}

// ---- HEALTH ----

type HealthConfig struct {
	IntervalMs int `mapstructure:"interval_ms" yaml:"interval_ms"` // 0 = disabled
}

// ---- STATUS MEMORY (optional, opt-in) ----

type StatusMemoryConfig struct {
	Endpoint   string `mapstructure:"endpoint" yaml:"endpoint"` // empty = disabled
	UnitID     uint8  `mapstructure:"unit_id" yaml:"unit_id"`
	BaseSlot   uint16 `mapstructure:"base_slot" yaml:"base_slot"`
	DeviceName string `mapstructure:"device_name" yaml:"device_name"`
	TimeoutMs  int    `mapstructure:"timeout_ms" yaml:"timeout_ms"`
}

// Enabled reports whether the status mirror is configured.
func (s StatusMemoryConfig) Enabled() bool {
	return s.Endpoint != ""
}
