// internal/writer/builder.go
package writer

import (
	"time"

	cfg "github.com/tamzrod/livelink-bridge/internal/config"
	wmodbus "github.com/tamzrod/livelink-bridge/internal/writer/modbus"
)

// BuildStatusWriter connects the status memory endpoint and returns a writer
// plus its closer. Returns (nil, nil, nil) when the mirror is not configured.
// Assumes config has already passed validation.
func BuildStatusWriter(sm cfg.StatusMemoryConfig) (StatusWriter, func() error, error) {
	if !sm.Enabled() {
		return nil, nil, nil
	}

	c, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: sm.Endpoint,
		Timeout:  time.Duration(sm.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	sw, err := NewDeviceStatusWriter(StatusPlan{
		Endpoint:   sm.Endpoint,
		UnitID:     sm.UnitID,
		BaseSlot:   sm.BaseSlot,
		DeviceName: sm.DeviceName,
	}, c)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}

	return sw, c.Close, nil
}
