// internal/status/snapshot.go
package status

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	BatteryPercent uint16
	Take           uint16
	SecondsInError uint16
}

// Healthy reports whether the snapshot carries the OK verdict.
func (s Snapshot) Healthy() bool {
	return s.Health == HealthOK
}
