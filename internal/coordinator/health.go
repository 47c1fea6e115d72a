// internal/coordinator/health.go
package coordinator

import (
	"errors"
	"fmt"
	"math"

	"github.com/tamzrod/livelink-bridge/internal/remote"
	"github.com/tamzrod/livelink-bridge/internal/status"
)

// BatteryLowPercent is the threshold below which the device is unhealthy.
const BatteryLowPercent = 10.0

// Health reasons.
const (
	ReasonBatteryLow    = "battery low"
	ReasonNotPresent    = "device not present"
	ReasonStopUnconfirm = "stop not confirmed by device"
)

type verdict struct {
	code   uint16
	reason string
}

func (v verdict) ok() bool { return v.code == status.HealthOK }

// CheckHealth requests a fresh battery report, then evaluates the
// current liveness. It never panics or returns an error: a failing
// query yields (false, <error text>).
// Call only from the control loop.
func (c *Coordinator) CheckHealth() (bool, string) {
	v := c.evaluate()
	return v.ok(), v.reason
}

func (c *Coordinator) evaluate() (v verdict) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("exception during health check: %v", r)
			v = verdict{code: status.HealthQueryError, reason: fmt.Sprint(r)}
		}
	}()

	// the reply lands asynchronously; this check uses the last known value
	if err := c.client.RequestBattery(); err != nil && !errors.Is(err, remote.ErrDeviceUnreachable) {
		log.Errorf("exception during health check: %v", err)
		return verdict{code: status.HealthQueryError, reason: err.Error()}
	}

	s := c.client.Session()
	switch {
	case c.battery < BatteryLowPercent:
		log.Warningf("battery percentage is low: %.1f%%", c.battery)
		return verdict{code: status.HealthBatteryLow, reason: ReasonBatteryLow}
	case !s.Presence:
		log.Warningf("%s", ReasonNotPresent)
		return verdict{code: status.HealthDeviceAbsent, reason: ReasonNotPresent}
	case !s.StopConfirmed:
		log.Warningf("%s", ReasonStopUnconfirm)
		return verdict{code: status.HealthStopUnconfirmed, reason: ReasonStopUnconfirm}
	}
	return verdict{code: status.HealthOK}
}

// healthTick runs a check and mirrors the outcome.
func (c *Coordinator) healthTick() {
	v := c.evaluate()

	next := c.snap
	next.Health = v.code
	next.BatteryPercent = uint16(math.Round(c.battery))
	next.Take = clampU16(c.client.Session().Take)
	if v.ok() {
		next.SecondsInError = 0
	}
	c.publish(next)
}

// secondsTick advances the error counter while not healthy.
func (c *Coordinator) secondsTick() {
	if c.snap.Healthy() || c.snap.SecondsInError == math.MaxUint16 {
		return
	}
	next := c.snap
	next.SecondsInError++
	c.publish(next)
}

func (c *Coordinator) publish(s status.Snapshot) {
	c.snap = s
	if c.cfg.Status == nil {
		return
	}
	if err := c.cfg.Status.WriteStatus(s); err != nil {
		log.Warningf("status write: %v", err)
	}
}

func clampU16(n int) uint16 {
	switch {
	case n < 0:
		return 0
	case n > math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(n)
}
