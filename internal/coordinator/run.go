// internal/coordinator/run.go
package coordinator

import (
	"context"
	"time"

	"github.com/tamzrod/livelink-bridge/internal/inbound"
)

// Run is the control loop. It consumes messages in arrival order,
// collects transfer results and drives the health ticks.
// It returns nil when ctx is done or in is closed, and ErrQuit after
// /QuitServer. Open transfer listeners are closed on return.
func (c *Coordinator) Run(ctx context.Context, in <-chan inbound.Message) error {
	defer c.Shutdown()

	var healthC <-chan time.Time
	if c.cfg.HealthInterval > 0 {
		t := time.NewTicker(c.cfg.HealthInterval)
		defer t.Stop()
		healthC = t.C
	}

	var secondsC <-chan time.Time
	if c.cfg.Status != nil {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		secondsC = t.C

		// initial assert
		c.publish(c.snap)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-in:
			if !ok {
				return nil
			}
			c.Handle(msg)
			if c.quit {
				return ErrQuit
			}

		case res := <-c.results:
			c.finish(res)

		case <-healthC:
			c.healthTick()

		case <-secondsC:
			c.secondsTick()
		}
	}
}
