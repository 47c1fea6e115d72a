// internal/receiver/runner.go
package receiver

import (
	"context"
	"errors"
	"net"

	"github.com/tamzrod/livelink-bridge/internal/inbound"
)

// Run reads datagrams until ctx is done or the socket is closed, and emits
// messages on out in arrival order. One goroutine. No retries.
// Malformed datagrams are logged and skipped.
// The socket is closed when ctx is done.
func (r *Receiver) Run(ctx context.Context, out chan<- inbound.Message) {
	stop := context.AfterFunc(ctx, func() { _ = r.Close() })
	defer stop()

	for {
		msgs, err := r.ReceiveOnce()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warningf("%v", err)
			continue
		}

		for _, m := range msgs {
			select {
			case <-ctx.Done():
				return
			case out <- m:
			}
		}
	}
}
