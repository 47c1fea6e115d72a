// internal/transfer/push.go
package transfer

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"time"
)

// Pusher is the device side of the data channel
// (stateless, 1 artifact = 1 connection).
// Used by the CLI simulator and by tests.
type Pusher struct {
	timeout time.Duration
}

func NewPusher(timeout time.Duration) *Pusher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Pusher{timeout: timeout}
}

// PushFile sends the file at path to a listener at addr.
func (p *Pusher) PushFile(ctx context.Context, addr, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("transfer push: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("transfer push: %w", err)
	}
	return p.Push(ctx, addr, f, st.Size())
}

// Push writes the 4-byte big-endian size followed by size bytes from r,
// then closes the connection. No acknowledgment is read.
func (p *Pusher) Push(ctx context.Context, addr string, r io.Reader, size int64) error {
	if size < 0 || size > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}

	d := net.Dialer{Timeout: p.timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("transfer push: dial: %w", err)
	}
	defer conn.Close()

	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(dl)
	}

	if err := writeAll(conn, header(uint32(size))); err != nil {
		return fmt.Errorf("transfer push: write header: %w", err)
	}

	n, err := io.CopyN(conn, r, size)
	if err != nil {
		return fmt.Errorf("transfer push: write payload (%d/%d): %w", n, size, err)
	}
	return nil
}

//
// ---- helpers ----
//

func header(size uint32) []byte {
	var b [HeaderSize]byte
	binary.BigEndian.PutUint32(b[:], size)
	return b[:]
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
