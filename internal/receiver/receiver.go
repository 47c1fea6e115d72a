// internal/receiver/receiver.go
package receiver

import (
	"errors"
	"fmt"
	"net"

	"github.com/hypebeast/go-osc/osc"
	"github.com/op/go-logging"

	"github.com/tamzrod/livelink-bridge/internal/inbound"
)

var log = logging.MustGetLogger("receiver")

// maxDatagram bounds one control datagram.
const maxDatagram = 65535

// ErrMalformed marks a datagram that is not a valid OSC packet.
var ErrMalformed = errors.New("receiver: malformed control packet")

// Receiver reads control datagrams and decodes them.
// Decode only: no routing, no state.
type Receiver struct {
	conn net.PacketConn
	buf  []byte
}

// New wraps a bound packet connection. The Receiver takes ownership of it.
func New(conn net.PacketConn) (*Receiver, error) {
	if conn == nil {
		return nil, errors.New("receiver: conn required")
	}
	return &Receiver{conn: conn, buf: make([]byte, maxDatagram)}, nil
}

// LocalAddr is the bound control address.
func (r *Receiver) LocalAddr() net.Addr { return r.conn.LocalAddr() }

// ReceiveOnce blocks for exactly one datagram.
// A bundle yields all of its messages in order.
func (r *Receiver) ReceiveOnce() ([]inbound.Message, error) {
	n, from, err := r.conn.ReadFrom(r.buf)
	if err != nil {
		return nil, err
	}

	p, err := osc.ParsePacket(string(r.buf[:n]))
	if err != nil {
		return nil, fmt.Errorf("%w from %v: %v", ErrMalformed, from, err)
	}
	// ParsePacket yields no packet for data that is neither a message nor a bundle
	if p == nil {
		return nil, fmt.Errorf("%w from %v: not an OSC packet", ErrMalformed, from)
	}
	return inbound.FromPacket(p, from), nil
}

// Close releases the socket, unblocking a pending ReceiveOnce.
func (r *Receiver) Close() error {
	return r.conn.Close()
}
