// internal/writer/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// EndpointClient writes the status block to one Modbus TCP endpoint.
//
// The connection is opened on first use and dropped after any failed
// write, so an endpoint that is offline at startup or restarts later is
// picked up again on the next write. Requests are serialized because the
// unit ID lives on the shared handler.
type EndpointClient struct {
	mu        sync.Mutex
	handler   *modbus.TCPClientHandler
	client    modbus.Client
	connected bool
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	return &EndpointClient{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Close drops the connection if one is open.
func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnect()
}

// WriteRegisters writes holding registers (FC16) at addr.
func (c *EndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		if err := c.handler.Connect(); err != nil {
			return fmt.Errorf("writer modbus: connect %s: %w", c.handler.Address, err)
		}
		c.connected = true
	}

	c.handler.SlaveId = unitID
	if _, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs)); err != nil {
		_ = c.disconnect()
		return fmt.Errorf("writer modbus: write %d regs at %d: %w", len(regs), addr, err)
	}
	return nil
}

func (c *EndpointClient) disconnect() error {
	if !c.connected {
		return nil
	}
	c.connected = false
	return c.handler.Close()
}

// Modbus register memory order (BIG-ENDIAN)
func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, v := range regs {
		out[i*2] = byte(v >> 8)
		out[i*2+1] = byte(v)
	}
	return out
}
