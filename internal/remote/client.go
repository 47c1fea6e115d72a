// internal/remote/client.go
package remote

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"
	"github.com/hypebeast/go-osc/osc"
	"github.com/op/go-logging"

	"github.com/tamzrod/livelink-bridge/internal/transfer"
)

var log = logging.MustGetLogger("remote")

// ErrDeviceUnreachable is returned when a command is issued before the
// handshake recorded a device address. The command is dropped.
var ErrDeviceUnreachable = errors.New("remote: device not reachable (handshake not completed)")

// Outbound control addresses.
const (
	AddrSetSendTarget = "/OSCSetSendTarget"
	AddrVideoDisplay  = "/VideoDisplayOn"
	AddrRecordStart   = "/RecordStart"
	AddrRecordStop    = "/RecordStop"
	AddrSlate         = "/Slate"
	AddrBatteryQuery  = "/BatteryQuery"
	AddrTransport     = "/Transport"
)

// Sender delivers one packet to the device. *osc.Client satisfies it.
type Sender interface {
	Send(packet osc.Packet) error
}

// DialFunc builds a Sender for the device address.
type DialFunc func(host string, port int) Sender

// ListenFunc spawns a transfer listener. transfer.Listen is the default.
type ListenFunc func(job transfer.Job) (*transfer.Listener, error)

// Artifact is one expected file of a save request.
type Artifact struct {
	RemotePath string // as sent by the device
	OutputDir  string
	Port       int
}

// Config is the static wiring of a Client.
type Config struct {
	// ReturnHost/ReturnPort are announced to the device as our control address.
	ReturnHost string
	ReturnPort int

	// DevicePort is the device's control port.
	DevicePort int

	Slate string

	// Per-artifact output roots and configured ports (0 = ephemeral).
	CSVDir    string
	CSVPort   int
	VideoDir  string
	VideoPort int

	Dial   DialFunc   // nil = osc.NewClient
	Listen ListenFunc // nil = transfer.Listen
}

// Client sends control commands to the device and owns the Session.
// It is not safe for concurrent use: the control loop is its only caller.
type Client struct {
	cfg     Config
	session Session

	deviceHost string
	out        Sender
}

// New creates a Client for the initial slate. Nothing is sent until Handshake.
func New(cfg Config) *Client {
	if cfg.Dial == nil {
		cfg.Dial = func(host string, port int) Sender { return osc.NewClient(host, port) }
	}
	if cfg.Listen == nil {
		cfg.Listen = transfer.Listen
	}
	return &Client{
		cfg:     cfg,
		session: newSession(cfg.Slate),
	}
}

// Session returns a copy of the current naming state.
func (c *Client) Session() Session { return c.session }

// DeviceHost is empty until the handshake completed.
func (c *Client) DeviceHost() string { return c.deviceHost }

// Handshake records the device address, announces our return address,
// turns on the device preview and re-sends the slate.
// No-op once presence is established.
func (c *Client) Handshake(deviceHost string) error {
	if c.session.Presence {
		return nil
	}
	if deviceHost == "" {
		return errors.New("remote: device host required")
	}

	c.deviceHost = deviceHost
	c.out = c.cfg.Dial(deviceHost, c.cfg.DevicePort)
	c.session.Presence = true
	log.Infof("device initialized, sending to %s:%d", deviceHost, c.cfg.DevicePort)

	if err := c.send(AddrSetSendTarget, c.cfg.ReturnHost, int32(c.cfg.ReturnPort)); err != nil {
		return err
	}
	if err := c.send(AddrVideoDisplay); err != nil {
		return err
	}
	return c.send(AddrSlate, c.session.Slate)
}

// StartCapture asks the device to record (slate, take) and returns the take.
// The take only advances on StopCapture.
func (c *Client) StartCapture() (int, error) {
	take := c.session.Take
	return take, c.send(AddrRecordStart, c.session.Slate, int32(take))
}

// StopCapture asks the device to stop. Always advances the take and
// clears the stop confirmation, even when already stopped.
func (c *Client) StopCapture() error {
	c.session.stop()
	return c.send(AddrRecordStop)
}

// SetFilename changes the slate. A different name resets the take.
func (c *Client) SetFilename(name string) error {
	log.Infof("setting filename to: %s", name)
	c.session.rename(name)
	return c.send(AddrSlate, c.session.Slate)
}

// RequestBattery queries the device battery level.
func (c *Client) RequestBattery() error {
	return c.send(AddrBatteryQuery)
}

// SaveFile confirms the stop and, for each artifact, spawns a listener and
// tells the device where to push it. Artifacts are independent: a failure
// on one is collected and the next is still attempted.
func (c *Client) SaveFile(command, timecode, csvPath, movPath string) ([]*transfer.Listener, error) {
	c.session.confirmStop()
	log.Infof("record stop confirmed: command=%s timecode=%s", command, timecode)

	artifacts := []Artifact{
		{RemotePath: csvPath, OutputDir: c.cfg.CSVDir, Port: c.cfg.CSVPort},
		{RemotePath: movPath, OutputDir: c.cfg.VideoDir, Port: c.cfg.VideoPort},
	}

	var (
		spawned []*transfer.Listener
		errs    []error
	)
	for _, a := range artifacts {
		l, err := c.fetch(a)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		spawned = append(spawned, l)
	}
	return spawned, errors.Join(errs...)
}

// fetch spawns one listener and sends its transport target.
func (c *Client) fetch(a Artifact) (*transfer.Listener, error) {
	name := transfer.BareName(a.RemotePath)
	if name == "" {
		return nil, fmt.Errorf("remote: no filename in artifact path %q", a.RemotePath)
	}

	l, err := c.cfg.Listen(transfer.Job{
		ID:        uuid.New(),
		Port:      a.Port,
		OutputDir: a.OutputDir,
		Filename:  name,
	})
	if err != nil {
		return nil, fmt.Errorf("remote: spawn receiver for %s: %w", name, err)
	}

	target := net.JoinHostPort(c.cfg.ReturnHost, strconv.Itoa(l.Port()))
	log.Infof("send the transport towards: %s -> %s", a.RemotePath, target)
	if err := c.send(AddrTransport, target, a.RemotePath); err != nil {
		// nobody will connect; release the port
		_ = l.Close()
		return nil, err
	}
	return l, nil
}

func (c *Client) send(addr string, args ...interface{}) error {
	if !c.session.Presence || c.out == nil {
		log.Warningf("dropping %s: %v", addr, ErrDeviceUnreachable)
		return ErrDeviceUnreachable
	}

	log.Debugf("sending msg %s with args %v", addr, args)
	if err := c.out.Send(osc.NewMessage(addr, args...)); err != nil {
		return fmt.Errorf("remote: send %s: %w", addr, err)
	}
	return nil
}
