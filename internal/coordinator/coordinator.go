// internal/coordinator/coordinator.go
package coordinator

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"github.com/tamzrod/livelink-bridge/internal/inbound"
	"github.com/tamzrod/livelink-bridge/internal/remote"
	"github.com/tamzrod/livelink-bridge/internal/status"
	"github.com/tamzrod/livelink-bridge/internal/transfer"
	"github.com/tamzrod/livelink-bridge/internal/writer"
)

var log = logging.MustGetLogger("coordinator")

// ErrQuit is returned by Run after a /QuitServer message.
var ErrQuit = errors.New("coordinator: quit requested")

// State is the recording lifecycle as seen by the coordinator.
type State string

const (
	StateIdle          State = "idle"
	StateCapturing     State = "capturing"
	StateStopRequested State = "stop_requested"
	StateTransferring  State = "transferring"
)

// Remote is what the coordinator needs from the device client.
// *remote.Client implements it.
type Remote interface {
	Session() remote.Session
	Handshake(deviceHost string) error
	StartCapture() (int, error)
	StopCapture() error
	SetFilename(name string) error
	RequestBattery() error
	SaveFile(command, timecode, csvPath, movPath string) ([]*transfer.Listener, error)
}

// Config is the runtime wiring of a Coordinator.
type Config struct {
	// HealthInterval runs CheckHealth periodically on the control loop. 0 disables.
	HealthInterval time.Duration

	// AutoHandshake establishes presence from the first inbound message's source.
	AutoHandshake bool

	// Status mirrors liveness into status memory. Optional.
	Status writer.StatusWriter

	// OnTransfer observes every finished transfer, on the control loop.
	OnTransfer func(transfer.Result)

	// OnUnmapped observes messages that reached the default handler.
	OnUnmapped func(inbound.Message)
}

// Coordinator owns the remote client, routes control messages and
// tracks liveness. Session and liveness state are only touched from the
// goroutine that calls Handle (the control loop); transfer goroutines
// only report back through the results channel.
type Coordinator struct {
	cfg    Config
	client Remote
	router *inbound.Router

	state   State
	battery float64
	quit    bool

	active  map[uuid.UUID]*transfer.Listener
	results chan transfer.Result

	stopped  chan struct{}
	stopOnce sync.Once

	snap status.Snapshot
}

// New builds a coordinator with its dispatch table.
func New(cfg Config, client Remote) *Coordinator {
	c := &Coordinator{
		cfg:     cfg,
		client:  client,
		router:  inbound.NewRouter(),
		state:   StateIdle,
		battery: 100,
		active:  make(map[uuid.UUID]*transfer.Listener),
		results: make(chan transfer.Result),
		stopped: make(chan struct{}),
		snap:    status.Snapshot{Health: status.HealthUnknown},
	}
	c.routes()
	return c
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State { return c.state }

// BatteryPercent is the last reported battery, 100 until the first report.
func (c *Coordinator) BatteryPercent() float64 { return c.battery }

// Session is the remote client's naming state.
func (c *Coordinator) Session() remote.Session { return c.client.Session() }

// InFlight is the number of transfers whose result has not arrived yet.
func (c *Coordinator) InFlight() int { return len(c.active) }

// Handle processes one control message. Call only from the control loop.
func (c *Coordinator) Handle(msg inbound.Message) {
	if c.cfg.AutoHandshake && msg.From != nil && !c.client.Session().Presence {
		if host := hostOf(msg.From); host != "" {
			if err := c.client.Handshake(host); err != nil {
				log.Warningf("auto handshake with %s: %v", host, err)
			}
		}
	}
	if c.router.Route(msg) {
		log.Debugf("dispatched %s", msg.Address)
	}
}

// Shutdown closes every open transfer listener. Idempotent.
func (c *Coordinator) Shutdown() {
	c.stopOnce.Do(func() {
		close(c.stopped)
		for id, l := range c.active {
			if err := l.Close(); err != nil {
				log.Warningf("closing receiver %s: %v", id, err)
			}
			delete(c.active, id)
		}
		log.Infof("coordinator shut down")
	})
}

func (c *Coordinator) transition(to State) {
	if c.state == to {
		return
	}
	log.Infof("state %s -> %s", c.state, to)
	c.state = to
}

// track registers spawned listeners and forwards their results to the loop.
func (c *Coordinator) track(ls []*transfer.Listener) {
	for _, l := range ls {
		c.active[l.Job().ID] = l
		go func(l *transfer.Listener) {
			res := l.Wait()
			select {
			case c.results <- res:
			case <-c.stopped:
			}
		}(l)
	}
}

// finish runs on the control loop when a transfer reports back.
func (c *Coordinator) finish(res transfer.Result) {
	delete(c.active, res.Job.ID)

	switch {
	case res.Err != nil:
		log.Errorf("transfer %s (%s) failed: %v", res.Job.Filename, res.Job.ID, res.Err)
	case res.Truncated:
		log.Warningf("transfer %s (%s) truncated: %d/%d bytes kept at %s",
			res.Job.Filename, res.Job.ID, res.Received, res.Expected, res.Path)
	default:
		log.Infof("transfer %s (%s) complete: %s", res.Job.Filename, res.Job.ID, res.Path)
	}

	if c.cfg.OnTransfer != nil {
		c.cfg.OnTransfer(res)
	}
}

func hostOf(a net.Addr) string {
	if u, ok := a.(*net.UDPAddr); ok {
		return u.IP.String()
	}
	host, _, err := net.SplitHostPort(a.String())
	if err != nil {
		return ""
	}
	return host
}
