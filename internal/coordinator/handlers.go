// internal/coordinator/handlers.go
package coordinator

import (
	"errors"

	"github.com/tamzrod/livelink-bridge/internal/inbound"
	"github.com/tamzrod/livelink-bridge/internal/remote"
)

// Inbound control addresses.
const (
	MsgSendTargetConfirm = "/OSCSetSendTargetConfirm"
	MsgQuitServer        = "/QuitServer"
	MsgBatteryQuery      = "/BatteryQuery"
	MsgSetFileName       = "/SetFileName"
	MsgRecordStart       = "/RecordStart"
	MsgRecordStop        = "/RecordStop"
	MsgRecordStopConfirm = "/RecordStopConfirm"
	MsgBattery           = "/Battery"
)

func (c *Coordinator) routes() {
	r := c.router

	r.Map(MsgSendTargetConfirm, func(m inbound.Message) {
		log.Infof("%s: %v", m.Address, m.Args)
	})
	r.Map(MsgQuitServer, c.quitServer)

	// client requests
	r.Map(MsgBatteryQuery, func(inbound.Message) { c.report(c.client.RequestBattery()) })
	r.Map(MsgSetFileName, c.setFilename)
	r.Map(MsgRecordStart, c.startRecording)
	r.Map(MsgRecordStop, c.stopRecording)

	// the recording is fully finished on the device
	r.Map(MsgRecordStopConfirm, c.recordStopConfirm)

	// health
	r.Map(MsgBattery, c.setBattery)

	r.SetDefault(c.unmapped)
}

func (c *Coordinator) quitServer(inbound.Message) {
	log.Noticef("quit requested")
	c.quit = true
}

func (c *Coordinator) setFilename(m inbound.Message) {
	name, err := m.StringArg(0)
	if err != nil {
		log.Warningf("ignoring %v", err)
		return
	}
	c.report(c.client.SetFilename(name))
}

func (c *Coordinator) startRecording(inbound.Message) {
	if c.state != StateIdle {
		log.Noticef("start requested while %s", c.state)
	}

	take, err := c.client.StartCapture()
	if err != nil {
		c.report(err)
		return
	}
	log.Infof("recording %s take %d", c.client.Session().Slate, take)
	c.transition(StateCapturing)
}

func (c *Coordinator) stopRecording(inbound.Message) {
	if c.state != StateCapturing {
		log.Noticef("stop requested while %s", c.state)
	}

	// the take advances and the confirmation clears even if the send is dropped
	c.report(c.client.StopCapture())
	c.transition(StateStopRequested)
}

// recordStopConfirm accepts the device form [timecode, csvPath, movPath],
// where the address stands in for the command, and the explicit form
// [command, timecode, csvPath, movPath].
func (c *Coordinator) recordStopConfirm(m inbound.Message) {
	command, first := m.Address, 0
	if len(m.Args) >= 4 {
		command, first = m.TextArg(0), 1
	}

	timecode := m.TextArg(first)
	csvPath, err := m.StringArg(first + 1)
	if err != nil {
		log.Warningf("ignoring %v", err)
		return
	}
	movPath, err := m.StringArg(first + 2)
	if err != nil {
		log.Warningf("ignoring %v", err)
		return
	}

	if c.state != StateStopRequested {
		log.Noticef("stop confirmation while %s", c.state)
	}
	c.transition(StateTransferring)

	ls, err := c.client.SaveFile(command, timecode, csvPath, movPath)
	c.track(ls)
	c.report(err)

	// transfers complete in the background
	c.transition(StateIdle)
}

func (c *Coordinator) setBattery(m inbound.Message) {
	level, err := m.FloatArg(0)
	if err != nil {
		log.Warningf("ignoring %v", err)
		return
	}

	pct := level * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	c.battery = pct
	log.Debugf("battery %.1f%%", pct)
}

func (c *Coordinator) unmapped(m inbound.Message) {
	log.Infof("%s: %v", m.Address, m.Args)
	if c.cfg.OnUnmapped != nil {
		c.cfg.OnUnmapped(m)
	}
}

// report logs a non-fatal command error.
func (c *Coordinator) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, remote.ErrDeviceUnreachable):
		log.Warningf("device not yet reachable: %v", err)
	default:
		log.Errorf("%v", err)
	}
}
