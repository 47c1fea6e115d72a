// internal/remote/client_test.go
package remote

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/livelink-bridge/internal/transfer"
)

// ---- fake sender ----

type fakeSender struct {
	sent []*osc.Message
	err  error
}

func (f *fakeSender) Send(p osc.Packet) error {
	if f.err != nil {
		return f.err
	}
	if m, ok := p.(*osc.Message); ok {
		f.sent = append(f.sent, m)
	}
	return nil
}

func (f *fakeSender) addresses() []string {
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Address)
	}
	return out
}

func (f *fakeSender) last() *osc.Message {
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) reset() { f.sent = nil }

func newTestClient(t *testing.T, fake *fakeSender) *Client {
	t.Helper()
	return New(Config{
		ReturnHost: "127.0.0.1",
		ReturnPort: 9000,
		DevicePort: 8000,
		Slate:      "take1",
		CSVDir:     t.TempDir(),
		VideoDir:   t.TempDir(),
		Dial:       func(string, int) Sender { return fake },
	})
}

func connected(t *testing.T) (*Client, *fakeSender) {
	t.Helper()
	fake := &fakeSender{}
	c := newTestClient(t, fake)
	require.NoError(t, c.Handshake("10.0.0.2"))
	fake.reset()
	return c, fake
}

// ---- handshake / reachability ----

func TestSendBeforeHandshakeIsDropped(t *testing.T) {
	fake := &fakeSender{}
	c := newTestClient(t, fake)

	_, err := c.StartCapture()
	assert.ErrorIs(t, err, ErrDeviceUnreachable)
	assert.ErrorIs(t, c.RequestBattery(), ErrDeviceUnreachable)
	assert.Empty(t, fake.sent)
}

func TestHandshakeAnnouncesAndIsIdempotent(t *testing.T) {
	fake := &fakeSender{}
	var dialed []string
	c := newTestClient(t, fake)
	c.cfg.Dial = func(host string, port int) Sender {
		dialed = append(dialed, net.JoinHostPort(host, strconv.Itoa(port)))
		return fake
	}

	require.NoError(t, c.Handshake("10.0.0.2"))
	require.NoError(t, c.Handshake("10.0.0.3"))

	assert.Equal(t, []string{"10.0.0.2:8000"}, dialed)
	assert.Equal(t, "10.0.0.2", c.DeviceHost())
	assert.True(t, c.Session().Presence)
	assert.Equal(t, []string{AddrSetSendTarget, AddrVideoDisplay, AddrSlate}, fake.addresses())
	assert.Equal(t, []interface{}{"127.0.0.1", int32(9000)}, fake.sent[0].Arguments)
	assert.Equal(t, []interface{}{"take1"}, fake.sent[2].Arguments)
}

func TestHandshakeRequiresHost(t *testing.T) {
	c := newTestClient(t, &fakeSender{})
	assert.Error(t, c.Handshake(""))
	assert.False(t, c.Session().Presence)
}

// ---- naming state ----

func TestSetFilenameSameNameKeepsTake(t *testing.T) {
	c, fake := connected(t)

	require.NoError(t, c.SetFilename("hello"))
	require.NoError(t, c.StopCapture())
	require.NoError(t, c.StopCapture())
	require.Equal(t, 2, c.Session().Take)

	require.NoError(t, c.SetFilename("hello"))
	assert.Equal(t, 2, c.Session().Take)
	assert.Equal(t, AddrSlate, fake.last().Address)
	assert.Equal(t, []interface{}{"hello"}, fake.last().Arguments)
}

func TestSetFilenameNewNameResetsTake(t *testing.T) {
	c, _ := connected(t)

	require.NoError(t, c.SetFilename("a"))
	require.NoError(t, c.StopCapture())
	require.Equal(t, 1, c.Session().Take)

	require.NoError(t, c.SetFilename("b"))
	assert.Equal(t, 0, c.Session().Take)
	assert.Equal(t, "b", c.Session().Slate)
}

func TestStartCaptureSendsSlateAndTake(t *testing.T) {
	c, fake := connected(t)
	require.NoError(t, c.StopCapture())

	take, err := c.StartCapture()
	require.NoError(t, err)
	assert.Equal(t, 1, take)
	assert.Equal(t, 1, c.Session().Take, "start must not advance the take")

	assert.Equal(t, AddrRecordStart, fake.last().Address)
	assert.Equal(t, []interface{}{"take1", int32(1)}, fake.last().Arguments)
}

func TestStopCaptureAlwaysAdvancesAndClearsConfirm(t *testing.T) {
	c, fake := connected(t)

	for i := 1; i <= 3; i++ {
		require.NoError(t, c.StopCapture())
		s := c.Session()
		assert.Equal(t, i, s.Take)
		assert.False(t, s.StopConfirmed)
	}
	assert.Equal(t, []string{AddrRecordStop, AddrRecordStop, AddrRecordStop}, fake.addresses())
}

func TestStopCaptureUnreachableStillAdvances(t *testing.T) {
	c := newTestClient(t, &fakeSender{})

	assert.ErrorIs(t, c.StopCapture(), ErrDeviceUnreachable)
	assert.Equal(t, 1, c.Session().Take)
}

func TestSendErrorIsWrapped(t *testing.T) {
	c, fake := connected(t)
	boom := errors.New("boom")
	fake.err = boom

	assert.ErrorIs(t, c.RequestBattery(), boom)
}

// ---- save / transport ----

func transportTargets(t *testing.T, fake *fakeSender) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, m := range fake.sent {
		if m.Address != AddrTransport {
			continue
		}
		require.Len(t, m.Arguments, 2)
		out[m.Arguments[1].(string)] = m.Arguments[0].(string)
	}
	return out
}

func push(t *testing.T, target string, payload []byte) {
	t.Helper()
	err := transfer.NewPusher(time.Second).Push(context.Background(), target, bytes.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)
}

func TestSaveFileConfirmsBeforeSpawning(t *testing.T) {
	c, _ := connected(t)
	require.NoError(t, c.StopCapture())

	var confirmedAtSpawn []bool
	c.cfg.Listen = func(job transfer.Job) (*transfer.Listener, error) {
		confirmedAtSpawn = append(confirmedAtSpawn, c.Session().StopConfirmed)
		job.Host = "127.0.0.1"
		return transfer.Listen(job)
	}

	ls, err := c.SaveFile("cmd", "00:00:01", "x/data.csv", "x/clip.mov")
	require.NoError(t, err)
	for _, l := range ls {
		defer l.Close()
	}

	assert.Equal(t, []bool{true, true}, confirmedAtSpawn)
	assert.True(t, c.Session().StopConfirmed)
}

func TestSaveFileTransfersBothArtifacts(t *testing.T) {
	c, fake := connected(t)

	ls, err := c.SaveFile("cmd", "tc", "20250714_x/a/b/data.csv", "20250714_x/a/b/clip.mov")
	require.NoError(t, err)
	require.Len(t, ls, 2)

	targets := transportTargets(t, fake)
	require.Len(t, targets, 2)
	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(ls[0].Port()), targets["20250714_x/a/b/data.csv"])
	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(ls[1].Port()), targets["20250714_x/a/b/clip.mov"])

	push(t, targets["20250714_x/a/b/clip.mov"], []byte("movie"))
	push(t, targets["20250714_x/a/b/data.csv"], []byte("csv"))

	csv := ls[0].Wait()
	mov := ls[1].Wait()
	require.True(t, csv.OK())
	require.True(t, mov.OK())

	today := time.Now().Format("02-01-2006")
	assert.Equal(t, filepath.Join(c.cfg.CSVDir, today, "data.csv"), csv.Path)
	assert.Equal(t, filepath.Join(c.cfg.VideoDir, today, "clip.mov"), mov.Path)
}

func TestSaveFileOneFailureDoesNotBlockOther(t *testing.T) {
	c, fake := connected(t)

	ls, err := c.SaveFile("cmd", "tc", "dir/", "dir/clip.mov")
	assert.Error(t, err)
	require.Len(t, ls, 1)
	defer ls[0].Close()

	targets := transportTargets(t, fake)
	assert.Len(t, targets, 1)
	assert.Contains(t, targets, "dir/clip.mov")
}

func TestTwoSavesUseDistinctPortsWithoutCrossWrites(t *testing.T) {
	c, fake := connected(t)

	first, err := c.SaveFile("cmd", "tc", "r/a1.csv", "r/a1.mov")
	require.NoError(t, err)
	second, err := c.SaveFile("cmd", "tc", "r/a2.csv", "r/a2.mov")
	require.NoError(t, err)

	all := append(first, second...)
	require.Len(t, all, 4)

	ports := map[int]bool{}
	for _, l := range all {
		ports[l.Port()] = true
	}
	assert.Len(t, ports, 4)

	targets := transportTargets(t, fake)
	payloads := map[string][]byte{
		"r/a1.csv": []byte("first csv"),
		"r/a1.mov": []byte("first mov"),
		"r/a2.csv": []byte("second csv"),
		"r/a2.mov": []byte("second mov"),
	}
	for remotePath, body := range payloads {
		push(t, targets[remotePath], body)
	}

	for _, l := range all {
		res := l.Wait()
		require.True(t, res.OK())
		got, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		assert.Equal(t, payloads["r/"+res.Job.Filename], got)
	}
}

func TestSaveFileUnreachableReleasesListeners(t *testing.T) {
	c := newTestClient(t, &fakeSender{})
	var spawned []*transfer.Listener
	c.cfg.Listen = func(job transfer.Job) (*transfer.Listener, error) {
		l, err := transfer.Listen(job)
		if err == nil {
			spawned = append(spawned, l)
		}
		return l, err
	}

	ls, err := c.SaveFile("cmd", "tc", "a.csv", "b.mov")
	assert.ErrorIs(t, err, ErrDeviceUnreachable)
	assert.Empty(t, ls)

	require.Len(t, spawned, 2)
	for _, l := range spawned {
		assert.Error(t, l.Wait().Err)
	}
}
