// internal/transfer/push_test.go
package transfer

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPush_WireFormat(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			got <- nil
			return
		}
		defer conn.Close()
		b, _ := io.ReadAll(conn)
		got <- b
	}()

	payload := []byte("hello device")
	require.NoError(t, NewPusher(time.Second).Push(context.Background(), ln.Addr().String(), bytes.NewReader(payload), int64(len(payload))))

	raw := <-got
	require.Len(t, raw, HeaderSize+len(payload))
	assert.Equal(t, uint32(len(payload)), binary.BigEndian.Uint32(raw[:HeaderSize]))
	assert.Equal(t, payload, raw[HeaderSize:])
}

func TestPush_RejectsOversize(t *testing.T) {
	err := NewPusher(time.Second).Push(context.Background(), "127.0.0.1:1", bytes.NewReader(nil), 1<<33)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestPushFile_ToListener(t *testing.T) {
	src := filepath.Join(t.TempDir(), "take.mov")
	content := bytes.Repeat([]byte{1, 2, 3, 4, 5}, 3000)
	require.NoError(t, os.WriteFile(src, content, 0o644))

	l, err := Listen(listenJob(t, "take.mov"))
	require.NoError(t, err)

	require.NoError(t, NewPusher(time.Second).PushFile(context.Background(), addrOf(l), src))

	res := waitResult(t, l)
	require.True(t, res.OK())

	out, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, content, out)
}
