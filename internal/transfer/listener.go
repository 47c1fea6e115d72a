// internal/transfer/listener.go
package transfer

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/op/go-logging"
	"github.com/zeebo/blake3"
)

var log = logging.MustGetLogger("transfer")

// Listener is a one-shot TCP endpoint.
// It accepts exactly one connection, persists one length-prefixed payload,
// then closes both sockets. It is never reused.
type Listener struct {
	job  Job
	dir  string
	ln   net.Listener
	port int

	mu     sync.Mutex
	conn   net.Conn
	closed bool

	done   chan Result
	result Result
	once   sync.Once
}

// Listen creates the dated output directory, binds and starts listening
// before returning, so the caller can announce Port() right away.
// The accept/receive work runs on its own goroutine.
//
// If the configured port is already taken (another transfer in flight),
// an ephemeral port is used instead.
func Listen(job Job) (*Listener, error) {
	if job.Filename == "" {
		return nil, errors.New("transfer: filename required")
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := job.Now
	if now == nil {
		now = time.Now
	}

	dir := DatedDir(job.OutputDir, now())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("transfer: create output dir: %w", err)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(job.Host, strconv.Itoa(job.Port)))
	if err != nil && job.Port != 0 && errors.Is(err, syscall.EADDRINUSE) {
		log.Warningf("[receiver:%s] port %d in use, falling back to ephemeral port", job.Filename, job.Port)
		ln, err = net.Listen("tcp", net.JoinHostPort(job.Host, "0"))
	}
	if err != nil {
		return nil, fmt.Errorf("transfer: listen: %w", err)
	}

	l := &Listener{
		job:  job,
		dir:  dir,
		ln:   ln,
		port: ln.Addr().(*net.TCPAddr).Port,
		done: make(chan Result, 1),
	}

	log.Infof("[receiver:%s] listening on port %d (job=%s)", job.Filename, l.port, job.ID)
	go l.serveOnce()
	return l, nil
}

// Job returns the job this listener owns.
func (l *Listener) Job() Job { return l.job }

// Port is the bound TCP port.
func (l *Listener) Port() int { return l.port }

// Dir is the dated output directory.
func (l *Listener) Dir() string { return l.dir }

// Wait blocks until the transfer finished (or failed) and returns its Result.
// Safe to call more than once.
func (l *Listener) Wait() Result {
	l.once.Do(func() { l.result = <-l.done })
	return l.result
}

// Close tears the listener down: the listening socket and any
// in-progress connection. Idempotent.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if l.conn != nil {
		_ = l.conn.Close()
	}
	if err := l.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (l *Listener) serveOnce() {
	res := Result{Job: l.job, Port: l.port}
	defer func() {
		_ = l.Close()
		log.Infof("[receiver:%s] shutdown listener", l.job.Filename)
		l.done <- res
	}()

	conn, err := l.ln.Accept()
	if err != nil {
		res.Err = fmt.Errorf("transfer: accept: %w", err)
		log.Warningf("[receiver:%s] %v", l.job.Filename, res.Err)
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		_ = conn.Close()
		res.Err = fmt.Errorf("transfer: accept: %w", net.ErrClosed)
		return
	}
	l.conn = conn
	l.mu.Unlock()

	// one connection only
	_ = l.ln.Close()

	log.Infof("[receiver:%s] connection from %s", l.job.Filename, conn.RemoteAddr())
	l.receive(conn, &res)
}

func (l *Listener) receive(conn net.Conn, res *Result) {
	// ---- 1) length prefix ----
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(conn, hdr[:]); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrShortHeader, err)
		log.Errorf("[receiver:%s] %v", l.job.Filename, res.Err)
		return
	}
	res.Expected = int64(binary.BigEndian.Uint32(hdr[:]))

	// ---- 2) payload -> disk ----
	path := filepath.Join(l.dir, l.job.Filename)
	f, err := os.Create(path)
	if err != nil {
		res.Err = fmt.Errorf("transfer: create file: %w", err)
		log.Errorf("[receiver:%s] %v", l.job.Filename, res.Err)
		return
	}
	res.Path = path

	h := blake3.New()
	n, copyErr := io.CopyBuffer(
		io.MultiWriter(f, h),
		io.LimitReader(conn, res.Expected),
		make([]byte, chunkSize),
	)
	res.Received = n
	res.Digest = hex.EncodeToString(h.Sum(nil))

	if err := f.Close(); err != nil && res.Err == nil {
		res.Err = fmt.Errorf("transfer: close file: %w", err)
	}

	// ---- 3) outcome ----
	if n < res.Expected {
		res.Truncated = true
		log.Warningf("[receiver:%s] warning: only got %d/%d bytes", l.job.Filename, n, res.Expected)
	}
	if copyErr != nil && res.Err == nil {
		res.Err = fmt.Errorf("transfer: read payload: %w", copyErr)
	}
	if res.Err != nil {
		log.Errorf("[receiver:%s] error: %v", l.job.Filename, res.Err)
		return
	}

	log.Infof("[receiver:%s] saved file to %s (%d bytes, blake3=%s)", l.job.Filename, path, n, res.Digest[:16])
}
