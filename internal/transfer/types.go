// internal/transfer/types.go
package transfer

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// HeaderSize is the length prefix of the data channel: one big-endian uint32.
const HeaderSize = 4

// chunkSize bounds a single read from the data connection.
const chunkSize = 4096

// dateLayout is DD-MM-YYYY.
const dateLayout = "02-01-2006"

var (
	ErrShortHeader = errors.New("transfer: failed to read length prefix")
	ErrTooLarge    = errors.New("transfer: payload exceeds 4-byte length prefix")
)

// Job describes one artifact to receive.
// A Job is owned by exactly one Listener.
type Job struct {
	ID        uuid.UUID
	Host      string // bind host; empty = all interfaces
	Port      int    // 0 = ephemeral
	OutputDir string // root; the dated subdirectory is appended
	Filename  string // bare name, no directory part

	// Now supplies the date used for the output subdirectory.
	// nil means time.Now.
	Now func() time.Time
}

// Result is the single outcome of a Listener.
type Result struct {
	Job  Job
	Port int

	Path      string // empty when nothing was written
	Expected  int64  // learned from the wire
	Received  int64
	Truncated bool
	Digest    string // hex BLAKE3 of the persisted bytes

	Err error
}

// OK reports a complete, error-free transfer.
func (r Result) OK() bool {
	return r.Err == nil && !r.Truncated
}

// DatedDir returns <base>/<DD-MM-YYYY>.
func DatedDir(base string, t time.Time) string {
	return filepath.Join(base, t.Format(dateLayout))
}

// BareName strips any directory prefix a remote path may carry.
// Both separators are handled since the device sends its own paths.
func BareName(remotePath string) string {
	name := remotePath
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' || name[i] == '\\' {
			name = name[i+1:]
			break
		}
	}
	return name
}
