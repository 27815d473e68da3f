// Package frame implements the length-prefixed wire framing used over the
// supervisor's local duplex byte stream (named pipe, Unix domain socket,
// or equivalent).
//
// Wire format: a 4-byte little-endian unsigned length, followed by exactly
// that many bytes of UTF-8 JSON. Maximum payload is 256 KiB. There is no
// resync: a short read or an out-of-range length is fatal for the
// connection, which is treated as terminal rather than retryable.
package frame

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/apperr"
	"github.com/SandboxServers/MeridianConsole-sub006/internal/size"
)

const (
	// LengthPrefixSize is the width, in bytes, of the frame length prefix.
	LengthPrefixSize = 4

	// MaxPayload is the largest frame payload the framer will accept or
	// emit. Anything larger is connection-fatal: the reader cannot resync
	// mid-stream once a length this large has been read.
	MaxPayload = 256 * size.SizeKilo

	// WriteTimeout bounds the total time a writer may spend acquiring the
	// serialization guard and performing the write itself.
	WriteTimeout = 5 * time.Second
)

// Conn is the minimal duplex byte stream contract the framer needs. A
// net.Conn (TCP, Unix domain socket, or a named-pipe shim) satisfies it
// directly.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Framer reads and writes frames over a single Conn. Reads are expected to
// be driven by exactly one goroutine, the connection's sole reader task;
// writes are safe for concurrent callers because every WriteFrame call
// serializes on an internal mutex.
type Framer struct {
	conn Conn

	// wSem is a 1-buffered channel acting as a timeout-capable mutex: a
	// plain sync.Mutex cannot be acquired with a deadline without leaking
	// a goroutine that eventually locks it out from under a timed-out
	// caller.
	wSem chan struct{}
}

// New wraps conn with frame read/write semantics.
func New(conn Conn) *Framer {
	f := &Framer{conn: conn, wSem: make(chan struct{}, 1)}
	f.wSem <- struct{}{}
	return f
}

// ErrEndOfStream is returned by ReadFrame when the peer closed the
// connection cleanly (a zero-byte read while expecting the length prefix).
var ErrEndOfStream = io.EOF

// ReadFrame reads exactly one frame: the 4-byte length prefix, then
// exactly that many payload bytes. A zero-byte read at the very start of
// a frame is reported as ErrEndOfStream (clean close). Any other short
// read, or a length outside (0, MaxPayload], is a connection-fatal
// apperr.Error; the caller MUST stop reading from conn after such an
// error, since there is no way to resynchronize mid-stream.
func (f *Framer) ReadFrame(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		if err := f.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, apperr.Wrap(apperr.FrameShortRead, "setting read deadline", err)
		}
		defer f.conn.SetReadDeadline(time.Time{})
	}

	var lenBuf [LengthPrefixSize]byte
	n, err := io.ReadFull(f.conn, lenBuf[:])
	if err != nil {
		if n == 0 && (err == io.EOF) {
			return nil, ErrEndOfStream
		}
		return nil, apperr.Wrap(apperr.FrameShortRead, "reading length prefix", err)
	}

	plen := binary.LittleEndian.Uint32(lenBuf[:])
	if plen == 0 {
		return nil, apperr.New(apperr.FrameZeroLength, "frame length prefix is zero")
	}
	if Size(plen) > MaxPayload {
		return nil, apperr.New(apperr.FrameOversize, "frame payload exceeds maximum")
	}

	payload := make([]byte, plen)
	if _, err := io.ReadFull(f.conn, payload); err != nil {
		return nil, apperr.Wrap(apperr.FrameShortRead, "reading frame payload", err)
	}

	return payload, nil
}

// Size is a local alias keeping the oversize comparison readable without
// importing size.Size at every call site beyond the package constant.
type Size = size.Size

// WriteFrame serializes payload as one frame. Concurrent callers are
// safe: a mutex guards the whole write, bounded by WriteTimeout for both
// acquisition and I/O combined. On timeout the frame is dropped with an
// apperr.FrameWriteTimeout error; the connection itself is left open, and
// it is left to the caller to decide whether to close it.
func (f *Framer) WriteFrame(ctx context.Context, payload []byte) error {
	if Size(len(payload)) > MaxPayload {
		return apperr.New(apperr.FrameOversize, "outgoing frame payload exceeds maximum")
	}

	deadline := time.NewTimer(WriteTimeout)
	defer deadline.Stop()

	select {
	case <-f.wSem:
		defer func() { f.wSem <- struct{}{} }()
	case <-deadline.C:
		return apperr.New(apperr.FrameWriteTimeout, "timed out acquiring write guard")
	case <-ctx.Done():
		return apperr.Wrap(apperr.FrameWriteTimeout, "context canceled acquiring write guard", ctx.Err())
	}

	if err := f.conn.SetWriteDeadline(time.Now().Add(WriteTimeout)); err != nil {
		return apperr.Wrap(apperr.FrameWriteTimeout, "setting write deadline", err)
	}
	defer f.conn.SetWriteDeadline(time.Time{})

	var lenBuf [LengthPrefixSize]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))

	if _, err := f.conn.Write(lenBuf[:]); err != nil {
		return apperr.Wrap(apperr.FrameWriteTimeout, "writing length prefix", err)
	}
	if _, err := f.conn.Write(payload); err != nil {
		return apperr.Wrap(apperr.FrameWriteTimeout, "writing frame payload", err)
	}

	return nil
}

// Close closes the underlying connection.
func (f *Framer) Close() error {
	return f.conn.Close()
}
