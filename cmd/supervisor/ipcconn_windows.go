//go:build windows

package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/windows"

	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/frame"
)

// namedPipeConn adapts a client handle to a Windows named pipe to the
// frame.Conn contract. Deadlines are best-effort no-ops: overlapped I/O
// with cancellable deadlines is out of scope for this wrapper, unlike
// the Unix domain socket path which gets real deadlines from net.Conn.
type namedPipeConn struct {
	handle windows.Handle
}

func (c *namedPipeConn) Read(p []byte) (int, error) {
	var n uint32
	err := windows.ReadFile(c.handle, p, &n, nil)
	return int(n), err
}

func (c *namedPipeConn) Write(p []byte) (int, error) {
	var n uint32
	err := windows.WriteFile(c.handle, p, &n, nil)
	return int(n), err
}

func (c *namedPipeConn) Close() error {
	return windows.CloseHandle(c.handle)
}

func (c *namedPipeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *namedPipeConn) SetWriteDeadline(t time.Time) error { return nil }

// dialIPC connects to the local duplex endpoint as a Windows named pipe.
func dialIPC(ctx context.Context, pipeName string) (frame.Conn, error) {
	path := fmt.Sprintf(`\\.\pipe\%s`, pipeName)
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	handle, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, err
	}

	return &namedPipeConn{handle: handle}, nil
}
