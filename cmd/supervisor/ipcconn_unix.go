//go:build !windows

package main

import (
	"context"
	"net"

	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/frame"
)

// dialIPC connects to the local duplex endpoint as a Unix domain socket.
func dialIPC(ctx context.Context, pipeName string) (frame.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", pipeName)
}
