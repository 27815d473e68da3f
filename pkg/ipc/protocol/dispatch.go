package protocol

import (
	"context"
	"time"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/applog"
	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/frame"
)

// Handlers holds the callbacks invoked for each inbound message type. Each
// callback runs to completion before the dispatch loop reads the next
// frame: dispatch is strictly sequential per connection. Any Handlers
// field left nil silently ignores that message type, the same way an
// unknown wire type is silently ignored.
type Handlers struct {
	OnCommand   func(ctx context.Context, m *CommandMessage)
	OnInput     func(ctx context.Context, m *InputMessage)
	OnHeartbeat func(ctx context.Context, m *HeartbeatMessage)
	OnShutdown  func(ctx context.Context, m *ShutdownMessage)

	Log applog.Logger
}

// Run drives the single-reader task: it blocks reading frames off f and
// dispatching them until the connection ends (clean close returns nil) or
// a connection-fatal frame error occurs (oversize, short read), which is
// returned to the caller so it can tear down the lifecycle.
func (h *Handlers) Run(ctx context.Context, f *frame.Framer, readTimeout time.Duration) error {
	log := h.Log
	if log == nil {
		log = applog.Discard()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		payload, err := f.ReadFrame(ctx, readTimeout)
		if err != nil {
			if err == frame.ErrEndOfStream {
				return nil
			}
			return err
		}

		msg, derr := Decode(payload)
		if derr != nil {
			log.Warn("ignoring malformed frame", "error", derr.Error())
			continue
		}

		switch m := msg.(type) {
		case *CommandMessage:
			if h.OnCommand != nil {
				h.OnCommand(ctx, m)
			}
		case *InputMessage:
			if h.OnInput != nil {
				h.OnInput(ctx, m)
			}
		case *HeartbeatMessage:
			if h.OnHeartbeat != nil {
				h.OnHeartbeat(ctx, m)
			}
		case *ShutdownMessage:
			if h.OnShutdown != nil {
				h.OnShutdown(ctx, m)
			}
		default:
			log.Warn("ignoring message of unhandled decoded type")
		}
	}
}
