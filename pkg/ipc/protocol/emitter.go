package protocol

import (
	"context"
	"time"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/applog"
	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/frame"
)

// Emitter serializes outbound protocol messages onto a Framer. Every send
// is fire-and-forget with exception containment: a failure to write a
// frame is logged at debug and dropped, never propagated to the caller.
type Emitter struct {
	f   *frame.Framer
	log applog.Logger
}

// NewEmitter builds an Emitter writing onto f.
func NewEmitter(f *frame.Framer, log applog.Logger) *Emitter {
	if log == nil {
		log = applog.Discard()
	}
	return &Emitter{f: f, log: log}
}

func (e *Emitter) emit(ctx context.Context, msg interface{}) {
	payload, err := Encode(msg)
	if err != nil {
		e.log.Debug("dropping outbound message: encode failed", "error", err.Error())
		return
	}

	if err := e.f.WriteFrame(ctx, payload); err != nil {
		e.log.Debug("dropping outbound message: write failed", "error", err.Error())
	}
}

// Status emits a status message.
func (e *Emitter) Status(ctx context.Context, msg *StatusMessage) {
	e.emit(ctx, msg)
}

// Output emits an output message.
func (e *Emitter) Output(ctx context.Context, msg *OutputMessage) {
	e.emit(ctx, msg)
}

// Ack emits an ack message.
func (e *Emitter) Ack(ctx context.Context, msg *AckMessage) {
	e.emit(ctx, msg)
}

// HeartbeatAck emits the supervisor's heartbeat echo.
func (e *Emitter) HeartbeatAck(ctx context.Context, msg *HeartbeatAck) {
	e.emit(ctx, msg)
}

// Now is overridable in tests that need deterministic timestamps.
var Now = time.Now
