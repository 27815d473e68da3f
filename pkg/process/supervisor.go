package process

import (
	"context"
	"time"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/applog"
	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/frame"
	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/protocol"
)

// ReadFrameTimeout bounds a single ReadFrame call inside the dispatch
// loop; it is unrelated to the graceful-stop timeouts and exists only so
// the reader periodically revisits ctx.Done().
const ReadFrameTimeout = 30 * time.Second

// Supervisor wires the framed IPC connection to one server's Lifecycle,
// the whole of the data flow described by "Framer -> Control Protocol ->
// Lifecycle SM <-> Process Host <-> Isolation".
type Supervisor struct {
	serverID string
	cfg      *ServerConfig
	log      applog.Logger

	framer    *frame.Framer
	emitter   *protocol.Emitter
	lifecycle *Lifecycle
}

// NewSupervisor builds a Supervisor for one connection. conn is the
// already-established duplex byte stream (named pipe / unix socket).
func NewSupervisor(serverID string, cfg *ServerConfig, conn frame.Conn, log applog.Logger) *Supervisor {
	if log == nil {
		log = applog.Discard()
	}
	f := frame.New(conn)
	emitter := protocol.NewEmitter(f, log)
	return &Supervisor{
		serverID:  serverID,
		cfg:       cfg,
		log:       log,
		framer:    f,
		emitter:   emitter,
		lifecycle: NewLifecycle(serverID, cfg, emitter, log),
	}
}

// Run starts the child via the lifecycle state machine and drives the
// dispatch loop until the connection ends or ctx is canceled. Both the
// lifecycle run and the dispatch loop are torn down together.
func (s *Supervisor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lifecycleDone := make(chan error, 1)
	go func() {
		lifecycleDone <- s.lifecycle.Run(ctx, s.onOutput)
	}()

	handlers := &protocol.Handlers{
		OnCommand:   s.onCommand,
		OnInput:     s.onInput,
		OnHeartbeat: s.onHeartbeat,
		OnShutdown:  s.onShutdown,
		Log:         s.log,
	}

	// Closing the framer is what unblocks a ReadFrame that is waiting on
	// the connection when ctx is canceled.
	stopClose := context.AfterFunc(ctx, func() { _ = s.framer.Close() })
	dispatchErr := handlers.Run(ctx, s.framer, ReadFrameTimeout)
	stopClose()
	if ctx.Err() != nil {
		dispatchErr = nil
	}

	cancel()
	_ = s.lifecycle.Dispose()
	<-lifecycleDone

	return dispatchErr
}

func (s *Supervisor) onOutput(line OutputLine) {
	s.emitter.Output(context.Background(), protocol.NewOutput(line.Data, line.IsError, protocol.Now()))
}

func (s *Supervisor) onCommand(ctx context.Context, m *protocol.CommandMessage) {
	var err error

	switch m.Command {
	case protocol.CommandGetStatus:
		snap := s.lifecycle.Snapshot()
		s.emitter.Status(ctx, protocol.NewStatus(string(snap.State), snap.OsPid, snap.ExitCode, "", protocol.Now()))
	case protocol.CommandStop:
		err = s.lifecycle.Stop(ctx, m.TimeoutSeconds)
	case protocol.CommandKill:
		err = s.lifecycle.Kill(ctx)
	default:
		return
	}

	if m.CorrelationID == "" {
		return
	}
	success := err == nil
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	s.emitter.Ack(ctx, protocol.NewAck(m.CorrelationID, success, errMsg, protocol.Now()))
}

func (s *Supervisor) onInput(ctx context.Context, m *protocol.InputMessage) {
	if err := s.lifecycle.SendInput(m.Input); err != nil {
		s.log.Warn("dropping input message", "error", err.Error())
	}
}

func (s *Supervisor) onHeartbeat(ctx context.Context, m *protocol.HeartbeatMessage) {
	s.emitter.HeartbeatAck(ctx, protocol.NewHeartbeatAck(m.Sequence, s.serverID, protocol.Now()))
}

func (s *Supervisor) onShutdown(ctx context.Context, m *protocol.ShutdownMessage) {
	_ = s.lifecycle.Stop(ctx, m.GracefulTimeoutSeconds)
}
