package process

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/apperr"
	"github.com/SandboxServers/MeridianConsole-sub006/internal/applog"
	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/protocol"
)

// postForcedKillWait bounds how long Stop waits after force-terminating
// the resource group before giving up on observing the exit.
const postForcedKillWait = 5 * time.Second

// Lifecycle drives the server state machine for one managed server across
// however many spawn attempts auto-restart produces. It owns exactly one
// Host at a time and emits a status message on every transition.
type Lifecycle struct {
	cfg      *ServerConfig
	serverID string
	log      applog.Logger
	emit     *protocol.Emitter

	mu              sync.Mutex
	proc            ManagedProcess
	host            *Host
	stopRequested   bool
	stopTimeout     time.Duration
	forcedKill      bool
	termSignal      chan struct{}
	disposed        bool
}

// NewLifecycle builds a Lifecycle for one server. emit may be nil in
// tests that only care about state transitions.
func NewLifecycle(serverID string, cfg *ServerConfig, emit *protocol.Emitter, log applog.Logger) *Lifecycle {
	if log == nil {
		log = applog.Discard()
	}
	return &Lifecycle{
		cfg:      cfg,
		serverID: serverID,
		log:      log,
		emit:     emit,
		proc: ManagedProcess{
			ProcessID: uuid.NewString(),
			ServerID:  serverID,
			State:     StateInitializing,
		},
	}
}

// Snapshot returns a copy of the current managed-process record.
func (l *Lifecycle) Snapshot() ManagedProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.proc
}

func (l *Lifecycle) setState(state State) {
	l.mu.Lock()
	l.proc.State = state
	l.mu.Unlock()
}

// Run drives one or more spawn attempts until the server reaches a
// terminal state with no further restart, or ctx is canceled during a
// restart delay. A canceled ctx does not stop a child that is already
// running: Run keeps waiting for that child's exit. onOutput is forwarded
// to the Host for each attempt.
func (l *Lifecycle) Run(ctx context.Context, onOutput func(OutputLine)) error {
	for {
		if err := l.runOneAttempt(ctx, onOutput); err != nil {
			return err
		}

		restart, delay := l.shouldRestart()
		if !restart {
			return nil
		}

		l.setState(StateRestarting)
		l.emitStatus("restarting")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}

		l.mu.Lock()
		l.proc.RestartCount++
		l.stopRequested = false
		l.forcedKill = false
		l.mu.Unlock()
	}
}

func (l *Lifecycle) runOneAttempt(ctx context.Context, onOutput func(OutputLine)) error {
	l.mu.Lock()
	l.termSignal = make(chan struct{})
	l.proc.StartedAt = time.Now()
	l.host = NewHost(l.cfg, l.log)
	l.mu.Unlock()

	l.setState(StateStarting)
	l.emitStatus("")

	pid, exitCh, err := l.host.Start(ctx, onOutput)
	if err != nil {
		l.setState(StateFailed)
		l.emitStatus(err.Error())
		close(l.termSignal)
		return nil
	}

	l.mu.Lock()
	l.proc.OsPid = &pid
	l.mu.Unlock()

	l.setState(StateRunning)
	l.emitStatus("")

	notice := <-exitCh

	exitedAt := time.Now()
	l.mu.Lock()
	l.proc.ExitedAt = &exitedAt
	ec := notice.ExitCode
	l.proc.ExitCode = &ec
	forced := l.forcedKill
	l.mu.Unlock()

	final := StateStopped
	if notice.Err != nil || (ec != 0 && !forced) {
		final = StateFailed
	}
	l.setState(final)
	l.emitStatus("")
	close(l.termSignal)

	return nil
}

// shouldRestart evaluates the auto-restart predicate: autoRestart
// configured, the exit wasn't due to a forced termination (an explicit
// Stop/Kill), and the attempt budget isn't exhausted.
func (l *Lifecycle) shouldRestart() (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.cfg.AutoRestart || l.stopRequested || l.forcedKill {
		return false, 0
	}
	if l.proc.RestartCount >= l.cfg.MaxRestartAttempts {
		return false, 0
	}
	return true, time.Duration(l.cfg.RestartDelaySeconds) * time.Second
}

// Stop executes the graceful-then-forced stop sequence. timeoutSeconds,
// when non-nil, overrides the configured gracefulShutdownTimeoutSeconds
// for this request only; a command's timeoutSeconds wins over the
// server's configured graceful timeout for that one request.
func (l *Lifecycle) Stop(ctx context.Context, timeoutSeconds *int) error {
	l.mu.Lock()
	if l.proc.State == StateStopped || l.proc.State == StateFailed || l.proc.State == StateInitializing {
		l.mu.Unlock()
		return nil
	}
	l.stopRequested = true
	l.forcedKill = false
	term := l.termSignal
	host := l.host
	graceful := time.Duration(l.cfg.GracefulShutdownTimeoutSeconds) * time.Second
	if timeoutSeconds != nil {
		graceful = time.Duration(*timeoutSeconds) * time.Second
	}
	l.mu.Unlock()

	l.setState(StateStopping)
	l.emitStatus("")

	if host != nil {
		if err := host.RequestGracefulTermination(); err != nil {
			l.log.Debug("polite termination request failed", "error", err.Error())
		}
	}

	select {
	case <-term:
		return nil
	case <-time.After(graceful):
	case <-ctx.Done():
		return apperr.Wrap(apperr.LifecycleStopTimeout, "context canceled awaiting graceful stop", ctx.Err())
	}

	l.mu.Lock()
	l.forcedKill = true
	l.mu.Unlock()

	if host != nil {
		if err := host.ForceTerminate(); err != nil {
			l.log.Debug("force termination failed", "error", err.Error())
		}
	}

	select {
	case <-term:
		return nil
	case <-time.After(postForcedKillWait):
		return apperr.New(apperr.LifecycleStopTimeout, "child did not exit after forced termination")
	}
}

// Kill force-terminates immediately, skipping the graceful step.
func (l *Lifecycle) Kill(ctx context.Context) error {
	l.mu.Lock()
	l.stopRequested = true
	l.forcedKill = true
	term := l.termSignal
	host := l.host
	l.mu.Unlock()

	l.setState(StateStopping)
	l.emitStatus("")

	if host != nil {
		if err := host.ForceTerminate(); err != nil {
			l.log.Debug("force termination failed", "error", err.Error())
		}
	}

	select {
	case <-term:
		return nil
	case <-time.After(postForcedKillWait):
		return apperr.New(apperr.LifecycleStopTimeout, "child did not exit after forced termination")
	}
}

// SendInput forwards a line to the in-flight child's stdin, refusing
// when no child is currently running or its stdin isn't redirected.
func (l *Lifecycle) SendInput(line string) error {
	l.mu.Lock()
	host := l.host
	l.mu.Unlock()

	if host == nil {
		return apperr.New(apperr.ProtocolStdinNotRedirected, "no running child to forward input to")
	}
	return host.SendInput(line)
}

// Dispose releases the current Host's resources. Idempotent.
func (l *Lifecycle) Dispose() error {
	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		return nil
	}
	l.disposed = true
	host := l.host
	l.mu.Unlock()

	if host != nil {
		return host.Dispose()
	}
	return nil
}

func (l *Lifecycle) emitStatus(message string) {
	if l.emit == nil {
		return
	}
	snap := l.Snapshot()
	l.emit.Status(context.Background(), protocol.NewStatus(string(snap.State), snap.OsPid, snap.ExitCode, message, protocol.Now()))
}
