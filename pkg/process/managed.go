package process

import "time"

// State is one member of the lifecycle state machine's closed set.
type State string

const (
	StateInitializing State = "Initializing"
	StateStarting      State = "Starting"
	StateRunning       State = "Running"
	StateStopping      State = "Stopping"
	StateStopped       State = "Stopped"
	StateFailed        State = "Failed"
	StateRestarting    State = "Restarting"
)

// ManagedProcess is the data model the lifecycle state machine mutates.
// It is exclusively owned by one Lifecycle, which keeps the same record
// across restarts.
type ManagedProcess struct {
	ProcessID    string
	ServerID     string
	OsPid        *int
	State        State
	StartedAt    time.Time
	ExitedAt     *time.Time
	ExitCode     *int
	RestartCount int
}
