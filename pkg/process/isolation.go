package process

import "github.com/SandboxServers/MeridianConsole-sub006/internal/apperr"

// ResourceLimits configures the OS-level resource group a child is
// assigned to.
type ResourceLimits struct {
	MemoryMB             int
	DiskMB               int
	CPUMillicores        int
	MaxChildProcesses    int
	KillOnMemoryExceeded bool
}

// ResourceGroup owns a single kernel-level isolation container (a Windows
// Job Object, a Linux cgroup, or — on platforms with neither — a process
// group used only for tree-kill semantics). Every native handle it wraps
// is released exactly once, on every control path including a disposal
// triggered by a panic recovery.
type ResourceGroup interface {
	// Assign binds pid to the group. MUST be called immediately after
	// spawn and before the child can create its own children; a failure
	// here MUST cause the caller to kill the child and fail the start.
	Assign(pid int) error

	// Terminate force-kills every process currently in the group.
	Terminate() error

	// Close releases the group's native handles. Idempotent.
	Close() error
}

// newResourceGroup is implemented per-platform: isolation_unix.go covers
// every non-Windows target (cgroup v2 where available, falling back to
// process-group-only kill semantics otherwise) and isolation_windows.go
// covers Windows via Job Objects.
func newResourceGroup(limits ResourceLimits) (ResourceGroup, error) {
	return newPlatformResourceGroup(limits)
}

// errIsolationCreateFailed is a convenience constructor used by every
// platform implementation so callers see a uniform error code.
func errIsolationCreateFailed(msg string, cause error) error {
	return apperr.Wrap(apperr.IsolationCreateFailed, msg, cause)
}

func errIsolationAssignFailed(msg string, cause error) error {
	return apperr.Wrap(apperr.IsolationAssignFailed, msg, cause)
}
