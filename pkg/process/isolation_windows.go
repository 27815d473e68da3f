//go:build windows

package process

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// jobResourceGroup wraps a single Windows Job Object configured with
// JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE, so every process ever assigned to it
// is force-killed the moment the handle is closed — the Windows analog of
// the Linux cgroup-plus-process-group fallback.
type jobResourceGroup struct {
	mu       sync.Mutex
	handle   windows.Handle
	assigned bool
	closed   bool
}

func newPlatformResourceGroup(limits ResourceLimits) (ResourceGroup, error) {
	handle, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return nil, errIsolationCreateFailed("creating job object", err)
	}

	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if limits.MemoryMB > 0 {
		info.BasicLimitInformation.LimitFlags |= windows.JOB_OBJECT_LIMIT_PROCESS_MEMORY
		info.ProcessMemoryLimit = uintptr(limits.MemoryMB) * 1024 * 1024
	}
	if limits.MaxChildProcesses > 0 {
		info.BasicLimitInformation.LimitFlags |= windows.JOB_OBJECT_LIMIT_ACTIVE_PROCESS
		info.BasicLimitInformation.ActiveProcessLimit = uint32(limits.MaxChildProcesses)
	}

	if _, err := windows.SetInformationJobObject(
		handle,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		_ = windows.CloseHandle(handle)
		return nil, errIsolationCreateFailed("configuring job object limits", err)
	}

	return &jobResourceGroup{handle: handle}, nil
}

func (g *jobResourceGroup) Assign(pid int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	h, err := windows.OpenProcess(windows.PROCESS_ALL_ACCESS, false, uint32(pid))
	if err != nil {
		return errIsolationAssignFailed("opening child process handle", err)
	}
	defer windows.CloseHandle(h)

	if err := windows.AssignProcessToJobObject(g.handle, h); err != nil {
		return errIsolationAssignFailed("assigning process to job object", err)
	}
	g.assigned = true
	return nil
}

func (g *jobResourceGroup) Terminate() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.assigned || g.closed {
		return nil
	}
	if err := windows.TerminateJobObject(g.handle, 1); err != nil {
		return errIsolationAssignFailed("terminating job object", err)
	}
	return nil
}

func (g *jobResourceGroup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true
	return windows.CloseHandle(g.handle)
}

// setSysProcAttr starts the child in a new process group, so that
// politeTerminate's CTRL_BREAK_EVENT can target it; resource isolation
// itself happens through the job object, not through creation flags.
func setSysProcAttr() *windows.SysProcAttr {
	return &windows.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP,
	}
}
