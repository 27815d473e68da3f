//go:build !windows

package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

const cgroupRoot = "/sys/fs/cgroup"
const cgroupGroupName = "meridian-console-supervisor"

// cgroupResourceGroup binds a child's process group to a cgroup v2
// subtree, giving kill-on-group-close semantics via the group's own
// process-group SIGKILL fallback and, where the cgroup filesystem is
// writable, real memory/pids/cpu caps.
type cgroupResourceGroup struct {
	mu       sync.Mutex
	path     string // cgroup directory, empty if cgroups are unavailable
	pgid     int
	assigned bool
	closed   bool
}

func newPlatformResourceGroup(limits ResourceLimits) (ResourceGroup, error) {
	g := &cgroupResourceGroup{}

	dir := filepath.Join(cgroupRoot, cgroupGroupName, fmt.Sprintf("srv-%d", os.Getpid()))
	if err := os.MkdirAll(dir, 0755); err == nil {
		g.path = dir
		applyCgroupLimits(dir, limits)
	}
	// A cgroup filesystem that cannot be created (container without
	// delegation, non-Linux-cgroup host) is not fatal: the process-group
	// kill fallback below still guarantees tree termination.

	return g, nil
}

func applyCgroupLimits(dir string, limits ResourceLimits) {
	if limits.MemoryMB > 0 {
		writeCgroupFile(dir, "memory.max", fmt.Sprintf("%d", limits.MemoryMB*1024*1024))
	}
	if limits.MaxChildProcesses > 0 {
		writeCgroupFile(dir, "pids.max", strconv.Itoa(limits.MaxChildProcesses))
	}
	if limits.CPUMillicores > 0 {
		// cpu.max takes "<quota> <period>" in microseconds; one core is
		// 1000 millicores, so scale the millicore fraction onto a
		// 100ms period.
		const periodUs = 100000
		quota := periodUs * limits.CPUMillicores / 1000
		writeCgroupFile(dir, "cpu.max", fmt.Sprintf("%d %d", quota, periodUs))
	}
}

func writeCgroupFile(dir, name, value string) {
	_ = os.WriteFile(filepath.Join(dir, name), []byte(value), 0644)
}

func (g *cgroupResourceGroup) Assign(pid int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pgid = pid
	g.assigned = true

	if g.path != "" {
		if err := os.WriteFile(filepath.Join(g.path, "cgroup.procs"), []byte(strconv.Itoa(pid)), 0644); err != nil {
			return errIsolationAssignFailed("writing pid to cgroup.procs", err)
		}
	}

	return nil
}

func (g *cgroupResourceGroup) Terminate() error {
	g.mu.Lock()
	assigned, pgid := g.assigned, g.pgid
	g.mu.Unlock()

	if !assigned {
		return nil
	}

	// Negative pid targets the whole process group, guaranteeing every
	// descendant the child spawned dies with it even where cgroups were
	// unavailable.
	if err := unix.Kill(-pgid, syscall.SIGKILL); err != nil && err != unix.ESRCH {
		return errIsolationAssignFailed("killing process group", err)
	}
	return nil
}

func (g *cgroupResourceGroup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}
	g.closed = true

	if g.assigned {
		_ = unix.Kill(-g.pgid, syscall.SIGKILL)
	}
	if g.path != "" {
		_ = os.Remove(g.path)
	}
	return nil
}

// setSysProcAttr configures cmd to start in its own process group and to
// receive SIGKILL itself if the supervisor dies before assigning it to a
// resource group, closing the brief window between fork and Assign.
func setSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}
