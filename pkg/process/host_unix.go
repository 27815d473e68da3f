//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// politeTerminate sends SIGTERM to the child's process group, giving it
// the platform-defined chance to shut down before the forced-termination
// path kicks in.
func politeTerminate(cmd *exec.Cmd) error {
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
}
