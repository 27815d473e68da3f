//go:build windows

package process

import (
	"os/exec"

	"golang.org/x/sys/windows"
)

// politeTerminate sends CTRL_BREAK_EVENT to the child's process group, the
// Windows analog of a POSIX SIGTERM for processes that have a console
// attached; the caller's forced path follows if the child ignores it.
func politeTerminate(cmd *exec.Cmd) error {
	return windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(cmd.Process.Pid))
}
