//go:build !windows

package execution

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// startInOwnGroup makes the script the leader of a new process group so the
// whole group can be signalled on timeout.
func startInOwnGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessTree kills pid, its descendants and the rest of its process group.
// Descendants are enumerated first because some may have moved to their own
// process group.
func killProcessTree(pid int) error {
	if p, err := process.NewProcess(int32(pid)); err == nil {
		killDescendants(p)
	}
	err := unix.Kill(-pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}
