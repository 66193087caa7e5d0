//go:build windows

package execution

import (
	"os"
	"os/exec"

	"github.com/shirou/gopsutil/v3/process"
)

func startInOwnGroup(cmd *exec.Cmd) {}

// killProcessTree kills pid and all of its descendants.
func killProcessTree(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return os.ErrProcessDone
	}
	killDescendants(p)
	if err := p.Kill(); err != nil {
		if running, _ := p.IsRunning(); !running {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}
