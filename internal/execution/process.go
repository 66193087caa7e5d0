package execution

import (
	"log/slog"

	"github.com/shirou/gopsutil/v3/process"
)

// killDescendants kills the children of p, deepest first.
func killDescendants(p *process.Process) {
	children, err := p.Children()
	if err != nil {
		return
	}
	for _, child := range children {
		killDescendants(child)
		if err := child.Kill(); err != nil {
			slog.Debug("cannot kill child process", "pid", child.Pid, "parent", p.Pid, "error", err)
		}
	}
}
