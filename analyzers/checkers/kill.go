package checkers

import (
	"os"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/shirou/gopsutil/v3/process"
)

// KillStrays terminates any child processes the harness still owns,
// children first. Cargo and go spawn compiler children that keep
// running when only their parent is signalled, so an interrupted run
// sweeps them here.
func KillStrays() {
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	children, err := self.Children()
	if err != nil {
		return
	}

	for _, child := range children {
		logger.V(2).Infof("terminating stray process %d", child.Pid)
		killProcess(child)
	}
}

func killProcess(proc *process.Process) {
	if children, err := proc.Children(); err == nil {
		for _, child := range children {
			killProcess(child)
		}
	}

	if err := proc.Terminate(); err != nil {
		_ = proc.Kill()
		return
	}

	// Give the process a moment to exit before escalating to SIGKILL.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if running, err := proc.IsRunning(); err != nil || !running {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	_ = proc.Kill()
}
