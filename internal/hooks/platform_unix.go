//go:build !windows

package hooks

import (
	"os/exec"
	"syscall"
)

// Shell is the platform capability for interpreting hook command strings.
type Shell struct {
	Path string
	Args []string
}

// DefaultShell returns the host shell invocation on Unix systems.
func DefaultShell() Shell {
	return Shell{Path: "/bin/sh", Args: []string{"-c"}}
}

// setProcessGroup runs the hook in its own process group and kills the whole
// group when the context expires, so children the shell forked die with it
// instead of outliving the timeout.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
