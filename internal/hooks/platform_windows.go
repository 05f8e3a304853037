//go:build windows

package hooks

import "os/exec"

// Shell is the platform capability for interpreting hook command strings.
type Shell struct {
	Path string
	Args []string
}

// DefaultShell returns the host shell invocation on Windows.
func DefaultShell() Shell {
	return Shell{Path: "cmd.exe", Args: []string{"/C"}}
}

// setProcessGroup is a no-op on Windows; WaitDelay alone unblocks Run when a
// forked child still holds the output pipes.
func setProcessGroup(cmd *exec.Cmd) {}
