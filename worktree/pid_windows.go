//go:build windows

package worktree

import "os"

// os.FindProcess opens a handle on Windows and fails for dead pids.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
