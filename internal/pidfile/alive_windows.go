//go:build windows

package pidfile

import "os"

// processAlive reports whether a PID refers to a running process. On
// Windows FindProcess opens a handle, which fails for dead PIDs.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = proc.Release()
	return true
}
