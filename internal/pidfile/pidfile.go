// Package pidfile guards against concurrent hub daemons through a PID file.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Pidfile is an acquired PID file owned by this process
type Pidfile struct {
	path string
}

// Acquire writes the current PID to path. An existing file belonging to a
// live process is an error; a stale file is replaced.
func Acquire(path string) (*Pidfile, error) {
	if data, err := os.ReadFile(path); err == nil {
		pid, perr := strconv.Atoi(strings.TrimSpace(string(data)))
		if perr == nil && processAlive(pid) {
			return nil, fmt.Errorf("another instance is running (pid %d, pidfile %s)", pid, path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create pidfile directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return nil, fmt.Errorf("failed to write pidfile: %w", err)
	}

	return &Pidfile{path: path}, nil
}

// Release removes the PID file. Safe to call when the file is already gone.
func (p *Pidfile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove pidfile: %w", err)
	}
	return nil
}

// Path returns the PID file location
func (p *Pidfile) Path() string {
	return p.path
}
