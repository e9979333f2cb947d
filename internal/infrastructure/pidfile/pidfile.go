package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned by Acquire when a live process holds the file
var ErrAlreadyRunning = errors.New("another worker is already running")

// PIDFile keeps a single retry worker per host
type PIDFile struct {
	path string
}

// New creates a PIDFile at path
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current pid to the file. A file left behind by a dead
// process, or one that does not hold a pid, is taken over.
func (p *PIDFile) Acquire() error {
	if pid, ok := p.holder(); ok && pid != os.Getpid() && alive(pid) {
		return fmt.Errorf("%w (pid %d, %s)", ErrAlreadyRunning, pid, p.path)
	}

	if err := os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write pid file %s: %w", p.path, err)
	}
	return nil
}

// Release removes the file if this process still owns it
func (p *PIDFile) Release() error {
	if pid, ok := p.holder(); ok && pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove pid file %s: %w", p.path, err)
	}
	return nil
}

// holder returns the pid recorded in the file
func (p *PIDFile) holder() (int, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// alive probes the process with signal 0
func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
