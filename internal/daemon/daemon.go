// Package daemon manages the PID file of the background tracker process.
package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// ErrNotRunning is returned by Stop when no live daemon owns the PID file.
var ErrNotRunning = errors.New("daemon is not running or PID file is stale")

type Daemon struct {
	pidFile string
	name    string // executable name a live daemon must have; empty skips the check
}

func New(pidFile string) *Daemon {
	d := &Daemon{pidFile: pidFile}
	if self, err := process.NewProcess(int32(os.Getpid())); err == nil {
		d.name, _ = self.Name()
	}
	return d
}

// PIDFile returns the path the daemon writes its PID to.
func (d *Daemon) PIDFile() string {
	return d.pidFile
}

func (d *Daemon) WritePID() error {
	pid := os.Getpid()
	if err := os.WriteFile(d.pidFile, fmt.Appendf([]byte{}, "%d", pid), 0644); err != nil {
		return errors.Wrap(err, "failed to write PID file")
	}
	return nil
}

// ReadPID returns 0 without error when no PID file exists.
func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read PID file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrap(err, "invalid PID in file")
	}

	return pid, nil
}

func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove PID file")
	}
	return nil
}

// IsRunning reports whether the PID file names a live process running this
// executable. A PID file naming a dead or unrelated process is stale and is
// removed.
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if err != nil {
		return false, 0, err
	}

	if pid <= 0 {
		return false, 0, nil
	}

	if !d.owns(int32(pid)) {
		_ = d.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

// owns reports whether pid is alive and, after a PID reuse, still ours.
func (d *Daemon) owns(pid int32) bool {
	exists, err := process.PidExists(pid)
	if err != nil || !exists {
		return false
	}
	if d.name == "" {
		return true
	}

	proc, err := process.NewProcess(pid)
	if err != nil {
		return false
	}
	name, err := proc.Name()
	if err != nil {
		return false
	}
	return name == d.name
}

// Stop terminates the daemon named by the PID file and removes the file.
func (d *Daemon) Stop() error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return errors.Wrap(err, "error checking daemon status")
	}

	if !running {
		return ErrNotRunning
	}

	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		_ = d.RemovePID()
		return errors.Wrap(err, "failed to find process")
	}

	if err := proc.Terminate(); err != nil {
		return errors.Wrap(err, "failed to terminate daemon")
	}

	return d.RemovePID()
}
