//go:build !windows

package main

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// daemonize re-executes the binary detached from the terminal and returns
// the child's PID.
func daemonize(logFile string) (int, error) {
	env := append(os.Environ(), daemonChildEnv+"=1", "ACTIVITYMON_LOG_FILE="+logFile)

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil},
		Sys: &syscall.SysProcAttr{
			Setsid: true,
		},
	}

	process, err := os.StartProcess(os.Args[0], os.Args, procAttr)
	if err != nil {
		return 0, errors.Wrap(err, "failed to start daemon process")
	}
	pid := process.Pid
	_ = process.Release()
	return pid, nil
}
