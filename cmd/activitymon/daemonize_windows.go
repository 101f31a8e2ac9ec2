//go:build windows

package main

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

func daemonize(logFile string) (int, error) {
	env := append(os.Environ(), daemonChildEnv+"=1", "ACTIVITYMON_LOG_FILE="+logFile)

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil},
		Sys: &syscall.SysProcAttr{
			CreationFlags: windows.DETACHED_PROCESS | windows.CREATE_NEW_PROCESS_GROUP,
			HideWindow:    true,
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
