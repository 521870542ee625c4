//go:build windows

package registry

import (
	"os"
	"os/exec"
	"syscall"
)

// execStarter spawns the simulator detached from the controller console.
type execStarter struct{}

func (execStarter) Start(path string, args []string) (int, error) {
	// ok: intentional execution of the configured simulator binary
	// #nosec G204
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
	null, _ := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	cmd.Stdout = null
	cmd.Stderr = null
	if err := cmd.Start(); err != nil {
		if null != nil {
			_ = null.Close()
		}
		return 0, err
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	if null != nil {
		_ = null.Close()
	}
	return pid, nil
}

// pidProber checks pid existence via OpenProcess.
type pidProber struct{}

func (pidProber) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	h, err := syscall.OpenProcess(syscall.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer func() { _ = syscall.CloseHandle(h) }()
	return true
}
