//go:build !windows

package registry

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"syscall"
)

// execStarter spawns the simulator in a new session so it is detached from
// the controller: it keeps running after our call returns and we never wait
// on it.
type execStarter struct{}

func (execStarter) Start(path string, args []string) (int, error) {
	// ok: intentional execution of the configured simulator binary
	// #nosec G204
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
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
	// We do not own the child's lifetime; release the handle instead of waiting.
	_ = cmd.Process.Release()
	if null != nil {
		_ = null.Close()
	}
	return pid, nil
}

// pidProber checks pid existence with signal 0. EPERM still means the
// process exists. Linux zombies count as dead: a detached child we never
// reap can linger in Z state after exiting.
type pidProber struct{}

func (pidProber) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	if runtime.GOOS == "linux" && isZombieLinux(pid) {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

func isZombieLinux(pid int) bool {
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/status")
	if err != nil {
		return false
	}
	return bytes.Contains(b, []byte("State:\tZ"))
}
