//go:build unix

package removeengine

import (
	"os/exec"
	"syscall"
)

func setDetached(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
