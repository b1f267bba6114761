//go:build unix

package hooks

import (
	"os/exec"
	"syscall"
)

// setDetached puts c in its own process group so it keeps running after
// the parent exits and doesn't receive signals sent to the parent's group.
func setDetached(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
