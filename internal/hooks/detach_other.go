//go:build !unix

package hooks

import "os/exec"

// setDetached is a no-op on non-unix platforms.
func setDetached(c *exec.Cmd) {}
