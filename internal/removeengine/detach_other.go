//go:build !unix

package removeengine

import "os/exec"

func setDetached(c *exec.Cmd) {}
