//go:build !windows

package ui

import (
	"fmt"
	"os"
	"syscall"
)

// suspendProcess stops the process with SIGTSTP. It returns once the shell
// continues it.
func suspendProcess() error {
	if err := syscall.Kill(os.Getpid(), syscall.SIGTSTP); err != nil {
		return fmt.Errorf("suspend: %w", err)
	}
	return nil
}
