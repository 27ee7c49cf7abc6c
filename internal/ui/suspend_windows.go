//go:build windows

package ui

func suspendProcess() error {
	return nil
}
