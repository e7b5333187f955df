//go:build windows

package notification

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const (
	mbOK        = 0x00000000
	mbIconError = 0x00000010
	mbTopmost   = 0x00040000
)

func showDialog(title, message string) error {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return err
	}
	messagePtr, err := windows.UTF16PtrFromString(message)
	if err != nil {
		return err
	}
	if _, err := windows.MessageBox(0, messagePtr, titlePtr, mbOK|mbIconError|mbTopmost); err != nil {
		return fmt.Errorf("MessageBox: %w", err)
	}
	return nil
}
