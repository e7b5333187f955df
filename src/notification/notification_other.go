//go:build !windows

package notification

import "errors"

func showDialog(title, message string) error {
	return errors.New("no native dialog")
}
