//go:build !windows

package notification

import "errors"

var errUnsupported = errors.New("message boxes are only supported on windows")

func messageBox(title, message string, isError bool) error {
	return errUnsupported
}
