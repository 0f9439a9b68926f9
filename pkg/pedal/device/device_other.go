//go:build !linux
// +build !linux

package device

import "errors"

// ErrUnsupported is returned on platforms without the joystick interface.
var ErrUnsupported = errors.New("foot controllers are only supported on linux")

// Open is not supported.
func Open(index int) (Device, error) {
	return nil, ErrUnsupported
}

// DetectAndOpen is not supported.
func DetectAndOpen(startIndex int) (Device, error) {
	return nil, ErrUnsupported
}
