package device

import "errors"

var (
	// ErrDecode is returned when a notification payload is too short for the
	// field being extracted from it.
	ErrDecode = errors.New("payload decode failed")

	// ErrNotReady is returned by Execute when the writer or the control point
	// has not been bound yet.
	ErrNotReady = errors.New("device not ready: control point or writer unbound")

	// ErrUnsupportedCommand is returned when a command is not registered for
	// the device's family.
	ErrUnsupportedCommand = errors.New("command not supported by device family")
)
