package ble

import "time"

const (
	// readBufferSize is large enough for every identity string the device
	// reports in a single read.
	readBufferSize = 256

	// notifySettle is how long to wait after subscribing before relying on
	// notifications.
	notifySettle = 100 * time.Millisecond
)
