package ble

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vitaminmoo/iqos-tool/internal/device"
	"github.com/vitaminmoo/iqos-tool/internal/util"
)

// ackWriter is a characteristic that supports Write Request (0x12), which
// blocks until the peripheral acknowledges.
type ackWriter interface {
	Write(p []byte) (n int, err error)
}

// unackedWriter is the Write Command (0x52) fallback every backend has.
type unackedWriter interface {
	WriteWithoutResponse(p []byte) (n int, err error)
}

// Writer writes command frames to characteristics found by Attach.
type Writer struct {
	log *zap.Logger
}

// NewWriter returns a device.Writer backed by the BLE adapter.
func NewWriter(log *zap.Logger) *Writer {
	return &Writer{log: log}
}

// WriteFrame writes frame to target and returns once the write completed.
//
// Backends that lack acknowledged writes (some tinygo builds only offer
// WriteWithoutResponse) fall back to an unacknowledged write; ordering is
// then best-effort at the radio level, which is logged once per frame at
// debug level.
func (w *Writer) WriteFrame(ctx context.Context, target device.Characteristic, frame []byte) error {
	c, ok := target.(*Characteristic)
	if !ok {
		return fmt.Errorf("unsupported characteristic reference %T", target)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w.log.Debug("Writing frame", zap.String("uuid", c.uuid), zap.Int("bytes", len(frame)))
	if ce := w.log.Check(zap.DebugLevel, "Frame hex dump"); ce != nil {
		ce.Write(zap.String("dump", util.HexDumpString(frame)))
	}

	n, err := write(any(c.char), frame, w.log)
	if err != nil {
		return fmt.Errorf("write %s: %w", c.uuid, err)
	}
	if n != len(frame) {
		return fmt.Errorf("write %s: short write %d/%d bytes", c.uuid, n, len(frame))
	}
	return nil
}

func write(char any, frame []byte, log *zap.Logger) (int, error) {
	if aw, ok := char.(ackWriter); ok {
		return aw.Write(frame)
	}
	uw, ok := char.(unackedWriter)
	if !ok {
		return 0, fmt.Errorf("characteristic %T is not writable", char)
	}
	log.Debug("Acknowledged write unavailable, using write without response")
	return uw.WriteWithoutResponse(frame)
}
