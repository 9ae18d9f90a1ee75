package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/vitaminmoo/iqos-tool/internal/ble"
	"github.com/vitaminmoo/iqos-tool/internal/config"
	"github.com/vitaminmoo/iqos-tool/internal/device"
)

// Env carries what every command needs.
type Env struct {
	Config *config.Config
	Log    *zap.Logger
	Out    io.Writer
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

// NewHandle creates the device handle for a peripheral advertising name,
// applying the configured family and custom name.
func NewHandle(cfg *config.Config, name string, log *zap.Logger) *device.Handle {
	family := cfg.DeviceFamily().Resolve(name)
	h := device.NewHandle(family, log)
	if cfg.Device.CustomName != "" {
		h.Identity().Update(device.FieldCustomName, cfg.Device.CustomName)
	}
	h.Identity().OnFullyPopulated(func(p device.Profile) {
		log.Info("Device profile complete",
			zap.String("model", p.ModelNumber),
			zap.String("serial", p.SerialNumber),
			zap.String("revision", p.SoftwareRevision))
	})
	return h
}

// Connect scans, connects and attaches a session. The caller must
// disconnect the session's peripheral.
func Connect(ctx context.Context, env *Env) (*ble.Session, error) {
	p, err := ble.Connect(ctx, env.Config.Scan, env.Log)
	if err != nil {
		return nil, err
	}

	h := NewHandle(env.Config, p.Name, env.Log)
	env.Log.Info("Device family", zap.Stringer("family", h.Family()), zap.String("name", p.Name))

	s, err := ble.Attach(p, h, env.Log)
	if err != nil {
		_ = p.Disconnect()
		return nil, err
	}
	return s, nil
}

// PrintProfile writes the identity profile in a fixed-width layout.
func PrintProfile(w io.Writer, p device.Profile) {
	fmt.Fprintf(w, "  Model:        %s\n", orUnset(p.ModelNumber))
	fmt.Fprintf(w, "  Serial:       %s\n", orUnset(p.SerialNumber))
	fmt.Fprintf(w, "  Software:     %s\n", orUnset(p.SoftwareRevision))
	fmt.Fprintf(w, "  Manufacturer: %s\n", orUnset(p.ManufacturerName))
	if p.CustomName != "" {
		fmt.Fprintf(w, "  Name:         %s\n", p.CustomName)
	}
	fmt.Fprintf(w, "  Battery:      %d%%\n", p.BatteryLevel)
}

func orUnset(s string) string {
	if s == "" {
		return "(not reported)"
	}
	return s
}
