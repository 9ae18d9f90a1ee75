package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitaminmoo/iqos-tool/internal/device"
)

// Toggle maps an on/off argument to the enable or disable command.
func Toggle(on bool, enable, disable device.CommandName) device.CommandName {
	if on {
		return enable
	}
	return disable
}

// Run connects and executes one command on the device.
func Run(ctx context.Context, env *Env, name device.CommandName) error {
	s, err := Connect(ctx, env)
	if err != nil {
		return err
	}
	defer s.Peripheral().Disconnect()

	return Execute(ctx, env, s.Handle(), name)
}

// Execute runs name on an attached handle, bounded by the configured write
// timeout, and reports the outcome.
func Execute(ctx context.Context, env *Env, h *device.Handle, name device.CommandName) error {
	ctx, cancel := context.WithTimeout(ctx, env.Config.Device.WriteTimeout)
	defer cancel()

	res, err := h.Execute(ctx, name)
	w := env.out()
	switch {
	case errors.Is(err, device.ErrUnsupportedCommand):
		return fmt.Errorf("%s is not available on %s devices (supported: %v)", name, h.Family(), h.Family().Commands())
	case errors.Is(err, device.ErrNotReady):
		return fmt.Errorf("%w: is the device an IQOS with a vendor control characteristic?", err)
	case err != nil:
		if res.FramesWritten > 0 {
			fmt.Fprintf(w, "Warning: %d of %d frames were written before the failure; device state may be partial\n",
				res.FramesWritten, res.FramesTotal)
		}
		return err
	}

	fmt.Fprintf(w, "%s: wrote %d frame(s)\n", name, res.FramesWritten)
	return nil
}
