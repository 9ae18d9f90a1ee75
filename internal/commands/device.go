package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vitaminmoo/iqos-tool/internal/ble"
	"github.com/vitaminmoo/iqos-tool/internal/device"
	"github.com/vitaminmoo/iqos-tool/internal/publish"
	"github.com/vitaminmoo/iqos-tool/internal/util"
)

// Info connects and prints the identity profile.
func Info(ctx context.Context, env *Env) error {
	s, err := Connect(ctx, env)
	if err != nil {
		return err
	}
	defer s.Peripheral().Disconnect()

	h := s.Handle()
	w := env.out()
	fmt.Fprintf(w, "%s (%s)\n", s.Peripheral().Name, s.Peripheral().Address)
	fmt.Fprintf(w, "  Family:       %s\n", h.Family())
	fmt.Fprintf(w, "  Control:      %s\n", h.State())
	PrintProfile(w, h.Identity().Snapshot())

	if !h.Identity().IsFullyPopulated() {
		fmt.Fprintln(w, "\nWarning: device did not report a complete identity")
	}
	return nil
}

// Explore lists every discovered characteristic and the route it takes.
func Explore(ctx context.Context, env *Env) error {
	s, err := Connect(ctx, env)
	if err != nil {
		return err
	}
	defer s.Peripheral().Disconnect()

	WriteEntries(env, s.Entries())
	return nil
}

// WriteEntries prints discovery results grouped by service.
func WriteEntries(env *Env, entries []ble.Entry) {
	w := env.out()
	service := ""
	for _, e := range entries {
		if e.Service != service {
			service = e.Service
			fmt.Fprintf(w, "Service %s\n", service)
		}
		fmt.Fprintf(w, "  %s  %-13s", e.UUID, e.Route)
		if len(e.Value) > 0 {
			fmt.Fprintf(w, "  %s", util.FormatBytes(e.Value))
		}
		fmt.Fprintln(w)
	}
}

// Watch stays connected and prints every profile change until ctx is done.
// With MQTT enabled each change is also published as retained state.
func Watch(ctx context.Context, env *Env) error {
	s, err := Connect(ctx, env)
	if err != nil {
		return err
	}
	defer s.Peripheral().Disconnect()

	var pub *publish.Publisher
	if env.Config.MQTT.Enabled {
		client, err := publish.Dial(env.Config.MQTT)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		pub = publish.New(client, env.Config.MQTT, s.Handle().Family(), s.Peripheral().Address, env.Log)
	}

	return watch(ctx, env, s.Handle(), pub)
}

func watch(ctx context.Context, env *Env, h *device.Handle, pub *publish.Publisher) error {
	printed := make(chan device.Profile, 16)
	published := make(chan device.Profile, 16)

	h.Identity().OnChange(func(p device.Profile) {
		offer(printed, p, env.Log)
		if pub != nil {
			offer(published, p, env.Log)
		}
	})

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		w := env.out()
		initial := h.Identity().Snapshot()
		fmt.Fprintf(w, "Watching %s, battery %d%% (Ctrl-C to stop)\n", orUnset(initial.SerialNumber), initial.BatteryLevel)
		last := initial.BatteryLevel
		for {
			select {
			case <-ctx.Done():
				return nil
			case p := <-printed:
				if p.BatteryLevel != last {
					fmt.Fprintf(w, "Battery: %d%%\n", p.BatteryLevel)
					last = p.BatteryLevel
				}
			}
		}
	})

	if pub != nil {
		if err := pub.Publish(h.Identity().Snapshot()); err != nil {
			env.Log.Warn("Initial publish failed", zap.Error(err))
		}
		eg.Go(func() error {
			return pub.Run(ctx, published)
		})
	}

	return eg.Wait()
}

// offer hands p to ch without blocking the transport goroutine.
func offer(ch chan device.Profile, p device.Profile, log *zap.Logger) {
	select {
	case ch <- p:
	default:
		log.Debug("Dropping profile update, consumer is behind")
	}
}
