package ble

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/vitaminmoo/iqos-tool/internal/config"
)

// Peripheral is a connected device plus what it advertised.
type Peripheral struct {
	Device  bluetooth.Device
	Name    string
	Address string
}

// Disconnect closes the connection.
func (p *Peripheral) Disconnect() error {
	return p.Device.Disconnect()
}

// matches reports whether a scan result is the device we are looking for.
func matches(cfg config.ScanConfig, name, address string) bool {
	if cfg.Address != "" {
		return strings.EqualFold(cfg.Address, address)
	}
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(cfg.NameMatch))
}

// Connect scans for the device described by cfg and connects to the first
// match. Scanning stops after cfg.Timeout or when ctx is done.
func Connect(ctx context.Context, cfg config.ScanConfig, log *zap.Logger) (*Peripheral, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable Bluetooth: %w", err)
	}

	log.Info("Scanning for device", zap.String("name_match", cfg.NameMatch), zap.String("address", cfg.Address))

	scanCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	go func() {
		<-scanCtx.Done()
		adapter.StopScan()
	}()

	var result bluetooth.ScanResult
	var found bool

	err := adapter.Scan(func(adapter *bluetooth.Adapter, r bluetooth.ScanResult) {
		name := r.LocalName()
		address, _ := r.Address.MarshalText()

		if name != "" {
			log.Debug("Found", zap.String("name", name), zap.String("address", string(address)))
		}

		if !found && matches(cfg, name, string(address)) {
			result = r
			found = true
			adapter.StopScan()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan error: %w", err)
	}

	if !found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no device matching %q found within %s", cfg.NameMatch, cfg.Timeout)
	}

	address, _ := result.Address.MarshalText()
	log.Info("Connecting", zap.String("name", result.LocalName()), zap.String("address", string(address)))

	start := time.Now()
	dev, err := adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	log.Info("Connected", zap.Duration("took", time.Since(start)))

	return &Peripheral{
		Device:  dev,
		Name:    result.LocalName(),
		Address: string(address),
	}, nil
}
