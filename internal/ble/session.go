package ble

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/vitaminmoo/iqos-tool/internal/device"
)

// Characteristic wraps a discovered characteristic so the device package can
// hold it as an opaque reference.
type Characteristic struct {
	char *bluetooth.DeviceCharacteristic
	uuid string
}

// UUID returns the characteristic UUID in lowercase string form.
func (c *Characteristic) UUID() string {
	return c.uuid
}

// Entry describes one discovered characteristic and how it was routed.
type Entry struct {
	Service string
	UUID    string
	Route   device.Route
	Value   []byte
}

// Session ties a connected peripheral to a device handle: discovered
// characteristics are fed through the handle's router and the battery
// characteristic stays subscribed.
type Session struct {
	peripheral *Peripheral
	handle     *device.Handle
	log        *zap.Logger
	entries    []Entry
}

// Attach discovers every service and characteristic on p, binds the writer
// and control point on h, reads the identity characteristics and subscribes
// to battery notifications.
//
// A device without a control point is attached anyway; its handle simply
// stays unbound and Execute reports ErrNotReady.
func Attach(p *Peripheral, h *device.Handle, log *zap.Logger) (*Session, error) {
	s := &Session{
		peripheral: p,
		handle:     h,
		log:        log,
	}

	h.BindWriter(NewWriter(log))

	log.Debug("Discovering services...")
	services, err := p.Device.DiscoverServices(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to discover services: %w", err)
	}

	for i := range services {
		svc := &services[i]
		svcUUID := svc.UUID().String()
		log.Debug("Found service", zap.String("uuid", svcUUID))

		chars, err := svc.DiscoverCharacteristics(nil)
		if err != nil {
			log.Warn("Failed to discover characteristics", zap.String("service", svcUUID), zap.Error(err))
			continue
		}

		for j := range chars {
			c := &Characteristic{char: &chars[j], uuid: chars[j].UUID().String()}
			entry, err := s.attachCharacteristic(c)
			entry.Service = svcUUID
			s.entries = append(s.entries, entry)
			if err != nil {
				log.Warn("Characteristic setup failed", zap.String("uuid", c.uuid), zap.Error(err))
			}
		}
	}

	if h.State() != device.StateReady {
		log.Warn("No control point found; commands will be rejected")
	}
	return s, nil
}

func (s *Session) attachCharacteristic(c *Characteristic) (Entry, error) {
	entry := Entry{UUID: c.uuid, Route: s.handle.Router().Classify(c.uuid)}

	switch entry.Route {
	case device.RouteControlPoint:
		_, err := s.handle.Dispatch(device.Update{ID: c.uuid, Characteristic: c})
		return entry, err

	case device.RouteIdentity:
		value, err := s.read(c)
		if err != nil {
			return entry, err
		}
		entry.Value = value
		_, err = s.handle.Dispatch(device.Update{ID: c.uuid, Value: value, Characteristic: c})
		return entry, err

	case device.RouteBattery:
		if value, err := s.read(c); err == nil {
			entry.Value = value
			if _, err := s.handle.Dispatch(device.Update{ID: c.uuid, Value: value, Characteristic: c}); err != nil {
				s.log.Debug("Initial battery read not decodable", zap.Error(err))
			}
		}
		return entry, s.subscribe(c)

	default:
		_, err := s.handle.Dispatch(device.Update{ID: c.uuid, Characteristic: c})
		return entry, err
	}
}

func (s *Session) read(c *Characteristic) ([]byte, error) {
	buf := make([]byte, readBufferSize)
	n, err := c.char.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.uuid, err)
	}
	return buf[:n], nil
}

// subscribe routes every notification on c through the handle. The callback
// runs on the transport's goroutine; the handle serializes its own state.
func (s *Session) subscribe(c *Characteristic) error {
	err := c.char.EnableNotifications(func(buf []byte) {
		value := make([]byte, len(buf))
		copy(value, buf)
		if _, err := s.handle.Dispatch(device.Update{ID: c.uuid, Value: value, Characteristic: c}); err != nil && !errors.Is(err, device.ErrDecode) {
			s.log.Warn("Notification dispatch failed", zap.String("uuid", c.uuid), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to enable notifications on %s: %w", c.uuid, err)
	}
	time.Sleep(notifySettle)
	return nil
}

// Entries returns what discovery found, in discovery order.
func (s *Session) Entries() []Entry {
	return s.entries
}

// Handle returns the device handle the session feeds.
func (s *Session) Handle() *device.Handle {
	return s.handle
}

// Peripheral returns the connected peripheral.
func (s *Session) Peripheral() *Peripheral {
	return s.peripheral
}
