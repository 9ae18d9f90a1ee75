package device

import (
	"fmt"
	"sync"
)

// Field names one text attribute of the device identity.
type Field int

const (
	FieldModelNumber Field = iota
	FieldCustomName
	FieldSerialNumber
	FieldSoftwareRevision
	FieldManufacturerName
)

func (f Field) String() string {
	switch f {
	case FieldModelNumber:
		return "model_number"
	case FieldCustomName:
		return "custom_name"
	case FieldSerialNumber:
		return "serial_number"
	case FieldSoftwareRevision:
		return "software_revision"
	case FieldManufacturerName:
		return "manufacturer_name"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Profile is a point-in-time copy of the identity model.
type Profile struct {
	ModelNumber      string `json:"model_number"`
	CustomName       string `json:"custom_name,omitempty"`
	SerialNumber     string `json:"serial_number"`
	SoftwareRevision string `json:"software_revision"`
	ManufacturerName string `json:"manufacturer_name"`
	BatteryLevel     uint8  `json:"battery_level"`
}

// Complete reports whether every identity field the device must report is set.
// Custom name and battery level are not part of the predicate.
func (p Profile) Complete() bool {
	return p.ModelNumber != "" &&
		p.SerialNumber != "" &&
		p.SoftwareRevision != "" &&
		p.ManufacturerName != ""
}

// Identity holds the descriptive attributes and battery level of one device.
//
// The completion hook fires at most once, on the update that makes the
// profile complete. Change hooks fire after every mutation. Hooks run on the
// caller's goroutine without the lock held.
type Identity struct {
	mu       sync.RWMutex
	profile  Profile
	onFull   func(Profile)
	fired    bool
	onChange []func(Profile)
}

// NewIdentity returns an empty identity model.
func NewIdentity() *Identity {
	return &Identity{}
}

// Update sets one text field. Any text is accepted; "" means unset.
func (i *Identity) Update(field Field, value string) {
	i.mutate(func(p *Profile) {
		switch field {
		case FieldModelNumber:
			p.ModelNumber = value
		case FieldCustomName:
			p.CustomName = value
		case FieldSerialNumber:
			p.SerialNumber = value
		case FieldSoftwareRevision:
			p.SoftwareRevision = value
		case FieldManufacturerName:
			p.ManufacturerName = value
		}
	})
}

// SetBattery records the battery level.
func (i *Identity) SetBattery(level uint8) {
	i.mutate(func(p *Profile) {
		p.BatteryLevel = level
	})
}

// IsFullyPopulated reports whether model, serial, revision and manufacturer
// are all non-empty.
func (i *Identity) IsFullyPopulated() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.profile.Complete()
}

// OnFullyPopulated registers the one-shot completion hook. Registering after
// the profile already became complete has no effect.
func (i *Identity) OnFullyPopulated(fn func(Profile)) {
	i.mu.Lock()
	i.onFull = fn
	i.mu.Unlock()
}

// OnChange registers a hook called with the new profile after every mutation.
func (i *Identity) OnChange(fn func(Profile)) {
	i.mu.Lock()
	i.onChange = append(i.onChange, fn)
	i.mu.Unlock()
}

// Snapshot returns a copy of the current profile.
func (i *Identity) Snapshot() Profile {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.profile
}

func (i *Identity) mutate(apply func(*Profile)) {
	i.mu.Lock()
	wasComplete := i.profile.Complete()
	apply(&i.profile)
	snapshot := i.profile

	var full func(Profile)
	if !wasComplete && snapshot.Complete() && !i.fired && i.onFull != nil {
		i.fired = true
		full = i.onFull
	}
	changed := make([]func(Profile), len(i.onChange))
	copy(changed, i.onChange)
	i.mu.Unlock()

	if full != nil {
		full(snapshot)
	}
	for _, fn := range changed {
		fn(snapshot)
	}
}
