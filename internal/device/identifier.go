package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// bluetoothBaseSuffix completes a 16 or 32-bit SIG assigned number into its
// full 128-bit form.
const bluetoothBaseSuffix = "-0000-1000-8000-00805f9b34fb"

// Raw identifiers the router understands, in canonical lowercase form.
const (
	ModelNumberUUID      = "00002a24" + bluetoothBaseSuffix
	SerialNumberUUID     = "00002a25" + bluetoothBaseSuffix
	SoftwareRevisionUUID = "00002a28" + bluetoothBaseSuffix
	ManufacturerNameUUID = "00002a29" + bluetoothBaseSuffix

	// BatteryUUID carries the charger/holder battery state, level at offset 2.
	BatteryUUID = "f8a54120-b041-11e4-9be7-0002a5d5c51b"

	// ControlPointUUID is the vendor characteristic all commands are written to.
	ControlPointUUID = "e16c6e20-b041-11e4-a4c3-0002a5d5c51b"
)

// aliases maps the human-readable names some stacks (CoreBluetooth among
// them) use for standard characteristics to their raw identifiers.
var aliases = map[string]string{
	"model number string":      ModelNumberUUID,
	"serial number string":     SerialNumberUUID,
	"software revision string": SoftwareRevisionUUID,
	"manufacturer name string": ManufacturerNameUUID,
}

// role describes what an identifier means to the router.
type role struct {
	route Route
	field Field
}

var roles = map[string]role{
	ModelNumberUUID:      {route: RouteIdentity, field: FieldModelNumber},
	SerialNumberUUID:     {route: RouteIdentity, field: FieldSerialNumber},
	SoftwareRevisionUUID: {route: RouteIdentity, field: FieldSoftwareRevision},
	ManufacturerNameUUID: {route: RouteIdentity, field: FieldManufacturerName},
	BatteryUUID:          {route: RouteBattery},
	ControlPointUUID:     {route: RouteControlPoint},
}

// Canonical normalizes an identifier to its raw lowercase 128-bit string.
// Aliases and 16/32-bit short forms are expanded; anything that is not a
// recognizable UUID is returned trimmed and lowercased so it can still be
// compared as an opaque token.
func Canonical(id string) string {
	s := strings.TrimSpace(id)
	lower := strings.ToLower(s)

	if raw, ok := aliases[lower]; ok {
		return raw
	}

	short := strings.TrimPrefix(lower, "0x")
	if len(short) == 4 || len(short) == 8 {
		if v, err := strconv.ParseUint(short, 16, 32); err == nil {
			return fmt.Sprintf("%08x", v) + bluetoothBaseSuffix
		}
	}

	if u, err := uuid.Parse(s); err == nil {
		return u.String()
	}

	return lower
}

func lookupRole(id string) (role, bool) {
	r, ok := roles[Canonical(id)]
	return r, ok
}
