package device

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/vitaminmoo/iqos-tool/internal/util"
)

// Route is the path an attribute update took through the router.
type Route int

const (
	RouteUnrecognized Route = iota
	RouteIdentity
	RouteBattery
	RouteControlPoint
)

func (r Route) String() string {
	switch r {
	case RouteIdentity:
		return "identity"
	case RouteBattery:
		return "battery"
	case RouteControlPoint:
		return "control-point"
	default:
		return "unrecognized"
	}
}

// batteryOffset is the position of the battery percentage in the battery
// characteristic payload, e.g. 0f 00 [4b] 18 54 0f 64.
const batteryOffset = 2

// Update is one attribute notification delivered by the transport.
type Update struct {
	// ID is either a well-known alias ("Serial Number String") or a raw
	// identifier in any case or short form.
	ID    string
	Value []byte

	// Characteristic is the transport reference the update came from. It is
	// only required for the control point.
	Characteristic Characteristic
}

type controlPointBinder interface {
	BindControlPoint(c Characteristic)
}

// Router maps attribute updates onto the identity model and the control
// point binding.
type Router struct {
	identity *Identity
	binder   controlPointBinder
	log      *zap.Logger
}

// NewRouter returns a router writing into identity and binding control
// points through binder.
func NewRouter(identity *Identity, binder controlPointBinder, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{identity: identity, binder: binder, log: log}
}

// Classify returns the route an identifier would take without dispatching.
func (r *Router) Classify(id string) Route {
	ro, ok := lookupRole(id)
	if !ok {
		return RouteUnrecognized
	}
	return ro.route
}

// Dispatch applies one update. The only error it returns is a wrapped
// ErrDecode for a battery payload that is too short; the update is then
// dropped and the identity model is left untouched. Callers treat it as
// non-fatal.
func (r *Router) Dispatch(u Update) (Route, error) {
	ro, ok := lookupRole(u.ID)
	if !ok {
		r.log.Debug("Unrecognized characteristic",
			zap.String("uuid", u.ID),
			zap.String("value", util.FormatBytes(u.Value)))
		return RouteUnrecognized, nil
	}

	switch ro.route {
	case RouteIdentity:
		value := decodeText(u.Value)
		r.identity.Update(ro.field, value)
		r.log.Debug("Identity field updated",
			zap.Stringer("field", ro.field),
			zap.String("value", value))

	case RouteBattery:
		level, err := batteryLevel(u.Value)
		if err != nil {
			r.log.Warn("Dropping battery update", zap.String("uuid", u.ID), zap.Error(err))
			return ro.route, err
		}
		r.identity.SetBattery(level)
		r.log.Debug("Battery level updated", zap.Uint8("level", level))

	case RouteControlPoint:
		if u.Characteristic == nil {
			r.log.Warn("Control point update carries no characteristic reference", zap.String("uuid", u.ID))
			return ro.route, nil
		}
		r.binder.BindControlPoint(u.Characteristic)
		r.log.Debug("Control point bound", zap.String("uuid", u.Characteristic.UUID()))
	}

	return ro.route, nil
}

// decodeText returns the payload as a string, or "" if it is not valid UTF-8.
func decodeText(b []byte) string {
	if !utf8.Valid(b) {
		return ""
	}
	return string(b)
}

func batteryLevel(payload []byte) (uint8, error) {
	if len(payload) <= batteryOffset {
		return 0, fmt.Errorf("%w: battery payload has %d bytes, need at least %d",
			ErrDecode, len(payload), batteryOffset+1)
	}
	return payload[batteryOffset], nil
}
