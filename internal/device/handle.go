package device

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Characteristic is an opaque transport reference to one GATT characteristic.
type Characteristic interface {
	UUID() string
}

// Writer delivers one frame to a characteristic. WriteFrame must not return
// until the transport has acknowledged the write.
type Writer interface {
	WriteFrame(ctx context.Context, target Characteristic, frame []byte) error
}

// State is the binding lifecycle of a handle.
type State int

const (
	StateUnbound State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "unbound"
}

// Result reports how far a command got.
type Result struct {
	Command       CommandName
	FramesTotal   int
	FramesWritten int
}

// Handle is one connected device: its identity, its family's command table
// and the write path to its control point.
//
// Bindings and executions share one lock, so the control point and writer
// never change while a command is being written.
type Handle struct {
	family   Family
	identity *Identity
	router   *Router
	log      *zap.Logger

	mu           sync.Mutex
	writer       Writer
	controlPoint Characteristic
}

// NewHandle creates an unbound handle. family must already be resolved;
// FamilyAuto has no commands.
func NewHandle(family Family, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handle{
		family:   family,
		identity: NewIdentity(),
		log:      log.With(zap.Stringer("family", family)),
	}
	h.router = NewRouter(h.identity, h, h.log)
	return h
}

// Family returns the device family.
func (h *Handle) Family() Family {
	return h.family
}

// Identity returns the identity model owned by the handle.
func (h *Handle) Identity() *Identity {
	return h.identity
}

// Router returns the router feeding this handle.
func (h *Handle) Router() *Router {
	return h.router
}

// Dispatch routes one attribute update. See Router.Dispatch.
func (h *Handle) Dispatch(u Update) (Route, error) {
	return h.router.Dispatch(u)
}

// BindWriter sets the write capability, normally once on connect.
func (h *Handle) BindWriter(w Writer) {
	h.mu.Lock()
	h.writer = w
	h.mu.Unlock()
}

// BindControlPoint sets the characteristic commands are written to.
func (h *Handle) BindControlPoint(c Characteristic) {
	h.mu.Lock()
	h.controlPoint = c
	h.mu.Unlock()
}

// State reports whether both the writer and the control point are bound.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stateLocked()
}

func (h *Handle) stateLocked() State {
	if h.writer != nil && h.controlPoint != nil {
		return StateReady
	}
	return StateUnbound
}

// Execute writes every frame of the named command to the control point, in
// order, waiting for each write to be acknowledged before the next.
//
// It fails with ErrUnsupportedCommand if the family does not register name
// and with ErrNotReady if a binding is missing; neither case writes anything.
// A transport failure stops the sequence and is returned wrapped; frames
// already written are not rolled back.
func (h *Handle) Execute(ctx context.Context, name CommandName) (Result, error) {
	cmd, ok := h.family.Command(name)
	if !ok {
		return Result{Command: name}, fmt.Errorf("%w: %s on %s", ErrUnsupportedCommand, name, h.family)
	}
	res := Result{Command: name, FramesTotal: len(cmd)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stateLocked() != StateReady {
		return res, fmt.Errorf("%w: %s", ErrNotReady, name)
	}

	for i, frame := range cmd {
		h.log.Debug("Writing frame",
			zap.String("command", string(name)),
			zap.Int("frame", i+1),
			zap.Int("of", len(cmd)),
			zap.String("bytes", fmt.Sprintf("% X", []byte(frame))))

		if err := h.writer.WriteFrame(ctx, h.controlPoint, frame); err != nil {
			return res, fmt.Errorf("%s: frame %d/%d: %w", name, i+1, len(cmd), err)
		}
		res.FramesWritten++
	}

	h.log.Info("Command executed", zap.String("command", string(name)), zap.Int("frames", res.FramesWritten))
	return res, nil
}
