package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/native-host/buffer"
	"github.com/wippyai/native-host/clock"
	"github.com/wippyai/native-host/concurrency"
	"github.com/wippyai/native-host/errors"
)

// Errno values returned to guests. Structured host errors collapse to
// these small codes at the boundary; 0 always means success.
const (
	errOK          = 0
	errNotFound    = 1
	errTimeout     = 2
	errValidation  = 3
	errOverflow    = 4
	errOutOfBounds = 5
	errNotOwner    = 6
	errFault       = 7 // guest pointer outside its linear memory
	errInternal    = 8
)

func errno(err error) uint64 {
	if err == nil {
		return errOK
	}
	e, ok := err.(*errors.Error)
	if !ok {
		return errInternal
	}
	switch e.Kind {
	case errors.KindNotFound:
		return errNotFound
	case errors.KindValidation, errors.KindInvalidInput:
		return errValidation
	case errors.KindOverflow:
		return errOverflow
	case errors.KindOutOfBounds:
		return errOutOfBounds
	case errors.KindNotOwner:
		return errNotOwner
	default:
		return errInternal
	}
}

// Host owns the native subsystems and exposes them to wasm guests as
// import modules. Each namespace instantiates separately so a guest
// can import only what it uses.
type Host struct {
	Sync   *concurrency.Subsystem
	Memory *buffer.Pool
	Clock  *clock.Clock
	log    *zap.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithLogger routes host diagnostics to the given logger.
func WithLogger(log *zap.Logger) Option {
	return func(h *Host) { h.log = log }
}

// New creates a Host around the given subsystems. Nil subsystems are
// rejected at registration time, not here.
func New(sync *concurrency.Subsystem, mem *buffer.Pool, clk *clock.Clock, opts ...Option) *Host {
	h := &Host{
		Sync:   sync,
		Memory: mem,
		Clock:  clk,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Instantiate registers every host namespace on the runtime. It fails
// on the first namespace that cannot be instantiated, typically a
// duplicate module name.
func (h *Host) Instantiate(ctx context.Context, r wazero.Runtime) error {
	for _, ns := range []interface {
		Namespace() string
		instantiate(context.Context, wazero.Runtime) error
	}{
		&syncHost{h},
		&clockHost{h},
		&memoryHost{h},
		&strHost{h},
	} {
		if err := ns.instantiate(ctx, r); err != nil {
			return errors.Registration(ns.Namespace(), "", err)
		}
		h.log.Debug("host namespace registered", zap.String("namespace", ns.Namespace()))
	}
	return nil
}

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// readGuest copies [ptr, ptr+size) out of the caller's linear memory.
// A caller without a memory, such as another host module, faults.
func readGuest(mod api.Module, ptr, size uint32) ([]byte, bool) {
	mem := mod.Memory()
	if mem == nil {
		return nil, false
	}
	return mem.Read(ptr, size)
}

// writeGuest copies data into the caller's linear memory at ptr.
func writeGuest(mod api.Module, ptr uint32, data []byte) bool {
	mem := mod.Memory()
	if mem == nil {
		return false
	}
	return mem.Write(ptr, data)
}
