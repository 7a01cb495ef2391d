package host

import (
	"context"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/native-host/concurrency"
	"github.com/wippyai/native-host/handle"
)

// syncHost exposes mutexes and semaphores to guests. Thread spawning
// stays on the embedder side; a wasm guest has no work function the
// host could run, so only the synchronization half of the subsystem
// crosses the boundary.
type syncHost struct {
	h *Host
}

func (s *syncHost) Namespace() string {
	return "native:host/sync"
}

// guestTimeout maps the wire encoding to the manager's convention:
// negative means block forever, zero means try once.
func guestTimeout(ms int64) time.Duration {
	if ms < 0 {
		return concurrency.Blocking
	}
	return time.Duration(ms) * time.Millisecond
}

func (s *syncHost) instantiate(ctx context.Context, r wazero.Runtime) error {
	b := r.NewHostModuleBuilder(s.Namespace())

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			recursive := api.DecodeI32(stack[0]) != 0
			h, err := s.h.Sync.Mutexes().Create(recursive)
			if err != nil {
				stack[0] = 0
				return
			}
			stack[0] = uint64(h)
		}), []api.ValueType{i32}, []api.ValueType{i64}).
		Export("mutex-create")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			h := handle.Handle(stack[0])
			acquired, err := s.h.Sync.Mutexes().Lock(h, guestTimeout(int64(stack[1])))
			switch {
			case err != nil:
				stack[0] = errno(err)
			case !acquired:
				stack[0] = errTimeout
			default:
				stack[0] = errOK
			}
		}), []api.ValueType{i64, i64}, []api.ValueType{i32}).
		Export("mutex-lock")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = errno(s.h.Sync.Mutexes().Unlock(handle.Handle(stack[0])))
		}), []api.ValueType{i64}, []api.ValueType{i32}).
		Export("mutex-unlock")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = errno(s.h.Sync.Mutexes().Destroy(handle.Handle(stack[0])))
		}), []api.ValueType{i64}, []api.ValueType{i32}).
		Export("mutex-destroy")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			initial := uint32(stack[0])
			max := uint32(stack[1])
			h, err := s.h.Sync.Semaphores().Create(initial, max)
			if err != nil {
				stack[0] = 0
				return
			}
			stack[0] = uint64(h)
		}), []api.ValueType{i32, i32}, []api.ValueType{i64}).
		Export("sem-create")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			h := handle.Handle(stack[0])
			acquired, err := s.h.Sync.Semaphores().Wait(h, guestTimeout(int64(stack[1])))
			switch {
			case err != nil:
				stack[0] = errno(err)
			case !acquired:
				stack[0] = errTimeout
			default:
				stack[0] = errOK
			}
		}), []api.ValueType{i64, i64}, []api.ValueType{i32}).
		Export("sem-wait")

	// sem-signal returns the previous count, or the negated errno on
	// failure so guests can distinguish the two without a second call.
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			h := handle.Handle(stack[0])
			count := uint32(stack[1])
			prev, err := s.h.Sync.Semaphores().Signal(h, count)
			if err != nil {
				stack[0] = uint64(-int64(errno(err)))
				return
			}
			stack[0] = uint64(prev)
		}), []api.ValueType{i64, i32}, []api.ValueType{i64}).
		Export("sem-signal")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = errno(s.h.Sync.Semaphores().Destroy(handle.Handle(stack[0])))
		}), []api.ValueType{i64}, []api.ValueType{i32}).
		Export("sem-destroy")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = s.h.Sync.Threads().CurrentID()
		}), nil, []api.ValueType{i64}).
		Export("current-thread-id")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			h := handle.Handle(stack[0])
			count, err := s.h.Sync.Semaphores().Count(h)
			if err != nil {
				stack[0] = uint64(-int64(errno(err)))
				return
			}
			stack[0] = uint64(count)
		}), []api.ValueType{i64}, []api.ValueType{i64}).
		Export("sem-count")

	_, err := b.Instantiate(ctx)
	return err
}
