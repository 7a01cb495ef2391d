package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/native-host/clock"
)

// clockHost exposes the monotonic clock, wall time and sleeping.
type clockHost struct {
	h *Host
}

func (c *clockHost) Namespace() string {
	return "native:host/clock"
}

func (c *clockHost) instantiate(ctx context.Context, r wazero.Runtime) error {
	b := r.NewHostModuleBuilder(c.Namespace())

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = uint64(c.h.Clock.Now())
		}), nil, []api.ValueType{i64}).
		Export("now")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = uint64(clock.Wall())
		}), nil, []api.ValueType{i64}).
		Export("wall-ms")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			clock.Sleep(int64(stack[0]))
		}), []api.ValueType{i64}, nil).
		Export("sleep-ms")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			d, err := clock.ProcessCPUTime()
			if err != nil {
				stack[0] = 0
				return
			}
			stack[0] = uint64(d.Nanoseconds())
		}), nil, []api.ValueType{i64}).
		Export("cpu-time-ns")

	_, err := b.Instantiate(ctx)
	return err
}
