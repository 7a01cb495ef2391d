package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/native-host/handle"
)

// memoryHost lets guests hold host-side buffers by handle and move
// bytes between a buffer and their own linear memory. Host buffers
// outlive guest instances, so they double as a scratch channel between
// successive module runs.
type memoryHost struct {
	h *Host
}

func (m *memoryHost) Namespace() string {
	return "native:host/memory"
}

func (m *memoryHost) instantiate(ctx context.Context, r wazero.Runtime) error {
	b := r.NewHostModuleBuilder(m.Namespace())

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			h, err := m.h.Memory.Allocate(int(stack[0]))
			if err != nil {
				stack[0] = 0
				return
			}
			stack[0] = uint64(h)
		}), []api.ValueType{i64}, []api.ValueType{i64}).
		Export("alloc")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			stack[0] = errno(m.h.Memory.Free(handle.Handle(stack[0])))
		}), []api.ValueType{i64}, []api.ValueType{i32}).
		Export("free")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			size, err := m.h.Memory.Size(handle.Handle(stack[0]))
			if err != nil {
				stack[0] = uint64(-int64(errno(err)))
				return
			}
			stack[0] = uint64(size)
		}), []api.ValueType{i64}, []api.ValueType{i64}).
		Export("size")

	// read(handle, offset, guest-ptr, len) copies buffer bytes into the
	// guest's linear memory.
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			h := handle.Handle(stack[0])
			offset := int(stack[1])
			ptr := uint32(stack[2])
			n := int(uint32(stack[3]))

			data, err := m.h.Memory.Read(h, offset, n)
			if err != nil {
				stack[0] = errno(err)
				return
			}
			if !writeGuest(mod, ptr, data) {
				stack[0] = errFault
				return
			}
			stack[0] = errOK
		}), []api.ValueType{i64, i64, i32, i32}, []api.ValueType{i32}).
		Export("read")

	// write(handle, offset, guest-ptr, len) copies guest memory into the
	// buffer.
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			h := handle.Handle(stack[0])
			offset := int(stack[1])
			ptr := uint32(stack[2])
			n := uint32(stack[3])

			data, ok := readGuest(mod, ptr, n)
			if !ok {
				stack[0] = errFault
				return
			}
			stack[0] = errno(m.h.Memory.Write(h, offset, data))
		}), []api.ValueType{i64, i64, i32, i32}, []api.ValueType{i32}).
		Export("write")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			h := handle.Handle(stack[0])
			value := byte(stack[1])
			n := int(stack[2])
			stack[0] = errno(m.h.Memory.Set(h, value, n))
		}), []api.ValueType{i64, i32, i64}, []api.ValueType{i32}).
		Export("fill")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			dst := handle.Handle(stack[0])
			src := handle.Handle(stack[1])
			n := int(stack[2])
			stack[0] = errno(m.h.Memory.Copy(dst, src, n))
		}), []api.ValueType{i64, i64, i64}, []api.ValueType{i32}).
		Export("copy")

	_, err := b.Instantiate(ctx)
	return err
}
