package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/native-host/strutil"
)

// strHost exposes the string kernels. Guests pass (ptr, len) pairs
// into their own linear memory; nothing is retained across calls.
type strHost struct {
	h *Host
}

func (s *strHost) Namespace() string {
	return "native:host/str"
}

func (s *strHost) instantiate(ctx context.Context, r wazero.Runtime) error {
	b := r.NewHostModuleBuilder(s.Namespace())

	// search(hay-ptr, hay-len, needle-ptr, needle-len, case-sensitive)
	// -> index or -1; a guest memory fault reads as -2.
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			hay, ok1 := readGuest(mod, uint32(stack[0]), uint32(stack[1]))
			needle, ok2 := readGuest(mod, uint32(stack[2]), uint32(stack[3]))
			if !ok1 || !ok2 {
				stack[0] = api.EncodeI64(-2)
				return
			}
			caseSensitive := api.DecodeI32(stack[4]) != 0
			stack[0] = api.EncodeI64(int64(strutil.Search(string(hay), string(needle), caseSensitive)))
		}), []api.ValueType{i32, i32, i32, i32, i32}, []api.ValueType{i64}).
		Export("search")

	// hash(ptr, len, algo-ptr, algo-len) -> hash; 0 on a bad algorithm
	// or fault. Callers that need to tell a real zero hash apart should
	// validate the algorithm name host-side first.
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			data, ok1 := readGuest(mod, uint32(stack[0]), uint32(stack[1]))
			algo, ok2 := readGuest(mod, uint32(stack[2]), uint32(stack[3]))
			if !ok1 || !ok2 {
				stack[0] = 0
				return
			}
			h, err := strutil.Hash(string(data), strutil.Algorithm(algo))
			if err != nil {
				stack[0] = 0
				return
			}
			stack[0] = h
		}), []api.ValueType{i32, i32, i32, i32}, []api.ValueType{i64}).
		Export("hash")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			data, ok := readGuest(mod, uint32(stack[0]), uint32(stack[1]))
			if !ok || !strutil.ValidUTF8(string(data)) {
				stack[0] = 0
				return
			}
			stack[0] = 1
		}), []api.ValueType{i32, i32}, []api.ValueType{i32}).
		Export("valid-utf8")

	// compare(a-ptr, a-len, b-ptr, b-len, case-sensitive) -> -1/0/1;
	// faults read as -2.
	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			a, ok1 := readGuest(mod, uint32(stack[0]), uint32(stack[1]))
			bs, ok2 := readGuest(mod, uint32(stack[2]), uint32(stack[3]))
			if !ok1 || !ok2 {
				stack[0] = api.EncodeI32(-2)
				return
			}
			caseSensitive := api.DecodeI32(stack[4]) != 0
			stack[0] = api.EncodeI32(int32(strutil.Compare(string(a), string(bs), caseSensitive)))
		}), []api.ValueType{i32, i32, i32, i32, i32}, []api.ValueType{i32}).
		Export("compare")

	_, err := b.Instantiate(ctx)
	return err
}
