package host

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap/zaptest"

	"github.com/wippyai/native-host/buffer"
	"github.com/wippyai/native-host/clock"
	"github.com/wippyai/native-host/concurrency"
	"github.com/wippyai/native-host/handle"
)

func newTestRuntime(t *testing.T) (context.Context, wazero.Runtime, *Host) {
	t.Helper()
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	t.Cleanup(func() { r.Close(ctx) })

	log := zaptest.NewLogger(t)
	h := New(
		concurrency.New(concurrency.WithLogger(log)),
		buffer.NewPool(&handle.Allocator{}, log),
		clock.New(),
		WithLogger(log),
	)
	if err := h.Instantiate(ctx, r); err != nil {
		t.Fatalf("instantiate host: %v", err)
	}
	return ctx, r, h
}

// shimModule hand-assembles a wasm binary that imports module.fn with
// the given signature and exports a wrapper "call" forwarding its
// parameters to the import. The shim has no linear memory, so the host
// sees the same memoryless caller a direct invocation used to present.
func shimModule(module, fn string, def api.FunctionDefinition) []byte {
	var b []byte
	b = append(b, 0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00) // magic, version

	// type section: one func type with def's params and results
	typ := []byte{0x01, 0x60, byte(len(def.ParamTypes()))}
	typ = append(typ, def.ParamTypes()...)
	typ = append(typ, byte(len(def.ResultTypes())))
	typ = append(typ, def.ResultTypes()...)
	b = append(b, 0x01, byte(len(typ)))
	b = append(b, typ...)

	// import section: module . fn, func type 0
	imp := []byte{0x01}
	imp = append(imp, byte(len(module)))
	imp = append(imp, module...)
	imp = append(imp, byte(len(fn)))
	imp = append(imp, fn...)
	imp = append(imp, 0x00, 0x00)
	b = append(b, 0x02, byte(len(imp)))
	b = append(b, imp...)

	// function section: one local func of type 0
	b = append(b, 0x03, 0x02, 0x01, 0x00)

	// export section: "call" func 1 (the wrapper)
	exp := []byte{0x01}
	exp = append(exp, byte(len("call")))
	exp = append(exp, "call"...)
	exp = append(exp, 0x00, 0x01)
	b = append(b, 0x07, byte(len(exp)))
	b = append(b, exp...)

	// code section: call = local.get each param; call 0
	body := []byte{0x00}
	for i := range def.ParamTypes() {
		body = append(body, 0x20, byte(i))
	}
	body = append(body, 0x10, 0x00, 0x0b)
	code := append([]byte{0x01, byte(len(body))}, body...)
	b = append(b, 0x0a, byte(len(code)))
	b = append(b, code...)
	return b
}

func call(t *testing.T, r wazero.Runtime, ctx context.Context, module, fn string, args ...uint64) []uint64 {
	t.Helper()
	host := r.Module(module)
	if host == nil {
		t.Fatalf("module %s not instantiated", module)
	}
	def, ok := host.ExportedFunctionDefinitions()[fn]
	if !ok {
		t.Fatalf("%s has no export %s", module, fn)
	}
	mod, err := r.Instantiate(ctx, shimModule(module, fn, def))
	if err != nil {
		t.Fatalf("instantiate shim for %s.%s: %v", module, fn, err)
	}
	defer mod.Close(ctx)
	res, err := mod.ExportedFunction("call").Call(ctx, args...)
	if err != nil {
		t.Fatalf("%s.%s: %v", module, fn, err)
	}
	return res
}

func TestSyncMutexOverWire(t *testing.T) {
	ctx, r, _ := newTestRuntime(t)

	h := call(t, r, ctx, "native:host/sync", "mutex-create", 0)[0]
	if h == 0 {
		t.Fatal("mutex-create returned null handle")
	}

	blockForever := ^uint64(0) // -1 on the wire
	if rc := call(t, r, ctx, "native:host/sync", "mutex-lock", h, blockForever); uint32(rc[0]) != errOK {
		t.Fatalf("lock errno %d", rc[0])
	}
	// a second try-lock from this thread must time out, not recurse
	if rc := call(t, r, ctx, "native:host/sync", "mutex-lock", h, 0); uint32(rc[0]) != errTimeout {
		t.Fatalf("relock errno %d", rc[0])
	}
	if rc := call(t, r, ctx, "native:host/sync", "mutex-unlock", h); uint32(rc[0]) != errOK {
		t.Fatalf("unlock errno %d", rc[0])
	}
	if rc := call(t, r, ctx, "native:host/sync", "mutex-destroy", h); uint32(rc[0]) != errOK {
		t.Fatalf("destroy errno %d", rc[0])
	}
	if rc := call(t, r, ctx, "native:host/sync", "mutex-destroy", h); uint32(rc[0]) != errNotFound {
		t.Fatalf("double destroy errno %d", rc[0])
	}
}

func TestSyncSemaphoreOverWire(t *testing.T) {
	ctx, r, _ := newTestRuntime(t)

	h := call(t, r, ctx, "native:host/sync", "sem-create", 2, 5)[0]
	if h == 0 {
		t.Fatal("sem-create returned null handle")
	}

	if rc := call(t, r, ctx, "native:host/sync", "sem-wait", h, 0); uint32(rc[0]) != errOK {
		t.Fatalf("wait errno %d", rc[0])
	}
	if prev := int64(call(t, r, ctx, "native:host/sync", "sem-signal", h, 2)[0]); prev != 1 {
		t.Fatalf("signal returned %d", prev)
	}
	if count := int64(call(t, r, ctx, "native:host/sync", "sem-count", h)[0]); count != 3 {
		t.Fatalf("count %d", count)
	}
	// 3 + 3 > 5, overflow comes back as a negated errno
	if prev := int64(call(t, r, ctx, "native:host/sync", "sem-signal", h, 3)[0]); prev != -errOverflow {
		t.Fatalf("overflow signal returned %d", prev)
	}
	if rc := call(t, r, ctx, "native:host/sync", "sem-destroy", h); uint32(rc[0]) != errOK {
		t.Fatalf("destroy errno %d", rc[0])
	}
}

func TestSemCreateRejectsZeroMax(t *testing.T) {
	ctx, r, _ := newTestRuntime(t)
	if h := call(t, r, ctx, "native:host/sync", "sem-create", 0, 0)[0]; h != 0 {
		t.Fatalf("invalid sem-create returned handle %d", h)
	}
}

func TestClockOverWire(t *testing.T) {
	ctx, r, _ := newTestRuntime(t)

	a := int64(call(t, r, ctx, "native:host/clock", "now")[0])
	call(t, r, ctx, "native:host/clock", "sleep-ms", 5)
	b := int64(call(t, r, ctx, "native:host/clock", "now")[0])
	if b <= a {
		t.Fatalf("clock did not advance: %d then %d", a, b)
	}
	if wall := int64(call(t, r, ctx, "native:host/clock", "wall-ms")[0]); wall <= 0 {
		t.Fatalf("wall-ms %d", wall)
	}
}

func TestMemoryOverWire(t *testing.T) {
	ctx, r, host := newTestRuntime(t)

	h := call(t, r, ctx, "native:host/memory", "alloc", 64)[0]
	if h == 0 {
		t.Fatal("alloc returned null handle")
	}
	if size := int64(call(t, r, ctx, "native:host/memory", "size", h)[0]); size != 64 {
		t.Fatalf("size %d", size)
	}
	if rc := call(t, r, ctx, "native:host/memory", "fill", h, 0xAB, 64); uint32(rc[0]) != errOK {
		t.Fatalf("fill errno %d", rc[0])
	}
	data, err := host.Memory.Read(handle.Handle(h), 0, 64)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for i, b := range data {
		if b != 0xAB {
			t.Fatalf("byte %d is %x", i, b)
		}
	}

	// read into a caller without linear memory must fault, not panic
	if rc := call(t, r, ctx, "native:host/memory", "read", h, 0, 0, 8); uint32(rc[0]) != errFault {
		t.Fatalf("memoryless read errno %d", rc[0])
	}

	// a negative length on the wire is out of bounds, never a crash
	negOne := ^uint64(0)
	if rc := call(t, r, ctx, "native:host/memory", "fill", h, 0xAB, negOne); uint32(rc[0]) != errOutOfBounds {
		t.Fatalf("negative fill errno %d", rc[0])
	}
	h2 := call(t, r, ctx, "native:host/memory", "alloc", 64)[0]
	if rc := call(t, r, ctx, "native:host/memory", "copy", h2, h, negOne); uint32(rc[0]) != errOutOfBounds {
		t.Fatalf("negative copy errno %d", rc[0])
	}

	if rc := call(t, r, ctx, "native:host/memory", "free", h); uint32(rc[0]) != errOK {
		t.Fatalf("free errno %d", rc[0])
	}
	if size := int64(call(t, r, ctx, "native:host/memory", "size", h)[0]); size != -errNotFound {
		t.Fatalf("size after free %d", size)
	}
}

// guestModule hand-assembles a minimal wasm binary that imports
// native:host/str valid-utf8, exports its linear memory and a check
// function forwarding (ptr, len) to the import.
func guestModule() []byte {
	var b []byte
	b = append(b, 0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00) // magic, version

	// type section: (i32, i32) -> i32
	b = append(b, 0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f)

	// import section: native:host/str . valid-utf8, func type 0
	imp := []byte{0x01}
	imp = append(imp, byte(len("native:host/str")))
	imp = append(imp, "native:host/str"...)
	imp = append(imp, byte(len("valid-utf8")))
	imp = append(imp, "valid-utf8"...)
	imp = append(imp, 0x00, 0x00)
	b = append(b, 0x02, byte(len(imp)))
	b = append(b, imp...)

	// function section: one local func of type 0
	b = append(b, 0x03, 0x02, 0x01, 0x00)
	// memory section: 1 page, no max
	b = append(b, 0x05, 0x03, 0x01, 0x00, 0x01)

	// export section: "memory" mem 0, "check" func 1
	exp := []byte{0x02}
	exp = append(exp, byte(len("memory")))
	exp = append(exp, "memory"...)
	exp = append(exp, 0x02, 0x00)
	exp = append(exp, byte(len("check")))
	exp = append(exp, "check"...)
	exp = append(exp, 0x00, 0x01)
	b = append(b, 0x07, byte(len(exp)))
	b = append(b, exp...)

	// code section: check = local.get 0; local.get 1; call 0
	body := []byte{0x00, 0x20, 0x00, 0x20, 0x01, 0x10, 0x00, 0x0b}
	code := append([]byte{0x01, byte(len(body))}, body...)
	b = append(b, 0x0a, byte(len(code)))
	b = append(b, code...)
	return b
}

func TestStrThroughGuestMemory(t *testing.T) {
	ctx, r, _ := newTestRuntime(t)

	mod, err := r.Instantiate(ctx, guestModule())
	if err != nil {
		t.Fatalf("instantiate guest: %v", err)
	}
	defer mod.Close(ctx)

	if !mod.Memory().Write(0, []byte("héllo")) {
		t.Fatal("seed guest memory")
	}
	res, err := mod.ExportedFunction("check").Call(ctx, 0, uint64(len("héllo")))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if api.DecodeI32(res[0]) != 1 {
		t.Fatalf("valid utf-8 rejected: %d", res[0])
	}

	if !mod.Memory().Write(0, []byte{0xff, 0xfe}) {
		t.Fatal("seed invalid bytes")
	}
	res, err = mod.ExportedFunction("check").Call(ctx, 0, 2)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if api.DecodeI32(res[0]) != 0 {
		t.Fatalf("invalid utf-8 accepted: %d", res[0])
	}
}

func TestStrFaultsWithoutMemory(t *testing.T) {
	ctx, r, _ := newTestRuntime(t)
	res := call(t, r, ctx, "native:host/str", "search", 0, 4, 0, 1, 1)
	if int64(res[0]) != -2 {
		t.Fatalf("memoryless search returned %d", int64(res[0]))
	}
}
