// Package nativehost exposes operating-system resources to embedders and
// WebAssembly guests through opaque integer handles.
//
// Threads, mutexes, semaphores, memory buffers, files and timers are
// created host-side and addressed only by handle; callers never hold a
// pointer to the underlying resource. Handles are issued by a shared
// monotonic allocator and are never reused within a process, so a stale
// handle fails with a not-found error instead of aliasing a newer
// resource.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	nativehost/          Root package with the embedder facade
//	├── concurrency/     Threads, mutexes, counting semaphores
//	├── buffer/          Raw host-side memory buffers
//	├── fileio/          File descriptor table and path helpers
//	├── clock/           Monotonic time, sleeping, repeating timers
//	├── sysinfo/         CPU and process facts
//	├── mathx/           Numeric kernels: fast roots, vectors, FFT
//	├── strutil/         String kernels: search, hashes, comparison
//	├── host/            wazero import modules for WASM guests
//	├── registry/        Generic handle table
//	├── handle/          Handle type and allocator
//	└── errors/          Structured error types
//
// # Quick Start
//
// Build a System and use its subsystems directly:
//
//	sys := nativehost.New(nativehost.WithLogger(log))
//	defer sys.Close()
//
//	mu, err := sys.Sync.Mutexes().Create(false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sys.Sync.Mutexes().Lock(mu, concurrency.Blocking)
//	defer sys.Sync.Mutexes().Unlock(mu)
//
// To expose the same subsystems to a WASM guest, register them on a
// wazero runtime through the host package:
//
//	h := host.New(sys.Sync, sys.Memory, sys.Clock)
//	if err := h.Instantiate(ctx, r); err != nil {
//	    log.Fatal(err)
//	}
package nativehost
