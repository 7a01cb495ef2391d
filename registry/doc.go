// Package registry implements the handle table that owns native resources.
//
// A Registry maps opaque integer handles to resources of one kind (threads,
// mutexes, semaphores, buffers, files, timers). The registry is the
// exclusive owner of every resource it holds; callers on the far side of
// the embedding boundary only ever see the integer handle.
//
// # Access discipline
//
//	reg := registry.New[*Thing](errors.PhaseMutex)
//
//	h := alloc.Next()
//	reg.Insert(h, thing)
//
//	// Touch a live resource under the registry's protection
//	err := reg.With(h, func(t *Thing) error { ... })
//
//	// Detach ownership for teardown outside the lock
//	t, ok := reg.Remove(h)
//
// Remove never races a With into a half-destroyed resource: With holds the
// read lock for the whole callback, and Remove takes the write lock.
// Blocking operations (join, lock, wait) must not run inside With; the
// managers pull an internally synchronized resource out with Get or Remove
// and block on the resource's own state instead.
//
// # Lifecycle observation
//
// Observers receive created/dropped events, which the concurrency subsystem
// uses to log resource lifecycles and which the leak check at shutdown is
// built on: a registry with non-zero Len at close indicates the caller
// forgot to release something.
package registry
