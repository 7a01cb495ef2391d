// Package concurrency exposes native concurrency primitives — threads,
// mutexes and counting semaphores — behind opaque integer handles, for a
// calling environment that cannot hold references to native resources.
//
// # Handles
//
// Every primitive is represented by a handle.Handle issued from one
// allocator shared across the whole subsystem, so an id is unique across
// kinds and is never reused. Kind is implicit in which manager issued the
// handle; handles must not be mixed across managers.
//
//	sub := concurrency.New(concurrency.WithLogger(logger))
//	defer sub.Close()
//
//	m, _ := sub.Mutexes().Create(false)
//	sub.Mutexes().Lock(m, concurrency.Blocking)
//	sub.Mutexes().Unlock(m)
//	sub.Mutexes().Destroy(m)
//
// # Blocking and timeouts
//
// Join, Lock and Wait are the only operations that may block. Each timed
// variant takes a time.Duration: Blocking (-1) blocks without limit, zero
// tries once, and a positive value bounds the wait. An expired window is
// a normal false result, never an error.
//
// # Thread lifecycle
//
// Spawn starts caller-supplied work on a dedicated OS thread and returns
// a handle immediately. Exactly one of Join or Detach may be called on
// that handle, exactly once; afterwards the handle is gone. Panics inside
// the work are recovered at the thread boundary and reported through
// Join, never allowed to take down the process.
//
// # What this package does not do
//
// No user-space scheduling, no lock-free structures, no cross-process
// guarantees beyond the underlying primitive, and no recovery from a
// hung worker: a blocked Join can only be released by the target thread
// finishing.
package concurrency
