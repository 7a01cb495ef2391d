package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/native-host/errors"
	"github.com/wippyai/native-host/handle"
	"github.com/wippyai/native-host/registry"
)

// Work is a unit of work executed on its own OS thread. The returned
// value is the thread's exit code, retrievable through Join.
type Work func() int32

// consumption records how a thread handle was used up. Exactly one of
// join or detach may be called per handle, exactly once; the manager
// remembers the outcome so the second call gets a precise error instead
// of a bare not-found.
type consumption uint8

const (
	consumedJoin consumption = iota + 1
	consumedDetach
)

type thread struct {
	done     chan struct{}
	exitCode atomic.Int32
	panicVal atomic.Value // non-nil if work panicked
	running  atomic.Bool
	osID     atomic.Uint64
}

// Drop implements registry.Dropper. An abandoned thread cannot be
// stopped; dropping the entry only forgets the handle.
func (t *thread) Drop() {}

// ThreadManager spawns native threads running caller-supplied work and
// tracks them by handle until they are joined or detached.
type ThreadManager struct {
	alloc *handle.Allocator
	reg   *registry.Registry[*thread]
	log   *zap.Logger

	mu       sync.Mutex
	consumed map[handle.Handle]consumption
}

func newThreadManager(alloc *handle.Allocator, log *zap.Logger) *ThreadManager {
	return &ThreadManager{
		alloc:    alloc,
		reg:      registry.New[*thread](errors.PhaseThread),
		log:      log,
		consumed: make(map[handle.Handle]consumption),
	}
}

// Spawn starts work on a dedicated OS thread and returns its handle
// immediately. The goroutine is pinned with runtime.LockOSThread for its
// whole lifetime, so every unit of work occupies a real preemptive OS
// thread in parallel with the caller.
//
// A panic inside work does not cross the thread boundary: it is recovered,
// the exit code is forced to 1 and the panic value is surfaced through
// Join.
func (m *ThreadManager) Spawn(work Work) (handle.Handle, error) {
	if work == nil {
		return handle.Invalid, errors.InvalidInput(errors.PhaseThread, "nil work function")
	}

	h := m.alloc.Next()
	t := &thread{done: make(chan struct{})}
	t.running.Store(true)

	if err := m.reg.Insert(h, t); err != nil {
		return handle.Invalid, err
	}

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		t.osID.Store(currentThreadID())

		defer func() {
			if r := recover(); r != nil {
				t.panicVal.Store(r)
				t.exitCode.Store(1)
				m.log.Error("work panicked",
					zap.Uint64("handle", uint64(h)),
					zap.Any("panic", r))
			}
			t.running.Store(false)
			close(t.done)
		}()

		t.exitCode.Store(work())
	}()

	return h, nil
}

// Join blocks until the thread's work returns, removes the handle and
// returns the recorded exit code. If the work panicked, the exit code is
// 1 and the error carries the panic value.
func (m *ThreadManager) Join(h handle.Handle) (int32, error) {
	t, err := m.consume(h, consumedJoin)
	if err != nil {
		return -1, err
	}

	// Block outside every lock; only the target thread closes done.
	<-t.done

	code := t.exitCode.Load()
	if p := t.panicVal.Load(); p != nil {
		return code, errors.New(errors.PhaseThread, errors.KindWorkFailure).
			Handle(uint64(h)).
			Detail("work panicked: %v", p).
			Build()
	}
	return code, nil
}

// Detach marks the thread to run to completion independently and removes
// the handle immediately. The caller gives up the ability to observe the
// thread's completion or exit code.
func (m *ThreadManager) Detach(h handle.Handle) error {
	_, err := m.consume(h, consumedDetach)
	return err
}

// Running reports whether the thread behind h has not yet finished its
// work. False with a nil error means the work returned but the handle
// has not been joined or detached yet.
func (m *ThreadManager) Running(h handle.Handle) (bool, error) {
	t, ok := m.reg.Get(h)
	if !ok {
		return false, m.consumedError(h, consumedJoin)
	}
	return t.running.Load(), nil
}

// CurrentID returns an OS-level identifier for the calling thread. This
// is a read-only introspection value, not a registry handle.
func (m *ThreadManager) CurrentID() uint64 {
	return currentThreadID()
}

// consume atomically removes h from the registry and records how it was
// used up, so repeated join/detach calls are distinguishable from handles
// that never existed.
func (m *ThreadManager) consume(h handle.Handle, how consumption) (*thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.reg.Remove(h)
	if !ok {
		return nil, m.consumedErrorLocked(h, how)
	}
	m.consumed[h] = how
	return t, nil
}

func (m *ThreadManager) consumedError(h handle.Handle, how consumption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consumedErrorLocked(h, how)
}

func (m *ThreadManager) consumedErrorLocked(h handle.Handle, how consumption) error {
	prev, seen := m.consumed[h]
	if !seen {
		return errors.NotFound(errors.PhaseThread, uint64(h))
	}
	if how == consumedJoin && prev == consumedDetach {
		return errors.NotJoinable(uint64(h))
	}
	return errors.AlreadyConsumed(uint64(h))
}
