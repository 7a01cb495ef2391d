package concurrency

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/native-host/errors"
	"github.com/wippyai/native-host/handle"
	"github.com/wippyai/native-host/internal/goid"
	"github.com/wippyai/native-host/registry"
)

// mutex is a timed, optionally recursive exclusive lock. The slot channel
// holds at most one token; sending acquires, receiving releases. A select
// against a timer gives the timed acquisition the standard library's
// mutex cannot.
type mutex struct {
	slot      chan struct{}
	recursive bool
	owner     atomic.Uint64 // goroutine id of the holder, 0 when unlocked
	depth     uint32        // recursion depth, touched only by the holder
}

func (m *mutex) Drop() {}

// MutexManager creates and tracks mutexes by handle.
type MutexManager struct {
	alloc *handle.Allocator
	reg   *registry.Registry[*mutex]
	log   *zap.Logger
}

func newMutexManager(alloc *handle.Allocator, log *zap.Logger) *MutexManager {
	return &MutexManager{
		alloc: alloc,
		reg:   registry.New[*mutex](errors.PhaseMutex),
		log:   log,
	}
}

// Create makes a new unlocked mutex. The recursive mode is fixed for the
// mutex's lifetime: a recursive mutex may be re-locked by its owning
// caller and requires balanced unlocks.
func (m *MutexManager) Create(recursive bool) (handle.Handle, error) {
	h := m.alloc.Next()
	mx := &mutex{
		slot:      make(chan struct{}, 1),
		recursive: recursive,
	}
	if err := m.reg.Insert(h, mx); err != nil {
		return handle.Invalid, err
	}
	return h, nil
}

// Lock acquires the mutex. With timeout Blocking it waits indefinitely
// and returns true. With a non-negative timeout it returns false when the
// window expires without acquisition; that is a normal outcome, not an
// error. A timeout of zero tries once without blocking.
//
// Ownership is per calling goroutine: re-entry on a recursive mutex only
// succeeds from the goroutine that holds it.
func (m *MutexManager) Lock(h handle.Handle, timeout time.Duration) (bool, error) {
	mx, ok := m.reg.Get(h)
	if !ok {
		return false, errors.NotFound(errors.PhaseMutex, uint64(h))
	}

	me := goid.Current()
	if mx.recursive && mx.owner.Load() == me {
		// Re-entry; depth is only ever touched by the holder.
		mx.depth++
		return true, nil
	}

	// Block outside the registry lock: the mutex outlives the lookup
	// because handles are never reused and Destroy only detaches it.
	switch {
	case timeout < 0:
		mx.slot <- struct{}{}
	case timeout == 0:
		select {
		case mx.slot <- struct{}{}:
		default:
			return false, nil
		}
	default:
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case mx.slot <- struct{}{}:
		case <-timer.C:
			return false, nil
		}
	}

	mx.owner.Store(me)
	mx.depth = 1
	return true, nil
}

// Unlock releases one level of ownership. Unlocking a mutex the calling
// goroutine does not hold is a caller contract violation and is rejected
// with a not_owner error rather than silently tolerated.
func (m *MutexManager) Unlock(h handle.Handle) error {
	mx, ok := m.reg.Get(h)
	if !ok {
		return errors.NotFound(errors.PhaseMutex, uint64(h))
	}

	me := goid.Current()
	owner := mx.owner.Load()
	if owner == 0 {
		return errors.Validation(errors.PhaseMutex, "mutex %d is not locked", h)
	}
	if owner != me {
		return errors.NotOwner(uint64(h), owner, me)
	}

	mx.depth--
	if mx.depth > 0 {
		return nil
	}

	mx.owner.Store(0)
	<-mx.slot
	return nil
}

// Destroy removes the mutex. The native source never freed mutexes; the
// explicit destroy is a deliberate correction of that leak. Destroying a
// held mutex abandons it without waking waiters blocked on Lock.
func (m *MutexManager) Destroy(h handle.Handle) error {
	if _, ok := m.reg.Remove(h); !ok {
		return errors.NotFound(errors.PhaseMutex, uint64(h))
	}
	return nil
}

// Recursive reports the mode fixed at creation.
func (m *MutexManager) Recursive(h handle.Handle) (bool, error) {
	mx, ok := m.reg.Get(h)
	if !ok {
		return false, errors.NotFound(errors.PhaseMutex, uint64(h))
	}
	return mx.recursive, nil
}
