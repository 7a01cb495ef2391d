package concurrency

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/native-host/errors"
	"github.com/wippyai/native-host/handle"
	"github.com/wippyai/native-host/registry"
)

// semaphore is a bounded counting semaphore. Tokens live in a buffered
// channel with capacity max; Wait receives one, Signal sends. The count
// field mirrors the token count for diagnostics. The mirror is advisory:
// it is updated after the channel operation, so it can lag the true
// count under concurrency, but the bound check in Signal is conservative
// and the invariant 0 <= count <= max always holds for observers.
type semaphore struct {
	tokens chan struct{}
	max    uint32
	count  atomic.Int64
	sigMu  sync.Mutex // serializes the check-then-release in Signal
}

func (s *semaphore) Drop() {}

// SemaphoreManager creates and tracks counting semaphores by handle.
type SemaphoreManager struct {
	alloc *handle.Allocator
	reg   *registry.Registry[*semaphore]
	log   *zap.Logger
}

func newSemaphoreManager(alloc *handle.Allocator, log *zap.Logger) *SemaphoreManager {
	return &SemaphoreManager{
		alloc: alloc,
		reg:   registry.New[*semaphore](errors.PhaseSemaphore),
		log:   log,
	}
}

// Create makes a semaphore with the given initial and maximum counts.
// max must be positive and initial must not exceed it.
func (m *SemaphoreManager) Create(initial, max uint32) (handle.Handle, error) {
	if max == 0 {
		return handle.Invalid, errors.Validation(errors.PhaseSemaphore, "max count must be positive")
	}
	if initial > max {
		return handle.Invalid, errors.Validation(errors.PhaseSemaphore,
			"initial count %d exceeds max count %d", initial, max)
	}

	h := m.alloc.Next()
	sem := &semaphore{
		tokens: make(chan struct{}, max),
		max:    max,
	}
	for i := uint32(0); i < initial; i++ {
		sem.tokens <- struct{}{}
	}
	sem.count.Store(int64(initial))

	if err := m.reg.Insert(h, sem); err != nil {
		return handle.Invalid, err
	}
	return h, nil
}

// Wait decrements the semaphore. Timeout semantics match Lock: Blocking
// waits indefinitely, zero tries once, positive bounds the wait; an
// expired window returns false without error.
func (m *SemaphoreManager) Wait(h handle.Handle, timeout time.Duration) (bool, error) {
	sem, ok := m.reg.Get(h)
	if !ok {
		return false, errors.NotFound(errors.PhaseSemaphore, uint64(h))
	}

	switch {
	case timeout < 0:
		<-sem.tokens
	case timeout == 0:
		select {
		case <-sem.tokens:
		default:
			return false, nil
		}
	default:
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-sem.tokens:
		case <-timer.C:
			return false, nil
		}
	}

	sem.count.Add(-1)
	return true, nil
}

// Signal releases count permits and returns the mirrored count value
// immediately prior to the release. The release is all-or-nothing: if it
// would push the count past max, nothing is released and an overflow
// error is returned.
func (m *SemaphoreManager) Signal(h handle.Handle, count uint32) (uint32, error) {
	if count == 0 {
		return 0, errors.Validation(errors.PhaseSemaphore, "release count must be positive")
	}

	sem, ok := m.reg.Get(h)
	if !ok {
		return 0, errors.NotFound(errors.PhaseSemaphore, uint64(h))
	}

	sem.sigMu.Lock()
	defer sem.sigMu.Unlock()

	prev := sem.count.Load()
	if prev+int64(count) > int64(sem.max) {
		return 0, errors.Overflow(uint64(h), uint32(prev), count, sem.max)
	}

	// The bound check above is against the mirror, which never reads
	// below the true token count while sigMu is held: waiters only
	// remove tokens, so these sends cannot block.
	for i := uint32(0); i < count; i++ {
		sem.tokens <- struct{}{}
	}
	sem.count.Add(int64(count))

	return uint32(prev), nil
}

// Count returns the advisory current count. It mirrors the token count
// for diagnostics and may briefly lag concurrent waits and signals; do
// not use it for correctness-critical decisions.
func (m *SemaphoreManager) Count(h handle.Handle) (uint32, error) {
	sem, ok := m.reg.Get(h)
	if !ok {
		return 0, errors.NotFound(errors.PhaseSemaphore, uint64(h))
	}
	c := sem.count.Load()
	if c < 0 {
		c = 0
	}
	return uint32(c), nil
}

// Max returns the bound fixed at creation.
func (m *SemaphoreManager) Max(h handle.Handle) (uint32, error) {
	sem, ok := m.reg.Get(h)
	if !ok {
		return 0, errors.NotFound(errors.PhaseSemaphore, uint64(h))
	}
	return sem.max, nil
}

// Destroy removes the semaphore. Waiters blocked on Wait are abandoned.
func (m *SemaphoreManager) Destroy(h handle.Handle) error {
	if _, ok := m.reg.Remove(h); !ok {
		return errors.NotFound(errors.PhaseSemaphore, uint64(h))
	}
	return nil
}
