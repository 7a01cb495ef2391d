package concurrency

import (
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/native-host/errors"
	"github.com/wippyai/native-host/handle"
	"github.com/wippyai/native-host/registry"
)

// Blocking is passed as the timeout to Lock and Wait to block without
// limit. A timeout of zero means "try once, do not block"; a positive
// timeout bounds the wait.
const Blocking time.Duration = -1

// Subsystem owns the concurrency primitives exposed across the embedding
// boundary: threads, mutexes and counting semaphores, each held in its own
// registry and addressed only by opaque integer handles.
//
// The subsystem is an explicit dependency, not ambient state: construct
// one per process (or per test) and pass it where it is needed.
type Subsystem struct {
	alloc      *handle.Allocator
	threads    *ThreadManager
	mutexes    *MutexManager
	semaphores *SemaphoreManager
	log        *zap.Logger
}

// Option configures a Subsystem.
type Option func(*Subsystem)

// WithLogger sets the subsystem's logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Subsystem) {
		s.log = l
	}
}

// WithAllocator makes the subsystem issue handles from a shared
// allocator, so its handles never collide with those of other tables
// drawing from the same source.
func WithAllocator(a *handle.Allocator) Option {
	return func(s *Subsystem) {
		s.alloc = a
	}
}

// New creates an empty subsystem with no outstanding resources.
func New(opts ...Option) *Subsystem {
	s := &Subsystem{
		alloc: &handle.Allocator{},
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.threads = newThreadManager(s.alloc, s.log.Named("thread"))
	s.mutexes = newMutexManager(s.alloc, s.log.Named("mutex"))
	s.semaphores = newSemaphoreManager(s.alloc, s.log.Named("semaphore"))

	obs := &logObserver{log: s.log}
	s.threads.reg.Subscribe(obs)
	s.mutexes.reg.Subscribe(obs)
	s.semaphores.reg.Subscribe(obs)

	return s
}

// Threads returns the thread manager.
func (s *Subsystem) Threads() *ThreadManager { return s.threads }

// Mutexes returns the mutex manager.
func (s *Subsystem) Mutexes() *MutexManager { return s.mutexes }

// Semaphores returns the semaphore manager.
func (s *Subsystem) Semaphores() *SemaphoreManager { return s.semaphores }

// Leak describes an outstanding resource at shutdown.
type Leak struct {
	Handle handle.Handle
	Phase  errors.Phase
}

// Leaks reports every resource still registered. The registry is expected
// to be empty at clean process shutdown; anything returned here is a
// caller-side leak worth surfacing in diagnostics.
func (s *Subsystem) Leaks() []Leak {
	var leaks []Leak
	for _, h := range s.threads.reg.Handles() {
		leaks = append(leaks, Leak{Handle: h, Phase: errors.PhaseThread})
	}
	for _, h := range s.mutexes.reg.Handles() {
		leaks = append(leaks, Leak{Handle: h, Phase: errors.PhaseMutex})
	}
	for _, h := range s.semaphores.reg.Handles() {
		leaks = append(leaks, Leak{Handle: h, Phase: errors.PhaseSemaphore})
	}
	return leaks
}

// Stats is a point-in-time census of live resources.
type Stats struct {
	Threads    int
	Mutexes    int
	Semaphores int
	Issued     uint64
}

// Stats returns the current resource counts.
func (s *Subsystem) Stats() Stats {
	return Stats{
		Threads:    s.threads.reg.Len(),
		Mutexes:    s.mutexes.reg.Len(),
		Semaphores: s.semaphores.reg.Len(),
		Issued:     s.alloc.Issued(),
	}
}

// Close drops every remaining resource and rejects further operations.
// Threads still running are abandoned, not interrupted: the subsystem
// makes no attempt to stop or recover a live worker.
func (s *Subsystem) Close() error {
	if leaks := s.Leaks(); len(leaks) > 0 {
		s.log.Warn("closing with outstanding resources",
			zap.Int("count", len(leaks)))
	}
	s.threads.reg.Close()
	s.mutexes.reg.Close()
	s.semaphores.reg.Close()
	return nil
}

// logObserver logs registry lifecycle events through the subsystem logger.
type logObserver struct {
	log *zap.Logger
}

func (o *logObserver) OnResourceEvent(e registry.Event) {
	switch e.Type {
	case registry.EventCreated:
		o.log.Debug("resource created",
			zap.String("kind", string(e.Phase)),
			zap.Uint64("handle", uint64(e.Handle)))
	case registry.EventDropped:
		o.log.Debug("resource dropped",
			zap.String("kind", string(e.Phase)),
			zap.Uint64("handle", uint64(e.Handle)))
	}
}
