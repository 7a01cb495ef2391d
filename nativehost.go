package nativehost

import (
	"go.uber.org/zap"

	"github.com/wippyai/native-host/buffer"
	"github.com/wippyai/native-host/clock"
	"github.com/wippyai/native-host/concurrency"
	"github.com/wippyai/native-host/fileio"
	"github.com/wippyai/native-host/handle"
)

// System bundles one instance of every handle-bearing subsystem behind
// a single allocator, so no two resources in a System ever share a
// handle regardless of their kind.
type System struct {
	Sync   *concurrency.Subsystem
	Memory *buffer.Pool
	Files  *fileio.Table
	Timers *clock.Timers
	Clock  *clock.Clock

	alloc *handle.Allocator
	log   *zap.Logger
}

// Option configures a System.
type Option func(*System)

// WithLogger routes subsystem diagnostics to the given logger. The
// default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *System) { s.log = log }
}

// New assembles a System with empty tables.
func New(opts ...Option) *System {
	s := &System{
		alloc: &handle.Allocator{},
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Sync = concurrency.New(
		concurrency.WithAllocator(s.alloc),
		concurrency.WithLogger(s.log),
	)
	s.Memory = buffer.NewPool(s.alloc, s.log.Named("buffer"))
	s.Files = fileio.NewTable(s.alloc, s.log.Named("file"))
	s.Timers = clock.NewTimers(s.alloc, s.log.Named("timer"))
	s.Clock = clock.New()
	return s
}

// Issued returns the number of handles handed out so far, across all
// subsystems.
func (s *System) Issued() uint64 {
	return s.alloc.Issued()
}

// Close shuts the subsystems down, releasing every outstanding
// resource. The first failure is reported; later subsystems still get
// closed.
func (s *System) Close() error {
	var first error
	for _, c := range []func() error{
		s.Timers.Close,
		s.Files.Shutdown,
		s.Memory.Close,
		s.Sync.Close,
	} {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
