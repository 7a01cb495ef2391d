package clock

import (
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/native-host/errors"
	"github.com/wippyai/native-host/handle"
	"github.com/wippyai/native-host/registry"
)

type timer struct {
	ticker *time.Ticker
	stop   chan struct{}
	fires  chan struct{} // closed when the goroutine has drained out
}

// Drop stops the ticker if the registry discards the timer at shutdown.
func (t *timer) Drop() {
	t.ticker.Stop()
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
	<-t.fires
}

// Timers runs callbacks on fixed intervals, each addressed by a handle.
type Timers struct {
	alloc *handle.Allocator
	reg   *registry.Registry[*timer]
	log   *zap.Logger
}

// NewTimers creates an empty timer set sharing the given allocator.
func NewTimers(alloc *handle.Allocator, log *zap.Logger) *Timers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Timers{
		alloc: alloc,
		reg:   registry.New[*timer](errors.PhaseClock),
		log:   log,
	}
}

// Start schedules fn every interval until Stop. A panic inside fn is
// logged and stops that timer's goroutine; it never takes the process
// down.
func (ts *Timers) Start(interval time.Duration, fn func()) (handle.Handle, error) {
	if interval <= 0 {
		return handle.Invalid, errors.Validation(errors.PhaseClock, "timer interval %v must be positive", interval)
	}
	if fn == nil {
		return handle.Invalid, errors.Validation(errors.PhaseClock, "timer callback is nil")
	}

	t := &timer{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
		fires:  make(chan struct{}),
	}
	h := ts.alloc.Next()
	if err := ts.reg.Insert(h, t); err != nil {
		t.ticker.Stop()
		close(t.fires)
		return handle.Invalid, err
	}

	go ts.run(h, t, fn)
	return h, nil
}

func (ts *Timers) run(h handle.Handle, t *timer, fn func()) {
	defer close(t.fires)
	defer func() {
		if r := recover(); r != nil {
			ts.log.Error("timer callback panicked",
				zap.Uint64("handle", uint64(h)),
				zap.Any("panic", r))
		}
	}()
	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			fn()
		}
	}
}

// Stop cancels a timer and waits for any in-flight callback to finish.
func (ts *Timers) Stop(h handle.Handle) error {
	t, ok := ts.reg.Remove(h)
	if !ok {
		return errors.NotFound(errors.PhaseClock, uint64(h))
	}
	t.ticker.Stop()
	close(t.stop)
	<-t.fires
	return nil
}

// Len returns the number of live timers.
func (ts *Timers) Len() int { return ts.reg.Len() }

// Close stops every remaining timer.
func (ts *Timers) Close() error {
	return ts.reg.Close()
}
