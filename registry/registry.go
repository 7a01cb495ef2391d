package registry

import (
	"sync"

	"github.com/wippyai/native-host/errors"
	"github.com/wippyai/native-host/handle"
)

// Dropper is optionally implemented by resource values that need cleanup
// when the registry discards them during Close.
type Dropper interface {
	Drop()
}

// EventType identifies a resource lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event describes a resource lifecycle transition.
type Event struct {
	Handle handle.Handle
	Phase  errors.Phase
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Registry owns the native resources of one kind and maps handles to them.
// It is the single source of truth for whether a handle still exists:
// external code only ever holds the integer handle, never the resource.
//
// All operations are linearizable with respect to each other. With holds
// the registry's read lock for the duration of the callback, so a Remove
// racing with With either waits for the callback to finish or the With
// observes a clean not-found; a partially destroyed resource is never
// visible.
type Registry[T any] struct {
	phase     errors.Phase
	entries   map[handle.Handle]T
	mu        sync.RWMutex
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
}

// New creates an empty registry for resources of the given phase
// (the phase doubles as the kind label in errors and events).
func New[T any](phase errors.Phase) *Registry[T] {
	return &Registry[T]{
		phase:   phase,
		entries: make(map[handle.Handle]T),
	}
}

// Insert stores ownership of v under h. The handle must come from an
// allocator shared with every other registry user; a duplicate insert
// means handle uniqueness has been violated and the registry refuses it.
func (r *Registry[T]) Insert(h handle.Handle, v T) error {
	if !h.Valid() {
		return errors.InvalidInput(r.phase, "zero handle")
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.Closed(r.phase)
	}
	if _, exists := r.entries[h]; exists {
		r.mu.Unlock()
		return errors.New(r.phase, errors.KindInvalidInput).
			Handle(uint64(h)).
			Detail("duplicate handle, allocator invariant violated").
			Build()
	}
	r.entries[h] = v
	r.mu.Unlock()

	r.notify(Event{Handle: h, Phase: r.phase, Type: EventCreated})
	return nil
}

// With looks up h and invokes fn on the resource while holding the
// registry's protection, so the resource cannot be removed mid-use.
// This is the only sanctioned way to touch a live resource. fn must not
// block indefinitely; blocking waits belong outside the lock, on state
// the resource itself owns.
func (r *Registry[T]) With(h handle.Handle, fn func(T) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[h]
	if !ok {
		return errors.NotFound(r.phase, uint64(h))
	}
	return fn(v)
}

// Get returns the resource for h without holding the lock beyond the
// lookup. Safe only for resources that are themselves safe to use after
// the lock is released (internally synchronized, like all resources the
// managers store).
func (r *Registry[T]) Get(h handle.Handle) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[h]
	return v, ok
}

// Remove atomically detaches and returns ownership of the resource so
// the caller can run final teardown (joining a thread, closing a file)
// without holding the registry lock.
func (r *Registry[T]) Remove(h handle.Handle) (T, bool) {
	r.mu.Lock()
	v, ok := r.entries[h]
	if ok {
		delete(r.entries, h)
	}
	r.mu.Unlock()

	if ok {
		r.notify(Event{Handle: h, Phase: r.phase, Type: EventDropped})
	}
	return v, ok
}

// Len returns the number of live resources. A non-zero length at
// process shutdown indicates a leak.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Each calls fn for every live resource until fn returns false.
// The registry lock is held for the whole iteration.
func (r *Registry[T]) Each(fn func(handle.Handle, T) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for h, v := range r.entries {
		if !fn(h, v) {
			return
		}
	}
}

// Handles returns the live handles in unspecified order.
func (r *Registry[T]) Handles() []handle.Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hs := make([]handle.Handle, 0, len(r.entries))
	for h := range r.entries {
		hs = append(hs, h)
	}
	return hs
}

// Close drops every remaining resource, invoking Drop on those that
// implement Dropper, and rejects all further operations.
func (r *Registry[T]) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	remaining := r.entries
	r.entries = make(map[handle.Handle]T)
	r.mu.Unlock()

	for h, v := range remaining {
		if d, ok := any(v).(Dropper); ok {
			d.Drop()
		}
		r.notify(Event{Handle: h, Phase: r.phase, Type: EventDropped})
	}
	return nil
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry[T]) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry[T]) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Registry[T]) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnResourceEvent(e)
	}
}
