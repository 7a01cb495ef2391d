package handle

import "sync/atomic"

// Handle is an opaque reference to a native resource.
// Handle 0 is reserved and always invalid.
type Handle uint64

// Invalid is the reserved zero handle.
const Invalid Handle = 0

// Valid reports whether h could ever have been issued by an Allocator.
func (h Handle) Valid() bool {
	return h != Invalid
}

// Allocator issues strictly increasing handles. The zero value is ready
// to use and the first handle issued is 1. Handles are never reused
// within the lifetime of the process, so a removed handle can never
// alias a later resource.
type Allocator struct {
	last atomic.Uint64
}

// Next returns the next handle. Safe for concurrent use.
func (a *Allocator) Next() Handle {
	return Handle(a.last.Add(1))
}

// Issued returns how many handles have been handed out so far.
func (a *Allocator) Issued() uint64 {
	return a.last.Load()
}
