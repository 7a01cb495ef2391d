package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which subsystem produced the error
type Phase string

const (
	PhaseRegistry  Phase = "registry"  // handle table operations
	PhaseThread    Phase = "thread"    // thread lifecycle
	PhaseMutex     Phase = "mutex"     // mutex operations
	PhaseSemaphore Phase = "semaphore" // semaphore operations
	PhaseBuffer    Phase = "buffer"    // raw memory buffers
	PhaseFile      Phase = "file"      // file descriptor operations
	PhaseClock     Phase = "clock"     // timers and timing
	PhaseMath      Phase = "math"      // numeric kernels
	PhaseString    Phase = "string"    // string kernels
	PhaseHost      Phase = "host"      // host function registration
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound        Kind = "not_found"        // unknown or already-removed handle
	KindAlreadyConsumed Kind = "already_consumed" // second join/detach on the same thread
	KindNotJoinable     Kind = "not_joinable"     // join after detach
	KindValidation      Kind = "validation"       // bad creation or call parameters
	KindOverflow        Kind = "overflow"         // semaphore signal past max count
	KindOutOfBounds     Kind = "out_of_bounds"    // buffer range violation
	KindThreadCreation  Kind = "thread_creation"  // OS refused to start a thread
	KindNotOwner        Kind = "not_owner"        // unlock by a thread that does not hold the lock
	KindWorkFailure     Kind = "work_failure"     // panic recovered at the thread boundary
	KindInvalidInput    Kind = "invalid_input"
	KindClosed          Kind = "closed" // subsystem already shut down
	KindIO              Kind = "io"     // underlying filesystem failure
	KindRegistration    Kind = "registration"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Handle uint64
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Handle != 0 {
		fmt.Fprintf(&b, " handle=%d", e.Handle)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Two errors match when their Phase and Kind agree; a target with an
// empty Phase matches any phase, so a kind can be compared across
// subsystems.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase != "" && e.Phase != t.Phase {
			return false
		}
		return e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is a structured error of the given kind.
func IsKind(err error, kind Kind) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Handle sets the offending handle
func (b *Builder) Handle(h uint64) *Builder {
	b.err.Handle = h
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates a not-found error for an unknown or removed handle
func NotFound(phase Phase, handle uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Handle: handle,
		Detail: "unknown or already-removed handle",
	}
}

// AlreadyConsumed creates an error for a repeated join/detach
func AlreadyConsumed(handle uint64) *Error {
	return &Error{
		Phase:  PhaseThread,
		Kind:   KindAlreadyConsumed,
		Handle: handle,
		Detail: "join or detach already called",
	}
}

// NotJoinable creates an error for joining a detached thread
func NotJoinable(handle uint64) *Error {
	return &Error{
		Phase:  PhaseThread,
		Kind:   KindNotJoinable,
		Handle: handle,
		Detail: "thread was detached",
	}
}

// Validation creates a parameter validation error
func Validation(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindValidation,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Overflow creates a semaphore overflow error
func Overflow(handle uint64, current, count, max uint32) *Error {
	return &Error{
		Phase:  PhaseSemaphore,
		Kind:   KindOverflow,
		Handle: handle,
		Detail: fmt.Sprintf("signal(%d) would raise count %d past max %d", count, current, max),
		Value:  count,
	}
}

// OutOfBounds creates a buffer range error
func OutOfBounds(phase Phase, handle uint64, offset, length, size int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Handle: handle,
		Detail: fmt.Sprintf("range [%d, %d) exceeds size %d", offset, offset+length, size),
	}
}

// ThreadCreation wraps an OS thread start failure. Goroutine creation
// never reports one, so nothing in this module produces it today; it
// is part of the error surface for backends where spawning can fail.
func ThreadCreation(cause error) *Error {
	return &Error{
		Phase:  PhaseThread,
		Kind:   KindThreadCreation,
		Detail: "failed to start thread",
		Cause:  cause,
	}
}

// NotOwner creates an ownership violation error for unlock
func NotOwner(handle uint64, owner, caller uint64) *Error {
	return &Error{
		Phase:  PhaseMutex,
		Kind:   KindNotOwner,
		Handle: handle,
		Detail: fmt.Sprintf("held by thread %d, unlock attempted by %d", owner, caller),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Closed creates an error for operations after shutdown
func Closed(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: "subsystem closed",
	}
}

// IO wraps a filesystem failure
func IO(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseFile,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
	}
}

// Registration creates a host function registration error
func Registration(namespace, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s#%s", namespace, name),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
