// Package clock provides monotonic and wall time readings plus a
// handle-addressed repeating timer registry. A Clock's Now() counts
// nanoseconds since the clock was created, so successive readings never
// run backwards even across wall-clock adjustments.
package clock
