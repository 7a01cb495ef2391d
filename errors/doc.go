// Package errors provides structured error types for the native host library.
//
// Every error carries a Phase (which subsystem failed) and a Kind (what went
// wrong), plus the offending handle where one exists. Errors with the same
// Phase and Kind match under errors.Is, so callers can test for a category
// without string inspection:
//
//	_, err := sub.Threads().Join(h)
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseThread, Kind: errors.KindAlreadyConsumed}) {
//	    // handle double join
//	}
//
// Timeouts are deliberately absent from the taxonomy: a timed lock or wait
// that expires returns a false result, not an error.
package errors
