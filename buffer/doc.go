// Package buffer provides raw byte buffers behind opaque handles.
//
// The pool reuses the registry pattern of the concurrency subsystem for
// a concern with no concurrency hazard of its own: buffers are owned by
// the pool, addressed by integer handle, and freed explicitly. All byte
// operations are bounds-checked against the buffer length.
package buffer
