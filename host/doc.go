// Package host projects the native subsystems into wazero as guest
// import modules. Four namespaces are registered: native:host/sync for
// mutexes and semaphores, native:host/clock for time, native:host/memory
// for host-side buffers and native:host/str for string kernels. Handles
// cross the boundary as i64 values; structured errors collapse to the
// small errno codes defined in this package.
package host
