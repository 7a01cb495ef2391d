//go:build !linux && !windows

package concurrency

import "github.com/wippyai/native-host/internal/goid"

// currentThreadID falls back to the goroutine id where the platform has
// no cheap thread-id syscall. Spawned work is pinned to its OS thread,
// so the value is still stable and unique per worker.
func currentThreadID() uint64 {
	return goid.Current()
}
