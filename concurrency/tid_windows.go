//go:build windows

package concurrency

import "golang.org/x/sys/windows"

// currentThreadID returns the Win32 thread id of the calling thread.
func currentThreadID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}
