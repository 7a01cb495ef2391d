// Package goid extracts the current goroutine's id.
//
// Goroutine identity stands in for "calling thread" in the recursive
// mutex: Go deliberately hides goroutine ids, so the only portable way to
// get one is parsing the header line of runtime.Stack output. The cost is
// a few microseconds per call, paid only on the recursive-lock paths.
package goid

import (
	"bytes"
	"runtime"
	"strconv"
)

var prefix = []byte("goroutine ")

// Current returns the id of the calling goroutine.
func Current() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Header format: "goroutine 123 [running]:\n..."
	s := buf[:n]
	if !bytes.HasPrefix(s, prefix) {
		return 0
	}
	s = s[len(prefix):]
	end := bytes.IndexByte(s, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(s[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
