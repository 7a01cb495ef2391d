//go:build !linux

package clock

import (
	"time"
)

var processStart = time.Now()

// ProcessCPUTime is a coarse fallback for platforms without getrusage:
// it reports wall time since process start, an upper bound on CPU time
// for a single-threaded workload. Linux builds use the real accounting.
func ProcessCPUTime() (time.Duration, error) {
	return time.Since(processStart), nil
}
