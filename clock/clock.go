package clock

import (
	"time"
)

// Clock measures time relative to its own creation, mirroring how a
// monotonic clock host hands out a zero-based timeline to clients.
type Clock struct {
	start time.Time
}

// New creates a clock whose monotonic origin is now.
func New() *Clock {
	return &Clock{start: time.Now()}
}

// Now returns nanoseconds elapsed since the clock was created. The
// value never goes backwards; it rides Go's monotonic reading.
func (c *Clock) Now() int64 {
	return int64(time.Since(c.start))
}

// Elapsed returns the duration since the clock was created.
func (c *Clock) Elapsed() time.Duration {
	return time.Since(c.start)
}

// Since returns the duration between a mark from an earlier Now call
// and the current reading.
func (c *Clock) Since(mark int64) time.Duration {
	return time.Duration(c.Now() - mark)
}

// Wall returns the current wall-clock time in unix milliseconds.
func Wall() int64 {
	return time.Now().UnixMilli()
}

// WallMicros returns the current wall-clock time in unix microseconds.
func WallMicros() int64 {
	return time.Now().UnixMicro()
}

// Sleep blocks for the given number of milliseconds.
func Sleep(ms int64) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// SleepMicros blocks for the given number of microseconds.
func SleepMicros(us int64) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// Timestamp formats the current wall time. An empty layout yields
// RFC3339 with millisecond precision.
func Timestamp(layout string) string {
	if layout == "" {
		layout = "2006-01-02T15:04:05.000Z07:00"
	}
	return time.Now().Format(layout)
}

// ZoneInfo describes the local time zone.
type ZoneInfo struct {
	Name       string
	OffsetSecs int
	IsDST      bool
}

// Zone reports the local time zone as of now.
func Zone() ZoneInfo {
	now := time.Now()
	name, offset := now.Zone()
	return ZoneInfo{
		Name:       name,
		OffsetSecs: offset,
		IsDST:      now.IsDST(),
	}
}
