// Package sysinfo reports processor and process facts: core counts,
// CPU model and clock where the platform exposes them, system-wide
// utilization sampled from /proc/stat on Linux, and environment
// variable access. Everything degrades to zero values rather than
// failing on platforms without the underlying source.
package sysinfo
