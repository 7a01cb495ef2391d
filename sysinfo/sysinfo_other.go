//go:build !linux

package sysinfo

func fillCPUDetails(info *CPUInfo) {}

func kernelVersion() string { return "" }

// Usage always reports 0 on platforms without /proc/stat.
func Usage() float64 { return 0 }
