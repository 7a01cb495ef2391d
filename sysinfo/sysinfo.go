package sysinfo

import (
	"os"
	"runtime"
)

// CPUInfo describes the processor the host is running on. Model and
// SpeedMHz are best-effort and stay zero-valued where the platform
// offers no cheap way to read them.
type CPUInfo struct {
	Arch     string
	Cores    int
	Model    string
	SpeedMHz float64
}

// SystemInfo is a snapshot of the process environment.
type SystemInfo struct {
	OS        string
	Arch      string
	Kernel    string
	Hostname  string
	PageSize  int
	PID       int
	GoVersion string
}

// CoreCount returns the number of logical CPUs usable by the process.
func CoreCount() int {
	return runtime.NumCPU()
}

// CPU returns processor details, filling in whatever the platform
// exposes.
func CPU() CPUInfo {
	info := CPUInfo{
		Arch:  runtime.GOARCH,
		Cores: runtime.NumCPU(),
	}
	fillCPUDetails(&info)
	return info
}

// System returns a snapshot of the process environment.
func System() SystemInfo {
	host, _ := os.Hostname()
	return SystemInfo{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Kernel:    kernelVersion(),
		Hostname:  host,
		PageSize:  os.Getpagesize(),
		PID:       os.Getpid(),
		GoVersion: runtime.Version(),
	}
}

// ProcessID returns the current process id.
func ProcessID() int {
	return os.Getpid()
}

// Getenv returns the value of an environment variable and whether it
// was set at all.
func Getenv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Setenv sets an environment variable for this process.
func Setenv(key, value string) error {
	return os.Setenv(key, value)
}
