package sysinfo

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

func fillCPUDetails(info *CPUInfo) {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "model name":
			if info.Model == "" {
				info.Model = val
			}
		case "cpu MHz":
			if info.SpeedMHz == 0 {
				if mhz, err := strconv.ParseFloat(val, 64); err == nil {
					info.SpeedMHz = mhz
				}
			}
		}
		if info.Model != "" && info.SpeedMHz != 0 {
			return
		}
	}
}

func kernelVersion() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}

type cpuSample struct {
	busy, total uint64
}

var usageMu sync.Mutex
var lastSample *cpuSample

func readCPUSample() (cpuSample, bool) {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return cpuSample{}, false
	}
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "cpu" {
		return cpuSample{}, false
	}

	var s cpuSample
	for i, f := range fields[1:] {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return cpuSample{}, false
		}
		s.total += v
		// field 3 is idle, field 4 is iowait
		if i != 3 && i != 4 {
			s.busy += v
		}
	}
	return s, true
}

// Usage returns system-wide CPU utilization as a 0..100 percentage,
// measured between this call and the previous one. The first call
// establishes the baseline and returns 0.
func Usage() float64 {
	usageMu.Lock()
	defer usageMu.Unlock()

	s, ok := readCPUSample()
	if !ok {
		return 0
	}
	if lastSample == nil {
		lastSample = &s
		return 0
	}
	dTotal := s.total - lastSample.total
	dBusy := s.busy - lastSample.busy
	lastSample = &s
	if dTotal == 0 {
		return 0
	}
	return 100 * float64(dBusy) / float64(dTotal)
}
