// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"bufio"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Probe collects the static inventory of the running machine.
//
// Probe never returns an error: missing or unreadable files produce
// zero-valued fields rather than failures.
func Probe() Info {
	info := probeFrom("/proc", "/sys")
	info.KernelVersion = readKernelVersion()
	return info
}

// CoreCounters returns the number of general-purpose counter registers
// the core PMU reports, or 0 if it does not report one.
func CoreCounters() int {
	return coreCountersFrom("/sys")
}

func coreCountersFrom(sysRoot string) int {
	info := Info{PMUs: readPMUs(filepath.Join(sysRoot, "bus/event_source/devices"))}
	core, ok := info.CorePMU()
	if !ok {
		return 0
	}
	return core.Counters
}

// probeFrom is the testable implementation of Probe. It accepts root
// paths for /proc and /sys so tests can point at synthetic filesystems.
func probeFrom(procRoot, sysRoot string) Info {
	cpuBase := filepath.Join(sysRoot, "devices/system/cpu")

	info := Info{
		CPUModel:       readCPUModel(filepath.Join(procRoot, "cpuinfo")),
		ThreadsPerCore: probeThreadsPerCore(cpuBase),
		PMUs:           readPMUs(filepath.Join(sysRoot, "bus/event_source/devices")),
	}
	if online, err := CountCPUList(ReadSysfsString(filepath.Join(cpuBase, "online"))); err == nil {
		info.OnlineCPUs = online
	}

	paranoid := ReadSysfsString(filepath.Join(procRoot, "sys/kernel/perf_event_paranoid"))
	if level, err := strconv.Atoi(paranoid); err == nil {
		info.PerfEventsSupported = true
		info.PerfEventParanoid = level
	}
	return info
}

// readKernelVersion returns the kernel release string from uname(2).
func readKernelVersion() string {
	var utsname unix.Utsname
	if err := unix.Uname(&utsname); err != nil {
		return ""
	}
	return unix.ByteSliceToString(utsname.Release[:])
}

// readCPUModel extracts the first "model name" line from /proc/cpuinfo.
// arm64 kernels have no model name; the "CPU part" line is used there.
func readCPUModel(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	var part string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "model name":
			return strings.TrimSpace(value)
		case "CPU part":
			if part == "" {
				part = "CPU part " + strings.TrimSpace(value)
			}
		}
	}
	return part
}

// probeThreadsPerCore determines threads per core from the first CPU's
// thread_siblings_list. The format is "0,96" or "0-1"; a value of "0"
// alone means 1.
func probeThreadsPerCore(cpuBase string) int {
	siblings := ReadSysfsString(filepath.Join(cpuBase, "cpu0/topology/thread_siblings_list"))
	count, err := CountCPUList(siblings)
	if err != nil || count < 1 {
		return 1
	}
	return count
}

// readPMUs lists the event sources under devicesDir. Entries without
// a readable type are skipped.
func readPMUs(devicesDir string) []PMU {
	entries, err := os.ReadDir(devicesDir)
	if err != nil {
		return nil
	}

	var pmus []PMU
	for _, entry := range entries {
		pmuDir := filepath.Join(devicesDir, entry.Name())
		typeValue := ReadSysfsString(filepath.Join(pmuDir, "type"))
		pmuType, err := strconv.Atoi(typeValue)
		if err != nil {
			continue
		}
		pmu := PMU{
			Name:  entry.Name(),
			Type:  pmuType,
			Model: ReadSysfsString(filepath.Join(pmuDir, "caps/pmu_name")),
		}
		if counters := ReadSysfsInt(filepath.Join(pmuDir, "caps/num_counters")); counters > 0 {
			pmu.Counters = counters
		}
		if events, err := os.ReadDir(filepath.Join(pmuDir, "events")); err == nil {
			for _, event := range events {
				// Scale and unit files describe an event, they are not one.
				name := event.Name()
				if !strings.HasSuffix(name, ".scale") && !strings.HasSuffix(name, ".unit") {
					pmu.Events++
				}
			}
		}
		pmus = append(pmus, pmu)
	}
	slices.SortFunc(pmus, func(a, b PMU) int { return strings.Compare(a.Name, b.Name) })
	return pmus
}
