// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"fmt"
	"strconv"
	"strings"
)

// Info is the static inventory relevant to counting hardware events.
type Info struct {
	KernelVersion string `json:"kernel_version"`
	CPUModel      string `json:"cpu_model"`

	// OnlineCPUs counts the CPUs in /sys/devices/system/cpu/online.
	OnlineCPUs int `json:"online_cpus"`

	// ThreadsPerCore is 2 or more with SMT. Hardware threads on one
	// core share its counter registers.
	ThreadsPerCore int `json:"threads_per_core"`

	// PerfEventsSupported is false when the kernel has no
	// perf_event_paranoid sysctl, i.e. perf events are compiled out.
	PerfEventsSupported bool `json:"perf_events_supported"`

	// PerfEventParanoid is kernel.perf_event_paranoid. Values of 2 or
	// more forbid counting kernel-mode events for unprivileged users.
	PerfEventParanoid int `json:"perf_event_paranoid"`

	// PMUs are the event sources under /sys/bus/event_source/devices,
	// sorted by name.
	PMUs []PMU `json:"pmus"`
}

// PMU is one kernel event source (a performance monitoring unit or a
// software source such as "software" or "tracepoint").
type PMU struct {
	// Name is the sysfs directory name ("cpu", "cpu_core", "armv8_pmuv3_0").
	Name string `json:"name"`

	// Type is the value to put in perf_event_attr.type.
	Type int `json:"type"`

	// Model is caps/pmu_name when the driver exports it ("skylake",
	// "zen4"). Empty otherwise.
	Model string `json:"model,omitempty"`

	// Events counts the named events the driver exports.
	Events int `json:"events"`

	// Counters is caps/num_counters when the driver exports it: the
	// number of general-purpose counter registers. Zero otherwise.
	Counters int `json:"counters,omitempty"`
}

// CorePMU returns the PMU that counts CPU core events: "cpu" on most
// x86 machines, "cpu_core" on hybrid Intel parts, an "armv" PMU on
// arm64. The second result is false if none was found.
func (info Info) CorePMU() (PMU, bool) {
	for _, preferred := range []string{"cpu", "cpu_core"} {
		for _, pmu := range info.PMUs {
			if pmu.Name == preferred {
				return pmu, true
			}
		}
	}
	for _, pmu := range info.PMUs {
		if strings.HasPrefix(pmu.Name, "armv") {
			return pmu, true
		}
	}
	return PMU{}, false
}

// CountCPUList counts the CPUs in a kernel cpu list such as
// "0-3,8,10-11".
func CountCPUList(list string) (int, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return 0, nil
	}
	count := 0
	for _, part := range strings.Split(list, ",") {
		low, high, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(low)
		if err != nil {
			return 0, fmt.Errorf("parsing cpu list %q: %w", list, err)
		}
		last := first
		if isRange {
			last, err = strconv.Atoi(high)
			if err != nil {
				return 0, fmt.Errorf("parsing cpu list %q: %w", list, err)
			}
		}
		if last < first {
			return 0, fmt.Errorf("parsing cpu list %q: range %s is reversed", list, part)
		}
		count += last - first + 1
	}
	return count, nil
}
