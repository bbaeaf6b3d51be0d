// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package perfevent

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/hwcount/lib/counter"
)

// configBits is the width of the config field inside a code. Generic
// and cache configs and the raw encodings of common x86 and arm64
// events all fit.
const configBits = 24

func encode(eventType uint32, config uint64) counter.Code {
	return counter.Code(int32(eventType<<configBits | uint32(config)))
}

func decode(code counter.Code) (eventType uint32, config uint64) {
	return uint32(code) >> configBits, uint64(uint32(code) & (1<<configBits - 1))
}

type eventDef struct {
	name        string
	eventType   uint32
	config      uint64
	description string
	aliases     []string
}

var genericEvents = []eventDef{
	{"cpu-cycles", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CPU_CYCLES, "core clock cycles while not halted", []string{"cycles", "PAPI_TOT_CYC", "CPU_CLK_UNHALTED"}},
	{"instructions", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_INSTRUCTIONS, "retired instructions", []string{"PAPI_TOT_INS", "INSTRUCTIONS_RETIRED"}},
	{"cache-references", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_REFERENCES, "last level cache accesses", nil},
	{"cache-misses", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_CACHE_MISSES, "last level cache misses", []string{"PAPI_L3_TCM"}},
	{"branches", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_BRANCH_INSTRUCTIONS, "retired branch instructions", []string{"branch-instructions", "PAPI_BR_INS"}},
	{"branch-misses", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_BRANCH_MISSES, "mispredicted branches", []string{"PAPI_BR_MSP"}},
	{"bus-cycles", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_BUS_CYCLES, "bus cycles", nil},
	{"stalled-cycles-frontend", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_STALLED_CYCLES_FRONTEND, "cycles stalled in the frontend", []string{"PAPI_STL_ICY"}},
	{"stalled-cycles-backend", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_STALLED_CYCLES_BACKEND, "cycles stalled in the backend", []string{"PAPI_RES_STL"}},
	{"ref-cycles", unix.PERF_TYPE_HARDWARE, unix.PERF_COUNT_HW_REF_CPU_CYCLES, "reference cycles, unaffected by frequency scaling", []string{"PAPI_REF_CYC"}},

	{"cpu-clock", unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_CPU_CLOCK, "CPU clock in nanoseconds", nil},
	{"task-clock", unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_TASK_CLOCK, "thread running time in nanoseconds", nil},
	{"page-faults", unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_PAGE_FAULTS, "page faults", []string{"faults"}},
	{"context-switches", unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_CONTEXT_SWITCHES, "context switches", []string{"cs"}},
	{"cpu-migrations", unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_CPU_MIGRATIONS, "migrations to another CPU", []string{"migrations"}},
	{"minor-faults", unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_PAGE_FAULTS_MIN, "page faults served without I/O", nil},
	{"major-faults", unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_PAGE_FAULTS_MAJ, "page faults that required I/O", nil},
	{"alignment-faults", unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_ALIGNMENT_FAULTS, "unaligned access fixups", nil},
	{"emulation-faults", unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_EMULATION_FAULTS, "emulated instructions", nil},
}

type cacheDef struct {
	name  string
	cache uint64
	// ops lists the operations perf(1) exposes for this cache.
	ops []uint64
}

var (
	cacheDefs = []cacheDef{
		{"L1-dcache", unix.PERF_COUNT_HW_CACHE_L1D, []uint64{unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_OP_WRITE, unix.PERF_COUNT_HW_CACHE_OP_PREFETCH}},
		{"L1-icache", unix.PERF_COUNT_HW_CACHE_L1I, []uint64{unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_OP_PREFETCH}},
		{"LLC", unix.PERF_COUNT_HW_CACHE_LL, []uint64{unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_OP_WRITE, unix.PERF_COUNT_HW_CACHE_OP_PREFETCH}},
		{"dTLB", unix.PERF_COUNT_HW_CACHE_DTLB, []uint64{unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_OP_WRITE}},
		{"iTLB", unix.PERF_COUNT_HW_CACHE_ITLB, []uint64{unix.PERF_COUNT_HW_CACHE_OP_READ}},
		{"branch", unix.PERF_COUNT_HW_CACHE_BPU, []uint64{unix.PERF_COUNT_HW_CACHE_OP_READ}},
		{"node", unix.PERF_COUNT_HW_CACHE_NODE, []uint64{unix.PERF_COUNT_HW_CACHE_OP_READ, unix.PERF_COUNT_HW_CACHE_OP_WRITE}},
	}

	cacheOpNames = map[uint64][2]string{
		unix.PERF_COUNT_HW_CACHE_OP_READ:     {"loads", "load"},
		unix.PERF_COUNT_HW_CACHE_OP_WRITE:    {"stores", "store"},
		unix.PERF_COUNT_HW_CACHE_OP_PREFETCH: {"prefetches", "prefetch"},
	}

	cacheAliases = map[string][]string{
		"L1-dcache-load-misses": {"PAPI_L1_DCM"},
		"L1-icache-load-misses": {"PAPI_L1_ICM"},
		"dTLB-load-misses":      {"PAPI_TLB_DM"},
		"iTLB-load-misses":      {"PAPI_TLB_IM"},
	}
)

// cacheEvents expands cacheDefs into the perf(1) names: for each
// cache and operation an access count ("L1-dcache-loads") and a miss
// count ("L1-dcache-load-misses").
func cacheEvents() []eventDef {
	var events []eventDef
	for _, cache := range cacheDefs {
		for _, op := range cache.ops {
			names := cacheOpNames[op]
			for _, result := range []uint64{unix.PERF_COUNT_HW_CACHE_RESULT_ACCESS, unix.PERF_COUNT_HW_CACHE_RESULT_MISS} {
				name := cache.name + "-" + names[0]
				description := fmt.Sprintf("%s %s", cache.name, names[0])
				if result == unix.PERF_COUNT_HW_CACHE_RESULT_MISS {
					name = cache.name + "-" + names[1] + "-misses"
					description = fmt.Sprintf("%s %s misses", cache.name, names[1])
				}
				events = append(events, eventDef{
					name:        name,
					eventType:   unix.PERF_TYPE_HW_CACHE,
					config:      cache.cache | op<<8 | result<<16,
					description: description,
					aliases:     cacheAliases[name],
				})
			}
		}
	}
	return events
}

// eventTable is the resolved table: every event in listing order, and
// lookups by lower-cased name or alias and by code.
type eventTable struct {
	events []Event
	byName map[string]counter.Code
	byCode map[counter.Code]string
}

var table = buildTable(append(append([]eventDef{}, genericEvents...), cacheEvents()...))

func buildTable(defs []eventDef) eventTable {
	result := eventTable{
		byName: make(map[string]counter.Code),
		byCode: make(map[counter.Code]string),
	}
	for _, def := range defs {
		code := encode(def.eventType, def.config)
		result.events = append(result.events, Event{
			Code:        code,
			Name:        def.name,
			Description: def.description,
			Aliases:     def.aliases,
			Software:    def.eventType == unix.PERF_TYPE_SOFTWARE,
		})
		result.byCode[code] = def.name
		result.byName[strings.ToLower(def.name)] = code
		for _, alias := range def.aliases {
			result.byName[strings.ToLower(alias)] = code
		}
	}
	return result
}

// Events returns the named events the backend knows, in listing
// order. Raw events are not listed.
func Events() []Event {
	events := make([]Event, len(table.events))
	copy(events, table.events)
	return events
}

// lookupName resolves a name, alias or raw "r<hex>" event.
func lookupName(name string) (counter.Code, error) {
	if code, ok := table.byName[strings.ToLower(name)]; ok {
		return code, nil
	}
	if hexConfig, ok := strings.CutPrefix(name, "r"); ok && hexConfig != "" {
		config, err := strconv.ParseUint(hexConfig, 16, 64)
		if err == nil {
			if config >= 1<<configBits {
				return 0, fmt.Errorf("%w: raw config %#x does not fit in %d bits", ErrUnknownEvent, config, configBits)
			}
			return encode(unix.PERF_TYPE_RAW, config), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
}

// lookupCode returns the display name for a code.
func lookupCode(code counter.Code) (string, error) {
	if name, ok := table.byCode[code]; ok {
		return name, nil
	}
	eventType, config := decode(code)
	if eventType == unix.PERF_TYPE_RAW {
		return fmt.Sprintf("r%x", config), nil
	}
	return "", fmt.Errorf("%w: code %#x", ErrUnknownEvent, uint32(code))
}

// isKnown reports whether code came from lookupName.
func isKnown(code counter.Code) bool {
	if _, ok := table.byCode[code]; ok {
		return true
	}
	eventType, _ := decode(code)
	return eventType == unix.PERF_TYPE_RAW
}
