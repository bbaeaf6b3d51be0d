// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countertest

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/bureau-foundation/hwcount/lib/counter"
)

// Op names a facility call for failure injection.
type Op string

const (
	OpInit             Op = "init"
	OpNameToCode       Op = "name_to_code"
	OpCodeToName       Op = "code_to_name"
	OpQueryAvailable   Op = "query_available"
	OpCreateCounterSet Op = "create_counter_set"
	OpAddCode          Op = "add_code"
	OpListCodes        Op = "list_codes"
	OpStart            Op = "start"
	OpStop             Op = "stop"
	OpRead             Op = "read"
	OpAccum            Op = "accum"
	OpCleanup          Op = "cleanup"
	OpDestroy          Op = "destroy"
	OpRegisterCount    Op = "physical_register_count"
	OpCounterSetState  Op = "counter_set_state"
)

// Errors returned by the fake's state checks.
var (
	ErrNoSuchEvent    = errors.New("countertest: no such event")
	ErrUnavailable    = errors.New("countertest: event not available")
	ErrNoSuchHandle   = errors.New("countertest: no such counter set")
	ErrIsRunning      = errors.New("countertest: counter set is running")
	ErrNotRunning     = errors.New("countertest: counter set is not running")
	ErrNotEmpty       = errors.New("countertest: counter set still has events")
	ErrConflict       = errors.New("countertest: not enough free registers")
	ErrDuplicateEvent = errors.New("countertest: event already in counter set")
	ErrValuesLength   = errors.New("countertest: values slice does not match counter set")
)

// firstCode mimics the native-event code range of real counting
// libraries, so tests do not accidentally depend on small codes.
const firstCode counter.Code = 0x40000000

type counterSet struct {
	codes   []counter.Code
	running bool
	// base is the counter snapshot that values are measured from.
	// Start sets it, Accum moves it forward.
	base []int64
}

// Facility is an in-memory counter.Facility. It is safe for concurrent
// use by multiple goroutines.
type Facility struct {
	mu          sync.Mutex
	registers   int
	codes       map[string]counter.Code
	names       map[counter.Code]string
	unavailable map[counter.Code]bool
	counts      map[counter.Code]int64
	sets        map[counter.Handle]*counterSet
	nextHandle  counter.Handle
	initCalls   int
	failures    map[Op]failure
}

type failure struct {
	err  error
	once bool
}

var _ counter.Facility = (*Facility)(nil)

// New returns a facility with the given register count and events.
// Events receive consecutive codes in argument order.
func New(registers int, events ...string) *Facility {
	facility := &Facility{
		registers:   registers,
		codes:       make(map[string]counter.Code, len(events)),
		names:       make(map[counter.Code]string, len(events)),
		unavailable: make(map[counter.Code]bool),
		counts:      make(map[counter.Code]int64, len(events)),
		sets:        make(map[counter.Handle]*counterSet),
		nextHandle:  1,
		failures:    make(map[Op]failure),
	}
	for index, name := range events {
		code := firstCode + counter.Code(index)
		facility.codes[name] = code
		facility.names[code] = name
	}
	return facility
}

// Code returns the code assigned to name. It panics on unknown names,
// which is a bug in the test.
func (f *Facility) Code(name string) counter.Code {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.codes[name]
	if !ok {
		panic(fmt.Sprintf("countertest: unknown event %q", name))
	}
	return code
}

// Bump advances the software counter behind name by delta. Every
// running set that contains the event observes the increase.
func (f *Facility) Bump(name string, delta int64) {
	code := f.Code(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[code] += delta
}

// SetRegisterCount changes the size of the register pool.
func (f *Facility) SetRegisterCount(registers int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers = registers
}

// SetUnavailable marks an event as known but not countable.
func (f *Facility) SetUnavailable(name string) {
	code := f.Code(name)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unavailable[code] = true
}

// Fail makes every subsequent call of op return err. A nil err clears
// the failure.
func (f *Facility) Fail(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = failure{err: err}
}

// FailOnce makes the next call of op return err.
func (f *Facility) FailOnce(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = failure{err: err, once: true}
}

// injected returns the failure registered for op, consuming it if it
// was registered with FailOnce. The caller holds f.mu.
func (f *Facility) injected(op Op) error {
	injected, ok := f.failures[op]
	if !ok {
		return nil
	}
	if injected.once {
		delete(f.failures, op)
	}
	return injected.err
}

// LiveHandles returns the number of counter sets that have been
// created and not destroyed.
func (f *Facility) LiveHandles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sets)
}

// RunningHandles returns the number of counter sets currently
// counting.
func (f *Facility) RunningHandles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	running := 0
	for _, set := range f.sets {
		if set.running {
			running++
		}
	}
	return running
}

// InitCalls returns how many times Init has been called.
func (f *Facility) InitCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initCalls
}

// Init implements counter.Facility. It only counts calls.
func (f *Facility) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.injected(OpInit); err != nil {
		return err
	}
	f.initCalls++
	return nil
}

// NameToCode implements counter.Registry.
func (f *Facility) NameToCode(name string) (counter.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.injected(OpNameToCode); err != nil {
		return 0, err
	}
	code, ok := f.codes[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoSuchEvent, name)
	}
	return code, nil
}

// CodeToName implements counter.Registry.
func (f *Facility) CodeToName(code counter.Code) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.injected(OpCodeToName); err != nil {
		return "", err
	}
	name, ok := f.names[code]
	if !ok {
		return "", fmt.Errorf("%w: code %#x", ErrNoSuchEvent, int32(code))
	}
	return name, nil
}

// QueryAvailable implements counter.Registry.
func (f *Facility) QueryAvailable(code counter.Code) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.injected(OpQueryAvailable); err != nil {
		return err
	}
	if _, ok := f.names[code]; !ok {
		return fmt.Errorf("%w: code %#x", ErrNoSuchEvent, int32(code))
	}
	if f.unavailable[code] {
		return fmt.Errorf("%w: %s", ErrUnavailable, f.names[code])
	}
	return nil
}

// CreateCounterSet implements counter.Facility.
func (f *Facility) CreateCounterSet() (counter.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.injected(OpCreateCounterSet); err != nil {
		return 0, err
	}
	handle := f.nextHandle
	f.nextHandle++
	f.sets[handle] = &counterSet{}
	return handle, nil
}

// AddCode implements counter.Facility. A single set can never hold
// more events than there are registers, whether or not it runs.
func (f *Facility) AddCode(handle counter.Handle, code counter.Code) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.lookup(OpAddCode, handle)
	if err != nil {
		return err
	}
	if set.running {
		return ErrIsRunning
	}
	if _, ok := f.names[code]; !ok {
		return fmt.Errorf("%w: code %#x", ErrNoSuchEvent, int32(code))
	}
	if slices.Contains(set.codes, code) {
		return fmt.Errorf("%w: %s", ErrDuplicateEvent, f.names[code])
	}
	if len(set.codes) >= f.registers {
		return fmt.Errorf("%w: set already holds %d events", ErrConflict, len(set.codes))
	}
	set.codes = append(set.codes, code)
	return nil
}

// ListCodes implements counter.Facility.
func (f *Facility) ListCodes(handle counter.Handle) ([]counter.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.lookup(OpListCodes, handle)
	if err != nil {
		return nil, err
	}
	return slices.Clone(set.codes), nil
}

// Start implements counter.Facility. The set's events must fit in the
// registers not claimed by other running sets.
func (f *Facility) Start(handle counter.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.lookup(OpStart, handle)
	if err != nil {
		return err
	}
	if set.running {
		return ErrIsRunning
	}
	claimed := 0
	for _, other := range f.sets {
		if other.running {
			claimed += len(other.codes)
		}
	}
	if claimed+len(set.codes) > f.registers {
		return fmt.Errorf("%w: %d claimed, %d requested, %d registers",
			ErrConflict, claimed, len(set.codes), f.registers)
	}
	set.running = true
	set.base = f.snapshot(set.codes, set.base)
	return nil
}

// Stop implements counter.Facility.
func (f *Facility) Stop(handle counter.Handle, values []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.runningSet(OpStop, handle, values, true)
	if err != nil {
		return err
	}
	f.deltas(set, values)
	set.running = false
	return nil
}

// Read implements counter.Facility.
func (f *Facility) Read(handle counter.Handle, values []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.runningSet(OpRead, handle, values, false)
	if err != nil {
		return err
	}
	f.deltas(set, values)
	return nil
}

// Accum implements counter.Facility.
func (f *Facility) Accum(handle counter.Handle, values []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.runningSet(OpAccum, handle, values, false)
	if err != nil {
		return err
	}
	f.deltas(set, values)
	set.base = f.snapshot(set.codes, set.base)
	return nil
}

// Cleanup implements counter.Facility.
func (f *Facility) Cleanup(handle counter.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.lookup(OpCleanup, handle)
	if err != nil {
		return err
	}
	if set.running {
		return ErrIsRunning
	}
	set.codes = nil
	set.base = nil
	return nil
}

// Destroy implements counter.Facility.
func (f *Facility) Destroy(handle counter.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.lookup(OpDestroy, handle)
	if err != nil {
		return err
	}
	if set.running {
		return ErrIsRunning
	}
	if len(set.codes) > 0 {
		return ErrNotEmpty
	}
	delete(f.sets, handle)
	return nil
}

// PhysicalRegisterCount implements counter.Facility.
func (f *Facility) PhysicalRegisterCount() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.injected(OpRegisterCount); err != nil {
		return 0, err
	}
	return f.registers, nil
}

// CounterSetState implements counter.Facility.
func (f *Facility) CounterSetState(handle counter.Handle) (counter.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, err := f.lookup(OpCounterSetState, handle)
	if err != nil {
		return 0, err
	}
	if set.running {
		return counter.StateRunning, nil
	}
	return counter.StateIdle, nil
}

// lookup checks for an injected failure and resolves handle. The
// caller holds f.mu.
func (f *Facility) lookup(op Op, handle counter.Handle) (*counterSet, error) {
	if err := f.injected(op); err != nil {
		return nil, err
	}
	set, ok := f.sets[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchHandle, int(handle))
	}
	return set, nil
}

func (f *Facility) runningSet(op Op, handle counter.Handle, values []int64, allowNil bool) (*counterSet, error) {
	set, err := f.lookup(op, handle)
	if err != nil {
		return nil, err
	}
	if !set.running {
		return nil, ErrNotRunning
	}
	if values == nil && allowNil {
		return set, nil
	}
	if len(values) != len(set.codes) {
		return nil, fmt.Errorf("%w: %d values for %d events", ErrValuesLength, len(values), len(set.codes))
	}
	return set, nil
}

// snapshot copies the current counts of codes into buffer.
func (f *Facility) snapshot(codes []counter.Code, buffer []int64) []int64 {
	buffer = buffer[:0]
	for _, code := range codes {
		buffer = append(buffer, f.counts[code])
	}
	return buffer
}

// deltas writes the counts since set.base into values. A nil values
// slice is ignored.
func (f *Facility) deltas(set *counterSet, values []int64) {
	for index := range values {
		values[index] = f.counts[set.codes[index]] - set.base[index]
	}
}
