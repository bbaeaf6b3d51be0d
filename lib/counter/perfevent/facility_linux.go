// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package perfevent

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/hwcount/lib/counter"
	"github.com/bureau-foundation/hwcount/lib/hwinfo"
)

// readFormat makes a read of the group leader return every member's
// count plus the enabled and running times of the group.
const readFormat = unix.PERF_FORMAT_GROUP | unix.PERF_FORMAT_TOTAL_TIME_ENABLED | unix.PERF_FORMAT_TOTAL_TIME_RUNNING

// readHeaderWords is nr, time_enabled and time_running.
const readHeaderWords = 3

// group is one counter set: perf event file descriptors in a single
// kernel group, leader first.
type group struct {
	codes   []counter.Code
	fds     []int
	running bool
	buffer  []byte
}

func (g *group) leader() int { return g.fds[0] }

// Facility is the perf_event_open implementation of counter.Facility.
// It is safe for concurrent use; each counter set is used only from
// the thread that owns it.
type Facility struct {
	options   Options
	logger    *slog.Logger
	registers int

	mu          sync.Mutex
	initialized bool
	sets        map[counter.Handle]*group
	nextHandle  counter.Handle
}

var _ counter.Facility = (*Facility)(nil)

// New returns a Facility. Nothing is opened until Init.
func New(options Options) (*Facility, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Facility{
		options:    options,
		logger:     logger,
		registers:  options.registers(hwinfo.CoreCounters()),
		sets:       make(map[counter.Handle]*group),
		nextHandle: 1,
	}, nil
}

// Init checks that perf events can be opened at all by opening and
// closing a task-clock counter. Later calls after a success do
// nothing.
func (f *Facility) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initialized {
		return nil
	}
	probe := encode(unix.PERF_TYPE_SOFTWARE, unix.PERF_COUNT_SW_TASK_CLOCK)
	if err := f.probe(probe); err != nil {
		return fmt.Errorf("perf events unavailable: %w", err)
	}
	f.initialized = true
	f.logger.Debug("perf events available", "registers", f.registers)
	return nil
}

// NameToCode implements counter.Registry.
func (f *Facility) NameToCode(name string) (counter.Code, error) {
	return lookupName(name)
}

// CodeToName implements counter.Registry.
func (f *Facility) CodeToName(code counter.Code) (string, error) {
	return lookupCode(code)
}

// QueryAvailable implements counter.Registry by opening the event on
// the calling thread and closing it again.
func (f *Facility) QueryAvailable(code counter.Code) error {
	if !isKnown(code) {
		return fmt.Errorf("%w: code %#x", ErrUnknownEvent, uint32(code))
	}
	return f.probe(code)
}

// CreateCounterSet implements counter.Facility. The group has no file
// descriptors until the first AddCode.
func (f *Facility) CreateCounterSet() (counter.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle := f.nextHandle
	f.nextHandle++
	f.sets[handle] = &group{}
	return handle, nil
}

// AddCode implements counter.Facility. The first code becomes the
// pinned, disabled group leader; later codes join its group.
func (f *Facility) AddCode(handle counter.Handle, code counter.Code) error {
	set, err := f.lookup(handle)
	if err != nil {
		return err
	}
	if set.running {
		return ErrIsRunning
	}
	if !isKnown(code) {
		return fmt.Errorf("%w: code %#x", ErrUnknownEvent, uint32(code))
	}
	if slices.Contains(set.codes, code) {
		return ErrDuplicateCode
	}

	groupFD := -1
	if len(set.fds) > 0 {
		groupFD = set.leader()
	}
	fd, err := f.open(code, groupFD)
	if err != nil {
		return err
	}
	set.fds = append(set.fds, fd)
	set.codes = append(set.codes, code)
	set.buffer = make([]byte, 8*(readHeaderWords+len(set.fds)))
	return nil
}

// ListCodes implements counter.Facility.
func (f *Facility) ListCodes(handle counter.Handle) ([]counter.Code, error) {
	set, err := f.lookup(handle)
	if err != nil {
		return nil, err
	}
	return slices.Clone(set.codes), nil
}

// Start implements counter.Facility. The group is reset and enabled,
// then read once: a pinned group the kernel could not place on
// hardware counters reads as end of file, and is disabled again.
func (f *Facility) Start(handle counter.Handle) error {
	set, err := f.lookup(handle)
	if err != nil {
		return err
	}
	if set.running {
		return ErrIsRunning
	}
	if len(set.fds) == 0 {
		return ErrEmptySet
	}
	if err := groupIoctl(set, unix.PERF_EVENT_IOC_RESET); err != nil {
		return err
	}
	if err := groupIoctl(set, unix.PERF_EVENT_IOC_ENABLE); err != nil {
		return err
	}
	if err := f.readGroup(set, nil); err != nil {
		if disableErr := groupIoctl(set, unix.PERF_EVENT_IOC_DISABLE); disableErr != nil {
			return errors.Join(err, disableErr)
		}
		return err
	}
	set.running = true
	return nil
}

// Stop implements counter.Facility.
func (f *Facility) Stop(handle counter.Handle, values []int64) error {
	set, err := f.runningSet(handle, values, true)
	if err != nil {
		return err
	}
	if err := groupIoctl(set, unix.PERF_EVENT_IOC_DISABLE); err != nil {
		return err
	}
	set.running = false
	return f.readGroup(set, values)
}

// Read implements counter.Facility.
func (f *Facility) Read(handle counter.Handle, values []int64) error {
	set, err := f.runningSet(handle, values, false)
	if err != nil {
		return err
	}
	return f.readGroup(set, values)
}

// Accum implements counter.Facility. Events that occur between the
// read and the reset are lost.
func (f *Facility) Accum(handle counter.Handle, values []int64) error {
	set, err := f.runningSet(handle, values, false)
	if err != nil {
		return err
	}
	if err := f.readGroup(set, values); err != nil {
		return err
	}
	return groupIoctl(set, unix.PERF_EVENT_IOC_RESET)
}

// Cleanup implements counter.Facility: members are closed before the
// leader.
func (f *Facility) Cleanup(handle counter.Handle) error {
	set, err := f.lookup(handle)
	if err != nil {
		return err
	}
	if set.running {
		return ErrIsRunning
	}
	var errs []error
	for index := len(set.fds) - 1; index >= 0; index-- {
		if err := unix.Close(set.fds[index]); err != nil {
			errs = append(errs, fmt.Errorf("closing perf event fd %d: %w", set.fds[index], err))
		}
	}
	set.fds = nil
	set.codes = nil
	set.buffer = nil
	return errors.Join(errs...)
}

// Destroy implements counter.Facility.
func (f *Facility) Destroy(handle counter.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[handle]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchHandle, int(handle))
	}
	if set.running {
		return ErrIsRunning
	}
	if len(set.fds) > 0 {
		return ErrNotEmpty
	}
	delete(f.sets, handle)
	return nil
}

// PhysicalRegisterCount implements counter.Facility.
func (f *Facility) PhysicalRegisterCount() (int, error) {
	return f.registers, nil
}

// CounterSetState implements counter.Facility.
func (f *Facility) CounterSetState(handle counter.Handle) (counter.State, error) {
	set, err := f.lookup(handle)
	if err != nil {
		return 0, err
	}
	if set.running {
		return counter.StateRunning, nil
	}
	return counter.StateIdle, nil
}

// LiveHandles returns the number of counter sets not yet destroyed.
func (f *Facility) LiveHandles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sets)
}

func (f *Facility) lookup(handle counter.Handle) (*group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchHandle, int(handle))
	}
	return set, nil
}

func (f *Facility) runningSet(handle counter.Handle, values []int64, allowNil bool) (*group, error) {
	set, err := f.lookup(handle)
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

// attr builds the perf_event_attr for code. Only a group leader is
// created disabled and pinned; members follow the leader.
func (f *Facility) attr(code counter.Code, leader bool) unix.PerfEventAttr {
	eventType, config := decode(code)
	attr := unix.PerfEventAttr{
		Type:        eventType,
		Size:        uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
		Config:      config,
		Read_format: readFormat,
	}
	if leader {
		attr.Bits |= unix.PerfBitDisabled | unix.PerfBitPinned
	}
	if f.options.ExcludeKernel {
		attr.Bits |= unix.PerfBitExcludeKernel
	}
	if f.options.ExcludeHypervisor {
		attr.Bits |= unix.PerfBitExcludeHv
	}
	return attr
}

// open opens code on the calling thread, on any CPU.
func (f *Facility) open(code counter.Code, groupFD int) (int, error) {
	attr := f.attr(code, groupFD < 0)
	fd, err := unix.PerfEventOpen(&attr, 0, -1, groupFD, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		name, _ := lookupCode(code)
		return -1, f.explain(name, err)
	}
	f.logger.Debug("perf event opened", "code", fmt.Sprintf("%#x", uint32(code)), "fd", fd, "group", groupFD)
	return fd, nil
}

// probe opens and immediately closes code as a standalone event.
func (f *Facility) probe(code counter.Code) error {
	fd, err := f.open(code, -1)
	if err != nil {
		return err
	}
	return unix.Close(fd)
}

// explain adds the likely cause to common perf_event_open failures.
func (f *Facility) explain(name string, err error) error {
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		paranoid := hwinfo.ReadSysfsString("/proc/sys/kernel/perf_event_paranoid")
		return fmt.Errorf("opening %s: %w (kernel.perf_event_paranoid=%s; set perf.exclude_kernel or lower the sysctl)",
			name, err, paranoid)
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.EOPNOTSUPP):
		return fmt.Errorf("opening %s: %w (event not supported by this PMU)", name, err)
	case errors.Is(err, unix.EINVAL):
		return fmt.Errorf("opening %s: %w (group may exceed the hardware counters)", name, err)
	default:
		return fmt.Errorf("opening %s: %w", name, err)
	}
}

// groupIoctl applies request to every event of the group.
func groupIoctl(set *group, request uint) error {
	if err := unix.IoctlSetInt(set.leader(), request, unix.PERF_IOC_FLAG_GROUP); err != nil {
		return fmt.Errorf("perf event ioctl %#x: %w", request, err)
	}
	return nil
}

// readGroup reads every count of the group into values, which may be
// nil to only check that the group is scheduled.
func (f *Facility) readGroup(set *group, values []int64) error {
	n, err := unix.Read(set.leader(), set.buffer)
	if err != nil {
		return fmt.Errorf("reading counter group: %w", err)
	}
	if n == 0 {
		return ErrNotScheduled
	}
	if n != len(set.buffer) {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortRead, n, len(set.buffer))
	}

	word := func(index int) uint64 {
		return binary.NativeEndian.Uint64(set.buffer[8*index:])
	}
	if count := word(0); count != uint64(len(set.fds)) {
		return fmt.Errorf("%w: kernel reported %d events, set has %d", ErrShortRead, count, len(set.fds))
	}
	enabled, running := word(1), word(2)
	if enabled > 0 && running == 0 {
		return ErrNotScheduled
	}
	for index := range values {
		values[index] = int64(word(readHeaderWords + index))
	}
	return nil
}
