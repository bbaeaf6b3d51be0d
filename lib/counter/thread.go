// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"fmt"
	"runtime"
)

// LockThread wires the calling goroutine to its current OS thread and
// returns the matching unlock function. Every session object records
// the thread that created it, so a goroutine that creates sessions
// must stay on one thread until the last of them is released:
//
//	unlock := counter.LockThread()
//	defer unlock()
func LockThread() (unlock func()) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread
}

// owner is the thread a session object is confined to.
type owner struct {
	thread int
}

func currentOwner() owner {
	return owner{thread: threadID()}
}

// check rejects calls made from any thread other than the owner.
func (o owner) check(op string) error {
	if current := threadID(); current != o.thread {
		return invalidArgument(op, fmt.Errorf("%w (owner thread %d, calling thread %d)",
			ErrWrongThread, o.thread, current))
	}
	return nil
}
