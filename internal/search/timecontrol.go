package search

import (
	"sync/atomic"
	"time"
)

// Spec §6 time management constants: allocate roughly remaining/30,
// floor 100ms, hard cap at 1.5x the allocation.
const (
	movesToGoDefault = 30
	minAllocMs       = 100
	hardCapFactor    = 1.5
)

// TimeControl holds one search's time budget and the sticky external stop
// signal. Grounded on the teacher's TimeControl (deadline + atomic stopped
// flag, allocateTime/shouldStop/shouldContinue), simplified to the spec's
// single remaining/30 allocation rule instead of increment-aware banking.
type TimeControl struct {
	depth     int // 0 = unlimited by depth
	movetimeMs int64
	wtimeMs   int64
	btimeMs   int64
	infinite  bool

	deadline time.Time
	hardCap  time.Time
	stopped  atomic.Bool
}

// NewTimeControl builds a TimeControl from the go-command parameters (spec
// §6): depth N, movetime MS, infinite, wtime/btime MS. sideIsLight reports
// whether Light is to move, used to pick wtime vs btime when only those are
// given.
func NewTimeControl(depth int, movetimeMs, wtimeMs, btimeMs int64, infinite bool, sideIsLight bool) *TimeControl {
	tc := &TimeControl{depth: depth, movetimeMs: movetimeMs, wtimeMs: wtimeMs, btimeMs: btimeMs, infinite: infinite}
	tc.allocate(sideIsLight)
	return tc
}

func (tc *TimeControl) allocate(sideIsLight bool) {
	if tc.movetimeMs > 0 {
		tc.deadline = time.Now().Add(time.Duration(tc.movetimeMs) * time.Millisecond)
		tc.hardCap = tc.deadline
		return
	}
	if tc.infinite || tc.depth > 0 {
		return
	}
	remaining := tc.wtimeMs
	if !sideIsLight {
		remaining = tc.btimeMs
	}
	if remaining <= 0 {
		return
	}
	allocMs := remaining / movesToGoDefault
	if allocMs < minAllocMs {
		allocMs = minAllocMs
	}
	tc.deadline = time.Now().Add(time.Duration(allocMs) * time.Millisecond)
	tc.hardCap = time.Now().Add(time.Duration(float64(allocMs)*hardCapFactor) * time.Millisecond)
}

// Stop sets the sticky external stop signal.
func (tc *TimeControl) Stop() { tc.stopped.Store(true) }

func (tc *TimeControl) shouldStop() bool {
	if tc.stopped.Load() {
		return true
	}
	hc := tc.hardCap
	return !hc.IsZero() && time.Now().After(hc)
}

// shouldStartNextIteration reports whether there's likely enough time left
// for another iterative-deepening pass, given how long the last one took.
func (tc *TimeControl) shouldStartNextIteration(lastIter time.Duration) bool {
	if tc.stopped.Load() {
		return false
	}
	if tc.infinite || tc.depth > 0 {
		return true
	}
	if tc.deadline.IsZero() {
		return true
	}
	remaining := time.Until(tc.deadline)
	if remaining <= 0 {
		return false
	}
	return remaining > lastIter
}

// budgetFractionUsed reports how much of the allocated budget has elapsed,
// used by the "no new iteration unlikely to complete" stop rule (spec
// §4.5.1).
func (tc *TimeControl) budgetFractionUsed(start time.Time) float64 {
	if tc.deadline.IsZero() {
		return 0
	}
	total := tc.deadline.Sub(start)
	if total <= 0 {
		return 1
	}
	return time.Since(start).Seconds() / total.Seconds()
}
