package sched

import "sync/atomic"

// TriggeredTask is readiness driven by an externally set flag, typically from
// an interrupt-like producer running on another goroutine.
//
// Embed it and supply Run; Run is expected to call ResetRunnable unless the
// task should fire again on the next pass.
type TriggeredTask struct {
	runFlag atomic.Bool
}

// NewTriggeredTask returns a task whose flag starts at runnable.
func NewTriggeredTask(runnable bool) *TriggeredTask {
	t := &TriggeredTask{}
	t.runFlag.Store(runnable)
	return t
}

// CanRun reports the flag unchanged.
func (t *TriggeredTask) CanRun(_ Tick) bool {
	return t.runFlag.Load()
}

// SetRunnable marks the task runnable. Safe from any goroutine.
func (t *TriggeredTask) SetRunnable() { t.runFlag.Store(true) }

// ResetRunnable marks the task non-runnable. Safe from any goroutine.
func (t *TriggeredTask) ResetRunnable() { t.runFlag.Store(false) }

// Runnable reports the flag without going through CanRun.
func (t *TriggeredTask) Runnable() bool { return t.runFlag.Load() }
