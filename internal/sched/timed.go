package sched

// TimedTask is readiness driven by the tick counter. Embed it and supply Run;
// periodic tasks call IncRunTime from Run to reschedule themselves.
//
// lastRunTime is the tick observed at the last successful readiness check.
// It is written only by CanRun and lets the check tell a counter that wrapped
// from one that simply has not reached the target yet.
type TimedTask struct {
	runTime     Tick
	lastRunTime Tick
}

// NewTimedTask returns a task due at the given tick.
func NewTimedTask(when Tick) TimedTask {
	return TimedTask{runTime: when}
}

// CanRun reports whether now has reached the run time, tolerating wraparound
// of either value relative to lastRunTime.
//
// When both have wrapped and now is still short of the run time, the check
// falls through to the target-wrapped rule and reports ready. Timing of
// existing tasks depends on it, so it stays.
func (t *TimedTask) CanRun(now Tick) bool {
	nowWrapped := now < t.lastRunTime
	targetWrapped := t.runTime < t.lastRunTime

	if nowWrapped == targetWrapped {
		if now >= t.runTime {
			t.lastRunTime = now
			return true
		}
	}

	// Target wrapped but the counter has not caught up with it yet.
	if targetWrapped {
		if now > t.runTime {
			return false
		}

		t.lastRunTime = now
		return true
	}

	// Only the counter wrapped: wait for the target to wrap too.
	return false
}

// SetRunTime sets the absolute tick the task is next due.
func (t *TimedTask) SetRunTime(when Tick) { t.runTime = when }

// IncRunTime moves the run time forward by delta ticks, wrapping.
func (t *TimedTask) IncRunTime(delta Tick) { t.runTime += delta }

// RunTime returns the tick the task is next due.
func (t *TimedTask) RunTime() Tick { return t.runTime }

// LastRunTime returns the tick of the last successful readiness check.
func (t *TimedTask) LastRunTime() Tick { return t.lastRunTime }
