package sched

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimedTaskDecisionTable(t *testing.T) {
	tests := []struct {
		name        string
		lastRunTime Tick
		runTime     Tick
		now         Tick
		ready       bool
		wantLast    Tick
	}{
		{
			name:        "no wrap, due",
			lastRunTime: 100, runTime: 150, now: 150,
			ready: true, wantLast: 150,
		},
		{
			name:        "no wrap, past due",
			lastRunTime: 100, runTime: 150, now: 400,
			ready: true, wantLast: 400,
		},
		{
			name:        "no wrap, not yet",
			lastRunTime: 100, runTime: 150, now: 149,
			ready: false, wantLast: 100,
		},
		{
			name:        "both wrapped, due",
			lastRunTime: 0xFFFFFFFA, runTime: 4, now: 7,
			ready: true, wantLast: 7,
		},
		{
			name:        "both wrapped, counter short of target",
			lastRunTime: 0xFFFFFFF0, runTime: 0x00000005, now: 0x00000002,
			ready: true, wantLast: 2,
		},
		{
			name:        "target wrapped, counter not yet",
			lastRunTime: 0xFFFFFFF0, runTime: 0x00000005, now: 0xFFFFFFF8,
			ready: false, wantLast: 0xFFFFFFF0,
		},
		{
			name:        "target wrapped, counter at last run",
			lastRunTime: 0xFFFFFFF0, runTime: 0x00000005, now: 0xFFFFFFF0,
			ready: false, wantLast: 0xFFFFFFF0,
		},
		{
			name:        "only counter wrapped",
			lastRunTime: 0x00000010, runTime: 0x00000020, now: 0x00000005,
			ready: false, wantLast: 0x00000010,
		},
		{
			name:        "only counter wrapped, far past target",
			lastRunTime: 0x00000010, runTime: 0x00000020, now: 0x0000000F,
			ready: false, wantLast: 0x00000010,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := TimedTask{
				runTime:     tt.runTime,
				lastRunTime: tt.lastRunTime,
			}

			require.Equal(t, tt.ready, task.CanRun(tt.now))
			require.Equal(t, tt.wantLast, task.LastRunTime())
			require.Equal(t, tt.runTime, task.RunTime())
		})
	}
}

// Both wrapped with the counter still short of the target reports ready.
// This is kept on purpose; see TimedTask.CanRun.
func TestTimedTaskBothWrappedQuirk(t *testing.T) {
	task := TimedTask{runTime: 50, lastRunTime: 100}

	require.True(t, task.CanRun(10))
	require.EqualValues(t, 10, task.LastRunTime())

	// Without the wrap, the same distance to the target is not ready.
	plain := TimedTask{runTime: 150, lastRunTime: 100}
	require.False(t, plain.CanRun(110))
}

func TestTimedTaskNoWraparoundProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		last := Tick(rng.Uint32())
		span := uint32(MaxTime - last)

		var now, runTime Tick
		if span > 0 {
			now = last + Tick(rng.Int63n(int64(span)+1))
			runTime = last + Tick(rng.Int63n(int64(span)+1))
		} else {
			now, runTime = last, last
		}

		task := TimedTask{runTime: runTime, lastRunTime: last}
		ready := task.CanRun(now)

		require.Equal(t, now >= runTime, ready, "last=%d run=%d now=%d", last, runTime, now)
		if ready {
			require.Equal(t, now, task.LastRunTime())
		} else {
			require.Equal(t, last, task.LastRunTime())
		}
	}
}

func TestTimedTaskMutators(t *testing.T) {
	task := NewTimedTask(10)
	require.EqualValues(t, 10, task.RunTime())
	require.Zero(t, task.LastRunTime())

	task.IncRunTime(5)
	require.EqualValues(t, 15, task.RunTime())

	task.SetRunTime(MaxTime - 2)
	task.IncRunTime(5)
	require.EqualValues(t, 2, task.RunTime(), "IncRunTime wraps modulo 2^32")

	// Mutators never touch lastRunTime.
	require.Zero(t, task.LastRunTime())
}

func TestTimedTaskPeriodicAcrossWrap(t *testing.T) {
	const period Tick = 10
	start := MaxTime - 25

	task := NewTimedTask(start)

	var fired []Tick
	for now := start; ; now++ {
		if task.CanRun(now) {
			fired = append(fired, now)
			task.IncRunTime(period)
		}
		if now == 24 {
			break
		}
	}

	// The target wraps to 4 after the third run; tick 0 already reports ready
	// through the both-wrapped fallthrough, and the period continues from the
	// rescheduled target.
	require.Equal(t,
		[]Tick{start, start + 10, start + 20, 0, 14, 24},
		fired,
	)
}
