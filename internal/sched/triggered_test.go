package sched

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTriggeredTaskMirrorsFlag(t *testing.T) {
	var task TriggeredTask
	require.False(t, task.CanRun(0))

	task.SetRunnable()
	for _, now := range []Tick{0, 1, MaxTime} {
		require.True(t, task.CanRun(now))
	}
	// CanRun has no side effects.
	require.True(t, task.Runnable())

	task.ResetRunnable()
	require.False(t, task.CanRun(42))
	require.False(t, task.CanRun(42))

	require.True(t, NewTriggeredTask(true).CanRun(0))
	require.False(t, NewTriggeredTask(false).CanRun(0))
}

func TestTriggeredTaskConcurrentProducers(t *testing.T) {
	var task TriggeredTask

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				task.SetRunnable()
			}
		}()
	}

	for j := 0; j < 1000; j++ {
		if task.CanRun(Tick(j)) {
			task.ResetRunnable()
		}
	}
	wg.Wait()

	task.SetRunnable()
	require.True(t, task.CanRun(0))
}
