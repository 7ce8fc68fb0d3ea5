package sched

import (
	"fmt"
	"math"
)

// Tick is one unit of the monotonic clock, a millisecond by default.
// It wraps modulo 2^32, roughly every 49.7 days.
type Tick uint32

// MaxTime is the furthest a run time can be scheduled into the future.
const MaxTime Tick = math.MaxUint32

// Task is one schedulable unit.
//
// CanRun is a query: apart from the bookkeeping documented by the variant
// it must not have visible side effects. Run may mutate the task itself,
// including rescheduling it, and must return promptly: nothing preempts a
// task that blocks.
type Task interface {
	CanRun(now Tick) bool
	Run(now Tick)
}

// Namer is implemented by tasks that want a readable name in logs and metrics.
type Namer interface {
	Name() string
}

// TaskName returns the task's name, or a positional fallback.
func TaskName(t Task, index int) string {
	if n, ok := t.(Namer); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("task-%d", index)
}

// Funcs builds a Task out of two closures.
type Funcs struct {
	Label string
	Ready func(now Tick) bool
	Do    func(now Tick)
}

func (f *Funcs) CanRun(now Tick) bool {
	if f.Ready == nil {
		return false
	}
	return f.Ready(now)
}

func (f *Funcs) Run(now Tick) {
	if f.Do != nil {
		f.Do(now)
	}
}

func (f *Funcs) Name() string { return f.Label }
