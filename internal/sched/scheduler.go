// internal/sched/scheduler.go

package sched

import (
	"context"
	"fmt"

	goerrors "github.com/TudorHulban/go-errors"

	"ticksched/internal/logging"
)

// Scheduler polls a fixed, priority-ordered task list and runs at most one
// ready task per pass. Index 0 is the highest priority.
//
// The scheduler references tasks, it never owns them. A task that stays ready
// starves every task after it.
type Scheduler struct {
	tasks     []Task
	names     []string
	clock     Clock
	observers []Observer
	log       logging.Logger

	passes uint64 // only touched by the scheduling goroutine
}

type ParamsNewScheduler struct {
	Tasks     []Task // priority order, highest first
	Clock     Clock  // defaults to a MillisClock starting at 0
	Observers []Observer
	Logger    logging.Logger
}

func (param *ParamsNewScheduler) IsValid() error {
	if param == nil {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsNewScheduler",
			Issue: goerrors.ErrNilInput{
				InputName: "ParamsNewScheduler",
			},
		}
	}

	if len(param.Tasks) == 0 {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsNewScheduler",
			Issue: goerrors.ErrNilInput{
				InputName: "Tasks",
			},
		}
	}

	for i, task := range param.Tasks {
		if task == nil {
			return goerrors.ErrValidation{
				Caller: "IsValid - ParamsNewScheduler",
				Issue: goerrors.ErrInvalidInput{
					InputName: fmt.Sprintf("Tasks[%d]", i),
				},
			}
		}
	}

	for i, obs := range param.Observers {
		if obs == nil {
			return goerrors.ErrValidation{
				Caller: "IsValid - ParamsNewScheduler",
				Issue: goerrors.ErrInvalidInput{
					InputName: fmt.Sprintf("Observers[%d]", i),
				},
			}
		}
	}

	return nil
}

// New validates the task list and builds a scheduler. An empty list is a
// configuration error: the loop must not start without tasks.
func New(params *ParamsNewScheduler) (*Scheduler, error) {
	if errValidation := params.IsValid(); errValidation != nil {
		return nil, errValidation
	}

	clock := params.Clock
	if clock == nil {
		clock = NewMillisClock(0)
	}

	tasks := append([]Task(nil), params.Tasks...)
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = TaskName(t, i)
	}

	return &Scheduler{
			tasks:     tasks,
			names:     names,
			clock:     clock,
			observers: append([]Observer(nil), params.Observers...),
			log:       params.Logger.With(logging.String("component", "sched")),
		},
		nil
}

// Len returns the number of scheduled tasks.
func (s *Scheduler) Len() int { return len(s.tasks) }

// Names returns the task names in priority order.
func (s *Scheduler) Names() []string {
	return append([]string(nil), s.names...)
}

// Pass runs one dispatch pass and returns the index of the task that ran,
// or -1 if none was ready. The clock is read exactly once so every task is
// judged against the same tick.
//
// A panic in a task's Run is not recovered.
func (s *Scheduler) Pass() int {
	now := s.clock.Ticks()
	s.passes++

	for i, t := range s.tasks {
		if !t.CanRun(now) {
			continue
		}

		t.Run(now)

		if s.log.Enabled(logging.LevelTrace) {
			s.log.Trace("dispatch",
				logging.Uint64("pass", s.passes),
				logging.Uint32("tick", uint32(now)),
				logging.String("task", s.names[i]),
			)
		}
		s.emit(StatusEvent{
			Kind:  StatusDispatch,
			Pass:  s.passes,
			Tick:  now,
			Index: i,
			Task:  s.names[i],
		})
		return i
	}

	s.emit(StatusEvent{
		Kind:  StatusIdle,
		Pass:  s.passes,
		Tick:  now,
		Index: -1,
	})
	return -1
}

// Run executes passes back to back until ctx is done. With a context that is
// never cancelled it never returns, which is the embedded behaviour.
func (s *Scheduler) Run(ctx context.Context) error {
	start := s.clock.Ticks()
	s.log.Info("dispatch loop started",
		logging.Int("tasks", len(s.tasks)),
		logging.Uint32("tick", uint32(start)),
	)
	s.emit(StatusEvent{Kind: StatusStart, Pass: s.passes, Tick: start, Index: -1})

	done := ctx.Done()
	for {
		select {
		case <-done:
			stop := s.clock.Ticks()
			s.emit(StatusEvent{Kind: StatusStop, Pass: s.passes, Tick: stop, Index: -1})
			s.log.Info("dispatch loop stopped",
				logging.Uint64("passes", s.passes),
				logging.Uint32("tick", uint32(stop)),
			)
			return nil
		default:
		}

		s.Pass()
	}
}

func (s *Scheduler) emit(ev StatusEvent) {
	for _, obs := range s.observers {
		obs.Observe(ev)
	}
}
