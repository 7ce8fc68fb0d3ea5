// internal/sched/events.go

package sched

// StatusKind represents the type of scheduler event
type StatusKind int

const (
	StatusStart StatusKind = iota
	StatusDispatch
	StatusIdle
	StatusStop
)

// StatusEvent is emitted on every pass and when the loop starts or stops.
// Index is -1 for events not tied to a task.
type StatusEvent struct {
	Kind  StatusKind
	Pass  uint64
	Tick  Tick
	Index int
	Task  string
}

func (sk StatusKind) String() string {
	switch sk {
	case StatusStart:
		return "Start"
	case StatusDispatch:
		return "Dispatch"
	case StatusIdle:
		return "Idle"
	case StatusStop:
		return "Stop"
	default:
		return "Unknown"
	}
}

// Observer receives status events synchronously on the scheduling goroutine,
// so it must be quick.
type Observer interface {
	Observe(ev StatusEvent)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ev StatusEvent)

func (f ObserverFunc) Observe(ev StatusEvent) { f(ev) }
