package tasks

import (
	"sync/atomic"

	"ticksched/internal/config"
	"ticksched/internal/sched"
)

// TiltSensor turns tilt interrupts into a bounded activity count.
// Interrupts that arrive between two passes collapse into one increment.
type TiltSensor struct {
	sched.TriggeredTask

	count      int
	increment  int
	max        int
	interrupts atomic.Uint64
	debug      DebugWriter
}

func NewTiltSensor(cycle config.CycleConfig, debug DebugWriter) *TiltSensor {
	return &TiltSensor{
		increment: cycle.Increment,
		max:       cycle.Max,
		debug:     debug,
	}
}

func (s *TiltSensor) Name() string { return "tilt" }

// Interrupt is the pin change handler. Safe from any goroutine.
func (s *TiltSensor) Interrupt() {
	s.interrupts.Add(1)
	s.SetRunnable()
}

// Interrupts counts every Interrupt call, coalesced or not.
func (s *TiltSensor) Interrupts() uint64 { return s.interrupts.Load() }

func (s *TiltSensor) Run(_ sched.Tick) {
	s.ResetRunnable()

	s.count = min(s.count+s.increment, s.max)
	debugf(s.debug, "Tilt: cycle count %d", s.count)
}

func (s *TiltSensor) CycleCount() int { return s.count }

// Decay lowers the count by n, not below floor.
func (s *TiltSensor) Decay(n, floor int) {
	s.count = max(s.count-n, floor, 0)
}

func (s *TiltSensor) ApplyConfig(cfg config.Config) {
	s.increment = cfg.Cycle.Increment
	s.max = cfg.Cycle.Max
	s.count = min(s.count, s.max)
}
