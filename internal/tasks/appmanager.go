package tasks

import (
	"ticksched/internal/config"
	"ticksched/internal/sched"
)

// CycleCounter is the activity source the AppManager reads.
type CycleCounter interface {
	CycleCount() int
	Decay(n, floor int)
}

// RateSetter is the periodic task the AppManager retunes.
type RateSetter interface {
	CycleRate() sched.Tick
	SetCycleRate(rate sched.Tick)
}

// AppManager maps tilt activity to the blink rate and lets the activity
// decay one step per run.
type AppManager struct {
	sched.TimedTask

	counter CycleCounter
	target  RateSetter
	cycle   config.CycleConfig
	period  sched.Tick
	debug   DebugWriter
}

type ParamsAppManager struct {
	Counter CycleCounter
	Target  RateSetter
	Debug   DebugWriter
	Cycle   config.CycleConfig
	Period  sched.Tick
	Start   sched.Tick
}

func NewAppManager(params *ParamsAppManager) *AppManager {
	return &AppManager{
		TimedTask: sched.NewTimedTask(params.Start),
		counter:   params.Counter,
		target:    params.Target,
		cycle:     params.Cycle,
		period:    max(params.Period, 1),
		debug:     params.Debug,
	}
}

func (m *AppManager) Name() string { return "app-manager" }

func (m *AppManager) Run(_ sched.Tick) {
	want := m.rateFor(m.counter.CycleCount())
	if m.target.CycleRate() != want {
		m.target.SetCycleRate(want)
		debugf(m.debug, "AppManager: blink rate %d ms", want)
	}

	m.counter.Decay(1, m.cycle.ThresholdSlow)
	m.IncRunTime(m.period)
}

// rateFor picks the fast rate above the fast threshold, the medium rate above
// the medium threshold and the slow rate otherwise.
func (m *AppManager) rateFor(count int) sched.Tick {
	switch {
	case count > m.cycle.ThresholdFast:
		return sched.Tick(m.cycle.RateFastMS)
	case count > m.cycle.ThresholdMedium:
		return sched.Tick(m.cycle.RateMediumMS)
	default:
		return sched.Tick(m.cycle.RateSlowMS)
	}
}

func (m *AppManager) ApplyConfig(cfg config.Config) {
	m.cycle = cfg.Cycle
	if cfg.Rates.AppManagerMS > 0 {
		m.period = sched.Tick(cfg.Rates.AppManagerMS)
	}
}
