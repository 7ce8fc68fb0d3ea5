package app

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ticksched/internal/board"
	"ticksched/internal/config"
	"ticksched/internal/logging"
	"ticksched/internal/metrics"
	"ticksched/internal/sched"
	"ticksched/internal/tasks"
)

// App is the demo board: peripherals, tasks and the scheduler that polls them.
type App struct {
	Config config.Config
	Clock  sched.Clock

	Board  *board.Board
	Serial *board.Serial

	Tilt     *tasks.TiltSensor
	Reloader *tasks.Reloader
	Debugger *tasks.Debugger // nil when debugging is off
	Manager  *tasks.AppManager
	Blinker  *tasks.Blinker
	Fader    *tasks.Fader

	Scheduler *sched.Scheduler
	Metrics   *metrics.Recorder // nil without a registerer

	log       logging.Logger
	stopClock func()
}

type ParamsNewApp struct {
	Config    config.Config
	Clock     sched.Clock // nil builds one from Config.Clock
	SerialOut io.Writer
	Logger    logging.Logger
	Observers []sched.Observer
	Registry  prometheus.Registerer // optional
}

// New builds every collaborator from the config. Tasks are ordered by
// priority: tilt interrupt, config reload, serial debugger, app manager,
// blinker, fader.
func New(params *ParamsNewApp) (*App, error) {
	cfg := params.Config
	if errValidation := cfg.Validate(); errValidation != nil {
		return nil, errValidation
	}

	log := params.Logger
	a := &App{
		Config:    cfg,
		log:       log,
		stopClock: func() {},
	}

	a.Clock = params.Clock
	if a.Clock == nil {
		a.Clock, a.stopClock = NewClock(cfg.Clock)
	}
	start := a.Clock.Ticks()

	a.Board = board.NewBoard(log)
	a.Serial = board.NewSerial(cfg.Debug.RxBuffer, params.SerialOut)
	a.Board.PinMode(cfg.Pins.TiltSensor, board.ModeInput)

	var debug tasks.DebugWriter
	if cfg.Debug.Enabled {
		a.Debugger = tasks.NewDebugger(a.Serial, cfg.Debug.RatePerSec)
		debug = a.Debugger
	}

	var err error
	a.Blinker, err = tasks.NewBlinker(
		&tasks.ParamsBlinker{
			Pins:      a.Board,
			Debug:     debug,
			Pin:       cfg.Pins.Blinker,
			CycleRate: sched.Tick(cfg.Rates.BlinkerMS),
			Start:     start,
		},
	)
	if err != nil {
		a.stopClock()
		return nil, err
	}

	a.Fader, err = tasks.NewFader(
		&tasks.ParamsFader{
			Pins:      a.Board,
			Pin:       cfg.Pins.Fader,
			CycleRate: sched.Tick(cfg.Rates.FaderMS),
			Start:     start,
		},
	)
	if err != nil {
		a.stopClock()
		return nil, err
	}

	a.Tilt = tasks.NewTiltSensor(cfg.Cycle, debug)
	a.Manager = tasks.NewAppManager(
		&tasks.ParamsAppManager{
			Counter: a.Tilt,
			Target:  a.Blinker,
			Debug:   debug,
			Cycle:   cfg.Cycle,
			Period:  sched.Tick(cfg.Rates.AppManagerMS),
			Start:   start,
		},
	)

	appliers := []tasks.ConfigApplier{a.Tilt, a.Manager, a.Fader}
	if a.Debugger != nil {
		appliers = append(appliers, a.Debugger)
	}
	a.Reloader = tasks.NewReloader(log, appliers...)

	list := []sched.Task{a.Tilt, a.Reloader}
	if a.Debugger != nil {
		list = append(list, a.Debugger)
	}
	list = append(list, a.Manager, a.Blinker, a.Fader)

	observers := append([]sched.Observer(nil), params.Observers...)
	if params.Registry != nil {
		names := make([]string, len(list))
		for i, t := range list {
			names[i] = sched.TaskName(t, i)
		}
		a.Metrics = metrics.NewRecorder(params.Registry, names)
		observers = append(observers, a.Metrics)
	}

	a.Scheduler, err = sched.New(
		&sched.ParamsNewScheduler{
			Tasks:     list,
			Clock:     a.Clock,
			Observers: observers,
			Logger:    log,
		},
	)
	if err != nil {
		a.stopClock()
		return nil, err
	}

	return a, nil
}

// NewClock builds the configured tick source. The returned stop function
// releases a ticker-driven clock and is a no-op otherwise.
func NewClock(cfg config.ClockConfig) (sched.Clock, func()) {
	if cfg.Source == "ticker" {
		c := sched.NewTickClock(sched.Tick(cfg.StartTick))
		c.Start(time.Duration(max(cfg.TickMS, 1)) * time.Millisecond)
		return c, c.Stop
	}

	return sched.NewMillisClock(sched.Tick(cfg.StartTick)), func() {}
}

// Run drives the scheduler until ctx is done, then releases the clock.
func (a *App) Run(ctx context.Context) error {
	defer a.stopClock()

	return a.Scheduler.Run(ctx)
}

// Reload queues cfg for the Reloader task. Safe from any goroutine.
func (a *App) Reload(cfg config.Config) {
	a.Reloader.Offer(cfg)
}

// Pins returns the board state ordered by pin number.
func (a *App) Pins() []board.PinState {
	return a.Board.Snapshot()
}
