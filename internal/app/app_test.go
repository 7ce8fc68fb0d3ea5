package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	goerrors "github.com/TudorHulban/go-errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"ticksched/internal/board"
	"ticksched/internal/config"
	"ticksched/internal/logging"
	"ticksched/internal/sched"
)

func newTestApp(t *testing.T, cfg config.Config) (*App, *sched.TickClock, *bytes.Buffer) {
	t.Helper()

	clock := sched.NewTickClock(0)
	var out bytes.Buffer

	a, errCr := New(
		&ParamsNewApp{
			Config:    cfg,
			Clock:     clock,
			SerialOut: &out,
			Logger:    logging.Nop(),
		},
	)
	require.NoError(t, errCr)
	require.NotNil(t, a)

	return a, clock, &out
}

func TestErrorsApp(t *testing.T) {
	t.Run(
		"1. invalid clock source",
		func(t *testing.T) {
			cfg := config.Default()
			cfg.Clock.Source = "sundial"

			a, errCr := New(&ParamsNewApp{Config: cfg})
			require.Error(t, errCr)
			require.Nil(t, a)

			var errService goerrors.ErrServiceValidation
			require.ErrorAs(t, errCr, &errService)
		},
	)

	t.Run(
		"2. thresholds out of order",
		func(t *testing.T) {
			cfg := config.Default()
			cfg.Cycle.ThresholdMedium = cfg.Cycle.ThresholdFast + 1

			a, errCr := New(&ParamsNewApp{Config: cfg})
			require.Error(t, errCr)
			require.Nil(t, a)
		},
	)
}

func TestPriorityOrder(t *testing.T) {
	t.Run(
		"1. debugging on",
		func(t *testing.T) {
			a, _, _ := newTestApp(t, config.Default())

			require.Equal(t,
				[]string{"tilt", "reloader", "debugger", "app-manager", "blinker", "fader"},
				a.Scheduler.Names(),
			)
			require.NotNil(t, a.Debugger)
		},
	)

	t.Run(
		"2. debugging off",
		func(t *testing.T) {
			cfg := config.Default()
			cfg.Debug.Enabled = false

			a, _, out := newTestApp(t, cfg)

			require.Equal(t,
				[]string{"tilt", "reloader", "app-manager", "blinker", "fader"},
				a.Scheduler.Names(),
			)
			require.Nil(t, a.Debugger)

			for range 3 {
				a.Scheduler.Pass()
			}
			require.Empty(t, out.String())
		},
	)
}

func TestPinsAfterNew(t *testing.T) {
	cfg := config.Default()
	a, _, _ := newTestApp(t, cfg)

	pins := a.Pins()
	require.Len(t, pins, 3)

	byPin := make(map[int]board.PinState, len(pins))
	for _, p := range pins {
		byPin[p.Pin] = p
	}
	require.Equal(t, board.ModeInput, byPin[cfg.Pins.TiltSensor].Mode)
	require.Equal(t, board.ModeOutput, byPin[cfg.Pins.Blinker].Mode)
	require.Equal(t, board.ModeOutput, byPin[cfg.Pins.Fader].Mode)
}

func TestDispatchSequence(t *testing.T) {
	cfg := config.Default()
	a, clock, out := newTestApp(t, cfg)

	// Every timed task is due at the start tick; one runs per pass.
	require.Equal(t, 3, a.Scheduler.Pass())
	require.Equal(t, 4, a.Scheduler.Pass())
	require.Equal(t, 5, a.Scheduler.Pass())
	require.Equal(t, -1, a.Scheduler.Pass())

	require.True(t, a.Blinker.On())
	require.Contains(t, out.String(), "Blinker LED: ON\r\n")

	a.Tilt.Interrupt()
	a.Tilt.Interrupt()
	require.Equal(t, 0, a.Scheduler.Pass())
	require.Equal(t, cfg.Cycle.Increment, a.Tilt.CycleCount())
	require.Equal(t, uint64(2), a.Tilt.Interrupts())

	_, errWrite := a.Serial.Write([]byte("hi"))
	require.NoError(t, errWrite)
	require.Equal(t, 2, a.Scheduler.Pass())
	require.Contains(t, out.String(), "Bytes Received: 2")

	// Fader is due again first, at FaderMS.
	clock.Advance(sched.Tick(cfg.Rates.FaderMS))
	require.Equal(t, 5, a.Scheduler.Pass())

	clock.Advance(sched.Tick(cfg.Rates.AppManagerMS - cfg.Rates.FaderMS))
	require.Equal(t, 3, a.Scheduler.Pass())
	require.Equal(t, cfg.Cycle.Increment-1, a.Tilt.CycleCount())
}

func TestTiltActivitySpeedsUpBlinker(t *testing.T) {
	cfg := config.Default()
	cfg.Debug.Enabled = false
	a, clock, _ := newTestApp(t, cfg)

	for a.Tilt.CycleCount() <= cfg.Cycle.ThresholdFast {
		a.Tilt.Interrupt()
		require.Equal(t, 0, a.Scheduler.Pass())
	}

	// The app manager is due at the start tick.
	require.Equal(t, 2, a.Scheduler.Pass())
	require.Equal(t, sched.Tick(cfg.Cycle.RateFastMS), a.Blinker.CycleRate())

	// With no more tilts the count decays back under the thresholds.
	period := sched.Tick(cfg.Rates.AppManagerMS)
	for range 200 {
		clock.Advance(period)
		for a.Scheduler.Pass() >= 0 {
		}
	}
	require.Equal(t, cfg.Cycle.ThresholdSlow, a.Tilt.CycleCount())
	require.Equal(t, sched.Tick(cfg.Cycle.RateSlowMS), a.Blinker.CycleRate())
}

func TestReloadAppliesOnNextPass(t *testing.T) {
	cfg := config.Default()
	a, _, _ := newTestApp(t, cfg)

	next := cfg
	next.Rates.FaderMS = 50
	next.Cycle.Max = 20

	a.Reload(next)
	require.Equal(t, sched.Tick(cfg.Rates.FaderMS), a.Fader.CycleRate())

	require.Equal(t, 1, a.Scheduler.Pass())
	require.Equal(t, sched.Tick(50), a.Fader.CycleRate())
	require.Equal(t, uint64(1), a.Reloader.Applied())

	for range 10 {
		a.Tilt.Interrupt()
		a.Scheduler.Pass()
	}
	require.Equal(t, 20, a.Tilt.CycleCount())
}

func TestMetricsWiring(t *testing.T) {
	reg := prometheus.NewRegistry()

	a, errCr := New(
		&ParamsNewApp{
			Config:   config.Default(),
			Clock:    sched.NewTickClock(0),
			Logger:   logging.Nop(),
			Registry: reg,
		},
	)
	require.NoError(t, errCr)
	require.NotNil(t, a.Metrics)

	a.Scheduler.Pass()
	a.Scheduler.Pass()

	require.Equal(t, 2.0, testutil.ToFloat64(a.Metrics.Passes))
	require.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.Dispatches.WithLabelValues("app-manager")))
	require.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.Dispatches.WithLabelValues("blinker")))
}

func TestRunWithTickerClock(t *testing.T) {
	cfg := config.Default()
	cfg.Clock.Source = "ticker"
	cfg.Clock.TickMS = 1
	cfg.Debug.Enabled = false

	var events []sched.StatusKind
	obs := sched.ObserverFunc(func(ev sched.StatusEvent) {
		if ev.Kind != sched.StatusIdle {
			events = append(events, ev.Kind)
		}
	})

	a, errCr := New(
		&ParamsNewApp{
			Config:    cfg,
			Logger:    logging.Nop(),
			Observers: []sched.Observer{obs},
		},
	)
	require.NoError(t, errCr)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, a.Run(ctx))

	require.Equal(t, sched.StatusStart, events[0])
	require.Equal(t, sched.StatusStop, events[len(events)-1])

	var dispatched int
	for _, k := range events {
		if k == sched.StatusDispatch {
			dispatched++
		}
	}
	require.GreaterOrEqual(t, dispatched, 3)
}

func TestNewClock(t *testing.T) {
	t.Run(
		"1. millis",
		func(t *testing.T) {
			c, stop := NewClock(config.ClockConfig{Source: "millis", StartTick: 42})
			defer stop()

			_, isMillis := c.(*sched.MillisClock)
			require.True(t, isMillis)
			require.GreaterOrEqual(t, c.Ticks(), sched.Tick(42))
		},
	)

	t.Run(
		"2. ticker",
		func(t *testing.T) {
			c, stop := NewClock(config.ClockConfig{Source: "ticker", TickMS: 1, StartTick: 7})
			defer stop()

			_, isTicker := c.(*sched.TickClock)
			require.True(t, isTicker)
			require.Eventually(t,
				func() bool { return c.Ticks() > 7 },
				time.Second,
				5*time.Millisecond,
			)
		},
	)
}
