package tasks

import (
	goerrors "github.com/TudorHulban/go-errors"

	"ticksched/internal/board"
	"ticksched/internal/sched"
)

// Blinker toggles an LED every cycleRate ticks.
type Blinker struct {
	sched.TimedTask

	pins      Pins
	pin       int
	cycleRate sched.Tick
	on        bool
	debug     DebugWriter
}

type ParamsBlinker struct {
	Pins      Pins
	Debug     DebugWriter
	Pin       int
	CycleRate sched.Tick
	Start     sched.Tick // first run
}

func (param *ParamsBlinker) IsValid() error {
	if param.Pins == nil {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsBlinker",
			Issue: goerrors.ErrNilInput{
				InputName: "Pins",
			},
		}
	}

	if param.CycleRate == 0 {
		return goerrors.ErrValidation{
			Caller: "IsValid - ParamsBlinker",
			Issue: goerrors.ErrInvalidInput{
				InputName: "CycleRate",
			},
		}
	}

	return nil
}

func NewBlinker(params *ParamsBlinker) (*Blinker, error) {
	if errValidation := params.IsValid(); errValidation != nil {
		return nil, errValidation
	}

	params.Pins.PinMode(params.Pin, board.ModeOutput)

	return &Blinker{
			TimedTask: sched.NewTimedTask(params.Start),
			pins:      params.Pins,
			pin:       params.Pin,
			cycleRate: params.CycleRate,
			debug:     params.Debug,
		},
		nil
}

func (b *Blinker) Name() string { return "blinker" }

func (b *Blinker) Run(_ sched.Tick) {
	if b.on {
		b.pins.DigitalWrite(b.pin, board.Low)
		b.on = false
		debugf(b.debug, "Blinker LED: OFF")
	} else {
		b.pins.DigitalWrite(b.pin, board.High)
		b.on = true
		debugf(b.debug, "Blinker LED: ON")
	}

	b.IncRunTime(b.cycleRate)
}

// SetCycleRate changes the blink period from the next reschedule on.
func (b *Blinker) SetCycleRate(rate sched.Tick) {
	if rate == 0 {
		return
	}
	b.cycleRate = rate
}

func (b *Blinker) CycleRate() sched.Tick { return b.cycleRate }

func (b *Blinker) On() bool { return b.on }

// EnableLED connects or disconnects the output. A disconnected pin ignores
// writes; the blink cadence keeps running.
func (b *Blinker) EnableLED(enabled bool) {
	if enabled {
		b.pins.PinMode(b.pin, board.ModeOutput)
		return
	}

	b.pins.DigitalWrite(b.pin, board.Low)
	b.pins.PinMode(b.pin, board.ModeInput)
}
