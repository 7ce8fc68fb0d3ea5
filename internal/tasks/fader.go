package tasks

import (
	goerrors "github.com/TudorHulban/go-errors"

	"ticksched/internal/board"
	"ticksched/internal/config"
	"ticksched/internal/sched"
)

const (
	fadeMin  = 5
	fadeMax  = 250
	fadeStep = 5
)

// Fader sweeps a PWM output up and down between fadeMin and fadeMax.
type Fader struct {
	sched.TimedTask

	pins       Pins
	pin        int
	cycleRate  sched.Tick
	brightness int
	fadeAmount int
}

type ParamsFader struct {
	Pins      Pins
	Pin       int
	CycleRate sched.Tick
	Start     sched.Tick
}

func NewFader(params *ParamsFader) (*Fader, error) {
	if params.Pins == nil {
		return nil, goerrors.ErrValidation{
			Caller: "NewFader",
			Issue: goerrors.ErrNilInput{
				InputName: "Pins",
			},
		}
	}

	if params.CycleRate == 0 {
		return nil, goerrors.ErrValidation{
			Caller: "NewFader",
			Issue: goerrors.ErrInvalidInput{
				InputName: "CycleRate",
			},
		}
	}

	params.Pins.PinMode(params.Pin, board.ModeOutput)

	return &Fader{
			TimedTask:  sched.NewTimedTask(params.Start),
			pins:       params.Pins,
			pin:        params.Pin,
			cycleRate:  params.CycleRate,
			brightness: fadeMin,
			fadeAmount: fadeStep,
		},
		nil
}

func (f *Fader) Name() string { return "fader" }

func (f *Fader) Run(_ sched.Tick) {
	f.pins.AnalogWrite(f.pin, uint8(f.brightness))

	f.brightness += f.fadeAmount
	if f.brightness <= fadeMin || f.brightness >= fadeMax {
		f.fadeAmount = -f.fadeAmount
	}

	f.IncRunTime(f.cycleRate)
}

func (f *Fader) SetCycleRate(rate sched.Tick) {
	if rate == 0 {
		return
	}
	f.cycleRate = rate
}

func (f *Fader) CycleRate() sched.Tick { return f.cycleRate }

// Brightness is the duty written on the next run.
func (f *Fader) Brightness() int { return f.brightness }

func (f *Fader) EnableLED(enabled bool) {
	if enabled {
		f.pins.PinMode(f.pin, board.ModeOutput)
		return
	}

	f.pins.AnalogWrite(f.pin, 0)
	f.pins.PinMode(f.pin, board.ModeInput)
}

func (f *Fader) ApplyConfig(cfg config.Config) {
	f.SetCycleRate(sched.Tick(cfg.Rates.FaderMS))
}
