package board

import (
	"sync"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"

	"ticksched/internal/logging"
)

type Mode int

const (
	ModeInput Mode = iota
	ModeOutput
)

func (m Mode) String() string {
	if m == ModeOutput {
		return "output"
	}
	return "input"
}

type Level int

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// PinState is the observable state of one pin.
type PinState struct {
	Pin    int
	Mode   Mode
	Level  Level
	Duty   uint8  // last PWM duty, 0 when driven digitally
	Writes uint64 // digital and analog writes since start
}

// Board is a bank of pins keyed by pin number.
type Board struct {
	mu   sync.Mutex
	pins *redblacktree.Tree // pin number -> *PinState
	log  logging.Logger
}

func NewBoard(log logging.Logger) *Board {
	return &Board{
		pins: redblacktree.NewWith(utils.IntComparator),
		log:  log.With(logging.String("component", "board")),
	}
}

func (b *Board) pinLocked(pin int) *PinState {
	if v, found := b.pins.Get(pin); found {
		return v.(*PinState)
	}

	st := &PinState{Pin: pin}
	b.pins.Put(pin, st)
	return st
}

// PinMode configures a pin. Switching to input drops the output level.
func (b *Board) PinMode(pin int, mode Mode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.pinLocked(pin)
	st.Mode = mode
	if mode == ModeInput {
		st.Level = Low
		st.Duty = 0
	}
}

// DigitalWrite drives an output pin. Writes to input pins are ignored,
// like writes to a disabled port.
func (b *Board) DigitalWrite(pin int, level Level) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.pinLocked(pin)
	if st.Mode != ModeOutput {
		return
	}
	st.Level = level
	st.Duty = 0
	st.Writes++

	if b.log.Enabled(logging.LevelTrace) {
		b.log.Trace("digital write", logging.Int("pin", pin), logging.String("level", level.String()))
	}
}

// DigitalRead returns the pin level.
func (b *Board) DigitalRead(pin int) Level {
	b.mu.Lock()
	defer b.mu.Unlock()

	if v, found := b.pins.Get(pin); found {
		return v.(*PinState).Level
	}
	return Low
}

// AnalogWrite sets a PWM duty cycle on an output pin. Any non-zero duty reads
// back as High.
func (b *Board) AnalogWrite(pin int, duty uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.pinLocked(pin)
	if st.Mode != ModeOutput {
		return
	}
	st.Duty = duty
	st.Level = Low
	if duty > 0 {
		st.Level = High
	}
	st.Writes++

	if b.log.Enabled(logging.LevelTrace) {
		b.log.Trace("analog write", logging.Int("pin", pin), logging.Int("duty", int(duty)))
	}
}

// Pin returns a copy of one pin's state.
func (b *Board) Pin(pin int) (PinState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if v, found := b.pins.Get(pin); found {
		return *v.(*PinState), true
	}
	return PinState{}, false
}

// Snapshot returns every touched pin, ordered by pin number.
func (b *Board) Snapshot() []PinState {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]PinState, 0, b.pins.Size())
	it := b.pins.Iterator()
	for it.Next() {
		out = append(out, *it.Value().(*PinState))
	}
	return out
}
