package tasks

import (
	"fmt"

	"ticksched/internal/board"
	"ticksched/internal/config"
)

// Pins is the part of the board output tasks drive.
type Pins interface {
	PinMode(pin int, mode board.Mode)
	DigitalWrite(pin int, level board.Level)
	AnalogWrite(pin int, duty uint8)
}

// DebugWriter prints one diagnostic line. Tasks take a nil DebugWriter to
// mean debugging is off, so never pass a typed nil.
type DebugWriter interface {
	DebugWrite(msg string)
}

// SerialPort is what the Debugger reads from and prints to.
type SerialPort interface {
	Available() int
	ReadByte() (byte, error)
	Print(str string)
	Println(str string)
}

// ConfigApplier takes a reloaded config. It is called on the scheduling
// goroutine, so it may touch task state directly.
type ConfigApplier interface {
	ApplyConfig(cfg config.Config)
}

func debugf(d DebugWriter, format string, args ...any) {
	if d == nil {
		return
	}
	d.DebugWrite(fmt.Sprintf(format, args...))
}
