// Package board simulates the microcontroller peripherals the tasks drive:
// a pin bank with digital and PWM output, and a serial port with a fixed-size
// receive buffer.
//
// Both are safe for concurrent use. Tasks write from the scheduling goroutine
// while producers (stdin, snapshots, interrupt simulators) run elsewhere.
package board
