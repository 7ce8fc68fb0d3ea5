package tasks

import (
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/time/rate"

	"ticksched/internal/config"
	"ticksched/internal/sched"
)

const debugRule = "-----------------"

// Debugger echoes serial input as a byte dump and gives other tasks a
// rate-limited line printer.
type Debugger struct {
	serial  SerialPort
	limiter *rate.Limiter
	dropped atomic.Uint64
}

// NewDebugger prints at most ratePerSec debug lines per second; 0 means no limit.
func NewDebugger(serial SerialPort, ratePerSec int) *Debugger {
	return &Debugger{
		serial:  serial,
		limiter: newDebugLimiter(ratePerSec),
	}
}

// newDebugLimiter starts with a full burst of one second's worth of lines.
func newDebugLimiter(ratePerSec int) *rate.Limiter {
	if ratePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)
}

func (d *Debugger) Name() string { return "debugger" }

// CanRun is true while received bytes are waiting.
func (d *Debugger) CanRun(_ sched.Tick) bool {
	return d.serial.Available() > 0
}

// Run drains the receive buffer and prints every byte with its code.
func (d *Debugger) Run(_ sched.Tick) {
	var sb strings.Builder
	count := 0

	sb.WriteString(debugRule + "\r\nInput Received...\r\n" + debugRule + "\r\n")
	for d.serial.Available() > 0 {
		c, err := d.serial.ReadByte()
		if err != nil {
			break
		}
		fmt.Fprintf(&sb, "%q = %d\r\n", rune(c), c)
		count++
	}
	fmt.Fprintf(&sb, "%s\r\nBytes Received: %d\r\n%s\r\n", debugRule, count, debugRule)

	d.serial.Print(sb.String())
}

// DebugWrite prints msg unless the rate limit is exhausted.
func (d *Debugger) DebugWrite(msg string) {
	if !d.limiter.Allow() {
		d.dropped.Add(1)
		return
	}
	d.serial.Println(msg)
}

// Dropped counts debug lines suppressed by the rate limit.
func (d *Debugger) Dropped() uint64 { return d.dropped.Load() }

func (d *Debugger) ApplyConfig(cfg config.Config) {
	d.limiter = newDebugLimiter(cfg.Debug.RatePerSec)
}
