// Package tasks holds the application tasks of the demo board: a blinking
// LED, a PWM fader, a serial debugger, a tilt sensor interrupt, the manager
// that ties tilt activity to the blink rate, and a config reloader.
//
// Every task is meant to be polled by a single sched.Scheduler. Only the
// methods documented as safe (Interrupt, Offer) may be called from other
// goroutines.
package tasks
