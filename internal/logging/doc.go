// Package logging configures ticksched's structured logging.
//
// Logger is a small value-type wrapper on top of zerolog:
//   - Console output readable (short timestamp + short caller)
//   - JSON output for machine consumption
//   - Zero value is a safe no-op, so collaborators never nil-check
package logging
