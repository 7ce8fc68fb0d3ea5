package job

import (
	"context"
	"time"
)

// Every calls fn once per interval until ctx is done. It blocks, so run it
// on its own goroutine; fn is how the outside world pokes a triggered task.
func Every(ctx context.Context, interval time.Duration, fn func()) error {
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn()
		}
	}
}

// Times is Every with a budget: it returns nil after n calls.
func Times(ctx context.Context, interval time.Duration, n int, fn func()) error {
	if n <= 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	calls := 0
	err := Every(ctx, interval, func() {
		if calls == n {
			return
		}
		fn()
		calls++
		if calls == n {
			cancel()
		}
	})
	if calls == n {
		return nil
	}
	return err
}
