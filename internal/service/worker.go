package service

import (
	"context"
	"time"
)

// runLoop calls tick, then waits interval after each tick returns, until ctx
// is canceled. A slow tick delays the next one instead of piling up.
func runLoop(ctx context.Context, interval time.Duration, immediate bool, tick func(context.Context)) {
	if immediate {
		tick(ctx)
	}
	t := time.NewTimer(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick(ctx)
			t.Reset(interval)
		}
	}
}
