package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck reports unhealthy when the goroutine count exceeds the
// threshold. Used as a liveness probe to catch goroutine leaks.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}

// Pinger is anything with a context-aware ping, such as a Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck reports unhealthy when the ping fails. Used as a readiness probe
// for backing stores.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}
