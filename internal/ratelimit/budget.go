// Package ratelimit provides the process-wide exchange request budget. Every
// submit/cancel path acquires from the same budget before touching the
// network, so total exchange throughput stays bounded no matter how many
// batches or strategies are running.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

type Budget struct {
	limiter *rate.Limiter
}

// New builds a budget of perMinute requests with the given burst. Acquire
// blocks once the budget is exhausted instead of letting the call fire.
func New(perMinute, burst int) *Budget {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &Budget{limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)}
}

func (b *Budget) Acquire(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}
