package util

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces requests against the source site. The lister and every pool
// worker share one instance, so the combined request rate stays bounded no
// matter how many workers run.
type Limiter struct {
	lim *rate.Limiter
}

func NewLimiter(reqPerSec float64, burst int) *Limiter {
	if reqPerSec <= 0 {
		reqPerSec = 2
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{lim: rate.NewLimiter(rate.Limit(reqPerSec), burst)}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.lim.Wait(ctx)
}

// SetRate adjusts the sustained rate in place, so a config reload reaches the
// one instance already shared by the lister and the pool workers.
func (l *Limiter) SetRate(reqPerSec float64) {
	if l == nil || reqPerSec <= 0 {
		return
	}
	l.lim.SetLimit(rate.Limit(reqPerSec))
}
