// Package ratelimit paces calls to upstream APIs with a token bucket.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

// Limiter is a token bucket whose Wait failures carry RATE_LIMIT_EXCEEDED.
type Limiter struct {
	bucket *rate.Limiter
}

// New allows perSecond calls with bursts of up to burst. perSecond <= 0
// means unlimited.
func New(perSecond float64, burst int) *Limiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Limiter{bucket: rate.NewLimiter(limit, max(burst, 1))}
}

// Wait blocks for a token. A cancelled or too-short context fails with
// RATE_LIMIT_EXCEEDED.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.bucket.Wait(ctx); err != nil {
		return apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}
	return nil
}

// Allow takes a token if one is available now.
func (l *Limiter) Allow() bool { return l.bucket.Allow() }
