// Package ratelimit throttles reference resolution against slow or shared
// backing stores.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/jacoelho/objsearch/internal/object"
)

type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative limit for no rate limiting.
func New(resolutionsPerSecond float64) *Limiter {
	if resolutionsPerSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	// Burst of 1: the first resolution runs immediately, later ones are spaced.
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(resolutionsPerSecond), 1),
	}
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Limit reports resolutions per second, 0 when unlimited.
func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}

// Resolver waits for the limiter before every resolution it forwards.
type Resolver struct {
	ctx     context.Context
	limiter *Limiter
	next    object.Resolver
}

// Wrap throttles next with l. When ctx ends, pending and later resolutions
// fail with an error wrapping object.ErrUnresolved, so a search sees them as
// failed branches and finishes with what it has.
func (l *Limiter) Wrap(ctx context.Context, next object.Resolver) *Resolver {
	return &Resolver{ctx: ctx, limiter: l, next: next}
}

func (r *Resolver) Resolve(ref object.Reference) (object.Value, error) {
	if err := r.limiter.Wait(r.ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: throttled: %v", object.ErrUnresolved, ref, err)
	}
	return r.next.Resolve(ref)
}
