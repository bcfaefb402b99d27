package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock is the time source used by a Limiter.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Limiter spaces dispatches at least interval apart. It exclusively owns the
// timestamp of the last dispatch; callers sharing a Limiter are serialized
// for the whole check, wait and record sequence.
type Limiter struct {
	slot     chan struct{}
	clock    Clock
	interval time.Duration
	last     time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// NewLimiter returns a Limiter enforcing the given minimum interval.
func NewLimiter(interval time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		slot:     make(chan struct{}, 1),
		clock:    systemClock{},
		interval: interval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait blocks until the caller may dispatch and records the dispatch time.
// It returns ctx.Err() if ctx ends first, in which case no dispatch is
// recorded.
func (l *Limiter) Wait(ctx context.Context) error {
	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.slot }()

	if !l.last.IsZero() {
		if delay := l.interval - l.clock.Now().Sub(l.last); delay > 0 {
			if delay > time.Second {
				log.Debug().Dur("delay", delay).Msg("rate limiter waiting")
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.clock.After(delay):
			}
		}
	}

	l.last = l.clock.Now()
	return nil
}
