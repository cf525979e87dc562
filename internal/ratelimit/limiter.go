// Package ratelimit implements a fixed-window admission counter keyed by
// client, with a shared Redis backend for multi-instance deployments and an
// in-process backend for single-instance ones.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Counter increments the value stored under key and returns the value after
// the increment. A new key must expire after ttl. Increment and expiry setup
// must be a single atomic step for concurrent callers.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Decision is the outcome of one Check.
type Decision struct {
	Allowed    bool
	Count      int64
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	// Err is set when the counter store failed and the fail policy decided.
	Err error
}

type Limiter struct {
	counter  Counter
	rate     Rate
	prefix   string
	failOpen bool
	now      func() time.Time
	log      logrus.FieldLogger
}

type Option func(*Limiter)

func WithKeyPrefix(prefix string) Option {
	return func(l *Limiter) { l.prefix = prefix }
}

// WithFailOpen sets the policy applied when the counter store errors.
func WithFailOpen(failOpen bool) Option {
	return func(l *Limiter) { l.failOpen = failOpen }
}

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Limiter) { l.log = log }
}

// NewLimiter defaults to fail-open; callers pick the policy explicitly via
// WithFailOpen.
func NewLimiter(counter Counter, rate Rate, opts ...Option) (*Limiter, error) {
	if err := rate.Validate(); err != nil {
		return nil, err
	}
	l := &Limiter{
		counter:  counter,
		rate:     rate,
		prefix:   "ratelimit",
		failOpen: true,
		now:      time.Now,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Limiter) Rate() Rate { return l.rate }

func (l *Limiter) FailOpen() bool { return l.failOpen }

// Check records one attempt for clientKey in the current window and reports
// whether it is admitted. The first Rate.Limit attempts of a window are
// admitted; every later one in the same window is rejected.
func (l *Limiter) Check(ctx context.Context, clientKey string) Decision {
	now := l.now()
	period := l.rate.Period
	window := now.UnixNano() / int64(period)
	resetAt := time.Unix(0, (window+1)*int64(period))

	ttl := resetAt.Sub(now)
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	key := fmt.Sprintf("%s:%s:%d", l.prefix, clientKey, window)
	count, err := l.counter.Incr(ctx, key, ttl)
	if err != nil {
		l.log.WithError(err).WithFields(logrus.Fields{
			"client_key": clientKey,
			"fail_open":  l.failOpen,
		}).Warn("rate limit counter unavailable, applying fail policy")
		return Decision{
			Allowed: l.failOpen,
			Limit:   l.rate.Limit,
			ResetAt: resetAt,
			Err:     err,
		}
	}

	d := Decision{
		Allowed: count <= int64(l.rate.Limit),
		Count:   count,
		Limit:   l.rate.Limit,
		ResetAt: resetAt,
	}
	if remaining := int64(l.rate.Limit) - count; remaining > 0 {
		d.Remaining = int(remaining)
	}
	if !d.Allowed {
		d.RetryAfter = resetAt.Sub(now)
	}
	return d
}
