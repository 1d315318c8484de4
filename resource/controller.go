// Package resource admits work under concurrency and rate limits.
package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrRateLimited is returned when the token bucket is empty.
	ErrRateLimited = errors.New("resource: rate limit exceeded")

	// ErrBusy is returned when every in-flight slot is taken.
	ErrBusy = errors.New("resource: too many requests in flight")
)

// Config holds resource limits.
type Config struct {
	// RequestsPerSecond is the sustained admission rate.
	// If 0, unlimited.
	RequestsPerSecond float64

	// Burst is the token bucket size. If 0, defaults to max(1, RequestsPerSecond).
	Burst int

	// MaxInFlight is the maximum number of concurrently admitted requests.
	// If 0, unlimited.
	MaxInFlight int64
}

// Controller manages request admission.
// A nil *Controller admits everything.
type Controller struct {
	cfg Config

	// Concurrency
	inflight *semaphore.Weighted // nil if unlimited
	active   atomic.Int64

	// Rate
	limiter *rate.Limiter // nil if unlimited

	rejected atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxInFlight > 0 {
		c.inflight = semaphore.NewWeighted(cfg.MaxInFlight)
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = max(1, int(cfg.RequestsPerSecond))
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return c
}

// TryAdmit admits one request without blocking. On success the returned
// release func must be called once the request is done.
func (c *Controller) TryAdmit() (release func(), err error) {
	if c == nil {
		return func() {}, nil
	}

	if c.inflight != nil && !c.inflight.TryAcquire(1) {
		c.rejected.Add(1)
		return nil, ErrBusy
	}
	if c.limiter != nil && !c.limiter.Allow() {
		if c.inflight != nil {
			c.inflight.Release(1)
		}
		c.rejected.Add(1)
		return nil, ErrRateLimited
	}

	return c.admitted(), nil
}

// Admit waits until a request may proceed or ctx is done.
func (c *Controller) Admit(ctx context.Context) (release func(), err error) {
	if c == nil {
		return func() {}, nil
	}

	if c.inflight != nil {
		if err := c.inflight.Acquire(ctx, 1); err != nil {
			return nil, err
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if c.inflight != nil {
				c.inflight.Release(1)
			}
			return nil, err
		}
	}

	return c.admitted(), nil
}

func (c *Controller) admitted() func() {
	c.active.Add(1)
	var once atomic.Bool
	return func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		c.active.Add(-1)
		if c.inflight != nil {
			c.inflight.Release(1)
		}
	}
}

// InFlight returns the number of admitted requests not yet released.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.active.Load()
}

// Rejected returns how many TryAdmit calls were turned away.
func (c *Controller) Rejected() int64 {
	if c == nil {
		return 0
	}
	return c.rejected.Load()
}
