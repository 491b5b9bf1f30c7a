package culturo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrRateLimited is the cause of a call that gave up waiting for the local
// rate limiter.
var ErrRateLimited = errors.New("local rate limit exceeded")

// RateLimitConfig configures the upstream token bucket.
type RateLimitConfig struct {
	RequestsPerMinute int // Sustained rate (default 60)
	BurstSize         int // Bucket size (default: RequestsPerMinute)
	// MaxWait caps how long a call queues for a token. 0 waits until the
	// context ends.
	MaxWait time.Duration
}

// RateLimiter is a token bucket shared by all upstream calls.
type RateLimiter struct {
	mu        sync.Mutex
	tokens    float64
	capacity  float64
	perSecond float64
	last      time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}
	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}
	return &RateLimiter{
		tokens:    burst,
		capacity:  burst,
		perSecond: rpm / 60,
		last:      time.Now(),
		now:       time.Now,
	}
}

// reserve takes a token when one is available. Otherwise it returns how long
// until the next token. Callers must not hold r.mu.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return 0, true
	}
	missing := 1 - r.tokens
	return time.Duration(missing / r.perSecond * float64(time.Second)), false
}

// refill requires r.mu held.
func (r *RateLimiter) refill() {
	now := r.now()
	if elapsed := now.Sub(r.last).Seconds(); elapsed > 0 {
		r.tokens += elapsed * r.perSecond
		if r.tokens > r.capacity {
			r.tokens = r.capacity
		}
	}
	r.last = now
}

// TryAcquire takes a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	_, ok := r.reserve()
	return ok
}

// Wait blocks until a token is taken or ctx ends. When ctx has a deadline
// that falls before the next token, it fails at once with
// context.DeadlineExceeded.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}
		if deadline, has := ctx.Deadline(); has && time.Until(deadline) < wait {
			return context.DeadlineExceeded
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Available returns the current number of tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedProvider throttles calls to a ChatModel.
type RateLimitedProvider struct {
	model   ChatModel
	limiter *RateLimiter
	maxWait time.Duration
}

// NewRateLimitedProvider wraps model with a limiter built from cfg.
func NewRateLimitedProvider(model ChatModel, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{
		model:   model,
		limiter: NewRateLimiter(cfg),
		maxWait: cfg.MaxWait,
	}
}

// Complete implements ChatModel. A call that cannot get a token in time
// fails with a 429 ProviderError wrapping ErrRateLimited, which callers
// report like an upstream rate limit.
func (p *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	waitCtx := ctx
	if p.maxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.maxWait)
		defer cancel()
	}

	if err := p.limiter.Wait(waitCtx); err != nil {
		return "", &ProviderError{
			Message:    "no rate limit token available",
			Cause:      fmt.Errorf("%w: %w", ErrRateLimited, err),
			StatusCode: http.StatusTooManyRequests,
		}
	}
	return p.model.Complete(ctx, req)
}

// Limiter returns the underlying rate limiter.
func (p *RateLimitedProvider) Limiter() *RateLimiter {
	return p.limiter
}
