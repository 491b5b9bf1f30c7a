package culturo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls how failed upstream calls are retried.
type RetryConfig struct {
	MaxRetries int           // Retries after the first attempt
	BaseDelay  time.Duration // Delay before the first retry, doubled each time
	MaxDelay   time.Duration // Upper bound for a single delay

	// OnRetry, when set, is called before each backoff sleep with the
	// 1-based retry number.
	OnRetry func(retry int, delay time.Duration, err error)
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// backoff returns the delay before retry number attempt+1.
func (c RetryConfig) backoff(attempt int) time.Duration {
	if attempt > 30 {
		return c.MaxDelay
	}
	d := c.BaseDelay << attempt
	if c.MaxDelay > 0 && (d <= 0 || d > c.MaxDelay) {
		d = c.MaxDelay
	}
	return d
}

// RetryFunc is one attempt of a retried operation; attempt starts at 0.
type RetryFunc[T any] func(attempt int) (T, error)

// WithRetry runs fn until it succeeds, fails with a non-retryable error or
// runs out of retries. Cancelling ctx stops the backoff and returns ctx.Err().
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt >= cfg.MaxRetries {
			return zero, err
		}

		delay := cfg.backoff(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// IsRetryable reports whether err is a ProviderError marked retryable
// (upstream 429, 5xx or a transport failure).
func IsRetryable(err error) bool {
	var providerErr *ProviderError
	return errors.As(err, &providerErr) && providerErr.Retryable
}

// RetryableProvider wraps a ChatModel with exponential-backoff retries.
type RetryableProvider struct {
	model  ChatModel
	config RetryConfig
	logger *zap.Logger
}

// RetryOption configures a RetryableProvider.
type RetryOption func(*RetryableProvider)

// WithRetryLogger logs every retry with its delay and upstream status.
func WithRetryLogger(logger *zap.Logger) RetryOption {
	return func(p *RetryableProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewRetryableProvider wraps model with cfg.
func NewRetryableProvider(model ChatModel, cfg RetryConfig, opts ...RetryOption) *RetryableProvider {
	p := &RetryableProvider{
		model:  model,
		config: cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Complete implements ChatModel. When every attempt fails with a retryable
// error the last one is wrapped in a non-retryable ProviderError that keeps
// its upstream status, so outer layers still see 429 or 5xx.
func (p *RetryableProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	cfg := p.config
	onRetry := p.config.OnRetry
	cfg.OnRetry = func(retry int, delay time.Duration, err error) {
		p.logger.Warn("retrying upstream call",
			zap.Int("retry", retry),
			zap.Int("max_retries", cfg.MaxRetries),
			zap.Duration("delay", delay),
			zap.Int("upstream_status", StatusCode(err)),
			zap.Error(err),
		)
		if onRetry != nil {
			onRetry(retry, delay, err)
		}
	}

	attempts := 0
	reply, err := WithRetry(ctx, cfg, func(attempt int) (string, error) {
		attempts = attempt + 1
		return p.model.Complete(ctx, req)
	})
	if err != nil && attempts > 1 && IsRetryable(err) {
		p.logger.Error("upstream call failed after retries",
			zap.Int("attempts", attempts),
			zap.Int("upstream_status", StatusCode(err)),
		)
		return "", &ProviderError{
			Message:    fmt.Sprintf("giving up after %d attempts", attempts),
			Cause:      err,
			StatusCode: StatusCode(err),
		}
	}
	return reply, err
}
