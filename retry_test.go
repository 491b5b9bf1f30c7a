package culturo

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}
}

func TestWithRetry_PassesAttemptNumber(t *testing.T) {
	var seen []int
	result, err := WithRetry(context.Background(), fastRetry(3), func(attempt int) (string, error) {
		seen = append(seen, attempt)
		if attempt < 2 {
			return "", &ProviderError{Message: "busy", StatusCode: 503, Retryable: true}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q", result)
	}
	if len(seen) != 3 || seen[0] != 0 || seen[2] != 2 {
		t.Errorf("attempts = %v, want [0 1 2]", seen)
	}
}

func TestWithRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastRetry(3), func(int) (string, error) {
		calls++
		return "", &ProviderError{Message: "invalid API key", StatusCode: 401}
	})
	if StatusCode(err) != 401 {
		t.Errorf("err = %v, want 401 ProviderError", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetry_MaxRetriesExceeded(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastRetry(2), func(int) (string, error) {
		calls++
		return "", &ProviderError{Message: "rate limited", StatusCode: 429, Retryable: true}
	})
	if !IsRetryable(err) {
		t.Errorf("last error should be returned as is, got %v", err)
	}
	// first attempt + 2 retries
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetry_OnRetryDelays(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 4, BaseDelay: time.Millisecond, MaxDelay: 3 * time.Millisecond}
	var delays []time.Duration
	cfg.OnRetry = func(retry int, delay time.Duration, err error) {
		if retry != len(delays)+1 {
			t.Errorf("retry = %d, want %d", retry, len(delays)+1)
		}
		delays = append(delays, delay)
	}

	_, _ = WithRetry(context.Background(), cfg, func(int) (int, error) {
		return 0, &ProviderError{Retryable: true}
	})

	want := []time.Duration{time.Millisecond, 2 * time.Millisecond, 3 * time.Millisecond, 3 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestRetryConfig_BackoffOverflow(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, MaxDelay: 30 * time.Second}
	for _, attempt := range []int{5, 40, 62, 100} {
		if d := cfg.backoff(attempt); d != 30*time.Second {
			t.Errorf("backoff(%d) = %v, want 30s", attempt, d)
		}
	}
}

func TestWithRetry_ContextCanceledDuringBackoff(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cfg.OnRetry = func(int, time.Duration, error) { cancel() }

	start := time.Now()
	_, err := WithRetry(ctx, cfg, func(int) (string, error) {
		return "", &ProviderError{Message: "rate limited", Retryable: true}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("cancel should interrupt the backoff sleep")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable", &ProviderError{Retryable: true}, true},
		{"not retryable", &ProviderError{StatusCode: 400}, false},
		{"wrapped retryable", errors.Join(errors.New("ctx"), &ProviderError{Retryable: true}), true},
		{"plain error", errors.New("boom"), false},
		{"context canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	if cfg.MaxRetries != 3 || cfg.BaseDelay != time.Second || cfg.MaxDelay != 30*time.Second {
		t.Errorf("DefaultRetryConfig() = %+v", cfg)
	}
}

type failingModel struct {
	failCount int
	callCount int
	err       error
}

func (m *failingModel) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.callCount++
	if m.callCount <= m.failCount {
		if m.err != nil {
			return "", m.err
		}
		return "", &ProviderError{Message: "temporary failure", StatusCode: 503, Retryable: true}
	}
	return `{"cultural_translation":"Olá"}`, nil
}

func TestRetryableProvider_RecoversAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inner := &failingModel{failCount: 2}
	p := NewRetryableProvider(inner, fastRetry(3), WithRetryLogger(zap.New(core)))

	reply, err := p.Complete(context.Background(), CompletionRequest{UserPrompt: "hello"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != `{"cultural_translation":"Olá"}` {
		t.Errorf("reply = %q", reply)
	}
	if inner.callCount != 3 {
		t.Errorf("calls = %d, want 3", inner.callCount)
	}

	retries := logs.FilterMessage("retrying upstream call").All()
	if len(retries) != 2 {
		t.Fatalf("retry log entries = %d, want 2", len(retries))
	}
	fields := retries[1].ContextMap()
	if fields["retry"] != int64(2) {
		t.Errorf("retry field = %v, want 2", fields["retry"])
	}
	if fields["upstream_status"] != int64(503) {
		t.Errorf("upstream_status field = %v, want 503", fields["upstream_status"])
	}
}

func TestRetryableProvider_GivesUpWithStatus(t *testing.T) {
	inner := &failingModel{failCount: 10, err: &ProviderError{Message: "slow down", StatusCode: 429, Retryable: true}}
	p := NewRetryableProvider(inner, fastRetry(2))

	_, err := p.Complete(context.Background(), CompletionRequest{UserPrompt: "hello"})

	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
	if providerErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", providerErr.StatusCode)
	}
	if providerErr.Retryable {
		t.Error("exhausted retries must not be retried again by an outer layer")
	}
	if providerErr.Message != "giving up after 3 attempts" {
		t.Errorf("Message = %q", providerErr.Message)
	}
	if inner.callCount != 3 {
		t.Errorf("calls = %d, want 3", inner.callCount)
	}
}

func TestRetryableProvider_UnauthorizedNotRetried(t *testing.T) {
	inner := &failingModel{failCount: 5, err: &ProviderError{Message: "bad key", StatusCode: 401}}
	p := NewRetryableProvider(inner, fastRetry(3))

	_, err := p.Complete(context.Background(), CompletionRequest{UserPrompt: "hello"})
	if StatusCode(err) != 401 {
		t.Errorf("expected status 401 to pass through, got %v", err)
	}
	if inner.callCount != 1 {
		t.Errorf("calls = %d, want 1", inner.callCount)
	}
}
