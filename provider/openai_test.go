package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZaguanLabs/culturo"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okBody = `{"id":"c1","object":"chat.completion","model":"deepseek-chat",
"choices":[{"index":0,"message":{"role":"assistant","content":"Olá!"},"finish_reason":"stop"}]}`

func TestOpenAIProvider_Complete(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, okBody, &captured)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1/"})
	reply, err := p.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "system",
		UserPrompt:   "Hello",
		Temperature:  0.4,
		MaxTokens:    2000,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "Olá!" {
		t.Errorf("reply = %q", reply)
	}

	if captured.Model != DefaultModel {
		t.Errorf("model = %q, want %q", captured.Model, DefaultModel)
	}
	if captured.MaxTokens != 2000 {
		t.Errorf("max_tokens = %d", captured.MaxTokens)
	}
	if captured.Temperature != 0.4 {
		t.Errorf("temperature = %v", captured.Temperature)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != "Hello" {
		t.Errorf("unexpected messages: %+v", captured.Messages)
	}
}

func TestOpenAIProvider_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Authentication Fails","type":"authentication_error"}}`, false},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"rate_limit_error"}}`, true},
		{"server error without json", http.StatusBadGateway, `upstream down`, true},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad","type":"invalid_request_error"}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.body, nil)
			p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

			_, err := p.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
			var provErr *culturo.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("expected ProviderError, got %T: %v", err, err)
			}
			if provErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", provErr.StatusCode, tt.status)
			}
			if provErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", provErr.Retryable, tt.retryable)
			}
			if culturo.StatusCode(err) != tt.status {
				t.Errorf("culturo.StatusCode = %d", culturo.StatusCode(err))
			}
		})
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"id":"c1","object":"chat.completion","choices":[]}`, nil)
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	_, err := p.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	var provErr *culturo.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if !provErr.Retryable {
		t.Error("empty choices should be retryable")
	}
}

func TestOpenAIProvider_Defaults(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k"})
	if p.Model() != DefaultModel {
		t.Errorf("Model() = %q", p.Model())
	}

	p = NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "deepseek-reasoner"})
	if p.Model() != "deepseek-reasoner" {
		t.Errorf("Model() = %q", p.Model())
	}
}

func TestIsRetryable(t *testing.T) {
	if isRetryable(0, context.Canceled) {
		t.Error("cancellation should not be retryable")
	}
	if !isRetryable(0, errors.New("dial tcp: connection refused")) {
		t.Error("connection refused should be retryable")
	}
	if isRetryable(0, errors.New("something odd")) {
		t.Error("unknown errors should not be retryable")
	}
	if !isRetryable(503, errors.New("x")) {
		t.Error("503 should be retryable")
	}
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider("first", "second")

	ctx := context.Background()
	for i, want := range []string{"first", "second", "second"} {
		got, err := m.Complete(ctx, CompletionRequest{UserPrompt: "q"})
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d: got %q, want %q", i, got, want)
		}
	}

	if m.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3", m.CallCount())
	}
	if m.LastRequest() == nil || m.LastRequest().UserPrompt != "q" {
		t.Errorf("LastRequest = %+v", m.LastRequest())
	}

	m.Reset()
	if m.CallCount() != 0 || m.LastRequest() != nil {
		t.Error("Reset should clear state")
	}

	m.Err = errors.New("boom")
	if _, err := m.Complete(ctx, CompletionRequest{}); err == nil {
		t.Error("expected configured error")
	}
}
