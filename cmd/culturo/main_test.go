package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/culturo/internal/config"
)

const fakeReply = `Aqui está: {"cultural_translation":"Bom dia, pessoal!","literal_translation":"Bom dia, todos!","cultural_notes":"Saudação calorosa."}`

// newFakeUpstream answers every chat completion with reply.
func newFakeUpstream(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		body := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "deepseek-chat",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// isolate keeps tests away from a developer's culturo.yaml and API key.
func isolate(t *testing.T) {
	t.Helper()
	testChdir(t, t.TempDir())
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("CULTURO_API_KEY", "")
	t.Setenv("CULTURO_BASE_URL", "")
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"version"}, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "culturo") {
		t.Errorf("expected version output, got: %s", stdout.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"frobnicate"}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestRun_TranslateMissingAPIKey(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate", "hello"}, &stdout, &stderr)
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "API key required") {
		t.Errorf("expected API key error, got: %v", err)
	}
}

func TestRun_TranslateEmptyText(t *testing.T) {
	isolate(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate", "   "}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "text is required") {
		t.Fatalf("expected text error, got %v", err)
	}
}

func TestRun_TranslateJSON(t *testing.T) {
	isolate(t)
	upstream := newFakeUpstream(t, fakeReply)
	t.Setenv("DEEPSEEK_API_KEY", "test-key")
	t.Setenv("CULTURO_BASE_URL", upstream.URL+"/v1")

	var stdout, stderr bytes.Buffer
	err := run([]string{"translate", "Good morning, everyone!", "--to", "pt", "--context", "casual", "--json"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, stderr.String())
	}

	var out translateOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout.String())
	}
	if out.CulturalTranslation != "Bom dia, pessoal!" {
		t.Errorf("unexpected translation %q", out.CulturalTranslation)
	}
	if out.CulturalContext != "casual" || out.TargetLang != "pt" {
		t.Errorf("unexpected metadata %+v", out)
	}
}

func TestRun_TranslateText(t *testing.T) {
	isolate(t)
	upstream := newFakeUpstream(t, fakeReply)
	t.Setenv("DEEPSEEK_API_KEY", "test-key")
	t.Setenv("CULTURO_BASE_URL", upstream.URL+"/v1")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"translate", "Good morning", "-q"}, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := stdout.String()
	if !strings.HasPrefix(out, "Bom dia, pessoal!\n") {
		t.Errorf("expected translation first, got %q", out)
	}
	if !strings.Contains(out, "Notes: Saudação calorosa.") {
		t.Errorf("expected notes, got %q", out)
	}
	if stderr.Len() != 0 {
		t.Errorf("expected quiet stderr, got %q", stderr.String())
	}
}

func TestRun_TranslateWarnsOnUnsupportedLanguage(t *testing.T) {
	isolate(t)
	upstream := newFakeUpstream(t, fakeReply)
	t.Setenv("DEEPSEEK_API_KEY", "test-key")
	t.Setenv("CULTURO_BASE_URL", upstream.URL+"/v1")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"translate", "Good morning", "--to", "tlh", "--json"}, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr.String(), `language "tlh" is not in the supported list`) {
		t.Errorf("expected unsupported language warning, got %q", stderr.String())
	}
	if strings.Contains(stderr.String(), `language "en"`) {
		t.Errorf("en should not be flagged, got %q", stderr.String())
	}
}

func TestBuildApp_ServesAPI(t *testing.T) {
	upstream := newFakeUpstream(t, fakeReply)

	cfg := config.Default()
	cfg.Provider.APIKey = "test-key"
	cfg.Provider.BaseURL = upstream.URL + "/v1"
	cfg.Lessons.Backend = config.LessonsSQLite
	cfg.Lessons.DSN = "file:buildapp?mode=memory&cache=shared"
	cfg.Retry.Enabled = true
	cfg.RateLimit.Enabled = true

	a, err := buildApp(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/translate", "application/json",
		strings.NewReader(`{"text":"Good morning","source_lang":"en","target_lang":"pt"}`))
	if err != nil {
		t.Fatalf("POST translate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["translated_text"] != "Bom dia, pessoal!" {
		t.Fatalf("unexpected payload %v", payload)
	}

	lessonsResp, err := http.Get(srv.URL + "/api/lessons?category=travel")
	if err != nil {
		t.Fatalf("GET lessons: %v", err)
	}
	defer lessonsResp.Body.Close()
	var list struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(lessonsResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode lessons: %v", err)
	}
	if len(list.Data) != 1 {
		t.Fatalf("expected the seeded travel lesson, got %d", len(list.Data))
	}
}

func TestBuildApp_WithoutAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Kind = "none"

	a, err := buildApp(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer a.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/translate",
		strings.NewReader(`{"text":"hi","source_lang":"en","target_lang":"pt"}`))
	a.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "DeepSeek API key não configurada") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
