// Package client is a Go client for the culturo HTTP API, plus the small
// stateful helpers front ends build on (translation form, chat session,
// lesson list).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ZaguanLabs/culturo"
	"github.com/ZaguanLabs/culturo/lessons"
	"github.com/ZaguanLabs/culturo/pronunciation"
)

const (
	// DefaultBaseURL points at a local `culturo serve`.
	DefaultBaseURL = "http://localhost:8080/api"
	defaultTimeout = 90 * time.Second
	maxErrorBody   = 64 * 1024
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	// UserMessage carries the "message" field some endpoints add for display.
	UserMessage string
	Details     json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("culturo api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("culturo api: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the culturo HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// New creates a Client for baseURL, which includes the API base path
// (for example http://localhost:8080/api).
func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  culturo.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TranslateResponse is the body of a successful translation.
type TranslateResponse struct {
	Success            bool   `json:"success"`
	TranslatedText     string `json:"translated_text"`
	LiteralTranslation string `json:"literal_translation"`
	CulturalNotes      string `json:"cultural_notes"`
	SourceLang         string `json:"source_lang"`
	TargetLang         string `json:"target_lang"`
	CulturalContext    string `json:"cultural_context"`
}

// Metadata describes the translation endpoint.
type Metadata struct {
	Message            string                `json:"message"`
	Status             string                `json:"status"`
	Configured         bool                  `json:"configured"`
	SupportedLanguages []string              `json:"supported_languages"`
	Languages          []Language            `json:"languages"`
	CulturalContexts   []culturo.ContextInfo `json:"cultural_contexts"`
}

// Language describes one supported language. Direction is "ltr" or "rtl".
type Language struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
}

// ChatResponse is the tutor's reply as sent over the wire.
type ChatResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// Translate requests a cultural translation.
func (c *Client) Translate(ctx context.Context, req culturo.TranslationRequest) (*TranslateResponse, error) {
	var out TranslateResponse
	if err := c.do(ctx, http.MethodPost, "/translate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Metadata fetches supported languages and cultural contexts.
func (c *Client) Metadata(ctx context.Context) (*Metadata, error) {
	var out Metadata
	if err := c.do(ctx, http.MethodGet, "/translate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat sends one learner message to the tutor.
func (c *Client) Chat(ctx context.Context, req culturo.ChatRequest) (*ChatResponse, error) {
	var out envelope[ChatResponse]
	if err := c.do(ctx, http.MethodPost, "/chat", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

type pronounceBody struct {
	AudioData    string `json:"audioData"`
	TargetPhrase string `json:"targetPhrase"`
	Language     string `json:"language"`
}

// Pronounce scores a recorded attempt. audioData is base64 or a data URL.
func (c *Client) Pronounce(ctx context.Context, audioData, targetPhrase, language string) (*pronunciation.Result, error) {
	if language == "" {
		language = "en"
	}
	var out envelope[pronunciation.Result]
	body := pronounceBody{AudioData: audioData, TargetPhrase: targetPhrase, Language: language}
	if err := c.do(ctx, http.MethodPost, "/pronunciation", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Lessons lists lessons matching filter.
func (c *Client) Lessons(ctx context.Context, filter lessons.Filter) ([]lessons.Lesson, error) {
	q := url.Values{}
	if filter.Language != "" {
		q.Set("language", filter.Language)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	path := "/lessons"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out envelope[[]lessons.Lesson]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []lessons.Lesson{}, nil
	}
	return out.Data, nil
}

// CreateLesson adds a lesson.
func (c *Client) CreateLesson(ctx context.Context, draft lessons.Draft) (*lessons.Lesson, error) {
	var out envelope[lessons.Lesson]
	if err := c.do(ctx, http.MethodPost, "/lessons", draft, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateLessonProgress stores progress for a lesson. The server clamps it to [0, 100].
func (c *Client) UpdateLessonProgress(ctx context.Context, id int64, progress int) (*lessons.Lesson, error) {
	var out envelope[lessons.Lesson]
	path := "/lessons/" + strconv.FormatInt(id, 10) + "/progress"
	if err := c.do(ctx, http.MethodPatch, path, map[string]int{"progress": progress}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var payload struct {
		Error   string          `json:"error"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}
	apiErr.Message = payload.Error
	apiErr.UserMessage = payload.Message
	apiErr.Details = payload.Details
	return apiErr
}
