package culturo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptyReply indicates the upstream model answered with no content.
	ErrEmptyReply = errors.New("empty reply from model")
	// ErrNoJSONObject indicates a reply contains no '{' ... '}' span.
	ErrNoJSONObject = errors.New("no JSON object found")
	// ErrMalformedJSON indicates the extracted span is not valid JSON.
	ErrMalformedJSON = errors.New("malformed JSON object")
)

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates an upstream model failure (API error, rate limit, etc.).
type ProviderError struct {
	Message    string
	Cause      error
	StatusCode int  // HTTP status returned by the upstream API, 0 if unknown
	Retryable  bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		if e.Cause != nil {
			return fmt.Sprintf("provider error (status %d): %s: %v", e.StatusCode, e.Message, e.Cause)
		}
		return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ValidationError lists request fields that failed validation, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := e.FieldNames()
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldNames returns the invalid field names in sorted order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StatusCode extracts the upstream HTTP status from err, or 0.
func StatusCode(err error) int {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.StatusCode
	}
	return 0
}
