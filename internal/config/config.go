// Package config loads culturo settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "culturo.yaml"

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Provider  ProviderConfig  `yaml:"provider"`
	Cache     CacheConfig     `yaml:"cache"`
	Lessons   LessonsConfig   `yaml:"lessons"`
	Retry     RetryConfig     `yaml:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// RequestTimeout bounds each request, upstream model call included. 0 disables it.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

// ProviderConfig configures the upstream chat model.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Configured reports whether an API key is present.
func (p ProviderConfig) Configured() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

// CacheConfig selects the translation cache backend.
type CacheConfig struct {
	Kind       string        `yaml:"kind"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	RedisURL   string        `yaml:"redis_url"`
	KeyPrefix  string        `yaml:"key_prefix"`
}

// LessonsConfig selects the lesson storage backend.
type LessonsConfig struct {
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
}

// RetryConfig enables exponential-backoff retries of upstream calls.
type RetryConfig struct {
	Enabled    bool          `yaml:"enabled"`
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
}

// RateLimitConfig enables client-side throttling of upstream calls.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Burst             int           `yaml:"burst"`
	MaxWait           time.Duration `yaml:"max_wait"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Backend names.
const (
	LessonsMemory = "memory"
	LessonsSQLite = "sqlite"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BasePath:        "/api",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  60 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Provider: ProviderConfig{
			BaseURL: "https://api.deepseek.com/v1",
			Model:   "deepseek-chat",
		},
		Cache: CacheConfig{
			Kind:       "memory",
			TTL:        24 * time.Hour,
			MaxEntries: 1000,
			KeyPrefix:  "culturo:",
		},
		Lessons: LessonsConfig{
			Backend: LessonsMemory,
			DSN:     "file:culturo.db?cache=shared&_fk=1",
		},
		Retry: RetryConfig{
			MaxRetries: 3,
			BaseDelay:  time.Second,
			MaxDelay:   30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			MaxWait:           10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

type loaderOptions struct {
	envMap       map[string]string
	useSystemEnv bool
}

// Option customises Load.
type Option func(*loaderOptions)

// WithEnvMap injects explicit environment values. They take precedence over
// system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment, in that order. An empty path means DefaultFile; a missing
// file is not an error.
func Load(path string, opts ...Option) (Config, error) {
	options := loaderOptions{useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := readFile(path, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return Config{}, err
		}
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			return os.LookupEnv(key)
		}
		return "", false
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	cfg.Server.BasePath = normalizeBasePath(cfg.Server.BasePath)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	setString("DEEPSEEK_API_KEY", &cfg.Provider.APIKey)
	setString("CULTURO_API_KEY", &cfg.Provider.APIKey)
	setString("CULTURO_BASE_URL", &cfg.Provider.BaseURL)
	setString("CULTURO_MODEL", &cfg.Provider.Model)
	setString("CULTURO_ADDR", &cfg.Server.Addr)
	setString("CULTURO_BASE_PATH", &cfg.Server.BasePath)
	setString("CULTURO_CACHE", &cfg.Cache.Kind)
	setString("CULTURO_REDIS_URL", &cfg.Cache.RedisURL)
	setString("CULTURO_LESSONS_BACKEND", &cfg.Lessons.Backend)
	setString("CULTURO_LESSONS_DSN", &cfg.Lessons.DSN)
	setString("LOG_LEVEL", &cfg.Log.Level)

	if v, ok := lookup("CULTURO_REQUEST_TIMEOUT"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CULTURO_REQUEST_TIMEOUT: %w", err)
		}
		cfg.Server.RequestTimeout = d
	}
	if v, ok := lookup("CULTURO_RETRY"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CULTURO_RETRY: %w", err)
		}
		cfg.Retry.Enabled = b
	}
	if v, ok := lookup("CULTURO_RATE_LIMIT_RPM"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CULTURO_RATE_LIMIT_RPM: %w", err)
		}
		cfg.RateLimit.Enabled = n > 0
		cfg.RateLimit.RequestsPerMinute = n
	}
	return nil
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

// Validate checks enumerations and ranges. A missing API key is allowed;
// translate requests then fail with a configuration error.
func (c Config) Validate() error {
	return validation.Errors{
		"server.addr":       validation.Validate(c.Server.Addr, validation.Required),
		"server.max_body":   validation.Validate(c.Server.MaxBodyBytes, validation.Min(int64(1))),
		"provider.model":    validation.Validate(c.Provider.Model, validation.Required),
		"cache.kind":        validation.Validate(c.Cache.Kind, validation.In("memory", "redis", "none")),
		"cache.redis_url":   validation.Validate(c.Cache.RedisURL, validation.When(c.Cache.Kind == "redis", validation.Required)),
		"lessons.backend":   validation.Validate(c.Lessons.Backend, validation.In(LessonsMemory, LessonsSQLite)),
		"lessons.dsn":       validation.Validate(c.Lessons.DSN, validation.When(c.Lessons.Backend == LessonsSQLite, validation.Required)),
		"log.level":         validation.Validate(strings.ToLower(c.Log.Level), validation.In("debug", "info", "warn", "error")),
		"retry.max_retries": validation.Validate(c.Retry.MaxRetries, validation.Min(0)),
	}.Filter()
}
