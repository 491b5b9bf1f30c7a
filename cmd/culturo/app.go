package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/culturo"
	"github.com/ZaguanLabs/culturo/cache"
	"github.com/ZaguanLabs/culturo/internal/config"
	"github.com/ZaguanLabs/culturo/internal/httpapi"
	"github.com/ZaguanLabs/culturo/internal/observability"
	"github.com/ZaguanLabs/culturo/lessons"
	"github.com/ZaguanLabs/culturo/pronunciation"
	"github.com/ZaguanLabs/culturo/provider"
)

// loadConfig reads the config file and applies the --log-level override.
func loadConfig(flags *globalFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if lvl := strings.TrimSpace(flags.logLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

// buildModel returns the upstream chat model wrapped in the configured
// rate limiter and retry policy, or nil when no API key is set.
func buildModel(cfg config.Config, logger *zap.Logger) (culturo.ChatModel, string) {
	if !cfg.Provider.Configured() {
		return nil, ""
	}
	p := provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:  cfg.Provider.APIKey,
		Model:   cfg.Provider.Model,
		BaseURL: cfg.Provider.BaseURL,
	})

	var model culturo.ChatModel = p
	if cfg.RateLimit.Enabled {
		model = culturo.NewRateLimitedProvider(model, culturo.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			BurstSize:         cfg.RateLimit.Burst,
			MaxWait:           cfg.RateLimit.MaxWait,
		})
	}
	if cfg.Retry.Enabled {
		model = culturo.NewRetryableProvider(model, culturo.RetryConfig{
			MaxRetries: cfg.Retry.MaxRetries,
			BaseDelay:  cfg.Retry.BaseDelay,
			MaxDelay:   cfg.Retry.MaxDelay,
		}, culturo.WithRetryLogger(logger.Named("retry")))
	}
	return model, p.Model()
}

func openCache(cfg config.Config) (culturo.TranslationCache, func() error, error) {
	c, err := cache.Open(cache.Config{
		Kind:       cfg.Cache.Kind,
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
		RedisURL:   cfg.Cache.RedisURL,
		KeyPrefix:  cfg.Cache.KeyPrefix,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	if c == nil {
		return nil, nil, nil
	}
	var closer func() error
	if cl, ok := c.(io.Closer); ok {
		closer = cl.Close
	}
	return c, closer, nil
}

func openLessons(ctx context.Context, cfg config.Config) (lessons.Repository, func() error, error) {
	if cfg.Lessons.Backend != config.LessonsSQLite {
		return lessons.NewMemoryRepository(lessons.DefaultLessons()...), nil, nil
	}

	sqlDB, err := sql.Open("sqlite3", cfg.Lessons.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening lessons database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	repo := lessons.NewBunRepository(db)
	if err := repo.Migrate(ctx, lessons.DefaultLessons()...); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrating lessons: %w", err)
	}
	return repo, db.Close, nil
}

// app holds the wired services and the resources to release on shutdown.
type app struct {
	handler http.Handler
	closers []func() error
}

func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	model, modelName := buildModel(cfg, logger)
	if model == nil {
		logger.Warn("no upstream API key configured; translate and chat requests will fail")
	}

	store, closeCache, err := openCache(cfg)
	if err != nil {
		return nil, err
	}
	if closeCache != nil {
		a.closers = append(a.closers, closeCache)
	}

	repo, closeLessons, err := openLessons(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if closeLessons != nil {
		a.closers = append(a.closers, closeLessons)
	}

	translateOpts := []httpapi.TranslateOption{
		httpapi.WithConfigured(model != nil),
		httpapi.WithTranslateBodyLimit(cfg.Server.MaxBodyBytes),
	}

	var translator httpapi.TranslationService
	var tutor httpapi.ChatService
	if model != nil {
		translator = culturo.NewTranslator(model,
			culturo.WithCache(store),
			culturo.WithCacheNamespace(modelName),
			culturo.WithLogger(logger.Named("translator")),
		)
		tutor = culturo.NewTutor(model)
	}

	a.handler = httpapi.NewRouter(
		httpapi.WithBasePath(cfg.Server.BasePath),
		httpapi.WithRequestTimeout(cfg.Server.RequestTimeout),
		httpapi.WithMiddlewares(
			observability.RecoveryMiddleware(logger),
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(),
			observability.RequestLoggerMiddleware(),
		),
		httpapi.WithTranslateRoutes(httpapi.NewTranslateHandlers(translator, translateOpts...).Routes),
		httpapi.WithChatRoutes(httpapi.NewChatHandlers(tutor).Routes),
		httpapi.WithPronunciationRoutes(httpapi.NewPronunciationHandlers(pronunciation.NewRandomScorer()).Routes),
		httpapi.WithLessonRoutes(httpapi.NewLessonHandlers(repo).Routes),
	)
	return a, nil
}
