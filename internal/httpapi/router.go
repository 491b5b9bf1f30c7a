// Package httpapi exposes the culturo services over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	basePath       string
	requestTimeout time.Duration
	middlewares    []func(http.Handler) http.Handler
	health         *HealthHandlers

	translate     RouteRegistrar
	chat          RouteRegistrar
	pronunciation RouteRegistrar
	lessons       RouteRegistrar
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultBasePath = "/api"
	defaultTimeout  = 60 * time.Second
)

// NewRouter constructs the chi router with shared middleware and the API
// route groups. Groups without a registrar answer 404.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		basePath:       defaultBasePath,
		requestTimeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}
	if cfg.requestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.requestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "Rota não encontrada", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Método não permitido", nil)
	})

	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}
	r.Get("/healthz", cfg.health.Healthz)

	routes := func(api chi.Router) {
		mount := func(path string, registrar RouteRegistrar) {
			if registrar == nil {
				return
			}
			api.Route(path, func(group chi.Router) {
				registrar(group)
			})
		}

		mount("/translate", cfg.translate)
		mount("/chat", cfg.chat)
		mount("/pronunciation", cfg.pronunciation)
		mount("/lessons", cfg.lessons)
	}

	if cfg.basePath == "" {
		r.Group(routes)
	} else {
		r.Route(cfg.basePath, routes)
	}

	return r
}

// WithBasePath mounts the API under path ("" mounts it at the root).
func WithBasePath(path string) Option {
	return func(cfg *routerConfig) {
		cfg.basePath = path
	}
}

// WithRequestTimeout bounds each request. Zero disables the timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *routerConfig) {
		cfg.requestTimeout = d
	}
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers overrides the handlers used for /healthz.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithTranslateRoutes registers the /translate group.
func WithTranslateRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.translate = reg
	}
}

// WithChatRoutes registers the /chat group.
func WithChatRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.chat = reg
	}
}

// WithPronunciationRoutes registers the /pronunciation group.
func WithPronunciationRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.pronunciation = reg
	}
}

// WithLessonRoutes registers the /lessons group.
func WithLessonRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.lessons = reg
	}
}
