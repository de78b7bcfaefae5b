package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/vigilante/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/vigilante/internal/http/middleware"
	"github.com/wolfman30/vigilante/internal/persona"
	"github.com/wolfman30/vigilante/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger      *logging.Logger
	Environment string
	APIKeys     []string

	Honeypot *handlers.HoneypotHandler
	Reports  *handlers.ReportsHandler
	Token    *handlers.TokenHandler
	Personas *persona.Registry

	// Console serves the live feed WebSocket (optional)
	Console http.HandlerFunc
	// RateLimiter guards the webhook (optional)
	RateLimiter    *httpmiddleware.RateLimiter
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.Honeypot == nil {
		panic("router: honeypot handler required")
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	requireKey := httpmiddleware.APIKey(cfg.APIKeys)

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/", handlers.Root(cfg.Environment))
		public.Get("/health", handlers.Health)
		if cfg.Personas != nil {
			public.Get("/personas", handlers.Personas(cfg.Personas))
		}
		if cfg.Token != nil {
			public.Get("/token", cfg.Token.Handle)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Keyed endpoints
	r.Group(func(keyed chi.Router) {
		keyed.Use(requireKey)

		webhook := keyed.With()
		if cfg.RateLimiter != nil {
			webhook = keyed.With(cfg.RateLimiter.Middleware)
		}
		webhook.Post("/webhook", cfg.Honeypot.HandleWebhook)

		keyed.Get("/sessions/{sessionID}", cfg.Honeypot.HandleSession)
		if cfg.Reports != nil {
			keyed.Route("/reports", func(rr chi.Router) {
				rr.Get("/", cfg.Reports.HandleList)
				rr.Get("/{sessionID}", cfg.Reports.HandleGet)
			})
		}
		if cfg.Console != nil {
			keyed.Get("/console/ws", cfg.Console)
		}
	})

	return r
}
