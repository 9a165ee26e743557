package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/salon-concierge/internal/bookings"
	"github.com/wolfman30/salon-concierge/internal/chat"
	httpmiddleware "github.com/wolfman30/salon-concierge/internal/http/middleware"
	"github.com/wolfman30/salon-concierge/internal/webchat"
	"github.com/wolfman30/salon-concierge/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *chat.Handler
	WebChatHandler     *webchat.Handler
	BookingsHandler    *bookings.Handler
	CatalogHandler     http.Handler
	MetricsHandler     http.Handler
	HealthChecks       map[string]HealthCheck
	RateLimiter        *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
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

	// Public endpoints (health, metrics, widget)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.CatalogHandler != nil {
			public.With(middleware.Compress(5)).Get("/api/catalog", cfg.CatalogHandler.ServeHTTP)
		}
		if cfg.WebChatHandler != nil {
			public.Get("/chat/widget.js", cfg.WebChatHandler.HandleWidgetJS)
			public.Get("/ws/chat", cfg.WebChatHandler.HandleWebSocket)
		}
	})

	// Visitor-facing writes, rate limited per client IP
	r.Group(func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(cfg.RateLimiter.Middleware)
		}
		if cfg.ChatHandler != nil {
			api.Post("/api/chat", cfg.ChatHandler.Message)
			api.Get("/api/chat/history", cfg.ChatHandler.History)
			api.Get("/api/sessions/{id}", cfg.ChatHandler.GetSession)
			api.Delete("/api/sessions/{id}", cfg.ChatHandler.ResetSession)
		}
		if cfg.BookingsHandler != nil {
			api.Post("/api/book", cfg.BookingsHandler.CreateBooking)
		}
	})

	// Staff read endpoints
	if cfg.BookingsHandler != nil {
		r.Route("/api/bookings", func(b chi.Router) {
			b.Get("/", cfg.BookingsHandler.ListBookings)
			b.Get("/{id}", cfg.BookingsHandler.GetBooking)
		})
	}

	return r
}
