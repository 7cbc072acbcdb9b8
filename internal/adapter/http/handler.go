package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"viral-reward/internal/core/port"
)

// Options carries the optional parts of the HTTP surface.
type Options struct {
	// AllowedOrigins lists browser origins accepted by CORS.
	AllowedOrigins []string
	// Metrics, when set, is served at /metrics and Instrument wraps every
	// request.
	Metrics    http.Handler
	Instrument func(http.Handler) http.Handler
	// PingInterval is how often live connections are pinged. Zero means 30s.
	PingInterval time.Duration
}

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the marketplace use case, a token verifier and a logger for
// structured logging. Routes are registered on a chi.Router for convenient
// method handling.
type Handler struct {
	svc      port.MarketplaceUseCase
	verifier *Verifier
	logger   *slog.Logger
	router   chi.Router
	origins  []string
	ping     time.Duration
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc port.MarketplaceUseCase, verifier *Verifier, logger *slog.Logger, opts Options) *Handler {
	h := &Handler{
		svc:      svc,
		verifier: verifier,
		logger:   logger,
		origins:  opts.AllowedOrigins,
		ping:     opts.PingInterval,
	}
	if h.ping <= 0 {
		h.ping = 30 * time.Second
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	if opts.Instrument != nil {
		r.Use(opts.Instrument)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.authenticate)

		r.Post("/accounts", h.handleRegister)
		r.Get("/accounts/me", h.handleGetAccount)
		r.Get("/accounts/me/ledger", h.handleLedger)

		r.Post("/campaigns", h.handleCreateCampaign)
		r.Get("/campaigns", h.handleListCampaigns)
		r.Get("/campaigns/{id}", h.handleGetCampaign)
		r.Post("/campaigns/{id}/submissions", h.handleCreateSubmission)

		r.Get("/submissions", h.handleListSubmissions)
		r.Post("/submissions/{id}/settle", h.handleSettle)

		r.Get("/live/submissions", h.handleLiveSubmissions)
		r.Get("/live/accounts/me", h.handleLiveAccount)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
