package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "eventsapi/docs"
	"eventsapi/internal/delivery/http/controllers"
	"eventsapi/internal/delivery/http/middleware"
	"eventsapi/internal/domain"
	"eventsapi/internal/metrics"
)

// RouterConfig carries what NewRouter needs beyond the controllers.
type RouterConfig struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AllowedOrigins []string
	// Limiter throttles all requests when non-nil.
	Limiter *rate.Limiter
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(cfg RouterConfig, eventController *controllers.EventController, healthController *controllers.HealthController) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg.Limiter))

	editor := chi.Chain(middleware.RequireAuth(cfg.Verifier, cfg.Logger), middleware.RequireEventEditor)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventController.ListEvents)
		r.With(editor...).Post("/create", eventController.CreateEvent)
		r.Get("/{id}", eventController.GetEvent)
		r.With(editor...).Put("/{id}", eventController.UpdateEvent)
		r.With(editor...).Delete("/{id}", eventController.DeleteEvent)
	})

	r.Get("/health", healthController.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Swagger
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
