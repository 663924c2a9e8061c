package handlers

import (
	"net/http"
	"time"

	"triptailor-backend/internal/middleware"
	"triptailor-backend/internal/observability"
	"triptailor-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Environment    string
	AllowedOrigins []string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	// Limiter, when set, replaces the fixed RateLimitRPS/RateLimitBurst limit.
	Limiter *middleware.RateLimiter
	// Auth resolves the user id; Authenticator on Lambda, JWTAuthenticator locally.
	Auth    func(http.Handler) http.Handler
	Metrics *observability.Collector
	Logger  *zap.Logger
}

// NewRouter builds the API router.
func NewRouter(trips *TripHandler, items *ItemHandler, cfg RouterConfig) *chi.Mux {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Metrics(cfg.Metrics, cfg.Logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, api.HealthResponse{Status: "ok", Environment: cfg.Environment})
	})

	r.Route("/api", func(r chi.Router) {
		limiter := cfg.Limiter
		if limiter == nil {
			limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		}
		r.Use(limiter.Handler)
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		}

		r.Get("/trips/{chatId}", trips.GetTrip)
		r.Delete("/trips/{chatId}", trips.DeleteTrip)
		r.Post("/trips/{chatId}/reconcile", trips.Reconcile)
		r.Delete("/trips/{chatId}/{kind}/{itemId}", trips.RemoveItem)

		if items != nil {
			r.Post("/items/{kind}", items.RecordItem)
		}
	})

	return r
}
