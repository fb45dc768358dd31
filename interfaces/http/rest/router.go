package rest

import (
	"net/http"

	"cvwizard-backend/interfaces/http/rest/handlers"
	"cvwizard-backend/interfaces/http/rest/middleware"
	"cvwizard-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options tunes router behavior per environment
type Options struct {
	SecureCookies  bool
	EnableCORS     bool
	AllowedOrigins []string
}

// Router creates and configures the HTTP router
type Router struct {
	profileHandler  *handlers.ProfileHandler
	generateHandler *handlers.GenerateHandler
	metrics         *observability.Metrics
	registry        *prometheus.Registry
	logger          *zap.Logger
	options         Options
}

// NewRouter creates a new router instance
func NewRouter(
	profileHandler *handlers.ProfileHandler,
	generateHandler *handlers.GenerateHandler,
	metrics *observability.Metrics,
	registry *prometheus.Registry,
	logger *zap.Logger,
	options Options,
) *Router {
	return &Router{
		profileHandler:  profileHandler,
		generateHandler: generateHandler,
		metrics:         metrics,
		registry:        registry,
		logger:          logger,
		options:         options,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Correlation)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))

	if rt.options.EnableCORS {
		origins := rt.options.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Correlation-ID"},
			ExposedHeaders:   []string{"X-Correlation-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health and observability
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		// Every API request carries an anonymous identity
		r.Use(middleware.AnonymousIdentity(rt.options.SecureCookies))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", rt.profileHandler.GetProfile)
			r.Post("/", rt.profileHandler.SaveProfile)
			r.Get("/education", rt.profileHandler.GetEducation)
			r.Put("/education", rt.profileHandler.ReplaceEducation)
			r.Get("/experience", rt.profileHandler.GetExperience)
			r.Put("/experience", rt.profileHandler.ReplaceExperience)
		})

		r.Route("/generate", func(r chi.Router) {
			r.Post("/self-promotion", rt.generateHandler.GenerateSelfPromotion)
			r.Post("/summary", rt.generateHandler.GenerateSummary)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
