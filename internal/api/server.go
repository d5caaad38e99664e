package api

import (
	"net/http"
	"time"

	"github.com/futig/docqa-backend/internal/api/docs"
	"github.com/futig/docqa-backend/internal/api/middleware"
	qaapi "github.com/futig/docqa-backend/internal/api/qa"
	"github.com/futig/docqa-backend/internal/entity"
	"github.com/futig/docqa-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const Version = "5.1.0"

type RouterConfig struct {
	AuthToken       string
	GenerationModel string
	RequestTimeout  time.Duration
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(cfg RouterConfig, qaHandler *qaapi.Handler, metricsHandler http.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                   // Recover from panics
	r.Use(chimiddleware.RequestID)                   // Add request ID
	r.Use(middleware.Logger(logger))                 // Log requests
	r.Use(middleware.CORS)                           // Handle CORS
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, entity.HealthResponse{
			Status:  "healthy",
			Version: Version,
			Model:   cfg.GenerationModel,
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"message": "Document question answering service is running."})
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	qaapi.RegisterRoutes(r, qaHandler, middleware.BearerAuth(cfg.AuthToken))

	return r
}
