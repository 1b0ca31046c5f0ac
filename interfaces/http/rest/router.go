// Package rest serves the v1 HTTP API over chi
package rest

import (
	"context"
	"net/http"
	"time"

	"slidecanvas/infrastructure/di"
	"slidecanvas/interfaces/http/rest/handlers"
	"slidecanvas/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// readinessTimeout bounds the store probe behind /ready
const readinessTimeout = 2 * time.Second

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger.Named("http"),
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	c := rt.container
	cfg := c.Config
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if cfg.Observability.EnableMetrics {
		router.Use(middleware.Metrics(c.Metrics))
	}
	router.Use(chimiddleware.RequestSize(cfg.Server.MaxBodyBytes))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Presentation-Engine", "X-Slide-Count", "X-Presentation-Issues", "X-Nodes-Drawn", "X-Nodes-Culled"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if cfg.Observability.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", c.Metrics.Handler())
	}

	projectHandler := handlers.NewProjectHandler(c.Projects, c.ErrorHandler, rt.logger)
	nodeHandler := handlers.NewNodeHandler(c.Projects, c.ErrorHandler, rt.logger)
	presentationHandler := handlers.NewPresentationHandler(c.Projects, c.Presentations, c.ErrorHandler, rt.logger)
	canvasHandler := handlers.NewCanvasHandler(c.Projects, c.Renderer, c.ErrorHandler, rt.logger)
	templateHandler := handlers.NewTemplateHandler(c.Projects, c.TemplateSvc, c.ErrorHandler, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.Breaker.Enabled {
			r.Use(middleware.CircuitBreaker(middleware.CircuitBreakerConfig{
				Name:             "api",
				MaxRequests:      cfg.Breaker.MaxRequests,
				Interval:         cfg.Breaker.Interval,
				Timeout:          cfg.Breaker.Timeout,
				FailureThreshold: cfg.Breaker.FailureThreshold,
				MinRequests:      cfg.Breaker.MinRequests,
			}, c.ErrorHandler, c.Metrics, rt.logger))
		}

		r.Get("/engines", presentationHandler.ListEngines)
		r.Get("/templates", templateHandler.ListTemplates)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", projectHandler.CreateProject)
			r.Get("/", projectHandler.ListProjects)
			r.Post("/import", projectHandler.ImportProject)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", projectHandler.GetProject)
				r.Patch("/", projectHandler.UpdateProject)
				r.Delete("/", projectHandler.DeleteProject)
				r.Get("/export", projectHandler.ExportProject)

				// Viewport
				r.Put("/viewport", projectHandler.CommitViewport)
				r.Post("/viewport/zoom", canvasHandler.Zoom)
				r.Post("/viewport/fit", canvasHandler.Fit)

				// Nodes
				r.Route("/nodes", func(r chi.Router) {
					r.Post("/", nodeHandler.CreateNode)
					r.Get("/", nodeHandler.ListNodes)
					r.Patch("/{nodeID}", nodeHandler.UpdateNode)
					r.Delete("/{nodeID}", nodeHandler.DeleteNode)
					r.Put("/{nodeID}/position", nodeHandler.MoveNode)
					r.Post("/{nodeID}/duplicate", nodeHandler.DuplicateNode)
				})
				r.Get("/hit", nodeHandler.HitTest)

				// Connections
				r.Route("/connections", func(r chi.Router) {
					r.Post("/", nodeHandler.CreateConnection)
					r.Get("/", nodeHandler.ListConnections)
					r.Delete("/{connectionID}", nodeHandler.DeleteConnection)
				})

				// Presentation
				r.Get("/analysis", presentationHandler.Analyze)
				r.Get("/recommendation", presentationHandler.Recommend)
				r.Get("/validation", presentationHandler.Validate)
				r.Get("/presentation", presentationHandler.Present)
				r.Post("/presentation", presentationHandler.Generate)

				// Canvas
				r.Get("/snapshot.svg", canvasHandler.Snapshot)
				r.Post("/interactions", canvasHandler.Replay)
				r.Post("/templates/{name}", templateHandler.ApplyTemplate)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		c.ErrorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		c.ErrorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck answers ready once the project store responds
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), readinessTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if _, err := rt.container.Projects.ListProjects(ctx, 1); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
