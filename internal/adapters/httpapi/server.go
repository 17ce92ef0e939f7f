// Package httpapi exposes the planner over HTTP: optimization requests,
// plan retrieval and the mock forecast endpoints used by the demo UI.
package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/beanfleet/coffeeplan/internal/application/common"
	"github.com/beanfleet/coffeeplan/internal/infrastructure/config"
)

// Server wraps the HTTP listener and its routes.
type Server struct {
	httpServer *http.Server
}

// NewServer builds the router, wires the handler and applies CORS.
func NewServer(cfg *config.ServerConfig, handler *Handler, logger common.Logger) *Server {
	router := mux.NewRouter()
	router.Use(WithRequestLogger(logger))

	router.HandleFunc("/healthz", handler.Health).Methods(http.MethodGet)
	router.HandleFunc("/optimization/requests", handler.CreatePlan).Methods(http.MethodPost)
	router.HandleFunc("/optimization/requests", handler.ListPlans).Methods(http.MethodGet)
	router.HandleFunc("/optimization/requests/{id:[0-9]+}", handler.GetPlan).Methods(http.MethodGet)
	router.HandleFunc("/predictions/forecast", handler.Forecast).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      c.Handler(router),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// WithRequestLogger puts the process logger into every request context, so
// application services reached through the mediator can log structured lines.
func WithRequestLogger(logger common.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(common.WithLogger(r.Context(), logger)))
		})
	}
}

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
