// Package server wires the HTTP surface of the markets service: routes,
// middleware, and the self-describing root directory.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sokomjinga/sokomjinga-api/internal/server/handler"
	"github.com/sokomjinga/sokomjinga-api/internal/server/middleware"
	"github.com/sokomjinga/sokomjinga-api/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Service     string
	Port        int
	CORSOrigins []string
}

// Handlers aggregates all HTTP handlers that the server registers.
type Handlers struct {
	Health   *handler.HealthHandler
	Markets  *handler.MarketHandler
	Outcomes *handler.OutcomeHandler
}

// route pairs a method and pattern with its handler so registered routes
// can be enumerated for the root directory.
type route struct {
	method  string
	pattern string
	handle  http.HandlerFunc
}

// Server is the HTTP + WebSocket API server for the markets service.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered, the root
// directory computed from them, and the middleware chain applied.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	routes := []route{
		{http.MethodGet, "/health", handlers.Health.HealthCheck},
		{http.MethodGet, "/markets", handlers.Markets.ListMarkets},
		{http.MethodGet, "/markets/{id}", handlers.Markets.GetMarket},
		{http.MethodPost, "/markets", handlers.Markets.CreateMarket},
		{http.MethodPut, "/markets/{id}", handlers.Markets.UpdateMarket},
		{http.MethodDelete, "/markets/{id}", handlers.Markets.DeleteMarket},
		{http.MethodPost, "/markets/{id}/outcomes", handlers.Outcomes.AddOutcome},
		{http.MethodPut, "/markets/{id}/outcomes/{oid}", handlers.Outcomes.UpdateOutcome},
		{http.MethodDelete, "/markets/{id}/outcomes/{oid}", handlers.Outcomes.DeleteOutcome},
	}
	if wsHub != nil {
		routes = append(routes, route{http.MethodGet, "/ws", wsHub.HandleWS})
	}

	mux := http.NewServeMux()
	for _, rt := range routes {
		mux.HandleFunc(rt.method+" "+rt.pattern, rt.handle)
	}

	root := handler.NewRootHandler(cfg.Service, directoryLinks(routes))
	mux.HandleFunc("GET /", root.Index)

	// Middleware chain: CORS outermost so preflights never hit handlers.
	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// requests to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// directoryLinks builds the root route directory from the registered
// routes: named links for the well-known endpoints, then every other
// non-parameterized, non-internal GET route.
func directoryLinks(routes []route) []handler.Link {
	links := []handler.Link{
		{Rel: "health", Href: "/health"},
		{Rel: "markets", Href: "/markets"},
	}

	skip := map[string]bool{
		"/":       true,
		"/health": true,
		"/markets": true,
		"/ws":     true,
	}
	for _, rt := range routes {
		if rt.method != http.MethodGet {
			continue
		}
		if skip[rt.pattern] || strings.Contains(rt.pattern, "{") {
			continue
		}
		links = append(links, handler.Link{Rel: "get", Href: rt.pattern})
	}
	return links
}
