// Package api exposes the risk engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/reshadx/fraudguard/internal/domain"
	"github.com/reshadx/fraudguard/internal/engine"
	"github.com/reshadx/fraudguard/internal/signature"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, repo domain.Repository, signals domain.SignalStore, bus domain.EventBus, eng *engine.Engine, simSwap, device, velocity engine.Detector, matcher *signature.Matcher, version string) *Server {
	handler := NewHandler(repo, signals, bus, eng, simSwap, device, velocity, matcher, version)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoints
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	router.Route("/risk", func(r chi.Router) {
		// Fraud checks
		r.Post("/assess", handler.Assess)
		r.Post("/sim-swap/check", handler.SimSwapCheck)
		r.Post("/device/trust-score", handler.DeviceTrustScore)
		r.Get("/velocity-checks", handler.VelocityChecks)
		r.Get("/checks/{id}", handler.GetCheck)

		// Alert review queue
		r.Get("/alerts", handler.ListAlerts)
		r.Post("/alerts/{id}/review", handler.ReviewAlert)

		// Fraud reports
		r.Post("/fraud/report", handler.ReportFraud)

		// Signature management
		r.Get("/signatures", handler.ListSignatures)
		r.Post("/signatures", handler.CreateSignature)
		r.Post("/signatures/reload", handler.ReloadSignatures)

		// Blacklist / whitelist management
		r.Post("/lists/{kind}", handler.AddListEntry)
		r.Delete("/lists/{kind}/{value}", handler.RemoveListEntry)

		// Detector inputs
		r.Put("/users/{id}/profile", handler.UpsertProfile)
		r.Post("/events/otp-failure", handler.RecordOTPFailure)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
