// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
  - Application pages are served from WebDir behind the access gate; the JSON
    API under /api/v1 is never gated (the gate bypasses it by prefix).
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/ritmus/internal/billing/product"
	"github.com/taibuivan/ritmus/internal/gate"
	"github.com/taibuivan/ritmus/internal/orgs"
	"github.com/taibuivan/ritmus/internal/platform/config"
	"github.com/taibuivan/ritmus/internal/platform/constants"
	"github.com/taibuivan/ritmus/internal/platform/middleware"
	"github.com/taibuivan/ritmus/internal/users/account"
	"github.com/taibuivan/ritmus/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles authentication routes (register, login, refresh).
	Auth *auth.Handler

	// Account handles profiles, onboarding, and public discovery.
	Account *account.Handler

	// Product handles the billing catalog and its reconciliation.
	Product *product.Handler

	// Orgs handles team workspaces, memberships, and invitations.
	Orgs *orgs.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// The resolver feeds the page access gate; pass nil together with an empty
// cfg.WebDir to run in API-only mode.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, resolver gate.SessionResolver, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Route("/products", h.Product.RegisterRoutes)
		api.Mount("/orgs", h.Orgs.Routes())
		api.Mount("/", h.Account.Routes())
	})

	// # Application Pages
	// The built frontend is served behind the access gate, which redirects
	// per route policy before any file is read.
	if cfg.WebDir != "" && resolver != nil {
		pages := gate.Middleware(gate.DefaultConfig(), resolver)
		r.NotFound(pages(spaHandler(cfg.WebDir)).ServeHTTP)
	}

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// spaHandler serves static files from webDir, falling back to index.html for
// client-side routed pages.
func spaHandler(webDir string) http.Handler {
	fileServer := http.FileServer(http.Dir(webDir))

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		path := filepath.Join(webDir, filepath.Clean(request.URL.Path))

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			// Unknown path or a directory: let the client router take over.
			if !strings.Contains(request.URL.Path, ".") {
				http.ServeFile(writer, request, filepath.Join(webDir, "index.html"))
				return
			}
			http.NotFound(writer, request)
			return
		}

		fileServer.ServeHTTP(writer, request)
	})
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
