// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

// Package web exposes the JSON API: authentication, contact intake,
// the resource catalog, and the dashboard summary.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/preppathway/preppathway/internal/auth"
	"github.com/preppathway/preppathway/internal/catalog"
	"github.com/preppathway/preppathway/internal/contact"
	"github.com/preppathway/preppathway/internal/observability"
)

// SessionCookieName is the name of the HttpOnly session cookie.
const SessionCookieName = "pp_session"

// Server serves the PrepPathway JSON API.
type Server struct {
	addr        string
	auth        *auth.Service
	resets      *auth.PasswordResetService
	catalog     *catalog.Catalog
	sender      contact.Sender
	metrics     *observability.Metrics
	logger      *slog.Logger
	signInRoute string
	listener    net.Listener
	httpServer  *http.Server
	running     atomic.Bool
}

// NewServer creates a new API server.
// metrics may be nil; request metrics are then skipped.
func NewServer(addr string, authSvc *auth.Service, cat *catalog.Catalog, sender contact.Sender, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if authSvc == nil {
		return nil, oops.Code("WEB_INVALID_DEPENDENCY").Errorf("auth service is required")
	}
	if cat == nil {
		return nil, oops.Code("WEB_INVALID_DEPENDENCY").Errorf("catalog is required")
	}
	if sender == nil {
		return nil, oops.Code("WEB_INVALID_DEPENDENCY").Errorf("contact sender is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:        addr,
		auth:        authSvc,
		catalog:     cat,
		sender:      sender,
		metrics:     metrics,
		logger:      logger,
		signInRoute: "/login",
	}, nil
}

// WithPasswordReset enables the password reset endpoints. Without it the
// reset routes are not registered.
func (s *Server) WithPasswordReset(resets *auth.PasswordResetService) *Server {
	s.resets = resets
	return s
}

// WithSignInRoute overrides the route unauthenticated clients are directed
// to in 401 responses. Empty values are ignored.
func (s *Server) WithSignInRoute(route string) *Server {
	if route != "" {
		s.signInRoute = route
	}
	return s
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.Handle("GET /api/auth/session", s.requireSession(s.handleSession))
	if s.resets != nil {
		mux.HandleFunc("POST /api/auth/reset/request", s.handleResetRequest)
		mux.HandleFunc("POST /api/auth/reset/confirm", s.handleResetConfirm)
	}
	mux.HandleFunc("POST /api/contact", s.handleContact)
	mux.HandleFunc("GET /api/resources", s.handleResources)
	mux.HandleFunc("GET /api/resources/{id}", s.handleResource)
	mux.Handle("GET /api/dashboard", s.requireSession(s.handleDashboard))

	return s.instrument(mux)
}

// Start begins serving the API. It returns an error channel that receives
// any error from the HTTP server after startup; the channel is closed on
// graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("web server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_web_server").Wrap(err)
		}
	}

	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
