// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/preppathway/preppathway/internal/auth"
)

type contextKey int

const sessionContextKey contextKey = iota

// sessionFromContext returns the session attached by requireSession.
// Only valid inside handlers wrapped by that middleware.
func sessionFromContext(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// requireSession resolves the session cookie and rejects unauthenticated
// requests with 401. The validated session is attached to the request context.
func (s *Server) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			s.writeUnauthenticated(w)
			return
		}

		session, err := s.auth.ValidateSession(r.Context(), cookie.Value)
		if err != nil {
			clearSessionCookie(w)
			s.writeUnauthenticated(w)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next(w, r.WithContext(ctx))
	})
}

// writeUnauthenticated sends a 401 with a pointer to the sign-in route.
func (s *Server) writeUnauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error":   "authentication required",
		"sign_in": s.signInRoute,
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument logs each request and records request metrics by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		// r.Pattern is populated by the mux during routing
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)

		if s.metrics != nil {
			s.metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			s.metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		}

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
