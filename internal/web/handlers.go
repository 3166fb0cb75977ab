// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

package web

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/preppathway/preppathway/internal/auth"
	"github.com/preppathway/preppathway/internal/contact"
	"github.com/preppathway/preppathway/pkg/errutil"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type accountPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newAccountPayload(a *auth.Account) accountPayload {
	return accountPayload{
		ID:    a.ID.String(),
		Email: a.Email,
		Name:  a.Name,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, token, err := s.auth.Login(r.Context(), req.Email, req.Password, r.UserAgent(), clientIP(r))
	if err != nil {
		switch errorCode(err) {
		case "AUTH_INVALID_CREDENTIALS":
			s.recordLogin("invalid_credentials")
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case "AUTH_ACCOUNT_LOCKED":
			s.recordLogin("locked")
			writeError(w, http.StatusForbidden, "account temporarily locked")
		default:
			s.recordLogin("error")
			errutil.LogError(s.logger, "login failed", err)
			writeError(w, http.StatusServiceUnavailable, "try again later")
		}
		return
	}

	account, err := s.auth.Account(r.Context(), session.AccountID)
	if err != nil {
		s.recordLogin("error")
		errutil.LogError(s.logger, "login failed", err)
		writeError(w, http.StatusServiceUnavailable, "try again later")
		return
	}

	s.recordLogin("success")
	if s.metrics != nil {
		s.metrics.SessionsActive.Inc()
	}
	setSessionCookie(w, token, session.ExpiresAt)
	writeJSON(w, http.StatusCreated, map[string]any{
		"token":   token,
		"account": newAccountPayload(account),
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.auth.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch errorCode(err) {
		case "AUTH_INVALID_EMAIL":
			writeError(w, http.StatusBadRequest, "invalid email address")
		case "AUTH_INVALID_PASSWORD":
			writeError(w, http.StatusBadRequest, "password does not meet requirements")
		case "AUTH_EMAIL_TAKEN":
			writeError(w, http.StatusConflict, "email already registered")
		default:
			errutil.LogError(s.logger, "signup failed", err)
			writeError(w, http.StatusServiceUnavailable, "try again later")
		}
		return
	}

	if s.metrics != nil {
		s.metrics.SignupsTotal.Inc()
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"account": newAccountPayload(account),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	// Logout is idempotent: an invalid or expired token still clears
	// the cookie and reports success.
	if session, err := s.auth.ValidateSession(r.Context(), cookie.Value); err == nil {
		if err := s.auth.Logout(r.Context(), session.ID); err != nil {
			errutil.LogError(s.logger, "logout failed", err)
			writeError(w, http.StatusServiceUnavailable, "try again later")
			return
		}
		if s.metrics != nil {
			s.metrics.SessionsActive.Dec()
		}
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	account, err := s.auth.Account(r.Context(), session.AccountID)
	if err != nil {
		errutil.LogError(s.logger, "session lookup failed", err)
		writeError(w, http.StatusServiceUnavailable, "try again later")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account":    newAccountPayload(account),
		"expires_at": session.ExpiresAt,
	})
}

type resetRequestRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.resets.RequestReset(r.Context(), req.Email)
	if err != nil {
		errutil.LogError(s.logger, "password reset request failed", err)
		writeError(w, http.StatusServiceUnavailable, "try again later")
		return
	}

	// Email delivery is simulated: the reset link is logged instead of
	// sent. An unknown email yields an empty token and logs nothing, but
	// the response is identical to prevent enumeration.
	if token != "" {
		s.logger.Info("password reset email dispatched",
			"email", auth.NormalizeEmail(req.Email),
			"token", token,
		)
	}

	s.recordReset("requested")
	writeJSON(w, http.StatusAccepted, map[string]any{"success": true})
}

func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.resets.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		switch errorCode(err) {
		case "AUTH_INVALID_PASSWORD":
			writeError(w, http.StatusBadRequest, "password does not meet requirements")
		case "RESET_TOKEN_EMPTY", "RESET_TOKEN_INVALID", "RESET_TOKEN_EXPIRED":
			writeError(w, http.StatusBadRequest, "invalid or expired token")
		default:
			errutil.LogError(s.logger, "password reset failed", err)
			writeError(w, http.StatusServiceUnavailable, "try again later")
		}
		return
	}

	s.recordReset("completed")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := contact.NewMessage(req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact form")
		return
	}

	if err := s.sender.Send(r.Context(), msg); err != nil {
		errutil.LogError(s.logger, "contact delivery failed", err)
		writeError(w, http.StatusServiceUnavailable, "try again later")
		return
	}

	if s.metrics != nil {
		s.metrics.ContactMessages.Inc()
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"success": true})
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("q")

	writeJSON(w, http.StatusOK, map[string]any{
		"categories": s.catalog.Categories(),
		"resources":  s.catalog.Resources(category, search),
	})
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	resource, err := s.catalog.Resource(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"resource": resource})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Dashboard())
}

func (s *Server) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(outcome)
	}
}

func (s *Server) recordReset(stage string) {
	if s.metrics != nil {
		s.metrics.PasswordResetsTotal.WithLabelValues(stage).Inc()
	}
}

// errorCode extracts the oops code from an error, or "" if none.
func errorCode(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Code()
	}
	return ""
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
