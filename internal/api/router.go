package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health and version (no auth required)
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)

		// Credential flows (no auth required)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/federated", s.handleFederatedLogin)
		r.Post("/auth/reset/request", s.handleResetRequest)
		r.Post("/auth/reset/confirm", s.handleResetConfirm)

		// Session state probes (no auth required: an empty state is a
		// valid answer for a signed-out client; the state handler
		// redacts the session token)
		r.Get("/auth/state", s.handleAuthState)
		r.Get("/auth/session/valid", s.handleSessionValid)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.sessionMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Patch("/auth/profile", s.handleUpdateProfile)

			// Admin-only directory and audit trail
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/users", s.handleListUsers)
				r.Get("/users/{id}", s.handleGetUser)
				r.Get("/audit", s.handleListAudit)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleVersion returns the build version.
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version": s.version,
	})
}
