package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/luckdow/sbstravel-sub000/internal/auth"
)

// handleListUsers returns the user directory. Admin only.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	filter := auth.UserFilter{
		Role: auth.Role(r.URL.Query().Get("role")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	users, err := s.users.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing users failed", "error", err)
		writeInternalError(w, "unable to list users")
		return
	}

	sanitized := make([]*auth.User, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, users[i].Sanitized())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": sanitized,
		"count": len(sanitized),
	})
}

// handleGetUser returns a single user by ID. Admin only.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("loading user failed", "error", err, "user_id", id)
		writeInternalError(w, "unable to load user")
		return
	}

	writeJSON(w, http.StatusOK, user.Sanitized())
}
