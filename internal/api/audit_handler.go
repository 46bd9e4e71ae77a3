package api

import (
	"net/http"
	"strconv"

	"github.com/luckdow/sbstravel-sub000/internal/audit"
)

// handleListAudit returns the auth audit trail. Admin only.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotFound(w, "audit trail is not enabled")
		return
	}

	filter := audit.Filter{
		Event:   r.URL.Query().Get("event"),
		UserID:  r.URL.Query().Get("user_id"),
		Outcome: r.URL.Query().Get("outcome"),
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

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit entries failed", "error", err)
		writeInternalError(w, "unable to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
