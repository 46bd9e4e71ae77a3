package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/luckdow/sbstravel-sub000/internal/auth"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// sessionResponse is the response body for flows that establish a session.
type sessionResponse struct {
	User    *auth.User     `json:"user"`
	State   auth.AuthState `json:"state"`
	TokenTy string         `json:"token_type"`
}

// registerRequest is the request body for POST /auth/register.
type registerRequest struct {
	Email         string            `json:"email"`
	Password      string            `json:"password"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Phone         string            `json:"phone"`
	Role          string            `json:"role"`
	TermsAccepted bool              `json:"terms_accepted"`
	Preferences   map[string]string `json:"preferences"`
}

// federatedRequest is the request body for POST /auth/federated.
type federatedRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// resetRequestBody is the request body for POST /auth/reset/request.
type resetRequestBody struct {
	Email string `json:"email"`
}

// resetConfirmBody is the request body for POST /auth/reset/confirm.
type resetConfirmBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// handleLogin authenticates an email/password pair and establishes a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.auth.Login(r.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		s.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User:    user,
		State:   s.auth.AuthState(),
		TokenTy: "Bearer",
	})
}

// handleRegister creates a new account and establishes a session.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.auth.Register(r.Context(), auth.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Role:          auth.Role(req.Role),
		TermsAccepted: req.TermsAccepted,
		Preferences:   req.Preferences,
	})
	if err != nil {
		s.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		User:    user,
		State:   s.auth.AuthState(),
		TokenTy: "Bearer",
	})
}

// handleFederatedLogin signs in an externally verified identity.
func (s *Server) handleFederatedLogin(w http.ResponseWriter, r *http.Request) {
	var req federatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.auth.AuthenticateFederatedUser(r.Context(),
		auth.FederatedIdentity{Email: req.Email, Name: req.Name},
		auth.Role(req.Role))
	if err != nil {
		s.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User:    user,
		State:   s.auth.AuthState(),
		TokenTy: "Bearer",
	})
}

// handleResetRequest starts a password reset. The response reports
// success regardless of whether the address is registered.
func (s *Server) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeInternalError(w, "unable to process reset request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleResetConfirm consumes a reset token and sets a new password.
func (s *Server) handleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.auth.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		s.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleLogout resets the session to its empty state.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		writeInternalError(w, "unable to log out")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleAuthState returns the current authentication snapshot. The
// endpoint is public, so the session token is redacted: the only way
// to hold the token is to have received it from a credential flow.
func (s *Server) handleAuthState(w http.ResponseWriter, _ *http.Request) {
	state := s.auth.AuthState()
	state.Token = ""
	writeJSON(w, http.StatusOK, state)
}

// handleSessionValid reports whether the current session is unexpired.
func (s *Server) handleSessionValid(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"valid": s.auth.IsSessionValid(),
	})
}

// profileRequest is the request body for PATCH /auth/profile.
type profileRequest struct {
	FirstName   *string           `json:"first_name"`
	LastName    *string           `json:"last_name"`
	Phone       *string           `json:"phone"`
	Preferences map[string]string `json:"preferences"`
}

// handleUpdateProfile applies a partial update to the session user's profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), auth.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Preferences: req.Preferences,
	})
	if err != nil {
		s.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// writeAuthError maps auth service errors to HTTP responses.
func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeBadRequest(w, err.Error())
	case errors.Is(err, auth.ErrInvalidResetCode):
		writeBadRequest(w, auth.ErrInvalidResetCode.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		writeUnauthorized(w, "invalid credentials")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeUnauthorized(w, "invalid credentials")
	case errors.Is(err, auth.ErrAccountInactive):
		writeForbidden(w, "account is inactive")
	case errors.Is(err, auth.ErrRoleMismatch):
		writeForbidden(w, err.Error())
	case errors.Is(err, auth.ErrNotAuthenticated):
		writeUnauthorized(w, "not signed in")
	case errors.Is(err, auth.ErrEmailExists):
		writeConflict(w, auth.ErrEmailExists.Error())
	default:
		s.logger.Error("auth flow failed", "error", err)
		writeInternalError(w, "internal server error")
	}
}
