// Package api implements the HTTP REST API for SBS Travel Core.
//
// This package provides:
//   - Credential endpoints (login, register, logout, federated sign-in)
//   - Password reset request and confirmation
//   - Session state and validity probes for clients
//   - Profile, user directory and audit trail endpoints
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server fronts the auth service: every credential flow maps to
// one endpoint, and protected routes are gated by the opaque session
// token the auth service issued at login. Role checks for admin-only
// endpoints go through the service's permission snapshot.
//
// # Security
//
// The session token is opaque and compared against the service's
// current session; it carries no client-verifiable claims. Admin
// endpoints additionally require the admin role on the session user.
package api
