// Package auth provides authentication and session lifecycle for SBS Travel Core.
//
// It implements a 3-role model (admin, driver, customer) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - A case-insensitive, email-indexed SQLite user directory
//   - Static role-permission mapping snapshotted onto accounts at creation
//   - Own-scoped permissions (":own") checked against the resource owner
//   - Opaque correlation session tokens with tracked expiry, persisted and
//     restored across restarts
//   - Random, single-use, TTL-bound password reset tokens stored by hash
//   - A synchronous, registration-ordered subscription bus for state changes
//   - A periodic session monitor that force-logs-out expired sessions
//
// The Service serialises all state transitions and carries a monotonic
// version counter on AuthState, so interleaved commits are rejected
// rather than silently overwriting newer state.
package auth
