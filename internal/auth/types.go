package auth

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// emailPattern is a pragmatic format check, not a full RFC 5322 parser.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValidEmail checks if an email address meets format requirements.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeEmail lowercases and trims an email address. All directory
// lookups and stored emails use the normalized form, which is what makes
// email comparison case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Role represents an authorisation tier in the platform.
type Role string

const (
	// RoleAdmin manages users, reservations, drivers, vehicles and
	// platform settings from the back office.
	RoleAdmin Role = "admin"

	// RoleDriver sees and updates the transfers assigned to them.
	RoleDriver Role = "driver"

	// RoleCustomer books transfers and manages their own reservations.
	RoleCustomer Role = "customer"
)

// ValidRoles is the set of roles an account may hold.
var ValidRoles = []Role{RoleAdmin, RoleDriver, RoleCustomer}

// IsValidRole returns true if the role is one of the known roles.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User represents an account in the directory.
//
// Permissions is a snapshot of the role's permission set taken when the
// account was created; it is not recomputed if the role table changes.
type User struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	Phone            string            `json:"phone"`
	Role             Role              `json:"role"`
	IsActive         bool              `json:"is_active"`
	PasswordHash     string            `json:"-"` // never serialised
	Permissions      []Permission      `json:"permissions"`
	LastLogin        *time.Time        `json:"last_login,omitempty"`
	LoginCount       int               `json:"login_count"`
	RegistrationDate time.Time         `json:"registration_date"`
	EmailVerified    bool              `json:"email_verified"`
	PhoneVerified    bool              `json:"phone_verified"`
	Preferences      map[string]string `json:"preferences"`
}

// Sanitized returns a copy of the user with the credential removed.
// Flow results and API responses must only ever carry sanitized copies.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	c.Permissions = append([]Permission(nil), u.Permissions...)
	if u.Preferences != nil {
		c.Preferences = make(map[string]string, len(u.Preferences))
		for k, v := range u.Preferences {
			c.Preferences[k] = v
		}
	}
	return &c
}

// AuthState is the externally visible authentication snapshot.
//
// Version increases monotonically with every committed transition and is
// used to reject stale commits from interleaved flows.
type AuthState struct {
	User            *User      `json:"user"`
	Token           string     `json:"token,omitempty"`
	IsAuthenticated bool       `json:"is_authenticated"`
	IsLoading       bool       `json:"is_loading"`
	SessionExpiry   *time.Time `json:"session_expiry,omitempty"`
	Version         uint64     `json:"-"`
}

// FederatedIdentity is the verified result handed over by an external
// identity provider after a successful handshake.
type FederatedIdentity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email         string            `json:"email"`
	Password      string            `json:"password"`
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	Phone         string            `json:"phone"`
	Role          Role              `json:"role,omitempty"`
	TermsAccepted bool              `json:"terms_accepted"`
	Preferences   map[string]string `json:"preferences,omitempty"`
}

// ProfileUpdate carries the optional fields of a partial profile update.
// Nil fields are left unchanged. Credential and role are not updatable
// through this path.
type ProfileUpdate struct {
	FirstName   *string           `json:"first_name,omitempty"`
	LastName    *string           `json:"last_name,omitempty"`
	Phone       *string           `json:"phone,omitempty"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

// ResetToken is a server-tracked password reset token record. Only the
// SHA-256 hash of the issued token is stored.
type ResetToken struct {
	TokenHash string    `json:"-"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
	CreatedAt time.Time `json:"created_at"`
}

// Sentinel errors for auth operations, grouped by taxonomy.
var (
	// Validation failures.
	ErrEmailExists      = errors.New("email address is already registered")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidResetCode = errors.New("invalid or expired reset code")

	// Authentication failures.
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrRoleMismatch       = errors.New("account role does not match requested role")
	ErrNotAuthenticated   = errors.New("no authenticated session")

	// Not-found outcomes.
	ErrUserNotFound = errors.New("user not found")

	// State conflicts.
	ErrStaleState = errors.New("auth state changed during operation")

	// Transient failures, reserved for notification delivery. Never
	// surfaced as a flow failure.
	ErrNotificationSend = errors.New("notification send failed")
)
