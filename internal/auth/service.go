package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/logging"
)

// Audit event names recorded by the service.
const (
	EventLogin          = "auth.login"
	EventLogout         = "auth.logout"
	EventRegister       = "auth.register"
	EventFederatedLogin = "auth.federated_login"
	EventResetRequested = "auth.reset_requested"
	EventResetConfirmed = "auth.reset_confirmed"
	EventSessionExpired = "auth.session_expired"
	EventProfileUpdated = "auth.profile_updated"
)

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeIgnored = "ignored"
)

// AuditRecorder receives auth events for the audit trail. Recording is
// best-effort; implementations must not block flows on failure.
type AuditRecorder interface {
	Record(ctx context.Context, event, userID, email, outcome string, detail map[string]any)
}

// AuditRecorders fans a record out to multiple recorders in order.
// Nil entries are skipped.
type AuditRecorders []AuditRecorder

func (rs AuditRecorders) Record(ctx context.Context, event, userID, email, outcome string, detail map[string]any) {
	for _, r := range rs {
		if r != nil {
			r.Record(ctx, event, userID, email, outcome, detail)
		}
	}
}

// ServiceConfig carries the session lifecycle parameters.
type ServiceConfig struct {
	// SessionTTL is the default session lifetime.
	SessionTTL time.Duration

	// RememberMeTTL is the session lifetime when the caller opts into a
	// long-lived session at login.
	RememberMeTTL time.Duration

	// ResetTokenTTL is the lifetime of issued password reset tokens.
	ResetTokenTTL time.Duration

	// MinPasswordLength applies at registration and reset confirmation.
	MinPasswordLength int
}

// ServiceDeps carries the service's collaborators.
type ServiceDeps struct {
	Users     UserRepository
	Resets    ResetTokenRepository
	Snapshots SnapshotRepository
	Bus       *Bus

	// Audit is optional; nil disables the audit trail.
	Audit AuditRecorder

	// Notifier is optional; nil disables welcome and reset notifications.
	Notifier Notifier

	Logger *logging.Logger

	// Now is the clock; defaults to time.Now. Injectable for tests.
	Now func() time.Time
}

// Service is the authentication and session lifecycle core. It owns the
// single current AuthState, runs the credential flows against the user
// directory, and notifies the subscription bus on every state change.
//
// All state transitions are serialised by an internal guard: flows run
// to completion one at a time, and AuthState carries a monotonic version
// counter so a commit against a stale base is rejected rather than
// silently overwriting a newer state.
type Service struct {
	cfg ServiceConfig

	users     UserRepository
	resets    ResetTokenRepository
	snapshots SnapshotRepository
	bus       *Bus
	audit     AuditRecorder
	notifier  Notifier
	logger    *logging.Logger
	now       func() time.Time

	// flowMu serialises whole flows; stateMu guards the state snapshot
	// for readers. flowMu is always taken before stateMu.
	flowMu  sync.Mutex
	stateMu sync.RWMutex
	state   AuthState

	// notifyWG tracks best-effort background notifications.
	notifyWG sync.WaitGroup
}

// NewService creates the auth service. Restore must be called before the
// service handles traffic if persisted sessions should survive restarts.
func NewService(cfg ServiceConfig, deps ServiceDeps) (*Service, error) {
	if deps.Users == nil {
		return nil, errors.New("auth service requires a user repository")
	}
	if deps.Resets == nil {
		return nil, errors.New("auth service requires a reset token repository")
	}
	if deps.Snapshots == nil {
		return nil, errors.New("auth service requires a snapshot repository")
	}
	if deps.Logger == nil {
		return nil, errors.New("auth service requires a logger")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}
	if cfg.RememberMeTTL < cfg.SessionTTL {
		return nil, errors.New("remember-me TTL must not be shorter than session TTL")
	}

	if deps.Bus == nil {
		deps.Bus = NewBus()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 6
	}

	return &Service{
		cfg:       cfg,
		users:     deps.Users,
		resets:    deps.Resets,
		snapshots: deps.Snapshots,
		bus:       deps.Bus,
		audit:     deps.Audit,
		notifier:  deps.Notifier,
		logger:    deps.Logger.With("component", "auth"),
		now:       deps.Now,
	}, nil
}

// AuthState returns a copy of the current authentication snapshot with
// the credential stripped.
func (s *Service) AuthState() AuthState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.copyStateLocked()
}

// Subscribe registers a listener for AuthState changes and returns its
// unsubscribe function. Dispatch is synchronous and in registration order.
func (s *Service) Subscribe(fn Listener) (unsubscribe func()) {
	return s.bus.Subscribe(fn)
}

// IsSessionValid reports whether a session expiry is set and strictly in
// the future.
func (s *Service) IsSessionValid() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.SessionExpiry != nil && s.state.SessionExpiry.After(s.now())
}

// HasRole reports whether the session user holds exactly the given role.
func (s *Service) HasRole(role Role) bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.User != nil && s.state.User.Role == role
}

// HasPermission reports whether the session user's permission snapshot
// grants the permission. Own-scoped permissions additionally require the
// resource ID to equal the session user's ID.
func (s *Service) HasPermission(perm Permission, resourceID string) bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	user := s.state.User
	if user == nil {
		return false
	}
	if !permissionSetContains(user.Permissions, perm) {
		return false
	}
	if perm.IsOwnScoped() {
		return resourceID == user.ID
	}
	return true
}

// Restore loads the persisted session snapshot at startup. The session
// is restored only when its expiry is strictly in the future; otherwise
// the snapshot is cleared and the state remains empty.
func (s *Service) Restore(ctx context.Context) error {
	s.flowMu.Lock()
	defer s.flowMu.Unlock()

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			return nil
		}
		return fmt.Errorf("loading session snapshot: %w", err)
	}

	if !snap.SessionExpiry.After(s.now()) {
		s.logger.Info("persisted session expired, clearing snapshot")
		return s.snapshots.Clear(ctx)
	}

	user, err := s.users.GetByID(ctx, snap.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn("persisted session references unknown user, clearing snapshot",
				"user_id", snap.UserID)
			return s.snapshots.Clear(ctx)
		}
		return fmt.Errorf("loading session user: %w", err)
	}
	if !user.IsActive {
		s.logger.Warn("persisted session belongs to inactive account, clearing snapshot",
			"user_id", user.ID)
		return s.snapshots.Clear(ctx)
	}

	expiry := snap.SessionExpiry
	s.setState(func(st *AuthState) {
		st.User = user.Sanitized()
		st.Token = snap.Token
		st.IsAuthenticated = true
		st.IsLoading = false
		st.SessionExpiry = &expiry
	})

	s.logger.Info("session restored",
		"user_id", user.ID,
		"expires_at", expiry.Format(time.RFC3339),
	)
	return nil
}

// Login authenticates an email/password pair and establishes a session.
// rememberMe extends the session lifetime from the default to the
// configured long-lived TTL. The returned user is credential-stripped.
func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool) (*User, error) {
	s.flowMu.Lock()
	defer s.flowMu.Unlock()

	base := s.beginLoading()
	defer s.clearLoading()

	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.record(ctx, EventLogin, "", email, OutcomeFailure, map[string]any{"reason": "unknown user"})
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		s.record(ctx, EventLogin, user.ID, email, OutcomeFailure, map[string]any{"reason": "incorrect password"})
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.record(ctx, EventLogin, user.ID, email, OutcomeFailure, map[string]any{"reason": "inactive account"})
		return nil, ErrAccountInactive
	}

	if err := s.bumpLoginMetadata(ctx, user); err != nil {
		return nil, err
	}

	ttl := s.cfg.SessionTTL
	if rememberMe {
		ttl = s.cfg.RememberMeTTL
	}

	if err := s.commitSession(ctx, user, ttl, base); err != nil {
		return nil, err
	}

	s.record(ctx, EventLogin, user.ID, email, OutcomeSuccess, map[string]any{
		"remember_me": rememberMe,
	})
	s.logger.Info("login succeeded", "user_id", user.ID, "remember_me", rememberMe)
	return user.Sanitized(), nil
}

// Register creates a new account and immediately establishes a session
// with the default TTL. A best-effort welcome notification is sent in
// the background and cannot fail the registration.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	s.flowMu.Lock()
	defer s.flowMu.Unlock()

	base := s.beginLoading()
	defer s.clearLoading()

	if err := s.validateRegistration(&input); err != nil {
		s.record(ctx, EventRegister, "", input.Email, OutcomeFailure, map[string]any{"reason": err.Error()})
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Email:            input.Email,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Phone:            input.Phone,
		Role:             input.Role,
		IsActive:         true,
		PasswordHash:     hash,
		Permissions:      PermissionsForRole(input.Role),
		RegistrationDate: s.now().UTC(),
		EmailVerified:    false,
		PhoneVerified:    false,
		Preferences:      defaultPreferences(input.Preferences),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			s.record(ctx, EventRegister, "", input.Email, OutcomeFailure, map[string]any{"reason": "email exists"})
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if err := s.commitSession(ctx, user, s.cfg.SessionTTL, base); err != nil {
		return nil, err
	}

	s.record(ctx, EventRegister, user.ID, user.Email, OutcomeSuccess, map[string]any{
		"role": string(user.Role),
	})
	s.logger.Info("account registered", "user_id", user.ID, "role", user.Role)

	s.sendAsync(func(nctx context.Context) error {
		if s.notifier == nil {
			return nil
		}
		return s.notifier.SendWelcome(nctx, user.Sanitized())
	})

	return user.Sanitized(), nil
}

// AuthenticateFederatedUser signs in an identity verified by an external
// provider. An existing account must hold exactly the requested role; a
// missing account is self-provisioned only for the customer role, with
// the email pre-verified and an unusable random credential.
func (s *Service) AuthenticateFederatedUser(ctx context.Context, identity FederatedIdentity, requestedRole Role) (*User, error) {
	s.flowMu.Lock()
	defer s.flowMu.Unlock()

	base := s.beginLoading()
	defer s.clearLoading()

	email := NormalizeEmail(identity.Email)
	if !IsValidEmail(email) {
		return nil, fmt.Errorf("%w: federated identity email is malformed", ErrInvalidInput)
	}
	if !IsValidRole(requestedRole) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, requestedRole)
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role != requestedRole {
			s.record(ctx, EventFederatedLogin, user.ID, email, OutcomeFailure, map[string]any{
				"reason":         "role mismatch",
				"account_role":   string(user.Role),
				"requested_role": string(requestedRole),
			})
			return nil, fmt.Errorf("%w: account holds %q, requested %q",
				ErrRoleMismatch, user.Role, requestedRole)
		}
		if !user.IsActive {
			s.record(ctx, EventFederatedLogin, user.ID, email, OutcomeFailure, map[string]any{"reason": "inactive account"})
			return nil, ErrAccountInactive
		}
		if err := s.bumpLoginMetadata(ctx, user); err != nil {
			return nil, err
		}

	case errors.Is(err, ErrUserNotFound):
		if requestedRole != RoleCustomer {
			s.record(ctx, EventFederatedLogin, "", email, OutcomeFailure, map[string]any{
				"reason":         "self-provisioning restricted",
				"requested_role": string(requestedRole),
			})
			return nil, fmt.Errorf("%w: federated sign-up is limited to the customer role, requested %q",
				ErrRoleMismatch, requestedRole)
		}
		user, err = s.provisionFederatedUser(ctx, email, identity.Name)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.commitSession(ctx, user, s.cfg.SessionTTL, base); err != nil {
		return nil, err
	}

	s.record(ctx, EventFederatedLogin, user.ID, email, OutcomeSuccess, map[string]any{
		"role": string(user.Role),
	})
	s.logger.Info("federated login succeeded", "user_id", user.ID, "role", user.Role)
	return user.Sanitized(), nil
}

// RequestPasswordReset issues a reset token for the account behind the
// email, if one exists and is active. The call reports success either
// way so callers cannot probe which addresses are registered; delivery
// happens in the background.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	s.flowMu.Lock()
	defer s.flowMu.Unlock()

	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.record(ctx, EventResetRequested, "", email, OutcomeIgnored, map[string]any{"reason": "unknown email"})
			s.logger.Info("reset requested for unknown email", "email", email)
			return nil
		}
		return fmt.Errorf("looking up user: %w", err)
	}
	if !user.IsActive {
		s.record(ctx, EventResetRequested, user.ID, email, OutcomeIgnored, map[string]any{"reason": "inactive account"})
		return nil
	}

	raw, hash, err := GenerateResetToken()
	if err != nil {
		return err
	}

	token := &ResetToken{
		TokenHash: hash,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.cfg.ResetTokenTTL),
		CreatedAt: s.now().UTC(),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return err
	}

	s.record(ctx, EventResetRequested, user.ID, email, OutcomeSuccess, nil)
	s.logger.Info("password reset requested", "user_id", user.ID)

	s.sendAsync(func(nctx context.Context) error {
		if s.notifier == nil {
			return nil
		}
		return s.notifier.SendPasswordReset(nctx, user.Sanitized(), raw)
	})

	return nil
}

// ConfirmPasswordReset consumes a reset token and overwrites the
// account's credential. The token is single-use: a second confirmation
// with the same token fails. The caller must log in again afterwards.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	s.flowMu.Lock()
	defer s.flowMu.Unlock()

	if len(newPassword) < s.cfg.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			ErrInvalidInput, s.cfg.MinPasswordLength)
	}
	if token == "" {
		return ErrInvalidResetCode
	}

	record, err := s.resets.Consume(ctx, HashToken(token), s.now())
	if err != nil {
		if errors.Is(err, ErrInvalidResetCode) {
			s.record(ctx, EventResetConfirmed, "", "", OutcomeFailure, map[string]any{"reason": "invalid code"})
			return ErrInvalidResetCode
		}
		return err
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.record(ctx, EventResetConfirmed, record.UserID, "", OutcomeFailure, map[string]any{"reason": "user gone"})
			return ErrUserNotFound
		}
		return fmt.Errorf("loading user: %w", err)
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	s.record(ctx, EventResetConfirmed, user.ID, user.Email, OutcomeSuccess, nil)
	s.logger.Info("password reset confirmed", "user_id", user.ID)
	return nil
}

// Logout resets the AuthState to its empty form, clears the persisted
// snapshot and notifies subscribers.
func (s *Service) Logout(ctx context.Context) error {
	s.flowMu.Lock()
	defer s.flowMu.Unlock()
	return s.logoutLocked(ctx, EventLogout)
}

// expireSession is the session monitor's entry point: a logout recorded
// under the session-expired event.
func (s *Service) expireSession(ctx context.Context) error {
	s.flowMu.Lock()
	defer s.flowMu.Unlock()

	// Re-check under the guard: a caller-invoked logout or fresh login
	// may have raced the monitor tick.
	s.stateMu.RLock()
	expired := s.state.IsAuthenticated &&
		(s.state.SessionExpiry == nil || !s.state.SessionExpiry.After(s.now()))
	s.stateMu.RUnlock()
	if !expired {
		return nil
	}

	return s.logoutLocked(ctx, EventSessionExpired)
}

// logoutLocked clears state and snapshot. Caller must hold flowMu.
func (s *Service) logoutLocked(ctx context.Context, event string) error {
	s.stateMu.RLock()
	var userID string
	if s.state.User != nil {
		userID = s.state.User.ID
	}
	s.stateMu.RUnlock()

	if err := s.snapshots.Clear(ctx); err != nil {
		return err
	}

	s.setState(func(st *AuthState) {
		st.User = nil
		st.Token = ""
		st.IsAuthenticated = false
		st.IsLoading = false
		st.SessionExpiry = nil
	})

	s.record(ctx, event, userID, "", OutcomeSuccess, nil)
	s.logger.Info("session ended", "user_id", userID, "event", event)
	return nil
}

// UpdateProfile applies a partial update to the signed-in user's
// profile. Credential, role and permission snapshot are preserved.
func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	s.flowMu.Lock()
	defer s.flowMu.Unlock()

	s.stateMu.RLock()
	sessionUser := s.state.User
	s.stateMu.RUnlock()
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}

	user, err := s.users.GetByID(ctx, sessionUser.ID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	for k, v := range update.Preferences {
		if user.Preferences == nil {
			user.Preferences = map[string]string{}
		}
		user.Preferences[k] = v
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.setState(func(st *AuthState) {
		st.User = user.Sanitized()
	})

	s.record(ctx, EventProfileUpdated, user.ID, user.Email, OutcomeSuccess, nil)
	return user.Sanitized(), nil
}

// Wait blocks until in-flight background notifications are done. Used
// during shutdown and in tests.
func (s *Service) Wait() {
	s.notifyWG.Wait()
}

// Internal helpers.

// beginLoading marks the state as loading, notifies, and returns the
// resulting version as the base for the flow's final commit.
func (s *Service) beginLoading() uint64 {
	return s.setState(func(st *AuthState) {
		st.IsLoading = true
	})
}

// clearLoading drops the loading flag if still set. Deferred by flows so
// isLoading is cleared on every exit path; a successful commit has
// already cleared it, making this a no-op.
func (s *Service) clearLoading() {
	s.stateMu.RLock()
	loading := s.state.IsLoading
	s.stateMu.RUnlock()
	if !loading {
		return
	}
	s.setState(func(st *AuthState) {
		st.IsLoading = false
	})
}

// commitSession persists and installs a new authenticated session. The
// base version must be the one returned by beginLoading; a mismatch
// means another transition slipped in and the commit is rejected.
func (s *Service) commitSession(ctx context.Context, user *User, ttl time.Duration, base uint64) error {
	expiry := s.now().Add(ttl)

	token, err := NewSessionToken(user.ID, s.now())
	if err != nil {
		return err
	}

	// Persist first: a storage failure leaves the previous state intact
	// (the deferred clearLoading restores the loading flag).
	if err := s.snapshots.Save(ctx, &Snapshot{
		UserID:        user.ID,
		Token:         token,
		SessionExpiry: expiry,
	}); err != nil {
		return err
	}

	s.stateMu.Lock()
	if s.state.Version != base {
		s.stateMu.Unlock()
		return ErrStaleState
	}
	s.state.User = user.Sanitized()
	s.state.Token = token
	s.state.IsAuthenticated = true
	s.state.IsLoading = false
	s.state.SessionExpiry = &expiry
	s.state.Version++
	snapshot := s.copyStateLocked()
	s.stateMu.Unlock()

	s.bus.Notify(snapshot)
	return nil
}

// setState applies a mutation, bumps the version, notifies the bus, and
// returns the new version.
func (s *Service) setState(mutate func(*AuthState)) uint64 {
	s.stateMu.Lock()
	mutate(&s.state)
	s.state.Version++
	version := s.state.Version
	snapshot := s.copyStateLocked()
	s.stateMu.Unlock()

	s.bus.Notify(snapshot)
	return version
}

// copyStateLocked returns a defensive copy of the state. Caller must
// hold stateMu.
func (s *Service) copyStateLocked() AuthState {
	c := s.state
	c.User = s.state.User.Sanitized()
	if s.state.SessionExpiry != nil {
		e := *s.state.SessionExpiry
		c.SessionExpiry = &e
	}
	return c
}

// bumpLoginMetadata updates last-login and login-count on the record.
func (s *Service) bumpLoginMetadata(ctx context.Context, user *User) error {
	now := s.now().UTC()
	user.LastLogin = &now
	user.LoginCount++
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("updating login metadata: %w", err)
	}
	return nil
}

// provisionFederatedUser creates a pre-verified customer account for a
// federated identity. The credential is random and unusable for password
// login until reset.
func (s *Service) provisionFederatedUser(ctx context.Context, email, name string) (*User, error) {
	raw, _, err := GenerateResetToken()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(raw)
	if err != nil {
		return nil, fmt.Errorf("hashing generated credential: %w", err)
	}

	first, last := splitName(name)
	user := &User{
		Email:            email,
		FirstName:        first,
		LastName:         last,
		Role:             RoleCustomer,
		IsActive:         true,
		PasswordHash:     hash,
		Permissions:      PermissionsForRole(RoleCustomer),
		RegistrationDate: s.now().UTC(),
		EmailVerified:    true,
		PhoneVerified:    false,
		Preferences:      defaultPreferences(nil),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("federated account provisioned", "user_id", user.ID, "email", email)
	return user, nil
}

// validateRegistration normalizes and checks registration input.
func (s *Service) validateRegistration(input *RegisterInput) error {
	input.Email = NormalizeEmail(input.Email)
	if !IsValidEmail(input.Email) {
		return fmt.Errorf("%w: email address is malformed", ErrInvalidInput)
	}
	if len(input.Password) < s.cfg.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters",
			ErrInvalidInput, s.cfg.MinPasswordLength)
	}
	if !input.TermsAccepted {
		return fmt.Errorf("%w: terms must be accepted", ErrInvalidInput)
	}
	if input.Role == "" {
		input.Role = RoleCustomer
	}
	if !IsValidRole(input.Role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}
	return nil
}

// record writes an audit entry when an audit recorder is configured.
func (s *Service) record(ctx context.Context, event, userID, email, outcome string, detail map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, event, userID, email, outcome, detail)
}

// sendAsync runs a best-effort notification in the background. Failures
// are logged as transient and never propagated to the caller.
func (s *Service) sendAsync(send func(ctx context.Context) error) {
	s.notifyWG.Add(1)
	go func() {
		defer s.notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			s.logger.Warn("notification delivery failed",
				"error", fmt.Errorf("%w: %v", ErrNotificationSend, err))
		}
	}()
}

// defaultPreferences merges caller preferences over the defaults.
func defaultPreferences(prefs map[string]string) map[string]string {
	merged := map[string]string{
		"language": "en",
		"currency": "EUR",
	}
	for k, v := range prefs {
		merged[k] = v
	}
	return merged
}

// splitName splits a display name into first and last parts.
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
