package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for the user directory.
//
// Email lookups are case-insensitive: emails are normalized to lower
// case on write, and GetByEmail normalizes its argument before querying.
// Absence of a user is reported as ErrUserNotFound, a domain outcome.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Deactivate(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SQLiteUserRepository implements UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, phone, role, is_active, password_hash,
	 permissions, last_login, login_count, registration_date, email_verified, phone_verified, preferences`

// Create inserts a new user account. The ID is generated if empty and
// the email is stored in normalized form.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = "usr-" + uuid.NewString()[:8]
	}
	user.Email = NormalizeEmail(user.Email)

	if user.RegistrationDate.IsZero() {
		user.RegistrationDate = time.Now().UTC()
	}

	permsJSON, err := marshalPermissions(user.Permissions)
	if err != nil {
		return err
	}
	prefsJSON, err := marshalPreferences(user.Preferences)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.FirstName, user.LastName, user.Phone,
		string(user.Role), boolToInt(user.IsActive), user.PasswordHash,
		permsJSON, nullTime(user.LastLogin), user.LoginCount,
		user.RegistrationDate.UTC().Format(time.RFC3339),
		boolToInt(user.EmailVerified), boolToInt(user.PhoneVerified), prefsJSON,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their unique ID.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetByEmail retrieves a user by email, matching case-insensitively.
func (r *SQLiteUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", NormalizeEmail(email))
}

// UserFilter controls which users List returns.
type UserFilter struct {
	Role   Role // optional: restrict to one role
	Limit  int  // default 50, max 200
	Offset int  // pagination offset
}

// List returns users ordered by registration date.
func (r *SQLiteUserRepository) List(ctx context.Context, filter UserFilter) ([]User, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	query := "SELECT " + userColumns + " FROM users"
	var args []any
	if filter.Role != "" {
		query += " WHERE role = ?"
		args = append(args, string(filter.Role))
	}
	query += " ORDER BY registration_date ASC, id ASC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUserFrom(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	if users == nil {
		users = []User{}
	}
	return users, nil
}

// Update replaces a user's mutable fields. The credential is written as
// carried on the struct; callers doing partial updates must load the
// record first so the stored hash is preserved. Role changes are not
// accepted through this path.
func (r *SQLiteUserRepository) Update(ctx context.Context, user *User) error {
	permsJSON, err := marshalPermissions(user.Permissions)
	if err != nil {
		return err
	}
	prefsJSON, err := marshalPreferences(user.Preferences)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, phone = ?, is_active = ?,
		 permissions = ?, last_login = ?, login_count = ?, email_verified = ?,
		 phone_verified = ?, preferences = ? WHERE id = ?`,
		user.FirstName, user.LastName, user.Phone, boolToInt(user.IsActive),
		permsJSON, nullTime(user.LastLogin), user.LoginCount,
		boolToInt(user.EmailVerified), boolToInt(user.PhoneVerified),
		prefsJSON, user.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword changes a user's password hash.
func (r *SQLiteUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Deactivate soft-removes an account by clearing is_active. There is no
// hard delete in this subsystem.
func (r *SQLiteUserRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deactivating user: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the total number of user accounts.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// getUser executes a query and scans a single user result.
func (r *SQLiteUserRepository) getUser(ctx context.Context, query string, args ...any) (*User, error) {
	return scanUserFrom(r.db.QueryRowContext(ctx, query, args...))
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanUserFrom scans a user from any scanner (Row or Rows).
func scanUserFrom(s scanner) (*User, error) {
	var u User
	var role string
	var isActive, loginCount, emailVerified, phoneVerified int
	var lastLogin sql.NullString
	var permsJSON, prefsJSON, registrationDate string

	err := s.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone,
		&role, &isActive, &u.PasswordHash,
		&permsJSON, &lastLogin, &loginCount, &registrationDate,
		&emailVerified, &phoneVerified, &prefsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = Role(role)
	u.IsActive = isActive != 0
	u.LoginCount = loginCount
	u.EmailVerified = emailVerified != 0
	u.PhoneVerified = phoneVerified != 0

	if lastLogin.Valid {
		t, err := time.Parse(time.RFC3339, lastLogin.String)
		if err != nil {
			return nil, fmt.Errorf("parsing last_login: %w", err)
		}
		u.LastLogin = &t
	}
	u.RegistrationDate, _ = time.Parse(time.RFC3339, registrationDate) //nolint:errcheck // format is controlled

	if err := json.Unmarshal([]byte(permsJSON), &u.Permissions); err != nil {
		return nil, fmt.Errorf("parsing permissions: %w", err)
	}
	if err := json.Unmarshal([]byte(prefsJSON), &u.Preferences); err != nil {
		return nil, fmt.Errorf("parsing preferences: %w", err)
	}

	return &u, nil
}

// Helper functions.

func marshalPermissions(perms []Permission) (string, error) {
	if perms == nil {
		perms = []Permission{}
	}
	b, err := json.Marshal(perms)
	if err != nil {
		return "", fmt.Errorf("marshalling permissions: %w", err)
	}
	return string(b), nil
}

func marshalPreferences(prefs map[string]string) (string, error) {
	if prefs == nil {
		prefs = map[string]string{}
	}
	b, err := json.Marshal(prefs)
	if err != nil {
		return "", fmt.Errorf("marshalling preferences: %w", err)
	}
	return string(b), nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}
