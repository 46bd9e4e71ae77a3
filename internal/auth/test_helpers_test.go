package auth

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/logging"
)

// testDB creates a temporary SQLite database with the auth schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE users (
			id                TEXT PRIMARY KEY,
			email             TEXT NOT NULL UNIQUE,
			first_name        TEXT NOT NULL DEFAULT '',
			last_name         TEXT NOT NULL DEFAULT '',
			phone             TEXT NOT NULL DEFAULT '',
			role              TEXT NOT NULL,
			is_active         INTEGER NOT NULL DEFAULT 1,
			password_hash     TEXT NOT NULL,
			permissions       TEXT NOT NULL DEFAULT '[]',
			last_login        TEXT,
			login_count       INTEGER NOT NULL DEFAULT 0,
			registration_date TEXT NOT NULL,
			email_verified    INTEGER NOT NULL DEFAULT 0,
			phone_verified    INTEGER NOT NULL DEFAULT 0,
			preferences       TEXT NOT NULL DEFAULT '{}'
		) STRICT;

		CREATE UNIQUE INDEX idx_users_email ON users(email);

		CREATE TABLE reset_tokens (
			token_hash TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			consumed   INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE auth_state (
			id             INTEGER PRIMARY KEY CHECK (id = 1),
			user_id        TEXT NOT NULL,
			token          TEXT NOT NULL,
			session_expiry TEXT NOT NULL
		) STRICT;
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying auth schema: %v", err)
	}

	return db
}

// seedTestUser inserts an active test user with password "test-password"
// and the role's permission snapshot, then returns it.
func seedTestUser(t *testing.T, db *sql.DB, email string, role Role) *User {
	t.Helper()

	hash, err := HashPassword("test-password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewUserRepository(db)
	user := &User{
		Email:            email,
		FirstName:        "Test",
		LastName:         "User",
		Role:             role,
		IsActive:         true,
		PasswordHash:     hash,
		Permissions:      PermissionsForRole(role),
		RegistrationDate: time.Now().UTC(),
		Preferences:      map[string]string{"language": "en"},
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", email, err)
	}
	return user
}

// testClock is an adjustable clock for expiry tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testService builds a Service over a fresh test database with a fixed
// clock. Returns the service and its clock.
func testService(t *testing.T, db *sql.DB) (*Service, *testClock) {
	t.Helper()

	clock := newTestClock()
	svc, err := NewService(ServiceConfig{
		SessionTTL:        24 * time.Hour,
		RememberMeTTL:     720 * time.Hour,
		ResetTokenTTL:     time.Hour,
		MinPasswordLength: 6,
	}, ServiceDeps{
		Users:     NewUserRepository(db),
		Resets:    NewResetTokenRepository(db),
		Snapshots: NewSnapshotRepository(db),
		Notifier:  NewLogNotifier(logging.Default()),
		Logger:    logging.Default(),
		Now:       clock.Now,
	})
	if err != nil {
		t.Fatalf("creating test service: %v", err)
	}
	t.Cleanup(svc.Wait)
	return svc, clock
}
