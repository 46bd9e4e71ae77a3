package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Snapshot is the persisted form of an active session: just enough to
// restore AuthState across a restart.
type Snapshot struct {
	UserID        string    `json:"user_id"`
	Token         string    `json:"token"`
	SessionExpiry time.Time `json:"session_expiry"`
}

// ErrNoSnapshot is returned by Load when no session snapshot is stored.
var ErrNoSnapshot = errors.New("no session snapshot")

// SnapshotRepository persists the current session snapshot. The store
// holds at most one snapshot; Save replaces any previous one.
type SnapshotRepository interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
}

// SQLiteSnapshotRepository implements SnapshotRepository using a
// single-row SQLite table.
type SQLiteSnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SQLite-backed snapshot repository.
func NewSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

// Save upserts the session snapshot.
func (r *SQLiteSnapshotRepository) Save(ctx context.Context, snap *Snapshot) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_state (id, user_id, token, session_expiry) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
		   token = excluded.token, session_expiry = excluded.session_expiry`,
		snap.UserID, snap.Token, snap.SessionExpiry.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving session snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or ErrNoSnapshot when none exists.
func (r *SQLiteSnapshotRepository) Load(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	var expiry string

	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, token, session_expiry FROM auth_state WHERE id = 1",
	).Scan(&snap.UserID, &snap.Token, &expiry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("loading session snapshot: %w", err)
	}

	snap.SessionExpiry, err = time.Parse(time.RFC3339, expiry)
	if err != nil {
		return nil, fmt.Errorf("parsing session expiry: %w", err)
	}

	return &snap, nil
}

// Clear removes any stored snapshot.
func (r *SQLiteSnapshotRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM auth_state WHERE id = 1"); err != nil {
		return fmt.Errorf("clearing session snapshot: %w", err)
	}
	return nil
}
