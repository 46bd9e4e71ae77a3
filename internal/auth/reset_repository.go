package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"
)

// resetTokenBytes is the entropy of an issued reset token.
const resetTokenBytes = 32

// ResetTokenRepository defines the interface for password reset token
// persistence. Raw tokens are never stored, only their SHA-256 hashes;
// a token is single-use and expires after its TTL.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *ResetToken) error
	Consume(ctx context.Context, tokenHash string, now time.Time) (*ResetToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SQLiteResetTokenRepository implements ResetTokenRepository using SQLite.
type SQLiteResetTokenRepository struct {
	db *sql.DB
}

// NewResetTokenRepository creates a new SQLite-backed reset token repository.
func NewResetTokenRepository(db *sql.DB) *SQLiteResetTokenRepository {
	return &SQLiteResetTokenRepository{db: db}
}

// GenerateResetToken returns a new random reset token and its storage hash.
func GenerateResetToken() (raw, hash string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generating reset token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, HashToken(raw), nil
}

// HashToken computes the SHA-256 hash of a raw token string for storage.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// Create inserts a new reset token record.
func (r *SQLiteResetTokenRepository) Create(ctx context.Context, token *ResetToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reset_tokens (token_hash, user_id, expires_at, consumed, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		token.TokenHash, token.UserID,
		token.ExpiresAt.UTC().Format(time.RFC3339),
		boolToInt(token.Consumed),
		token.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating reset token: %w", err)
	}

	return nil
}

// Consume atomically marks a token as used and returns its record.
// It fails with ErrInvalidResetCode when the token is unknown, expired,
// or already consumed, leaving the stored row untouched.
func (r *SQLiteResetTokenRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (*ResetToken, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning consume transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is no-op after commit

	var t ResetToken
	var consumed int
	var expiresAt, createdAt string

	err = tx.QueryRowContext(ctx,
		`SELECT token_hash, user_id, expires_at, consumed, created_at
		 FROM reset_tokens WHERE token_hash = ?`, tokenHash,
	).Scan(&t.TokenHash, &t.UserID, &expiresAt, &consumed, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidResetCode
		}
		return nil, fmt.Errorf("getting reset token: %w", err)
	}

	t.Consumed = consumed != 0
	t.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt) //nolint:errcheck // format is controlled
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	if t.Consumed || !t.ExpiresAt.After(now) {
		return nil, ErrInvalidResetCode
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE reset_tokens SET consumed = 1 WHERE token_hash = ?", tokenHash); err != nil {
		return nil, fmt.Errorf("consuming reset token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing consume: %w", err)
	}

	t.Consumed = true
	return &t, nil
}

// DeleteExpired removes tokens past their expiry, freeing storage.
// Returns the number of deleted rows.
func (r *SQLiteResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM reset_tokens WHERE expires_at <= ?", now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("deleting expired reset tokens: %w", err)
	}

	count, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return count, nil
}
