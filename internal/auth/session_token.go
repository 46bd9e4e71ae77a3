package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// sessionTokenNonceBytes is the length of the random token suffix.
const sessionTokenNonceBytes = 8

// NewSessionToken builds an opaque session correlation token from the
// user ID, the issue time and a random suffix. It is not verifiable and
// carries no authority by itself: session validity is decided solely by
// the tracked expiry.
func NewSessionToken(userID string, issuedAt time.Time) (string, error) {
	nonce := make([]byte, sessionTokenNonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return fmt.Sprintf("%s.%d.%s", userID, issuedAt.Unix(), hex.EncodeToString(nonce)), nil
}
