package auth

import (
	"context"

	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/logging"
)

// Notifier delivers best-effort account notifications. Delivery failures
// are logged and never fail the flow that triggered them.
type Notifier interface {
	SendWelcome(ctx context.Context, user *User) error
	SendPasswordReset(ctx context.Context, user *User, token string) error
}

// LogNotifier is a Notifier that records deliveries in the application
// log instead of sending real mail. It stands in for the mail provider
// in development and tests.
type LogNotifier struct {
	logger *logging.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notifier")}
}

// SendWelcome logs a welcome notification for a newly registered account.
func (n *LogNotifier) SendWelcome(_ context.Context, user *User) error {
	n.logger.Info("welcome notification sent",
		"user_id", user.ID,
		"email", user.Email,
	)
	return nil
}

// SendPasswordReset logs a password reset notification. The raw token
// appears only here; the store keeps its hash.
func (n *LogNotifier) SendPasswordReset(_ context.Context, user *User, token string) error {
	n.logger.Info("password reset notification sent",
		"user_id", user.ID,
		"email", user.Email,
		"token", token,
	)
	return nil
}
