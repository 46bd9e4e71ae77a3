// Package announce publishes authentication activity to the MQTT broker
// so other platform services (dispatch, back office dashboards) can react
// to sign-ins without polling the HTTP API.
//
// Two kinds of messages are published:
//
//   - Retained state snapshots on sbstravel/auth/state, emitted on every
//     committed transition. The session token is never included.
//   - One-shot event messages on sbstravel/auth/event/{event}, emitted
//     through the audit seam.
//
// Publishing is best-effort. A broker outage never fails an auth flow;
// failures are logged and the next transition tries again.
package announce

import (
	"context"
	"encoding/json"
	"time"

	"github.com/luckdow/sbstravel-sub000/internal/auth"
	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/logging"
	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/mqtt"
)

// Publisher is the broker surface the announcer needs. *mqtt.Client
// satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
}

// statePayload is the wire form of an auth state announcement.
//
// It deliberately carries less than auth.AuthState: no token, and only
// the identity fields a consumer can act on.
type statePayload struct {
	Authenticated bool       `json:"authenticated"`
	UserID        string     `json:"user_id,omitempty"`
	Email         string     `json:"email,omitempty"`
	Role          string     `json:"role,omitempty"`
	SessionExpiry *time.Time `json:"session_expiry,omitempty"`
	Version       uint64     `json:"version"`
	Timestamp     string     `json:"timestamp"`
}

// eventPayload is the wire form of an auth event announcement.
type eventPayload struct {
	Event     string `json:"event"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Outcome   string `json:"outcome"`
	Timestamp string `json:"timestamp"`
}

// Announcer bridges the auth service to the MQTT broker.
type Announcer struct {
	pub    Publisher
	logger *logging.Logger
	topics mqtt.Topics
	now    func() time.Time
}

// New creates an announcer publishing through pub. A nil logger falls
// back to the default logger.
func New(pub Publisher, logger *logging.Logger) *Announcer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Announcer{
		pub:    pub,
		logger: logger.With("component", "announce"),
		now:    time.Now,
	}
}

// Start subscribes the announcer to the service's state changes and
// returns the unsubscribe function.
func (a *Announcer) Start(svc *auth.Service) (stop func()) {
	return svc.Subscribe(a.handleState)
}

// handleState publishes a retained state snapshot. Loading states are
// transient and skipped; only committed transitions are announced.
func (a *Announcer) handleState(state auth.AuthState) {
	if state.IsLoading {
		return
	}

	payload := statePayload{
		Authenticated: state.IsAuthenticated,
		SessionExpiry: state.SessionExpiry,
		Version:       state.Version,
		Timestamp:     a.now().UTC().Format(time.RFC3339),
	}
	if state.User != nil {
		payload.UserID = state.User.ID
		payload.Email = state.User.Email
		payload.Role = string(state.User.Role)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error("marshaling state announcement", "error", err)
		return
	}

	if err := a.pub.PublishRetained(a.topics.AuthState(), body); err != nil {
		a.logger.Warn("publishing state announcement", "error", err)
	}
}

// Record publishes a one-shot event message. It satisfies
// auth.AuditRecorder so the auth service's audit seam can feed the
// broker alongside the SQLite trail.
func (a *Announcer) Record(_ context.Context, event, userID, email, outcome string, _ map[string]any) {
	payload := eventPayload{
		Event:     event,
		UserID:    userID,
		Email:     email,
		Outcome:   outcome,
		Timestamp: a.now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.Error("marshaling event announcement", "event", event, "error", err)
		return
	}

	if err := a.pub.Publish(a.topics.AuthEvent(event), body, 1, false); err != nil {
		a.logger.Warn("publishing event announcement", "event", event, "error", err)
	}
}
