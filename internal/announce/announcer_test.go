package announce

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/luckdow/sbstravel-sub000/internal/auth"
)

// fakePublisher records published messages for inspection.
type fakePublisher struct {
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func (p *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	p.published = append(p.published, publishedMessage{topic, payload, qos, retained})
	return p.err
}

func (p *fakePublisher) PublishRetained(topic string, payload []byte) error {
	p.published = append(p.published, publishedMessage{topic, payload, 1, true})
	return p.err
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func testAnnouncer(pub *fakePublisher) *Announcer {
	a := New(pub, nil)
	a.now = fixedClock
	return a
}

func TestHandleState_PublishesRetainedSnapshot(t *testing.T) {
	pub := &fakePublisher{}
	a := testAnnouncer(pub)

	expiry := fixedClock().Add(24 * time.Hour)
	a.handleState(auth.AuthState{
		User: &auth.User{
			ID:    "usr-12345678",
			Email: "driver@example.com",
			Role:  auth.RoleDriver,
		},
		Token:           "opaque-session-token",
		IsAuthenticated: true,
		SessionExpiry:   &expiry,
		Version:         7,
	})

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	msg := pub.published[0]
	if msg.topic != "sbstravel/auth/state" {
		t.Errorf("topic = %q, want sbstravel/auth/state", msg.topic)
	}
	if !msg.retained {
		t.Error("state announcement not retained")
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["authenticated"] != true {
		t.Error("authenticated = false, want true")
	}
	if decoded["user_id"] != "usr-12345678" {
		t.Errorf("user_id = %v, want usr-12345678", decoded["user_id"])
	}
	if decoded["role"] != "driver" {
		t.Errorf("role = %v, want driver", decoded["role"])
	}
	if decoded["version"] != float64(7) {
		t.Errorf("version = %v, want 7", decoded["version"])
	}
	if _, ok := decoded["token"]; ok {
		t.Error("session token leaked into announcement")
	}
}

func TestHandleState_SkipsLoadingStates(t *testing.T) {
	pub := &fakePublisher{}
	a := testAnnouncer(pub)

	a.handleState(auth.AuthState{IsLoading: true, Version: 1})

	if len(pub.published) != 0 {
		t.Fatalf("published %d messages for loading state, want 0", len(pub.published))
	}
}

func TestHandleState_SignedOut(t *testing.T) {
	pub := &fakePublisher{}
	a := testAnnouncer(pub)

	a.handleState(auth.AuthState{Version: 3})

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}

	var decoded map[string]any
	if err := json.Unmarshal(pub.published[0].payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["authenticated"] != false {
		t.Error("authenticated = true for signed-out state")
	}
	if _, ok := decoded["user_id"]; ok {
		t.Error("user_id present for signed-out state")
	}
}

func TestRecord_PublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	a := testAnnouncer(pub)

	a.Record(context.Background(), auth.EventLogin, "usr-12345678", "driver@example.com", auth.OutcomeSuccess, nil)

	if len(pub.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.published))
	}
	msg := pub.published[0]
	if msg.topic != "sbstravel/auth/event/auth.login" {
		t.Errorf("topic = %q, want sbstravel/auth/event/auth.login", msg.topic)
	}
	if msg.retained {
		t.Error("event announcement retained, want one-shot")
	}
	if msg.qos != 1 {
		t.Errorf("qos = %d, want 1", msg.qos)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["event"] != "auth.login" {
		t.Errorf("event = %v, want auth.login", decoded["event"])
	}
	if decoded["outcome"] != "success" {
		t.Errorf("outcome = %v, want success", decoded["outcome"])
	}
	if decoded["timestamp"] != "2026-03-01T12:00:00Z" {
		t.Errorf("timestamp = %v, want 2026-03-01T12:00:00Z", decoded["timestamp"])
	}
}

func TestRecord_PublishErrorDoesNotPanic(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	a := testAnnouncer(pub)

	a.Record(context.Background(), auth.EventLogout, "usr-12345678", "", auth.OutcomeSuccess, nil)
	a.handleState(auth.AuthState{Version: 1})

	if len(pub.published) != 2 {
		t.Fatalf("published %d attempts, want 2", len(pub.published))
	}
}
