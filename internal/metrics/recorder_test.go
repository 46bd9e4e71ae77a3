package metrics

import (
	"context"
	"testing"

	"github.com/luckdow/sbstravel-sub000/internal/auth"
)

// fakeSink captures written points for inspection.
type fakeSink struct {
	events []eventPoint
	gauges []gaugePoint
}

type eventPoint struct {
	event   string
	outcome string
	role    string
}

type gaugePoint struct {
	role   string
	active bool
}

func (s *fakeSink) WriteAuthEvent(event, outcome, role string) {
	s.events = append(s.events, eventPoint{event, outcome, role})
}

func (s *fakeSink) WriteSessionGauge(role string, active bool) {
	s.gauges = append(s.gauges, gaugePoint{role, active})
}

func TestRecord_WritesEventPoint(t *testing.T) {
	sink := &fakeSink{}
	rec := New(sink)

	rec.Record(context.Background(), auth.EventRegister, "usr-12345678", "new@example.com",
		auth.OutcomeSuccess, map[string]any{"role": "customer"})

	if len(sink.events) != 1 {
		t.Fatalf("wrote %d event points, want 1", len(sink.events))
	}
	got := sink.events[0]
	if got.event != "auth.register" || got.outcome != "success" || got.role != "customer" {
		t.Errorf("event point = %+v, want auth.register/success/customer", got)
	}
}

func TestRecord_MissingRoleTag(t *testing.T) {
	sink := &fakeSink{}
	rec := New(sink)

	rec.Record(context.Background(), auth.EventLogin, "", "ghost@example.com",
		auth.OutcomeFailure, map[string]any{"reason": "unknown user"})

	if len(sink.events) != 1 {
		t.Fatalf("wrote %d event points, want 1", len(sink.events))
	}
	if sink.events[0].role != "" {
		t.Errorf("role = %q, want empty for unmatched account", sink.events[0].role)
	}
}

func TestHandleState_EmitsGauge(t *testing.T) {
	sink := &fakeSink{}
	rec := New(sink)

	rec.handleState(auth.AuthState{
		User:            &auth.User{ID: "usr-12345678", Role: auth.RoleAdmin},
		IsAuthenticated: true,
		Version:         2,
	})
	rec.handleState(auth.AuthState{Version: 3})

	if len(sink.gauges) != 2 {
		t.Fatalf("wrote %d gauge points, want 2", len(sink.gauges))
	}
	if sink.gauges[0] != (gaugePoint{role: "admin", active: true}) {
		t.Errorf("first gauge = %+v, want admin/active", sink.gauges[0])
	}
	if sink.gauges[1] != (gaugePoint{role: "", active: false}) {
		t.Errorf("second gauge = %+v, want signed-out", sink.gauges[1])
	}
}

func TestHandleState_SkipsLoadingStates(t *testing.T) {
	sink := &fakeSink{}
	rec := New(sink)

	rec.handleState(auth.AuthState{IsLoading: true, Version: 1})

	if len(sink.gauges) != 0 {
		t.Fatalf("wrote %d gauge points for loading state, want 0", len(sink.gauges))
	}
}
