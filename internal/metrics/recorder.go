// Package metrics records authentication telemetry in InfluxDB.
//
// It feeds two measurements:
//
//   - auth_events: one counter point per auth event, tagged by event
//     name, outcome and role.
//   - session_active: a gauge emitted on every committed state
//     transition, so dashboards can chart session occupancy per role.
//
// Recording is best-effort and non-blocking; the underlying write API
// batches points and a sink outage never fails an auth flow.
package metrics

import (
	"context"

	"github.com/luckdow/sbstravel-sub000/internal/auth"
)

// Sink is the telemetry surface the recorder needs. *influxdb.Client
// satisfies it.
type Sink interface {
	WriteAuthEvent(event string, outcome string, role string)
	WriteSessionGauge(role string, active bool)
}

// Recorder bridges the auth service to the metrics sink.
type Recorder struct {
	sink Sink
}

// New creates a recorder writing through sink.
func New(sink Sink) *Recorder {
	return &Recorder{sink: sink}
}

// Start subscribes the recorder to the service's state changes and
// returns the unsubscribe function.
func (r *Recorder) Start(svc *auth.Service) (stop func()) {
	return svc.Subscribe(r.handleState)
}

// handleState emits the session gauge. Loading states are transient
// and skipped.
func (r *Recorder) handleState(state auth.AuthState) {
	if state.IsLoading {
		return
	}

	role := ""
	if state.User != nil {
		role = string(state.User.Role)
	}
	r.sink.WriteSessionGauge(role, state.IsAuthenticated)
}

// Record emits an auth event counter point. It satisfies
// auth.AuditRecorder so the auth service's audit seam can feed the sink
// alongside the SQLite trail.
func (r *Recorder) Record(_ context.Context, event, _, _, outcome string, detail map[string]any) {
	role := ""
	if detail != nil {
		if v, ok := detail["role"].(string); ok {
			role = v
		}
	}
	r.sink.WriteAuthEvent(event, outcome, role)
}
