package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteAuthEvent records a single authentication event occurrence.
//
// This is the primary method for recording auth telemetry. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - event: The event name (e.g., "auth.login", "auth.register")
//   - outcome: "success" or "failure"
//   - role: The role involved, or "" when no account matched
//
// Example:
//
//	client.WriteAuthEvent("auth.login", "success", "customer")
//	client.WriteAuthEvent("auth.login", "failure", "")
func (c *Client) WriteAuthEvent(event string, outcome string, role string) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"event":   event,
		"outcome": outcome,
	}
	if role != "" {
		tags["role"] = role
	}

	point := write.NewPoint(
		"auth_events",
		tags,
		map[string]interface{}{
			"count": int64(1),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteSessionGauge records the current session state as a gauge.
//
// Emitted on every auth state transition so dashboards can chart when
// a session is active and which role holds it.
//
// Parameters:
//   - role: Role of the session holder, or "" when signed out
//   - active: Whether an authenticated session currently exists
func (c *Client) WriteSessionGauge(role string, active bool) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{}
	if role != "" {
		tags["role"] = role
	}

	value := int64(0)
	if active {
		value = 1
	}

	point := write.NewPoint(
		"session_active",
		tags,
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., replayed audit data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
