// Package influxdb provides InfluxDB connectivity for SBS Travel Core.
//
// It wraps the official influxdb-client-go v2 library with SBS Travel-specific
// functionality for recording authentication telemetry:
//
//   - Auth event counters (logins, registrations, failures)
//   - Session lifecycle gauges
//   - Custom measurements for anything the helpers don't cover
//
// Example usage:
//
//	cfg := config.InfluxDBConfig{
//	    Enabled: true,
//	    URL:     "http://localhost:8086",
//	    Token:   "secret-token",
//	    Org:     "sbstravel",
//	    Bucket:  "auth",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record auth events
//	client.WriteAuthEvent("auth.login", "success", "customer")
//
// Writes are non-blocking and batched; use SetOnError to observe async
// write failures and Flush to force pending points out before shutdown.
package influxdb
