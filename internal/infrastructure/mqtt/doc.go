// Package mqtt provides MQTT client connectivity for SBS Travel Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// SBS Travel uses MQTT as an outbound announcement channel: the auth
// event announcer publishes session transitions so operational tooling
// and back-office dashboards can follow sign-ins without polling the
// API. The subsystem never consumes from the broker.
//
//	SBS Travel Core → MQTT Broker → Dashboards / Tooling
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.AuthEvent("auth.login")
//	client.Publish(topic, []byte(`{"user_id":"usr-1a2b3c4d"}`), 1, false)
package mqtt
