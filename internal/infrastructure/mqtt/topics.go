package mqtt

import "fmt"

// Topic prefixes for the SBS Travel MQTT namespace.
//
// Auth event topics use the scheme: sbstravel/auth/{category}[/{detail}]
const (
	// TopicPrefix is the base for all SBS Travel topics.
	TopicPrefix = "sbstravel"

	// TopicPrefixAuth is the base for auth subsystem topics.
	TopicPrefixAuth = "sbstravel/auth"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "sbstravel/system"
)

// Topics provides builders for SBS Travel MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	eventTopic := topics.AuthEvent("auth.login")
//	// Returns: "sbstravel/auth/event/auth.login"
type Topics struct{}

// AuthEvent returns the topic for a single auth event type.
//
// Example: sbstravel/auth/event/auth.login
func (Topics) AuthEvent(event string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixAuth, event)
}

// AuthState returns the topic carrying the current authentication state.
// Published retained so new subscribers see the latest snapshot.
//
// Example: sbstravel/auth/state
func (Topics) AuthState() string {
	return fmt.Sprintf("%s/state", TopicPrefixAuth)
}

// SystemStatus returns the system status topic used for online/offline
// announcements and the Last Will message.
//
// Example: sbstravel/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllAuthEvents returns a pattern matching every auth event topic.
//
// Pattern: sbstravel/auth/event/+
func (Topics) AllAuthEvents() string {
	return fmt.Sprintf("%s/event/+", TopicPrefixAuth)
}

// AllTopics returns a pattern matching all SBS Travel topics.
// Use with caution, this receives all traffic.
//
// Pattern: sbstravel/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
