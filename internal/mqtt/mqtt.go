// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// TopicGear is the MQTT topic for gear-change log lines.
const TopicGear = "vehicle/engine/controller/gear"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "vehicle/engine/controller/system"

// Publisher publishes to MQTT. It doubles as a gear-change log sink.
type Publisher interface {
	// Log sends a pre-formatted gear-change line to the broker.
	Log(message string) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT", "OFFLINE"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// GearPayload is the MQTT message payload for a gear-change line.
type GearPayload struct {
	GearLog GearLogPayload `json:"gear_log"`
}

// GearLogPayload carries the log line exactly as the controller wrote it.
type GearLogPayload struct {
	Message string `json:"message"`
}

// FormatGearPayload creates the JSON payload for a gear-change line.
func FormatGearPayload(message string) ([]byte, error) {
	return json.Marshal(GearPayload{GearLog: GearLogPayload{Message: message}})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	inner := SystemPayloadInner{
		Event:  event.Event,
		Reason: event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}
