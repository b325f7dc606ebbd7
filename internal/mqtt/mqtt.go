// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for plant telemetry.
const Topic = "devices/plant"

// TopicControl is the MQTT topic the node subscribes to for control messages.
const TopicControl = "devices/plant/control"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "devices/plant/system"

// Publisher publishes telemetry to MQTT.
type Publisher interface {
	// PublishTelemetry sends one telemetry record to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishTelemetry(rec Record) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Record is one telemetry sample.
type Record struct {
	TemperatureC float64
	HumidityPct  float64
	MoisturePct  float64
	Lux          float64
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT telemetry payload structure.
type Payload struct {
	PlantSensor SensorPayload `json:"plant_sensor"`
}

// SensorPayload contains the readings. Field names match what existing
// dashboards subscribe to, including the capitalised keys.
type SensorPayload struct {
	Temp     float64 `json:"temp"`
	RH       float64 `json:"rh"`
	Moisture float64 `json:"Moisture"`
	Light    float64 `json:"Light"`
}

// FormatPayload creates the JSON payload for a telemetry record.
func FormatPayload(rec Record) ([]byte, error) {
	payload := Payload{
		PlantSensor: SensorPayload{
			Temp:     rec.TemperatureC,
			RH:       rec.HumidityPct,
			Moisture: rec.MoisturePct,
			Light:    rec.Lux,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
