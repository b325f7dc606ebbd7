// Package status provides a thread-safe status tracker for the plant-sensor daemon.
// It is read by the HTTP handlers and by the lifecycle events on the system topic.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/plant-sensor/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	CycleSeconds int64
	Broker       string
	ClientID     string
	HTTPAddr     string
	Plants       int
}

// Telemetry is the last record the daemon published.
type Telemetry struct {
	At           time.Time
	TemperatureC float64
	HumidityPct  float64
	MoisturePct  float64
	Lux          float64
}

// Counters accumulate over the daemon's lifetime.
type Counters struct {
	Cycles         int
	ClimateRetries int
	PublishErrors  int
	DroppedDeltas  int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	BootID        string
	PlantIndex    int
	PlantName     string
	HasReading    bool
	MoisturePct   float64
	Status        logic.Status
	LastTelemetry *Telemetry
	Counters      Counters
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given boot ID, start time and config.
func NewTracker(bootID string, startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			BootID:    bootID,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// PlantShown records the plant now on screen. A new plant clears the
// previous plant's reading.
func (t *Tracker) PlantShown(index int, name string) {
	t.mu.Lock()
	if index != t.snap.PlantIndex || name != t.snap.PlantName {
		t.snap.HasReading = false
		t.snap.MoisturePct = 0
		t.snap.Status = ""
	}
	t.snap.PlantIndex = index
	t.snap.PlantName = name
	t.mu.Unlock()
}

// StatusShown records the classification on screen.
func (t *Tracker) StatusShown(value float64, status logic.Status) {
	t.mu.Lock()
	t.snap.HasReading = true
	t.snap.MoisturePct = value
	t.snap.Status = status
	t.mu.Unlock()
}

// RecordTelemetry stores the last published record and counts the cycle.
func (t *Tracker) RecordTelemetry(rec Telemetry) {
	t.mu.Lock()
	t.snap.LastTelemetry = &rec
	t.snap.Counters.Cycles++
	t.mu.Unlock()
}

// RecordClimateRetry counts one invalid climate reading.
func (t *Tracker) RecordClimateRetry() {
	t.mu.Lock()
	t.snap.Counters.ClimateRetries++
	t.mu.Unlock()
}

// RecordPublishError counts one failed telemetry publish.
func (t *Tracker) RecordPublishError() {
	t.mu.Lock()
	t.snap.Counters.PublishErrors++
	t.mu.Unlock()
}

// RecordDroppedDelta counts one encoder step lost to a full queue.
func (t *Tracker) RecordDroppedDelta() {
	t.mu.Lock()
	t.snap.Counters.DroppedDeltas++
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.LastTelemetry != nil {
		rec := *s.LastTelemetry
		s.LastTelemetry = &rec
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
