package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	BootID        string         `json:"boot_id"`
	Plant         PlantJSON      `json:"plant"`
	Telemetry     *TelemetryJSON `json:"telemetry,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Counters      CountersJSON   `json:"counters"`
	Network       *NetworkJSON   `json:"network,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// PlantJSON describes the selected plant and its last classification.
type PlantJSON struct {
	Index       int      `json:"index"`
	Name        string   `json:"name"`
	MoisturePct *float64 `json:"moisture_pct,omitempty"`
	Status      string   `json:"status"`
}

// TelemetryJSON is the JSON representation of the last published record.
type TelemetryJSON struct {
	Timestamp    string  `json:"timestamp"`
	TemperatureC float64 `json:"temp"`
	HumidityPct  float64 `json:"rh"`
	MoisturePct  float64 `json:"moisture"`
	Lux          float64 `json:"light"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountersJSON is the JSON representation of lifetime counters.
type CountersJSON struct {
	Cycles         int `json:"cycles"`
	ClimateRetries int `json:"climate_retries"`
	PublishErrors  int `json:"publish_errors"`
	DroppedDeltas  int `json:"dropped_deltas"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	CycleSeconds int64  `json:"cycle_seconds"`
	Broker       string `json:"broker"`
	ClientID     string `json:"client_id"`
	HTTPAddr     string `json:"http_addr"`
	Plants       int    `json:"plants"`
}

func buildInner(snap Snapshot) StatusInner {
	st := string(snap.Status)
	if !snap.HasReading || st == "" {
		st = "UNKNOWN"
	}

	inner := StatusInner{
		BootID: snap.BootID,
		Plant: PlantJSON{
			Index:  snap.PlantIndex,
			Name:   snap.PlantName,
			Status: st,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counters: CountersJSON{
			Cycles:         snap.Counters.Cycles,
			ClimateRetries: snap.Counters.ClimateRetries,
			PublishErrors:  snap.Counters.PublishErrors,
			DroppedDeltas:  snap.Counters.DroppedDeltas,
		},
		Config: ConfigJSON{
			CycleSeconds: snap.Config.CycleSeconds,
			Broker:       snap.Config.Broker,
			ClientID:     snap.Config.ClientID,
			HTTPAddr:     snap.Config.HTTPAddr,
			Plants:       snap.Config.Plants,
		},
	}
	if snap.HasReading {
		v := snap.MoisturePct
		inner.Plant.MoisturePct = &v
	}
	if rec := snap.LastTelemetry; rec != nil {
		inner.Telemetry = &TelemetryJSON{
			Timestamp:    rec.At.UTC().Format(time.RFC3339),
			TemperatureC: rec.TemperatureC,
			HumidityPct:  rec.HumidityPct,
			MoisturePct:  rec.MoisturePct,
			Lux:          rec.Lux,
		}
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
