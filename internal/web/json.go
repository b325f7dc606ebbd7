package web

import (
	"encoding/json"
	"time"

	"github.com/sweeney/plant-sensor/internal/storage"
)

// HistoryJSON is the JSON representation of recent telemetry cycles.
type HistoryJSON struct {
	History []HistoryEntryJSON `json:"history"`
}

// HistoryEntryJSON is one cycle.
type HistoryEntryJSON struct {
	Timestamp    string  `json:"timestamp"`
	Plant        string  `json:"plant"`
	TemperatureC float64 `json:"temp"`
	HumidityPct  float64 `json:"rh"`
	MoisturePct  float64 `json:"moisture"`
	Lux          float64 `json:"light"`
	Status       string  `json:"status"`
}

func formatHistory(entries []storage.Entry) []byte {
	hj := HistoryJSON{History: make([]HistoryEntryJSON, 0, len(entries))}
	for _, e := range entries {
		hj.History = append(hj.History, HistoryEntryJSON{
			Timestamp:    e.RecordedAt.UTC().Format(time.RFC3339),
			Plant:        e.Plant,
			TemperatureC: e.TemperatureC,
			HumidityPct:  e.HumidityPct,
			MoisturePct:  e.MoisturePct,
			Lux:          e.Lux,
			Status:       e.Status,
		})
	}

	data, _ := json.MarshalIndent(hj, "", "  ")
	return data
}
