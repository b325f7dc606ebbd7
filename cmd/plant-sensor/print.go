package main

import (
	"fmt"
	"io"
	"time"

	"github.com/sweeney/plant-sensor/internal/node"
)

// printTimeout bounds how long -print-state waits for a valid climate reading.
const printTimeout = 10 * time.Second

// printReadings takes one reading from each sensor and writes them to w.
func printReadings(w io.Writer, climate node.Climate, sampler interface {
	Sample() (float64, error)
}, light node.Light) error {
	deadline := time.Now().Add(printTimeout)
	r := climate.Read()
	for !r.IsValid() && time.Now().Before(deadline) {
		time.Sleep(500 * time.Millisecond)
		r = climate.Read()
	}
	if err := r.Validate(); err != nil {
		fmt.Fprintf(w, "Climate: unavailable (%v)\n", err)
	} else {
		fmt.Fprintf(w, "Climate: %.1f°C, %.1f%% RH\n", r.TemperatureC, r.HumidityPct)
	}

	moisture, err := sampler.Sample()
	if err != nil {
		return fmt.Errorf("sample moisture: %w", err)
	}
	fmt.Fprintf(w, "Moisture: %.1f%%\n", moisture)

	lux, err := light.Lux()
	if err != nil {
		return fmt.Errorf("read light: %w", err)
	}
	fmt.Fprintf(w, "Light: %.0f lx\n", lux)
	return nil
}
