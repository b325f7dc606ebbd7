// Package sensor reads the plant monitor's sensors: the DHT11 climate sensor,
// the LTR-329 light sensor, and the moisture probe behind an ADS1015 ADC.
package sensor

import (
	"errors"
	"fmt"
)

// ErrHubMismatch is returned when the expected sensor hub is not on the bus.
var ErrHubMismatch = errors.New("sensor hub not detected")

// ClimateReading is one temperature/humidity sample.
type ClimateReading struct {
	TemperatureC float64
	HumidityPct  float64
	// Err is the read error, if any. A reading with Err set is never valid.
	Err error
}

// Plausible DHT11 output bounds.
const (
	minTemp     = -20.0
	maxTemp     = 60.0
	minHumidity = 0.0
	maxHumidity = 100.0
)

// IsValid reports whether the reading can be used.
func (r ClimateReading) IsValid() bool {
	return r.Validate() == nil
}

// Validate returns why a reading is unusable, or nil.
func (r ClimateReading) Validate() error {
	if r.Err != nil {
		return r.Err
	}
	if r.TemperatureC < minTemp || r.TemperatureC > maxTemp {
		return fmt.Errorf("temperature %.1f°C out of range", r.TemperatureC)
	}
	if r.HumidityPct < minHumidity || r.HumidityPct > maxHumidity {
		return fmt.Errorf("humidity %.1f%% out of range", r.HumidityPct)
	}
	return nil
}

// PowerLine switches the moisture probe supply.
type PowerLine interface {
	SetValue(v int) error
}

// ADC reads the moisture probe voltage as a 12-bit count.
type ADC interface {
	ReadRaw() (int, error)
}
