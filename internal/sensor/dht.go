//go:build linux

package sensor

import (
	"fmt"

	"github.com/afroash/dht"
)

// DHT11 reads temperature and humidity from a DHT11 on a GPIO pin.
type DHT11 struct {
	pin     int
	retries int
	sensor  *dht.Sensor
}

// NewDHT11 opens the DHT11 on pin. retries is the number of attempts the
// driver makes per Read before reporting an invalid reading.
func NewDHT11(pin, retries int) (*DHT11, error) {
	s, err := dht.NewDHT11(pin)
	if err != nil {
		return nil, fmt.Errorf("open dht11 on pin %d: %w", pin, err)
	}
	if retries < 1 {
		retries = 1
	}
	return &DHT11{pin: pin, retries: retries, sensor: s}, nil
}

// Read performs one reading. Failures are reported through the reading's Err
// so the caller can treat them like any other invalid reading.
func (d *DHT11) Read() ClimateReading {
	r, err := d.sensor.ReadRetry(d.retries)
	if err != nil {
		return ClimateReading{Err: fmt.Errorf("read dht11: %w", err)}
	}
	return ClimateReading{TemperatureC: r.Temperature, HumidityPct: r.Humidity}
}

// Close releases the GPIO line.
func (d *DHT11) Close() error {
	return d.sensor.Close()
}
