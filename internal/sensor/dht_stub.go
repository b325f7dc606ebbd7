//go:build !linux

package sensor

import "errors"

var errDHTUnsupported = errors.New("dht11: not supported on this platform (requires Linux)")

// DHT11 is not available on non-Linux platforms.
type DHT11 struct{}

// NewDHT11 returns an error on non-Linux platforms.
func NewDHT11(pin, retries int) (*DHT11, error) {
	return nil, errDHTUnsupported
}

func (d *DHT11) Read() ClimateReading { return ClimateReading{Err: errDHTUnsupported} }
func (d *DHT11) Close() error         { return nil }
