package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// DefaultLTR329Address is the fixed I²C address of the LTR-329ALS-01.
const DefaultLTR329Address = 0x29

// LTR-329 registers.
const (
	regALSControl  = 0x80
	regALSMeasRate = 0x85
	regPartID      = 0x86
	regManufacID   = 0x87
	regALSData     = 0x88 // CH1 low, CH1 high, CH0 low, CH0 high

	partID     = 0xA0
	manufactID = 0x05

	alsActiveGain1   = 0x01
	alsInt100Rate500 = 0x03
)

// LTR329 is the ambient light sensor on the sensor hub.
// Its ID registers double as the hub identity check.
type LTR329 struct {
	dev *i2c.Dev
}

// NewLTR329 returns a driver for the sensor at addr on bus.
func NewLTR329(bus i2c.Bus, addr uint16) *LTR329 {
	return &LTR329{dev: &i2c.Dev{Bus: bus, Addr: addr}}
}

// Identify checks the part and manufacturer IDs.
// A mismatch wraps ErrHubMismatch.
func (l *LTR329) Identify() error {
	ids := make([]byte, 2)
	if err := l.dev.Tx([]byte{regPartID}, ids); err != nil {
		return fmt.Errorf("%w: read id: %v", ErrHubMismatch, err)
	}
	if ids[0]&0xF0 != partID || ids[1] != manufactID {
		return fmt.Errorf("%w: part 0x%02x manufacturer 0x%02x", ErrHubMismatch, ids[0], ids[1])
	}
	return nil
}

// Start puts the sensor in active mode with gain 1 and 100 ms integration.
func (l *LTR329) Start() error {
	if err := l.dev.Tx([]byte{regALSControl, alsActiveGain1}, nil); err != nil {
		return fmt.Errorf("ltr329 control: %w", err)
	}
	if err := l.dev.Tx([]byte{regALSMeasRate, alsInt100Rate500}, nil); err != nil {
		return fmt.Errorf("ltr329 measurement rate: %w", err)
	}
	return nil
}

// Lux reads both channels and returns the illuminance.
func (l *LTR329) Lux() (float64, error) {
	buf := make([]byte, 4)
	if err := l.dev.Tx([]byte{regALSData}, buf); err != nil {
		return 0, fmt.Errorf("ltr329 data: %w", err)
	}
	ch1 := uint16(buf[0]) | uint16(buf[1])<<8
	ch0 := uint16(buf[2]) | uint16(buf[3])<<8
	return LuxFromChannels(ch0, ch1), nil
}

// LuxFromChannels converts raw visible+IR (ch0) and IR (ch1) counts to lux
// for gain 1 and 100 ms integration, per the LTR-329 application note.
func LuxFromChannels(ch0, ch1 uint16) float64 {
	c0, c1 := float64(ch0), float64(ch1)
	if c0+c1 == 0 {
		return 0
	}
	ratio := c1 / (c0 + c1)
	switch {
	case ratio < 0.45:
		return 1.7743*c0 + 1.1059*c1
	case ratio < 0.64:
		return 4.2785*c0 - 1.9548*c1
	case ratio < 0.85:
		return 0.5926*c0 + 0.1185*c1
	default:
		return 0
	}
}
