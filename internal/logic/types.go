// Package logic contains pure business logic for the plant monitor.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Everything here is safe to call from the GPIO edge handler goroutine.
package logic

// Profile describes one selectable plant and its moisture thresholds.
// Values are kept exactly as configured; MinMoisturePct is not required to be
// below MaxMoisturePct.
type Profile struct {
	Name           string  `yaml:"name" json:"name"`
	MinMoisturePct float64 `yaml:"min_moisture" json:"min_moisture"`
	MaxMoisturePct float64 `yaml:"max_moisture" json:"max_moisture"`
}

// Signal is the 2-bit level of the encoder lines: clk<<1 | dt.
type Signal uint8

// NewSignal builds a Signal from raw line values (0 or 1).
func NewSignal(clk, dt int) Signal {
	return Signal((clk&1)<<1 | (dt & 1))
}

// Delta is a selection step produced by the quadrature decoder.
type Delta int

const (
	Retreat Delta = -1
	Advance Delta = 1
)

// Status is the moisture classification shown for the selected plant.
type Status string

const (
	StatusTooDry  Status = "TOO_DRY"
	StatusTooWet  Status = "TOO_WET"
	StatusPerfect Status = "PERFECT"
)

// Indicator colours (packed 0xRRGGBB).
const (
	ColorOff     uint32 = 0x000000
	ColorTooDry  uint32 = 0x440000
	ColorTooWet  uint32 = 0x000044
	ColorPerfect uint32 = 0x004400
	ColorSent    uint32 = 0x330033
	ColorBoot    uint32 = 0x880088
)

// ADCResolution is the number of distinct counts of the 12-bit moisture ADC.
const ADCResolution = 4096

// MoisturePercent converts a raw ADC count to a percentage of full scale.
func MoisturePercent(raw int) float64 {
	return float64(raw) / ADCResolution * 100
}
