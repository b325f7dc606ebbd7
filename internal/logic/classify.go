package logic

import (
	"fmt"
	"math"
)

// Classify maps a moisture percentage onto a status for the given plant.
//
// The comparison order is fixed: above MinMoisturePct is too dry, otherwise
// below MaxMoisturePct is too wet, otherwise perfect. The probe reports a
// higher value for drier soil.
func Classify(value float64, p Profile) Status {
	if value > p.MinMoisturePct {
		return StatusTooDry
	}
	if value < p.MaxMoisturePct {
		return StatusTooWet
	}
	return StatusPerfect
}

// Round rounds a percentage to the nearest integer, halves to even.
func Round(value float64) int {
	return int(math.RoundToEven(value))
}

// Color returns the indicator colour for the status.
func (s Status) Color() uint32 {
	switch s {
	case StatusTooDry:
		return ColorTooDry
	case StatusTooWet:
		return ColorTooWet
	case StatusPerfect:
		return ColorPerfect
	default:
		return ColorOff
	}
}

// Message returns the status line shown on the display.
func (s Status) Message(pct int) string {
	switch s {
	case StatusTooDry:
		return fmt.Sprintf("Too Dry! (%d%%)", pct)
	case StatusTooWet:
		return fmt.Sprintf("Too Wet! (%d%%)", pct)
	case StatusPerfect:
		return fmt.Sprintf("Perfect! (%d%%)", pct)
	default:
		return fmt.Sprintf("%d%%", pct)
	}
}
