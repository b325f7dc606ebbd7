// Package gpio provides the plant monitor's digital I/O with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/plant-sensor/internal/logic"

// Chip is the GPIO character device used on the Raspberry Pi header.
const Chip = "gpiochip0"

// Default pin definitions (BCM numbering).
const (
	DefaultPinCLK   = 17 // rotary encoder CLK
	DefaultPinDT    = 27 // rotary encoder DT
	DefaultPinProbe = 22 // moisture probe power
	DefaultPinDHT   = 4  // DHT11 data
	DefaultPinRed   = 5
	DefaultPinGreen = 6
	DefaultPinBlue  = 13
)

// EdgeSink receives encoder line levels from the edge handler.
// Init is called once with the levels present when the lines are requested;
// Edge is called for every rising or falling edge on either line, from the
// handler goroutine.
type EdgeSink interface {
	Init(sig logic.Signal)
	Edge(sig logic.Signal)
}

// Encoder is a pair of rotary encoder input lines.
type Encoder interface {
	// Read returns the current level of both lines.
	Read() (logic.Signal, error)

	// Close stops edge delivery and releases the lines.
	Close() error
}

// Output is a single digital output line.
type Output interface {
	SetValue(v int) error
	Value() (int, error)
	Close() error
}

// LED is a common-cathode RGB indicator driven by three output lines.
type LED interface {
	// SetColor switches each channel on when its component of the packed
	// 0xRRGGBB value is non-zero.
	SetColor(rgb uint32) error
	Close() error
}

// channels splits a packed colour into on/off values for red, green, blue.
func channels(rgb uint32) []int {
	vals := make([]int, 3)
	if rgb&0xff0000 != 0 {
		vals[0] = 1
	}
	if rgb&0x00ff00 != 0 {
		vals[1] = 1
	}
	if rgb&0x0000ff != 0 {
		vals[2] = 1
	}
	return vals
}
