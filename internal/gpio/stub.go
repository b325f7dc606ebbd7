//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/plant-sensor/internal/logic"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealEncoder is not available on non-Linux platforms.
type RealEncoder struct{}

// NewRealEncoder returns an error on non-Linux platforms.
func NewRealEncoder(chip string, pinCLK, pinDT int, sink EdgeSink) (*RealEncoder, error) {
	return nil, errUnsupported
}

func (e *RealEncoder) Read() (logic.Signal, error) { return 0, errUnsupported }
func (e *RealEncoder) Close() error                { return nil }

// RealOutput is not available on non-Linux platforms.
type RealOutput struct{}

// NewRealOutput returns an error on non-Linux platforms.
func NewRealOutput(chip string, pin, initial int) (*RealOutput, error) {
	return nil, errUnsupported
}

func (o *RealOutput) SetValue(v int) error { return errUnsupported }
func (o *RealOutput) Value() (int, error)  { return 0, errUnsupported }
func (o *RealOutput) Close() error         { return nil }

// RealLED is not available on non-Linux platforms.
type RealLED struct{}

// NewRealLED returns an error on non-Linux platforms.
func NewRealLED(chip string, pinRed, pinGreen, pinBlue int) (*RealLED, error) {
	return nil, errUnsupported
}

func (l *RealLED) SetColor(rgb uint32) error { return errUnsupported }
func (l *RealLED) Close() error              { return nil }
