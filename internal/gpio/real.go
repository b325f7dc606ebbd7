//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/plant-sensor/internal/logic"
)

// RealEncoder delivers edge events from the two encoder lines.
type RealEncoder struct {
	mu    sync.Mutex
	lines *gpiocdev.Lines
	sink  EdgeSink
}

// NewRealEncoder requests the CLK and DT lines with both-edge detection.
// The sink is primed with the current levels before any edge is delivered.
func NewRealEncoder(chip string, pinCLK, pinDT int, sink EdgeSink) (*RealEncoder, error) {
	e := &RealEncoder{sink: sink}

	// Edges that arrive while we are still setting up wait on the lock.
	e.mu.Lock()
	lines, err := gpiocdev.RequestLines(chip, []int{pinCLK, pinDT},
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(e.onEdge))
	if err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("request encoder pins %d/%d: %w", pinCLK, pinDT, err)
	}

	sig, err := readSignal(lines)
	if err != nil {
		e.mu.Unlock()
		lines.Close()
		return nil, err
	}
	sink.Init(sig)
	e.lines = lines
	e.mu.Unlock()

	return e, nil
}

func (e *RealEncoder) onEdge(evt gpiocdev.LineEvent) {
	e.mu.Lock()
	if e.lines == nil {
		e.mu.Unlock()
		return
	}
	sig, err := readSignal(e.lines)
	e.mu.Unlock()
	if err != nil {
		return
	}
	e.sink.Edge(sig)
}

// Read returns the current level of both lines.
func (e *RealEncoder) Read() (logic.Signal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lines == nil {
		return 0, errors.New("encoder closed")
	}
	return readSignal(e.lines)
}

// Close releases the encoder lines.
func (e *RealEncoder) Close() error {
	e.mu.Lock()
	lines := e.lines
	e.lines = nil
	e.mu.Unlock()
	if lines == nil {
		return nil
	}
	if err := lines.Close(); err != nil {
		return fmt.Errorf("close encoder lines: %w", err)
	}
	return nil
}

func readSignal(lines *gpiocdev.Lines) (logic.Signal, error) {
	vals := make([]int, 2)
	if err := lines.Values(vals); err != nil {
		return 0, fmt.Errorf("read encoder lines: %w", err)
	}
	return logic.NewSignal(vals[0], vals[1]), nil
}

// RealOutput drives a single output line, e.g. the moisture probe power.
type RealOutput struct {
	line *gpiocdev.Line
}

// NewRealOutput requests pin as an output with the given initial value.
func NewRealOutput(chip string, pin, initial int) (*RealOutput, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(initial))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &RealOutput{line: line}, nil
}

// SetValue drives the line.
func (o *RealOutput) SetValue(v int) error {
	if err := o.line.SetValue(v); err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

// Value returns the level the line is driven to.
func (o *RealOutput) Value() (int, error) {
	v, err := o.line.Value()
	if err != nil {
		return 0, fmt.Errorf("read pin: %w", err)
	}
	return v, nil
}

// Close drives the line low, then returns it to input with pull-down
// (the Pi boot default) before releasing it.
func (o *RealOutput) Close() error {
	var errs []error
	if err := o.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("drive low: %w", err))
	}
	if err := o.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure: %w", err))
	}
	if err := o.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}
	return errors.Join(errs...)
}

// RealLED drives an RGB indicator from three output lines.
type RealLED struct {
	lines *gpiocdev.Lines
}

// NewRealLED requests the red, green and blue lines, initially off.
func NewRealLED(chip string, pinRed, pinGreen, pinBlue int) (*RealLED, error) {
	lines, err := gpiocdev.RequestLines(chip, []int{pinRed, pinGreen, pinBlue}, gpiocdev.AsOutput(0, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("request led pins %d/%d/%d: %w", pinRed, pinGreen, pinBlue, err)
	}
	return &RealLED{lines: lines}, nil
}

// SetColor switches the channels for a packed 0xRRGGBB colour.
func (l *RealLED) SetColor(rgb uint32) error {
	if err := l.lines.SetValues(channels(rgb)); err != nil {
		return fmt.Errorf("set led: %w", err)
	}
	return nil
}

// Close switches the LED off and releases the lines.
func (l *RealLED) Close() error {
	var errs []error
	if err := l.lines.SetValues([]int{0, 0, 0}); err != nil {
		errs = append(errs, fmt.Errorf("led off: %w", err))
	}
	if err := l.lines.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close led lines: %w", err))
	}
	return errors.Join(errs...)
}
