package gpio

import (
	"sync"

	"github.com/sweeney/plant-sensor/internal/logic"
)

// FakeEncoder is a test double that delivers scripted edges to a sink.
type FakeEncoder struct {
	mu     sync.Mutex
	sink   EdgeSink
	level  logic.Signal
	Closed bool
}

// NewFakeEncoder creates a FakeEncoder at the given level and primes sink.
func NewFakeEncoder(initial logic.Signal, sink EdgeSink) *FakeEncoder {
	sink.Init(initial)
	return &FakeEncoder{sink: sink, level: initial}
}

// Emit sets the line levels and delivers an edge, as the edge handler would.
func (f *FakeEncoder) Emit(sig logic.Signal) {
	f.mu.Lock()
	f.level = sig
	f.mu.Unlock()
	f.sink.Edge(sig)
}

// EmitAll delivers each signal in order.
func (f *FakeEncoder) EmitAll(sigs ...logic.Signal) {
	for _, s := range sigs {
		f.Emit(s)
	}
}

// Read returns the last emitted level.
func (f *FakeEncoder) Read() (logic.Signal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level, nil
}

// Close marks the encoder as closed.
func (f *FakeEncoder) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// FakeOutput records every value written to it.
type FakeOutput struct {
	mu      sync.Mutex
	value   int
	history []int

	// SetError, if set, is returned by SetValue and the value is not changed.
	SetError error

	Closed bool
}

// NewFakeOutput creates a FakeOutput at the given level.
func NewFakeOutput(initial int) *FakeOutput {
	return &FakeOutput{value: initial}
}

// SetValue records v.
func (f *FakeOutput) SetValue(v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetError != nil {
		return f.SetError
	}
	f.value = v
	f.history = append(f.history, v)
	return nil
}

// Value returns the current level.
func (f *FakeOutput) Value() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, nil
}

// History returns a copy of all values written so far.
func (f *FakeOutput) History() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.history))
	copy(out, f.history)
	return out
}

// Close drives the line low and marks it closed.
func (f *FakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = 0
	f.Closed = true
	return nil
}

// FakeLED records every colour set on it.
type FakeLED struct {
	mu     sync.Mutex
	colors []uint32
	Closed bool
}

// NewFakeLED creates a FakeLED.
func NewFakeLED() *FakeLED {
	return &FakeLED{}
}

// SetColor records rgb.
func (f *FakeLED) SetColor(rgb uint32) error {
	f.mu.Lock()
	f.colors = append(f.colors, rgb)
	f.mu.Unlock()
	return nil
}

// Colors returns a copy of all colours set so far.
func (f *FakeLED) Colors() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint32, len(f.colors))
	copy(out, f.colors)
	return out
}

// Close marks the LED as closed.
func (f *FakeLED) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}
