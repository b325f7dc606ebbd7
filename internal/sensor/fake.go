package sensor

import (
	"errors"
	"sync"
)

// FakeClimate returns scripted climate readings.
// Each call to Read consumes the next reading; the last one repeats.
type FakeClimate struct {
	mu       sync.Mutex
	Readings []ClimateReading
	index    int
	calls    int
}

// NewFakeClimate creates a FakeClimate with the given readings.
func NewFakeClimate(readings ...ClimateReading) *FakeClimate {
	return &FakeClimate{Readings: readings}
}

// Read returns the next scripted reading.
func (f *FakeClimate) Read() ClimateReading {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.Readings) == 0 {
		return ClimateReading{Err: errors.New("no readings configured")}
	}
	r := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}
	return r
}

// Calls returns how many times Read was called.
func (f *FakeClimate) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeLight returns a fixed lux value.
type FakeLight struct {
	Value float64
	Err   error
}

// Lux returns Value, or Err if set.
func (f *FakeLight) Lux() (float64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return f.Value, nil
}

// FakeADC returns scripted raw counts. The last count repeats.
type FakeADC struct {
	mu     sync.Mutex
	Counts []int
	index  int
	reads  int

	// ReadError, if set, is returned by ReadRaw.
	ReadError error

	// OnRead, if set, is called at the start of every ReadRaw.
	OnRead func()
}

// NewFakeADC creates a FakeADC returning counts in order.
func NewFakeADC(counts ...int) *FakeADC {
	return &FakeADC{Counts: counts}
}

// ReadRaw returns the next count.
func (f *FakeADC) ReadRaw() (int, error) {
	if f.OnRead != nil {
		f.OnRead()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Counts) == 0 {
		return 0, errors.New("no counts configured")
	}
	c := f.Counts[f.index]
	if f.index < len(f.Counts)-1 {
		f.index++
	}
	return c, nil
}

// Reads returns how many times ReadRaw was called.
func (f *FakeADC) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}
