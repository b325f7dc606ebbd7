package display

import (
	"fmt"
	"sync"
)

// FakeScreen records drawing operations for test assertions.
type FakeScreen struct {
	mu  sync.Mutex
	ops []string

	// ShowError, if set, is returned by Show.
	ShowError error
}

// NewFakeScreen creates a FakeScreen.
func NewFakeScreen() *FakeScreen {
	return &FakeScreen{}
}

// FillRect records "fill x,y wxh on|off".
func (f *FakeScreen) FillRect(x, y, w, h int, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	f.record(fmt.Sprintf("fill %d,%d %dx%d %s", x, y, w, h, state))
}

// Text records "text x,y s".
func (f *FakeScreen) Text(s string, x, y int) {
	f.record(fmt.Sprintf("text %d,%d %s", x, y, s))
}

// Show records "show".
func (f *FakeScreen) Show() error {
	f.record("show")
	return f.ShowError
}

// Ops returns a copy of the recorded operations.
func (f *FakeScreen) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ops))
	copy(out, f.ops)
	return out
}

// Reset clears recorded operations.
func (f *FakeScreen) Reset() {
	f.mu.Lock()
	f.ops = nil
	f.mu.Unlock()
}

func (f *FakeScreen) record(op string) {
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()
}
