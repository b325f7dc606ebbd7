package logic

import "sync"

// Transition packs the previous and current encoder levels into the 4-bit
// code used to determine rotation direction.
func Transition(last, current Signal) uint8 {
	return uint8(last&0b11)<<2 | uint8(current&0b11)
}

// deltaFor maps a transition code to a selection step.
// Only the four codes below move the selection; everything else is bounce or
// a skipped state and is ignored.
func deltaFor(transition uint8) (Delta, bool) {
	switch transition {
	case 0b1011, 0b0100:
		return Advance, true
	case 0b0111, 0b1000:
		return Retreat, true
	default:
		return 0, false
	}
}

// Decoder turns encoder line levels into selection steps.
// Decode is called from the GPIO edge handler and is safe for concurrent use.
type Decoder struct {
	mu   sync.Mutex
	last Signal
}

// NewDecoder creates a Decoder primed with the current physical line levels.
func NewDecoder(initial Signal) *Decoder {
	return &Decoder{last: initial & 0b11}
}

// Reset replaces the remembered line levels without producing a step.
func (d *Decoder) Reset(sig Signal) {
	d.mu.Lock()
	d.last = sig & 0b11
	d.mu.Unlock()
}

// Decode processes the line levels observed at an edge.
// It returns false for a repeated level or an invalid transition. The new
// level is remembered whether or not a step was produced.
func (d *Decoder) Decode(current Signal) (Delta, bool) {
	current &= 0b11

	d.mu.Lock()
	defer d.mu.Unlock()

	if current == d.last {
		return 0, false
	}
	delta, ok := deltaFor(Transition(d.last, current))
	d.last = current
	return delta, ok
}

// Last returns the most recently stored line levels.
func (d *Decoder) Last() Signal {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
