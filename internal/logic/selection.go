package logic

import "sync/atomic"

// Selection is the index of the currently selected plant.
// Writes go through ApplyDelta; reads through Index. Both are lock-free, so
// the display can read the index while a step is being applied without ever
// observing an out-of-range value.
type Selection struct {
	size  int32
	index atomic.Int32
}

// NewSelection creates a Selection over size plants, starting at index 0.
// size must be positive.
func NewSelection(size int) *Selection {
	if size <= 0 {
		panic("logic: selection size must be positive")
	}
	return &Selection{size: int32(size)}
}

// Size returns the number of selectable plants.
func (s *Selection) Size() int {
	return int(s.size)
}

// Index returns the current index.
func (s *Selection) Index() int {
	return int(s.index.Load())
}

// ApplyDelta moves the selection by delta, wrapping at both ends, and returns
// the new index.
func (s *Selection) ApplyDelta(delta Delta) int {
	for {
		old := s.index.Load()
		next := (old + int32(delta)) % s.size
		if next < 0 {
			next += s.size
		}
		if s.index.CompareAndSwap(old, next) {
			return int(next)
		}
	}
}
