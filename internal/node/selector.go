// Package node runs the plant monitor: the encoder-driven plant selector and
// the periodic telemetry loop.
package node

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/sweeney/plant-sensor/internal/logic"
)

// DefaultQueueSize bounds the deltas waiting between the edge handler and the
// selector goroutine.
const DefaultQueueSize = 32

// Refresher redraws the screen for a plant.
type Refresher interface {
	ShowPlant(index int)
}

// Selector turns encoder edges into plant selection changes.
//
// Init and Edge run on the GPIO edge handler goroutine and never block: a
// decoded step is queued, or dropped and counted if the queue is full. Run
// applies queued steps in order and refreshes the display once per step.
type Selector struct {
	decoder   *logic.Decoder
	selection *logic.Selection
	display   Refresher
	deltas    chan logic.Delta
	dropped   atomic.Uint64
	logger    zerolog.Logger

	// OnDrop, if set, is called from the edge handler for each dropped step.
	OnDrop func()
}

// NewSelector creates a Selector with a queue of DefaultQueueSize.
func NewSelector(selection *logic.Selection, display Refresher, logger zerolog.Logger) *Selector {
	return NewSelectorSize(selection, display, DefaultQueueSize, logger)
}

// NewSelectorSize creates a Selector with a queue of the given size.
func NewSelectorSize(selection *logic.Selection, display Refresher, size int, logger zerolog.Logger) *Selector {
	return &Selector{
		decoder:   logic.NewDecoder(0),
		selection: selection,
		display:   display,
		deltas:    make(chan logic.Delta, size),
		logger:    logger.With().Str("component", "selector").Logger(),
	}
}

// Init seeds the decoder with the line levels read at startup.
func (s *Selector) Init(sig logic.Signal) {
	s.decoder.Reset(sig)
}

// Edge decodes the new line levels and queues any resulting step.
func (s *Selector) Edge(sig logic.Signal) {
	d, ok := s.decoder.Decode(sig)
	if !ok {
		return
	}
	select {
	case s.deltas <- d:
	default:
		s.dropped.Add(1)
		if s.OnDrop != nil {
			s.OnDrop()
		}
	}
}

// Run applies queued steps until ctx is cancelled.
func (s *Selector) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-s.deltas:
			index := s.selection.ApplyDelta(d)
			s.logger.Debug().Int("delta", int(d)).Int("index", index).Msg("selection changed")
			s.display.ShowPlant(index)
		}
	}
}

// Pending returns the number of queued steps.
func (s *Selector) Pending() int {
	return len(s.deltas)
}

// Dropped returns how many steps were lost to a full queue.
func (s *Selector) Dropped() uint64 {
	return s.dropped.Load()
}
