package sensor

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/plant-sensor/internal/logic"
)

// DefaultSettle is how long the probe is powered before it is read.
const DefaultSettle = 2 * time.Second

// Sampler takes power-gated moisture readings.
// Every sample ends with the probe switched off, whatever happens in between.
// Samples are serialised, so callers on different goroutines never share the
// probe line.
type Sampler struct {
	mu     sync.Mutex
	power  PowerLine
	adc    ADC
	logger zerolog.Logger

	// Settle is the wait between powering the probe and reading it.
	Settle time.Duration

	// Sleep blocks for d. Defaults to time.Sleep.
	Sleep func(d time.Duration)
}

// NewSampler creates a Sampler using DefaultSettle.
func NewSampler(power PowerLine, adc ADC, logger zerolog.Logger) *Sampler {
	return &Sampler{
		power:  power,
		adc:    adc,
		logger: logger.With().Str("component", "moisture").Logger(),
		Settle: DefaultSettle,
		Sleep:  time.Sleep,
	}
}

// Sample powers the probe, waits for it to settle, reads it once and powers
// it off. It returns the moisture percentage.
func (s *Sampler) Sample() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sampleLocked()
}

// SampleGated powers the probe for warmup before running the normal sample
// sequence, and switches it off afterwards.
func (s *Sampler) SampleGated(warmup time.Duration) (pct float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer s.powerOff(&err)
	if err := s.power.SetValue(1); err != nil {
		return 0, fmt.Errorf("probe on: %w", err)
	}
	s.Sleep(warmup)
	return s.sampleLocked()
}

func (s *Sampler) sampleLocked() (pct float64, err error) {
	defer s.powerOff(&err)
	if err := s.power.SetValue(1); err != nil {
		return 0, fmt.Errorf("probe on: %w", err)
	}
	s.Sleep(s.Settle)

	raw, err := s.adc.ReadRaw()
	if err != nil {
		return 0, fmt.Errorf("read probe: %w", err)
	}
	pct = logic.MoisturePercent(raw)
	s.logger.Debug().Int("raw", raw).Float64("pct", pct).Msg("moisture sampled")
	return pct, nil
}

// powerOff switches the probe off, reporting a failure through errp unless
// an earlier error is already set.
func (s *Sampler) powerOff(errp *error) {
	if err := s.power.SetValue(0); err != nil {
		s.logger.Error().Err(err).Msg("failed to switch probe off")
		if *errp == nil {
			*errp = fmt.Errorf("probe off: %w", err)
		}
	}
}
