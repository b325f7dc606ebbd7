package node

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/plant-sensor/internal/logic"
	"github.com/sweeney/plant-sensor/internal/mqtt"
	"github.com/sweeney/plant-sensor/internal/sensor"
	"github.com/sweeney/plant-sensor/internal/status"
	"github.com/sweeney/plant-sensor/internal/storage"
)

// Climate reads temperature and humidity.
type Climate interface {
	Read() sensor.ClimateReading
}

// Light reads ambient illuminance.
type Light interface {
	Lux() (float64, error)
}

// Sampler takes a power-gated moisture reading.
type Sampler interface {
	SampleGated(warmup time.Duration) (float64, error)
}

// Publisher sends telemetry.
type Publisher interface {
	PublishTelemetry(rec mqtt.Record) error
}

// Display is the part of the display controller the loop drives.
type Display interface {
	ShowStatus(index int, value float64)
	Flash(rgb uint32, on, off time.Duration)
}

// Recorder stores completed cycles.
type Recorder interface {
	Record(ctx context.Context, e storage.Entry) error
}

// Timing holds the loop's waits.
type Timing struct {
	ClimateRetry time.Duration
	Warmup       time.Duration
	PulseOn      time.Duration
	PulseOff     time.Duration
	AckPause     time.Duration
	Cycle        time.Duration
}

// DefaultTiming returns the device's standard waits.
func DefaultTiming() Timing {
	return Timing{
		ClimateRetry: 500 * time.Millisecond,
		Warmup:       time.Second,
		PulseOn:      500 * time.Millisecond,
		PulseOff:     200 * time.Millisecond,
		AckPause:     time.Second,
		Cycle:        1800 * time.Second,
	}
}

// Loop is the periodic telemetry cycle. History and Tracker are optional.
type Loop struct {
	Climate   Climate
	Light     Light
	Sampler   Sampler
	Publisher Publisher
	Display   Display
	Selection *logic.Selection
	Catalog   *logic.Catalog
	History   Recorder
	Tracker   *status.Tracker
	Timing    Timing
	Logger    zerolog.Logger

	// After and Now default to time.After and time.Now.
	After func(d time.Duration) <-chan time.Time
	Now   func() time.Time
}

// Run repeats Cycle, sleeping Timing.Cycle between cycles, until ctx is
// cancelled. A failed cycle is logged and the loop carries on.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.Logger.Error().Err(err).Msg("telemetry cycle failed")
		}
		if err := l.wait(ctx, l.Timing.Cycle); err != nil {
			return nil
		}
	}
}

// Cycle performs one telemetry cycle: wait for a valid climate reading,
// sample moisture, read light, publish, acknowledge on the indicator and
// refresh the status line.
func (l *Loop) Cycle(ctx context.Context) error {
	climate, err := l.readClimate(ctx)
	if err != nil {
		return err
	}

	moisture, err := l.Sampler.SampleGated(l.Timing.Warmup)
	if err != nil {
		return fmt.Errorf("sample moisture: %w", err)
	}

	lux, err := l.Light.Lux()
	if err != nil {
		return fmt.Errorf("read light: %w", err)
	}

	rec := mqtt.Record{
		TemperatureC: climate.TemperatureC,
		HumidityPct:  climate.HumidityPct,
		MoisturePct:  moisture,
		Lux:          lux,
	}
	if err := l.Publisher.PublishTelemetry(rec); err != nil {
		l.Logger.Error().Err(err).Msg("publish telemetry failed")
		if l.Tracker != nil {
			l.Tracker.RecordPublishError()
		}
	} else {
		l.Logger.Info().
			Float64("temp", rec.TemperatureC).
			Float64("rh", rec.HumidityPct).
			Float64("moisture", rec.MoisturePct).
			Float64("lux", rec.Lux).
			Msg("telemetry published")
	}

	l.Display.Flash(logic.ColorSent, l.Timing.PulseOn, l.Timing.PulseOff)
	if err := l.wait(ctx, l.Timing.AckPause); err != nil {
		return err
	}

	index := l.Selection.Index()
	l.Display.ShowStatus(index, moisture)

	l.record(ctx, index, rec)
	return nil
}

// readClimate polls until the sensor returns a valid reading.
func (l *Loop) readClimate(ctx context.Context) (sensor.ClimateReading, error) {
	for {
		r := l.Climate.Read()
		if r.IsValid() {
			return r, nil
		}
		l.Logger.Debug().Err(r.Err).Msg("climate reading invalid, retrying")
		if l.Tracker != nil {
			l.Tracker.RecordClimateRetry()
		}
		if err := l.wait(ctx, l.Timing.ClimateRetry); err != nil {
			return sensor.ClimateReading{}, err
		}
	}
}

func (l *Loop) record(ctx context.Context, index int, rec mqtt.Record) {
	now := l.now()
	if l.Tracker != nil {
		l.Tracker.RecordTelemetry(status.Telemetry{
			At:           now,
			TemperatureC: rec.TemperatureC,
			HumidityPct:  rec.HumidityPct,
			MoisturePct:  rec.MoisturePct,
			Lux:          rec.Lux,
		})
	}
	if l.History == nil {
		return
	}

	p := l.Catalog.Profile(index)
	entry := storage.Entry{
		RecordedAt:   now,
		Plant:        p.Name,
		TemperatureC: rec.TemperatureC,
		HumidityPct:  rec.HumidityPct,
		MoisturePct:  rec.MoisturePct,
		Lux:          rec.Lux,
		Status:       string(logic.Classify(float64(logic.Round(rec.MoisturePct)), p)),
	}
	if err := l.History.Record(ctx, entry); err != nil {
		l.Logger.Warn().Err(err).Msg("history write failed")
	}
}

func (l *Loop) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	after := l.After
	if after == nil {
		after = time.After
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-after(d):
		return nil
	}
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
