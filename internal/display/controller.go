package display

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/plant-sensor/internal/logic"
)

// DefaultHold is how long the indicator shows a classification colour.
const DefaultHold = 500 * time.Millisecond

// Sampler takes a fresh moisture reading.
type Sampler interface {
	Sample() (float64, error)
}

// Observer is told what the display is showing.
type Observer interface {
	PlantShown(index int, name string)
	StatusShown(value float64, status logic.Status)
}

// Controller draws the plant screen and status line.
// Refreshes are serialised: a refresh that starts while another is running
// waits for it, and every full refresh starts by clearing the whole screen.
type Controller struct {
	mu       sync.Mutex
	screen   Screen
	led      Indicator
	catalog  *logic.Catalog
	sampler  Sampler
	observer Observer
	logger   zerolog.Logger

	// Hold is how long the classification colour stays on.
	Hold time.Duration

	// Sleep blocks for d. Defaults to time.Sleep.
	Sleep func(d time.Duration)
}

// NewController creates a Controller.
func NewController(screen Screen, led Indicator, catalog *logic.Catalog, sampler Sampler, logger zerolog.Logger) *Controller {
	return &Controller{
		screen:  screen,
		led:     led,
		catalog: catalog,
		sampler: sampler,
		logger:  logger.With().Str("component", "display").Logger(),
		Hold:    DefaultHold,
		Sleep:   time.Sleep,
	}
}

// SetObserver registers o. Call before the first refresh.
func (c *Controller) SetObserver(o Observer) {
	c.observer = o
}

// ShowPlant redraws the whole screen for the plant at index, then takes a
// fresh moisture sample and shows its status.
func (c *Controller) ShowPlant(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.catalog.Profile(index)
	c.screen.FillRect(0, 0, Width, Height, false)
	c.screen.Text(p.Name, 0, 0)
	c.show()
	if c.observer != nil {
		c.observer.PlantShown(index, p.Name)
	}

	value, err := c.sampler.Sample()
	if err != nil {
		c.logger.Error().Err(err).Str("plant", p.Name).Msg("moisture sample failed")
		c.clearStatus()
		c.screen.Text("Sensor error", 0, StatusY)
		c.show()
		return
	}
	c.showStatus(index, value)
}

// ShowStatus redraws only the status line for the plant at index using value.
func (c *Controller) ShowStatus(index int, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showStatus(index, value)
}

// Flash turns the indicator on in rgb for on, then off for off.
func (c *Controller) Flash(rgb uint32, on, off time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setColor(rgb)
	c.Sleep(on)
	c.setColor(logic.ColorOff)
	c.Sleep(off)
}

func (c *Controller) showStatus(index int, value float64) {
	p := c.catalog.Profile(index)
	pct := logic.Round(value)
	status := logic.Classify(float64(pct), p)

	c.clearStatus()
	c.screen.Text(status.Message(pct), 0, StatusY)
	c.show()

	c.logger.Debug().
		Str("plant", p.Name).
		Int("pct", pct).
		Str("status", string(status)).
		Msg("status shown")
	if c.observer != nil {
		c.observer.StatusShown(value, status)
	}

	c.setColor(status.Color())
	c.Sleep(c.Hold)
	c.setColor(logic.ColorOff)
}

func (c *Controller) clearStatus() {
	c.screen.FillRect(0, StatusY, Width, Height-StatusY, false)
}

func (c *Controller) show() {
	if err := c.screen.Show(); err != nil {
		c.logger.Error().Err(err).Msg("display update failed")
	}
}

func (c *Controller) setColor(rgb uint32) {
	if err := c.led.SetColor(rgb); err != nil {
		c.logger.Warn().Err(err).Msg("indicator update failed")
	}
}
