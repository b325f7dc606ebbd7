// Command plant-sensor shows soil moisture for the plant picked with a rotary
// encoder and publishes climate, moisture and light telemetry to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"periph.io/x/devices/v3/ssd1306"

	"github.com/sweeney/plant-sensor/internal/config"
	"github.com/sweeney/plant-sensor/internal/display"
	"github.com/sweeney/plant-sensor/internal/gpio"
	"github.com/sweeney/plant-sensor/internal/logging"
	"github.com/sweeney/plant-sensor/internal/logic"
	"github.com/sweeney/plant-sensor/internal/mqtt"
	"github.com/sweeney/plant-sensor/internal/node"
	"github.com/sweeney/plant-sensor/internal/sensor"
	"github.com/sweeney/plant-sensor/internal/status"
	"github.com/sweeney/plant-sensor/internal/storage"
	"github.com/sweeney/plant-sensor/internal/web"
)

// statusRefresh is how often connection and network state are re-read for
// the status page.
const statusRefresh = 10 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to YAML config file")
	printState := flag.Bool("print-state", false, "Print current sensor readings and exit")

	flag.Parse()

	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		boot.Fatal().Err(err).Msg("init logging")
	}
	logger.Debug().Str("config", cfg.String()).Msg("config loaded")

	if err := run(cfg, *printState, logger); err != nil {
		logger.Fatal().Err(err).Msg("fatal")
	}
}

func run(cfg *config.Config, printState bool, logger zerolog.Logger) error {
	// Sensor hub on I2C: the light sensor's ID registers identify the board.
	bus, err := sensor.OpenBus(cfg.I2C.Bus)
	if err != nil {
		return fmt.Errorf("open i2c: %w", err)
	}
	defer bus.Close()

	light := sensor.NewLTR329(bus, cfg.I2C.LightAddress)
	if err := light.Identify(); err != nil {
		return fmt.Errorf("identify sensor hub: %w", err)
	}
	if err := light.Start(); err != nil {
		return fmt.Errorf("start light sensor: %w", err)
	}

	adc, err := sensor.NewADS1015Channel(bus, cfg.I2C.ADCAddress, cfg.I2C.ADCChannel)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}
	defer adc.Close()

	// GPIO
	probe, err := gpio.NewRealOutput(cfg.Pins.Chip, cfg.Pins.Probe, 0)
	if err != nil {
		return fmt.Errorf("init probe power: %w", err)
	}
	defer probe.Close()

	led, err := gpio.NewRealLED(cfg.Pins.Chip, cfg.Pins.Red, cfg.Pins.Green, cfg.Pins.Blue)
	if err != nil {
		return fmt.Errorf("init indicator: %w", err)
	}
	defer led.Close()
	if err := led.SetColor(logic.ColorBoot); err != nil {
		logger.Warn().Err(err).Msg("boot colour")
	}

	climate, err := sensor.NewDHT11(cfg.Pins.DHT, cfg.Node.DHTRetries)
	if err != nil {
		return fmt.Errorf("init climate sensor: %w", err)
	}
	defer climate.Close()

	sampler := sensor.NewSampler(probe, adc, logger)
	sampler.Settle = cfg.Node.Settle

	// Print state mode
	if printState {
		return printReadings(os.Stdout, climate, sampler, light)
	}

	var sink display.Sink
	if cfg.I2C.OLED {
		opts := ssd1306.DefaultOpts
		opts.W, opts.H = display.Width, display.Height
		dev, err := ssd1306.NewI2C(bus, &opts)
		if err != nil {
			return fmt.Errorf("init oled: %w", err)
		}
		defer dev.Halt()
		sink = dev
	}
	screen := display.NewFramebuffer(sink)

	catalog, err := logic.NewCatalog(cfg.Plants)
	if err != nil {
		return fmt.Errorf("plant catalog: %w", err)
	}
	selection := logic.NewSelection(catalog.Len())

	tracker := status.NewTracker(uuid.NewString(), time.Now(), status.Config{
		CycleSeconds: int64(cfg.Node.Cycle / time.Second),
		Broker:       cfg.MQTT.Broker,
		ClientID:     cfg.MQTT.ClientID,
		HTTPAddr:     httpAddr(cfg),
		Plants:       catalog.Len(),
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	ctrl := display.NewController(screen, led, catalog, sampler, logger)
	ctrl.Hold = cfg.Node.Hold
	ctrl.SetObserver(tracker)

	selector := node.NewSelector(selection, ctrl, logger)
	selector.OnDrop = tracker.RecordDroppedDelta

	encoder, err := gpio.NewRealEncoder(cfg.Pins.Chip, cfg.Pins.CLK, cfg.Pins.DT, selector)
	if err != nil {
		return fmt.Errorf("init encoder: %w", err)
	}
	defer encoder.Close()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker:     cfg.MQTT.Broker,
		ClientID:   cfg.MQTT.ClientID,
		Username:   cfg.MQTT.Username,
		Password:   cfg.MQTT.Password,
		BufferSize: cfg.MQTT.BufferSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()
	tracker.SetMQTTConnected(publisher.IsConnected())

	history := openHistory(cfg, logger)
	if history != nil {
		defer history.Close()
	}

	loop := &node.Loop{
		Climate:   climate,
		Light:     light,
		Sampler:   sampler,
		Publisher: publisher,
		Display:   ctrl,
		Selection: selection,
		Catalog:   catalog,
		Tracker:   tracker,
		Timing:    node.DefaultTiming(),
		Logger:    logger.With().Str("component", "loop").Logger(),
	}
	loop.Timing.ClimateRetry = cfg.Node.ClimateRetry
	loop.Timing.Warmup = cfg.Node.Warmup
	loop.Timing.Cycle = cfg.Node.Cycle
	if history != nil {
		loop.History = history
	}

	// Start HTTP status server
	if !cfg.HTTP.Disabled {
		var hist web.HistorySource
		if history != nil {
			hist = history
		}
		srv := web.New(cfg.HTTP.Addr, tracker, screen, hist, logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http status server listening")
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		logger.Error().Err(err).Msg("failed to publish startup event")
	} else {
		logger.Info().Msg("published startup event")
	}

	ctrl.ShowPlant(selection.Index())

	logger.Info().
		Int("plants", catalog.Len()).
		Dur("cycle", cfg.Node.Cycle).
		Str("broker", cfg.MQTT.Broker).
		Msg("started")

	ticker := time.NewTicker(statusRefresh)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runDaemon(selector, loop, publisher, publisher, tracker, time.Now, ticker.C, sigCh, logger)
}

// runner is a long-lived worker stopped by cancelling its context.
type runner interface {
	Run(ctx context.Context) error
}

type selectorRunner struct{ *node.Selector }

func (s selectorRunner) Run(ctx context.Context) error {
	s.Selector.Run(ctx)
	return nil
}

// runDaemon runs the selector and telemetry loop until a signal arrives, then
// stops both and publishes a SHUTDOWN event.
func runDaemon(selector *node.Selector, loop runner, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workers := []runner{selectorRunner{selector}, loop}
	errCh := make(chan error, len(workers))
	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w runner) {
			defer wg.Done()
			if err := w.Run(ctx); err != nil {
				errCh <- err
			}
		}(w)
	}

	for {
		select {
		case err := <-errCh:
			cancel()
			wg.Wait()
			return err

		case <-tick:
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
			}

		case s := <-sig:
			name := signalName(s)
			logger.Info().Str("signal", name).Msg("shutting down")
			cancel()
			wg.Wait()

			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    name,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", name)
			}
			if err := publisher.PublishSystem(event); err != nil {
				logger.Error().Err(err).Msg("failed to publish shutdown event")
			} else {
				logger.Info().Msg("published shutdown event")
			}
			return nil
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func httpAddr(cfg *config.Config) string {
	if cfg.HTTP.Disabled {
		return ""
	}
	return cfg.HTTP.Addr
}

// openHistory opens the history store. A store that cannot be opened is
// logged and skipped; history is not needed to run.
func openHistory(cfg *config.Config, logger zerolog.Logger) *storage.History {
	if cfg.Storage.Disabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		logger.Warn().Err(err).Msg("history disabled")
		return nil
	}
	h, err := storage.Open(cfg.Storage.Path, cfg.Storage.Keep, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("history disabled")
		return nil
	}
	return h
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
