package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/plant-sensor/internal/logic"
	"github.com/sweeney/plant-sensor/internal/mqtt"
	"github.com/sweeney/plant-sensor/internal/node"
	"github.com/sweeney/plant-sensor/internal/sensor"
	"github.com/sweeney/plant-sensor/internal/status"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfoAllSet(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}

	want := status.NetworkInfo{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "MyNetwork",
	}
	if *info != want {
		t.Errorf("got %+v, want %+v", *info, want)
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestReadNetworkInfoPartial(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkIP, "")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo when NETWORK_STATUS is set")
	}
	if info.Status != "connected" {
		t.Errorf("Status: got %q, want %q", info.Status, "connected")
	}
	if info.IP != "" {
		t.Errorf("IP: got %q, want empty", info.IP)
	}
}

// --- runDaemon tests ---

// blockingRunner runs until its context is cancelled.
type blockingRunner struct {
	started chan struct{}
	stopped bool
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan struct{})}
}

func (r *blockingRunner) Run(ctx context.Context) error {
	close(r.started)
	<-ctx.Done()
	r.stopped = true
	return nil
}

type failingRunner struct{ err error }

func (r failingRunner) Run(ctx context.Context) error { return r.err }

type nopRefresher struct{}

func (nopRefresher) ShowPlant(int) {}

func newTestSelector() *node.Selector {
	return node.NewSelector(logic.NewSelection(4), nopRefresher{}, zerolog.Nop())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func runShutdown(t *testing.T, signal os.Signal) (*mqtt.FakePublisher, *blockingRunner) {
	t.Helper()
	pub := mqtt.NewFakePublisher()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker := status.NewTracker("boot-1", start, status.Config{Broker: "tcp://broker:1883"})
	loop := newBlockingRunner()

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runDaemon(newTestSelector(), loop, pub, pub, tracker, fixedClock(start.Add(time.Minute)), tick, sig, zerolog.Nop())
	}()

	<-loop.started
	sig <- signal
	if err := <-errCh; err != nil {
		t.Fatalf("runDaemon returned error: %v", err)
	}
	return pub, loop
}

func TestRunDaemonShutdownSIGINT(t *testing.T) {
	pub, loop := runShutdown(t, syscall.SIGINT)

	if !loop.stopped {
		t.Error("loop was not stopped before shutdown")
	}
	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}
	ev := pub.SystemEvents[0]
	if ev.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", ev.Event)
	}
	if ev.Reason != "SIGINT" {
		t.Errorf("Reason: got %q, want SIGINT", ev.Reason)
	}
	if !ev.Retained {
		t.Error("shutdown event should be retained")
	}
	if !ev.Timestamp.Equal(time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC)) {
		t.Errorf("Timestamp: got %v", ev.Timestamp)
	}
}

func TestRunDaemonShutdownSIGTERM(t *testing.T) {
	pub, _ := runShutdown(t, syscall.SIGTERM)

	if len(pub.SystemPayloads) != 1 {
		t.Fatalf("expected 1 system payload, got %d", len(pub.SystemPayloads))
	}
	var out status.StatusJSON
	if err := json.Unmarshal(pub.SystemPayloads[0], &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", out.Status.Event)
	}
	if out.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", out.Status.Reason)
	}
	if out.Status.BootID != "boot-1" {
		t.Errorf("boot_id: got %q, want boot-1", out.Status.BootID)
	}
	if out.Status.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("broker: got %q", out.Status.MQTT.Broker)
	}
}

func TestRunDaemonShutdownPublishErrorIsNotFatal(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	pub.PublishSystemError = errors.New("broker down")
	loop := newBlockingRunner()
	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGTERM

	err := runDaemon(newTestSelector(), loop, pub, pub, nil, time.Now, nil, sig, zerolog.Nop())
	if err != nil {
		t.Fatalf("runDaemon returned error: %v", err)
	}
}

func TestRunDaemonReturnsWorkerError(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	want := errors.New("loop broke")

	err := runDaemon(newTestSelector(), failingRunner{err: want}, pub, pub, nil, time.Now, nil, make(chan os.Signal), zerolog.Nop())
	if !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
	if len(pub.SystemEvents) != 0 {
		t.Errorf("expected no system events, got %d", len(pub.SystemEvents))
	}
}

func TestRunDaemonTickRefreshesStatus(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkIP, "10.0.0.7")

	pub := mqtt.NewFakePublisher()
	pub.Connected = true
	tracker := status.NewTracker("boot-1", time.Now(), status.Config{})
	loop := newBlockingRunner()

	tick := make(chan time.Time)
	sig := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runDaemon(newTestSelector(), loop, pub, pub, tracker, time.Now, tick, sig, zerolog.Nop())
	}()

	<-loop.started
	tick <- time.Time{}
	sig <- syscall.SIGINT
	if err := <-errCh; err != nil {
		t.Fatalf("runDaemon returned error: %v", err)
	}

	snap := tracker.Snapshot()
	if !snap.MQTTConnected {
		t.Error("expected MQTT connected after tick")
	}
	if snap.Network == nil || snap.Network.IP != "10.0.0.7" {
		t.Errorf("network not refreshed: %+v", snap.Network)
	}
}

// --- full cycle through runDaemon ---

type nopDisplay struct{}

func (nopDisplay) ShowStatus(index int, value float64)     {}
func (nopDisplay) Flash(rgb uint32, on, off time.Duration) {}

func TestRunDaemonPublishesTelemetryThenShutsDown(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	tracker := status.NewTracker("boot-1", time.Now(), status.Config{})

	// After reports each wait and never fires, so the loop parks in its
	// acknowledgement pause once the cycle has published.
	waits := make(chan time.Duration, 1)
	never := make(chan time.Time)
	loop := &node.Loop{
		Climate:   sensor.NewFakeClimate(sensor.ClimateReading{TemperatureC: 21.5, HumidityPct: 40.2}),
		Light:     &sensor.FakeLight{Value: 120},
		Sampler:   stubSampler(55),
		Publisher: pub,
		Display:   nopDisplay{},
		Selection: logic.NewSelection(4),
		Catalog:   logic.DefaultCatalog(),
		Tracker:   tracker,
		Timing:    node.DefaultTiming(),
		Logger:    zerolog.Nop(),
		After: func(d time.Duration) <-chan time.Time {
			waits <- d
			return never
		},
	}

	sig := make(chan os.Signal, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- runDaemon(newTestSelector(), loop, pub, pub, tracker, time.Now, nil, sig, zerolog.Nop())
	}()

	if d := <-waits; d != time.Second {
		t.Fatalf("first wait: got %v, want 1s acknowledgement pause", d)
	}
	sig <- syscall.SIGTERM
	if err := <-errCh; err != nil {
		t.Fatalf("runDaemon returned error: %v", err)
	}

	if len(pub.Payloads) != 1 {
		t.Fatalf("expected 1 telemetry payload, got %d", len(pub.Payloads))
	}
	want := `{"plant_sensor":{"temp":21.5,"rh":40.2,"Moisture":55,"Light":120}}`
	if got := string(pub.Payloads[0]); got != want {
		t.Errorf("payload:\n got %s\nwant %s", got, want)
	}
	if len(pub.SystemEvents) != 1 || pub.SystemEvents[0].Event != "SHUTDOWN" {
		t.Fatalf("expected SHUTDOWN after telemetry, got %+v", pub.SystemEvents)
	}
	if !bytes.Contains(pub.SystemPayloads[0], []byte(`"reason":"SIGTERM"`)) {
		t.Errorf("shutdown payload missing reason: %s", pub.SystemPayloads[0])
	}
}

type stubSampler float64

func (s stubSampler) SampleGated(time.Duration) (float64, error) { return float64(s), nil }
func (s stubSampler) Sample() (float64, error)                   { return float64(s), nil }

// --- print-state ---

func TestPrintReadings(t *testing.T) {
	var buf bytes.Buffer
	climate := sensor.NewFakeClimate(sensor.ClimateReading{TemperatureC: 21.5, HumidityPct: 40.2})

	if err := printReadings(&buf, climate, stubSampler(55), &sensor.FakeLight{Value: 120}); err != nil {
		t.Fatalf("printReadings: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Climate: 21.5°C, 40.2% RH", "Moisture: 55.0%", "Light: 120 lx"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReadingsLightError(t *testing.T) {
	var buf bytes.Buffer
	climate := sensor.NewFakeClimate(sensor.ClimateReading{TemperatureC: 21.5, HumidityPct: 40.2})

	err := printReadings(&buf, climate, stubSampler(55), &sensor.FakeLight{Err: errors.New("nack")})
	if err == nil {
		t.Fatal("expected error")
	}
}
