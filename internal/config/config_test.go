package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/plant-sensor/internal/logic"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
node:
  cycle: 10m
  settle: 1500ms
pins:
  clk: 23
  dt: 24
i2c:
  bus: "1"
  adc_address: 0x49
  adc_channel: 2
  oled: true
mqtt:
  broker: "tcp://192.168.1.200:1883"
  client_id: "greenhouse-1"
  username: "node"
  password: "secret-pass"
http:
  addr: ":9090"
storage:
  path: "/tmp/h.db"
  keep: 50
logging:
  level: "debug"
  format: "json"
plants:
  - name: "Basilika"
    min_moisture: 45
    max_moisture: 70
  - name: "Mynta"
    min_moisture: 50
    max_moisture: 80
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Node.Cycle != 10*time.Minute {
		t.Errorf("Node.Cycle: got %v, want 10m", cfg.Node.Cycle)
	}
	if cfg.Node.Settle != 1500*time.Millisecond {
		t.Errorf("Node.Settle: got %v, want 1.5s", cfg.Node.Settle)
	}
	if cfg.Pins.CLK != 23 || cfg.Pins.DT != 24 {
		t.Errorf("Pins: got clk=%d dt=%d", cfg.Pins.CLK, cfg.Pins.DT)
	}
	if cfg.I2C.ADCAddress != 0x49 || cfg.I2C.ADCChannel != 2 || !cfg.I2C.OLED {
		t.Errorf("I2C: got %+v", cfg.I2C)
	}
	if cfg.MQTT.ClientID != "greenhouse-1" {
		t.Errorf("MQTT.ClientID: got %q", cfg.MQTT.ClientID)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr: got %q", cfg.HTTP.Addr)
	}
	if cfg.Storage.Keep != 50 {
		t.Errorf("Storage.Keep: got %d", cfg.Storage.Keep)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q", cfg.Logging.Format)
	}
	want := []logic.Profile{
		{Name: "Basilika", MinMoisturePct: 45, MaxMoisturePct: 70},
		{Name: "Mynta", MinMoisturePct: 50, MaxMoisturePct: 80},
	}
	if len(cfg.Plants) != 2 || cfg.Plants[0] != want[0] || cfg.Plants[1] != want[1] {
		t.Errorf("Plants: got %+v", cfg.Plants)
	}

	// untouched fields get defaults
	if cfg.Node.Warmup != time.Second {
		t.Errorf("Node.Warmup: got %v, want 1s", cfg.Node.Warmup)
	}
	if cfg.Pins.Probe != 22 {
		t.Errorf("Pins.Probe: got %d, want 22", cfg.Pins.Probe)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Node.Cycle != 1800*time.Second {
		t.Errorf("Node.Cycle: got %v, want 30m", cfg.Node.Cycle)
	}
	if cfg.Node.ClimateRetry != 500*time.Millisecond {
		t.Errorf("Node.ClimateRetry: got %v, want 500ms", cfg.Node.ClimateRetry)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT.Broker: got %q", cfg.MQTT.Broker)
	}
	if !strings.HasPrefix(cfg.MQTT.ClientID, "plant-sensor-") {
		t.Errorf("MQTT.ClientID: got %q", cfg.MQTT.ClientID)
	}
	if len(cfg.Plants) != len(logic.DefaultProfiles()) {
		t.Errorf("Plants: got %d, want default catalog", len(cfg.Plants))
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "node: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("PLANT_MQTT_BROKER", "tcp://broker.lan:1883")
	t.Setenv("PLANT_MQTT_USER", "envuser")
	t.Setenv("PLANT_MQTT_PASSWORD", "envpass")
	t.Setenv("PLANT_LOG_LEVEL", "warn")

	path := writeConfig(t, `
mqtt:
  broker: "tcp://file:1883"
logging:
  level: "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MQTT.Broker != "tcp://broker.lan:1883" {
		t.Errorf("MQTT.Broker: got %q", cfg.MQTT.Broker)
	}
	if cfg.MQTT.Username != "envuser" || cfg.MQTT.Password != "envpass" {
		t.Errorf("MQTT auth: got %q/%q", cfg.MQTT.Username, cfg.MQTT.Password)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level: got %q", cfg.Logging.Level)
	}
}

func TestOverrideFromEnvIgnoresEmpty(t *testing.T) {
	t.Setenv("PLANT_MQTT_BROKER", "")

	cfg := &Config{MQTT: MQTTConfig{Broker: "tcp://keep:1883"}}
	cfg.OverrideFromEnv()

	if cfg.MQTT.Broker != "tcp://keep:1883" {
		t.Errorf("MQTT.Broker: got %q", cfg.MQTT.Broker)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"short cycle", func(c *Config) { c.Node.Cycle = 500 * time.Millisecond }},
		{"negative settle", func(c *Config) { c.Node.Settle = -time.Second }},
		{"shared pin", func(c *Config) { c.Pins.DT = c.Pins.CLK }},
		{"negative pin", func(c *Config) { c.Pins.Red = -1 }},
		{"adc channel", func(c *Config) { c.I2C.ADCChannel = 4 }},
		{"broker without scheme", func(c *Config) { c.MQTT.Broker = "localhost:1883" }},
		{"password without user", func(c *Config) { c.MQTT.Password = "x" }},
		{"negative keep", func(c *Config) { c.Storage.Keep = -1 }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"duplicate plant", func(c *Config) {
			c.Plants = []logic.Profile{{Name: "A"}, {Name: "A"}}
		}},
		{"unnamed plant", func(c *Config) { c.Plants = []logic.Profile{{MinMoisturePct: 10}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.ApplyDefaults()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestStringMasksPassword(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.MQTT.Username = "node"
	cfg.MQTT.Password = "supersecret"

	s := cfg.String()
	if strings.Contains(s, "supersecret") {
		t.Errorf("password leaked: %s", s)
	}
	if !strings.Contains(s, "su****") {
		t.Errorf("masked password missing: %s", s)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":       "",
		"abc":    "****",
		"abcdef": "ab****",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}
