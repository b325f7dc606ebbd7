// Package config loads the daemon configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/plant-sensor/internal/logic"
)

// DefaultPath is where the daemon looks for its config file.
const DefaultPath = "/etc/plant-sensor/config.yaml"

// Config holds all configuration for the daemon.
type Config struct {
	Node    NodeConfig      `yaml:"node"`
	Pins    PinsConfig      `yaml:"pins"`
	I2C     I2CConfig       `yaml:"i2c"`
	MQTT    MQTTConfig      `yaml:"mqtt"`
	HTTP    HTTPConfig      `yaml:"http"`
	Storage StorageConfig   `yaml:"storage"`
	Logging LoggingConfig   `yaml:"logging"`
	Plants  []logic.Profile `yaml:"plants"`
}

// NodeConfig contains telemetry loop timing.
type NodeConfig struct {
	Cycle        time.Duration `yaml:"cycle"`         // sleep between telemetry cycles
	Settle       time.Duration `yaml:"settle"`        // probe power-on to ADC read
	Warmup       time.Duration `yaml:"warmup"`        // extra probe warm-up in the loop
	ClimateRetry time.Duration `yaml:"climate_retry"` // wait between invalid climate reads
	Hold         time.Duration `yaml:"hold"`          // status colour on-time
	DHTRetries   int           `yaml:"dht_retries"`
}

// PinsConfig contains BCM line offsets on the GPIO chip.
type PinsConfig struct {
	Chip  string `yaml:"chip"`
	CLK   int    `yaml:"clk"`
	DT    int    `yaml:"dt"`
	Probe int    `yaml:"probe"`
	DHT   int    `yaml:"dht"`
	Red   int    `yaml:"red"`
	Green int    `yaml:"green"`
	Blue  int    `yaml:"blue"`
}

// I2CConfig contains bus and device addresses.
type I2CConfig struct {
	Bus          string `yaml:"bus"` // empty selects the first bus
	ADCAddress   uint16 `yaml:"adc_address"`
	ADCChannel   int    `yaml:"adc_channel"`
	LightAddress uint16 `yaml:"light_address"`
	OLED         bool   `yaml:"oled"` // SSD1306 at its fixed address 0x3C
}

// MQTTConfig contains broker connection settings.
type MQTTConfig struct {
	Broker     string `yaml:"broker"`
	ClientID   string `yaml:"client_id"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	BufferSize int    `yaml:"buffer_size"`
}

// HTTPConfig contains status server settings.
type HTTPConfig struct {
	Addr     string `yaml:"addr"`
	Disabled bool   `yaml:"disabled"`
}

// StorageConfig contains history store settings.
type StorageConfig struct {
	Path     string `yaml:"path"`
	Keep     int    `yaml:"keep"`
	Disabled bool   `yaml:"disabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	cfg.OverrideFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults sets default values for any unset fields.
func (c *Config) ApplyDefaults() {
	if c.Node.Cycle == 0 {
		c.Node.Cycle = 1800 * time.Second
	}
	if c.Node.Settle == 0 {
		c.Node.Settle = 2 * time.Second
	}
	if c.Node.Warmup == 0 {
		c.Node.Warmup = time.Second
	}
	if c.Node.ClimateRetry == 0 {
		c.Node.ClimateRetry = 500 * time.Millisecond
	}
	if c.Node.Hold == 0 {
		c.Node.Hold = 500 * time.Millisecond
	}
	if c.Node.DHTRetries == 0 {
		c.Node.DHTRetries = 3
	}

	if c.Pins.Chip == "" {
		c.Pins.Chip = "gpiochip0"
	}
	if c.Pins.CLK == 0 {
		c.Pins.CLK = 17
	}
	if c.Pins.DT == 0 {
		c.Pins.DT = 27
	}
	if c.Pins.Probe == 0 {
		c.Pins.Probe = 22
	}
	if c.Pins.DHT == 0 {
		c.Pins.DHT = 4
	}
	if c.Pins.Red == 0 {
		c.Pins.Red = 5
	}
	if c.Pins.Green == 0 {
		c.Pins.Green = 6
	}
	if c.Pins.Blue == 0 {
		c.Pins.Blue = 13
	}

	if c.I2C.ADCAddress == 0 {
		c.I2C.ADCAddress = 0x48
	}
	if c.I2C.LightAddress == 0 {
		c.I2C.LightAddress = 0x29
	}

	if c.MQTT.Broker == "" {
		c.MQTT.Broker = "tcp://localhost:1883"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "plant-sensor-" + uuid.NewString()[:8]
	}
	if c.MQTT.BufferSize == 0 {
		c.MQTT.BufferSize = 64
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}

	if c.Storage.Path == "" {
		c.Storage.Path = "/var/lib/plant-sensor/history.db"
	}
	if c.Storage.Keep == 0 {
		c.Storage.Keep = 1000
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	if len(c.Plants) == 0 {
		c.Plants = logic.DefaultProfiles()
	}
}

// OverrideFromEnv overrides config values from environment variables.
// Only non-empty variables take effect.
func (c *Config) OverrideFromEnv() {
	if v := os.Getenv("PLANT_MQTT_BROKER"); v != "" {
		c.MQTT.Broker = v
	}
	if v := os.Getenv("PLANT_MQTT_USER"); v != "" {
		c.MQTT.Username = v
	}
	if v := os.Getenv("PLANT_MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
	if v := os.Getenv("PLANT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Node.Cycle < time.Second {
		return fmt.Errorf("node cycle must be at least 1s, got %s", c.Node.Cycle)
	}
	if c.Node.Settle < 0 || c.Node.Warmup < 0 || c.Node.ClimateRetry <= 0 || c.Node.Hold < 0 {
		return errors.New("node timings must not be negative")
	}

	pins := map[string]int{
		"clk": c.Pins.CLK, "dt": c.Pins.DT, "probe": c.Pins.Probe, "dht": c.Pins.DHT,
		"red": c.Pins.Red, "green": c.Pins.Green, "blue": c.Pins.Blue,
	}
	used := make(map[int]string, len(pins))
	for name, pin := range pins {
		if pin < 0 {
			return fmt.Errorf("pin %s must not be negative", name)
		}
		if other, ok := used[pin]; ok {
			return fmt.Errorf("pins %s and %s share line %d", other, name, pin)
		}
		used[pin] = name
	}

	if c.I2C.ADCChannel < 0 || c.I2C.ADCChannel > 3 {
		return fmt.Errorf("adc channel must be 0-3, got %d", c.I2C.ADCChannel)
	}

	if !strings.Contains(c.MQTT.Broker, "://") {
		return fmt.Errorf("mqtt broker %q must include a scheme, e.g. tcp://host:1883", c.MQTT.Broker)
	}
	if c.MQTT.Password != "" && c.MQTT.Username == "" {
		return errors.New("mqtt password set without username")
	}

	if c.Storage.Keep < 1 {
		return fmt.Errorf("storage keep must be positive, got %d", c.Storage.Keep)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	if _, err := logic.NewCatalog(c.Plants); err != nil {
		return fmt.Errorf("plants: %w", err)
	}
	return nil
}

// String returns a safe string representation (hides the MQTT password).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Node: %+v, Pins: %+v, I2C: %+v, MQTT: [Broker=%s, ClientID=%s, User=%s, Password=%s], HTTP: %+v, Storage: %+v, Logging: %+v, Plants: %d}",
		c.Node,
		c.Pins,
		c.I2C,
		c.MQTT.Broker,
		c.MQTT.ClientID,
		c.MQTT.Username,
		maskSecret(c.MQTT.Password),
		c.HTTP,
		c.Storage,
		c.Logging,
		len(c.Plants),
	)
}

// maskSecret masks all but the first 2 characters of a secret.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****"
}
