package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/bluuki/internal/device"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Radio backends
const (
	BackendGoBLE  = "goble"
	BackendTinyGo = "tinygo"
)

// Adapter power monitors
const (
	PowerMonitorNone  = "none"
	PowerMonitorBlueZ = "bluez"
)

// Config holds application configuration
type Config struct {
	LogLevel     logrus.Level `yaml:"log_level" default:"4"`
	OutputFormat string       `yaml:"output_format" default:"json"` // json, text
	Targets      []string     `yaml:"targets" default:"[2471894daeb6]"`
	HostID       string       `yaml:"host_id"`
	EventBuffer  int          `yaml:"event_buffer" default:"256"`

	Scan     ScanConfig     `yaml:"scan"`
	Magnetic MagneticConfig `yaml:"magnetic"`
	Radio    RadioConfig    `yaml:"radio"`
}

// ScanConfig controls the scan requests sent to the radio
type ScanConfig struct {
	ServiceUUIDs       []string      `yaml:"service_uuids"`
	AllowDuplicates    bool          `yaml:"allow_duplicates" default:"true"`
	StartupStatusDelay time.Duration `yaml:"startup_status_delay" default:"3s"`
}

type MagneticConfig struct {
	ServiceTag string `yaml:"service_tag" default:"b000"`
}

// RadioConfig selects and tunes the BLE backend
type RadioConfig struct {
	Backend      string        `yaml:"backend" default:"goble"`
	PowerMonitor string        `yaml:"power_monitor" default:"none"`
	Adapter      string        `yaml:"adapter" default:"hci0"`
	StartSettle  time.Duration `yaml:"start_settle" default:"50ms"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerations and identifiers. Service UUIDs are normalized in place.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case FormatJSON, FormatText:
	default:
		return fmt.Errorf("unsupported output format %q (use json or text)", c.OutputFormat)
	}
	switch c.Radio.Backend {
	case BackendGoBLE, BackendTinyGo:
	default:
		return fmt.Errorf("unsupported radio backend %q (use goble or tinygo)", c.Radio.Backend)
	}
	switch c.Radio.PowerMonitor {
	case PowerMonitorNone, PowerMonitorBlueZ:
	default:
		return fmt.Errorf("unsupported power monitor %q (use none or bluez)", c.Radio.PowerMonitor)
	}

	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target is required")
	}
	for _, t := range c.Targets {
		if !validPeripheralID(device.NormalizePeripheralID(t)) {
			return fmt.Errorf("invalid target %q: want a MAC address or a 32 digit peripheral identifier", t)
		}
	}

	if len(c.Scan.ServiceUUIDs) > 0 {
		uuids, err := device.ValidateUUID(c.Scan.ServiceUUIDs...)
		if err != nil {
			return fmt.Errorf("scan.service_uuids: %w", err)
		}
		c.Scan.ServiceUUIDs = uuids
	}
	if _, err := device.ValidateUUID(c.Magnetic.ServiceTag); err != nil {
		return fmt.Errorf("magnetic.service_tag: %w", err)
	}

	if c.EventBuffer <= 0 {
		return fmt.Errorf("event_buffer must be positive, got %d", c.EventBuffer)
	}
	if c.Scan.StartupStatusDelay < 0 {
		return fmt.Errorf("scan.startup_status_delay must not be negative")
	}
	return nil
}

// validPeripheralID accepts MAC addresses (Linux) and CoreBluetooth identifiers (macOS)
func validPeripheralID(id string) bool {
	if len(id) != 12 && len(id) != 32 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// HostIdentifier returns host_id, falling back to the machine hostname.
func (c *Config) HostIdentifier() string {
	if c.HostID != "" {
		return c.HostID
	}
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
