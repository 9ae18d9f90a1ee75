package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/vitaminmoo/iqos-tool/internal/device"
)

// Config is the root configuration for iqos-tool.
// Values are loaded from YAML and can be overridden by IQOS_* environment
// variables.
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Device  DeviceConfig  `yaml:"device"`
	Logging LoggingConfig `yaml:"logging"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
}

// ScanConfig controls how the device is found.
type ScanConfig struct {
	// NameMatch is matched case-insensitively against the advertised name.
	NameMatch string `yaml:"name_match" env:"IQOS_SCAN_NAME"`
	// Address pins a specific device; empty accepts the first name match.
	Address string        `yaml:"address" env:"IQOS_SCAN_ADDRESS"`
	Timeout time.Duration `yaml:"timeout" env:"IQOS_SCAN_TIMEOUT"`
}

// DeviceConfig controls how a connected device is modelled.
type DeviceConfig struct {
	// Family is auto, base or iluma.
	Family     string `yaml:"family" env:"IQOS_FAMILY"`
	CustomName string `yaml:"custom_name" env:"IQOS_CUSTOM_NAME"`
	// WriteTimeout bounds a whole command execution.
	WriteTimeout time.Duration `yaml:"write_timeout" env:"IQOS_WRITE_TIMEOUT"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"IQOS_LOG_LEVEL"`
	Format string `yaml:"format" env:"IQOS_LOG_FORMAT"`
	// File redirects log output; the TUI logs nowhere unless it is set.
	File string `yaml:"file" env:"IQOS_LOG_FILE"`
}

// MQTTConfig contains the optional state publisher settings.
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled" env:"IQOS_MQTT_ENABLED"`
	Broker      string `yaml:"broker" env:"IQOS_MQTT_BROKER"`
	ClientID    string `yaml:"client_id" env:"IQOS_MQTT_CLIENT_ID"`
	Username    string `yaml:"username" env:"IQOS_MQTT_USER"`
	Password    string `yaml:"password" env:"IQOS_MQTT_PASS"`
	TopicPrefix string `yaml:"topic_prefix" env:"IQOS_MQTT_TOPIC_PREFIX"`
	QoS         int    `yaml:"qos" env:"IQOS_MQTT_QOS"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			NameMatch: "iqos",
			Timeout:   15 * time.Second,
		},
		Device: DeviceConfig{
			Family:       "auto",
			WriteTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		MQTT: MQTTConfig{
			ClientID:    "iqos-tool",
			TopicPrefix: "iqos",
			QoS:         1,
		},
	}
}

// DefaultPath returns the default config path (~/.iqos/config.yaml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".iqos", "config.yaml"), nil
}

// Load reads the config file at path on top of the defaults, then applies
// environment overrides and validates the result.
//
// An empty path tries DefaultPath and silently skips it when missing; an
// explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Scan.NameMatch) == "" && c.Scan.Address == "" {
		errs = append(errs, errors.New("scan: name_match or address is required"))
	}
	if c.Scan.Timeout <= 0 {
		errs = append(errs, errors.New("scan: timeout must be positive"))
	}
	if _, err := device.ParseFamily(c.Device.Family); err != nil {
		errs = append(errs, fmt.Errorf("device: %w", err))
	}
	if c.Device.WriteTimeout <= 0 {
		errs = append(errs, errors.New("device: write_timeout must be positive"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging: unknown format %q (want json or console)", c.Logging.Format))
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt: broker is required when enabled"))
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, fmt.Errorf("mqtt: qos %d out of range 0-2", c.MQTT.QoS))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// DeviceFamily returns the parsed family. Validate has already rejected bad
// values, so an error here falls back to auto.
func (c *Config) DeviceFamily() device.Family {
	f, err := device.ParseFamily(c.Device.Family)
	if err != nil {
		return device.FamilyAuto
	}
	return f
}
