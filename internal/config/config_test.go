package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaminmoo/iqos-tool/internal/device"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
scan:
  name_match: "ILUMA"
  timeout: 30s
device:
  family: iluma
  custom_name: "pocket"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  topic_prefix: "home/iqos"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ILUMA", cfg.Scan.NameMatch)
	assert.Equal(t, 30*time.Second, cfg.Scan.Timeout)
	assert.Equal(t, device.FamilyIluma, cfg.DeviceFamily())
	assert.Equal(t, "pocket", cfg.Device.CustomName)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "home/iqos", cfg.MQTT.TopicPrefix)

	// Untouched keys keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.Device.WriteTimeout)
	assert.Equal(t, "iqos-tool", cfg.MQTT.ClientID)
	assert.Equal(t, 1, cfg.MQTT.QoS)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "scan: [not, a, map")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
device:
  family: base
`)
	t.Setenv("IQOS_FAMILY", "iluma")
	t.Setenv("IQOS_SCAN_TIMEOUT", "5s")
	t.Setenv("IQOS_MQTT_ENABLED", "true")
	t.Setenv("IQOS_MQTT_BROKER", "tcp://broker:1883")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, device.FamilyIluma, cfg.DeviceFamily())
	assert.Equal(t, 5*time.Second, cfg.Scan.Timeout)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "no way to find the device",
			mutate:  func(c *Config) { c.Scan.NameMatch = "" },
			wantErr: "name_match or address",
		},
		{
			name:    "zero scan timeout",
			mutate:  func(c *Config) { c.Scan.Timeout = 0 },
			wantErr: "scan: timeout",
		},
		{
			name:    "unknown family",
			mutate:  func(c *Config) { c.Device.Family = "terea" },
			wantErr: "unknown device family",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging: unknown format",
		},
		{
			name:    "mqtt without broker",
			mutate:  func(c *Config) { c.MQTT.Enabled = true },
			wantErr: "broker is required",
		},
		{
			name: "mqtt qos out of range",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker = "tcp://localhost:1883"
				c.MQTT.QoS = 3
			},
			wantErr: "qos 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
