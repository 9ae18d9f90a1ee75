package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/vitaminmoo/iqos-tool/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		verbose bool
		want    zapcore.Level
	}{
		{name: "default", cfg: config.LoggingConfig{}, want: zapcore.InfoLevel},
		{name: "warn json", cfg: config.LoggingConfig{Level: "warn", Format: "json"}, want: zapcore.WarnLevel},
		{name: "verbose wins", cfg: config.LoggingConfig{Level: "error"}, verbose: true, want: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg, tt.verbose)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want))
			assert.False(t, log.Core().Enabled(tt.want-1))
		})
	}
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, false)
	assert.Error(t, err)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iqos.log")
	log, err := New(config.LoggingConfig{Format: "json", File: path}, false)
	require.NoError(t, err)

	log.Info("hello")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
