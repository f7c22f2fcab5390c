package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data/crashes.csv", cfg.CrashDataLocation)
	assert.Equal(t, "data/wards.geojson", cfg.WardBoundariesLocation)
	assert.Equal(t, 30*time.Second, cfg.LoadTimeout)
	assert.Equal(t, []string{"2018"}, cfg.ExcludedYears)
	assert.Empty(t, cfg.DefaultYear)
	assert.Empty(t, cfg.ChartOutputDir)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "crash-dashboard-views", cfg.KafkaViewsTopic)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CRASH_DATA_LOCATION", "https://example.com/crashes.csv")
	t.Setenv("WARD_BOUNDARIES_LOCATION", "/srv/wards.geojson")
	t.Setenv("LOAD_TIMEOUT", "5s")
	t.Setenv("EXCLUDED_YEARS", "2018, 2026")
	t.Setenv("DEFAULT_YEAR", "2025")
	t.Setenv("CHART_OUTPUT_DIR", "/tmp/charts")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_VIEWS_TOPIC", "views")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://example.com/crashes.csv", cfg.CrashDataLocation)
	assert.Equal(t, "/srv/wards.geojson", cfg.WardBoundariesLocation)
	assert.Equal(t, 5*time.Second, cfg.LoadTimeout)
	assert.Equal(t, []string{"2018", "2026"}, cfg.ExcludedYears)
	assert.Equal(t, "2025", cfg.DefaultYear)
	assert.Equal(t, "/tmp/charts", cfg.ChartOutputDir)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "views", cfg.KafkaViewsTopic)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_EmptyValuesDisableOptionalFeatures(t *testing.T) {
	t.Setenv("WARD_BOUNDARIES_LOCATION", "")
	t.Setenv("EXCLUDED_YEARS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.WardBoundariesLocation)
	assert.Empty(t, cfg.ExcludedYears)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
	}{
		{"invalid shutdown timeout", "SHUTDOWN_TIMEOUT", "forever"},
		{"invalid load timeout", "LOAD_TIMEOUT", "soon"},
		{"non-positive load timeout", "LOAD_TIMEOUT", "0s"},
		{"invalid log format", "LOG_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envVal)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.envKey)
		})
	}
}
