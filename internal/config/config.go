package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset sources. Locations are filesystem paths or http(s) URLs.
	CrashDataLocation      string
	WardBoundariesLocation string
	LoadTimeout            time.Duration
	ExcludedYears          []string
	DefaultYear            string

	// Optional renderers.
	ChartOutputDir  string
	KafkaBrokers    []string
	KafkaViewsTopic string
	KafkaEnabled    bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	loadTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("LOAD_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOAD_TIMEOUT: %w", err)
	}
	if loadTimeout <= 0 {
		return nil, errors.New("LOAD_TIMEOUT must be positive")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CrashDataLocation:      sharedcfg.EnvOrDefault("CRASH_DATA_LOCATION", "data/crashes.csv"),
		WardBoundariesLocation: envOrDefaultAllowEmpty("WARD_BOUNDARIES_LOCATION", "data/wards.geojson"),
		LoadTimeout:            loadTimeout,
		ExcludedYears:          splitList(envOrDefaultAllowEmpty("EXCLUDED_YEARS", "2018")),
		DefaultYear:            os.Getenv("DEFAULT_YEAR"),

		ChartOutputDir:  os.Getenv("CHART_OUTPUT_DIR"),
		KafkaBrokers:    brokers,
		KafkaViewsTopic: sharedcfg.EnvOrDefault("KAFKA_VIEWS_TOPIC", "crash-dashboard-views"),
		KafkaEnabled:    len(brokers) > 0,
	}

	if cfg.CrashDataLocation == "" {
		return nil, errors.New("CRASH_DATA_LOCATION is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", cfg.LogFormat)
	}
	if cfg.KafkaEnabled && cfg.KafkaViewsTopic == "" {
		return nil, errors.New("KAFKA_VIEWS_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// envOrDefaultAllowEmpty is like EnvOrDefault but treats an explicitly empty
// variable as a value, so a feature can be switched off.
func envOrDefaultAllowEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
