// Package config loads specreplay's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
)

// Config is the top-level configuration file.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Capture CaptureConfig `yaml:"capture"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
	Retry   RetryConfig   `yaml:"retry"`
}

// StoreConfig locates the event log.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite file, or ":memory:"
}

// CaptureConfig configures traffic capture.
type CaptureConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
	Queue   string `yaml:"queue,omitempty"` // queue group; empty subscribes every instance
	// Output receives accepted interactions as JSON lines; "-" is stdout.
	Output string `yaml:"output"`
	HTTPAddr string `yaml:"http_addr,omitempty"` // optional POST /interactions listener

	// ArchiveStream, when set, also publishes accepted interactions to a
	// JetStream stream on ArchiveSubject.
	ArchiveStream  string `yaml:"archive_stream,omitempty"`
	ArchiveSubject string `yaml:"archive_subject,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// RetryConfig configures reconnect backoff for capture.
type RetryConfig struct {
	Backoff      RetryBackoffMode `yaml:"backoff"`       // fixed|linear|exponential (default linear)
	InitialDelay string           `yaml:"initial_delay"` // duration string
	MaxDelay     string           `yaml:"max_delay"`     // duration string
	MaxRetries int `yaml:"max_retries"`
}

// InitialDelayDuration parses InitialDelay, returning 0 when unset or invalid.
func (r RetryConfig) InitialDelayDuration() time.Duration { return parseDuration(r.InitialDelay) }

// MaxDelayDuration parses MaxDelay, returning 0 when unset or invalid.
func (r RetryConfig) MaxDelayDuration() time.Duration { return parseDuration(r.MaxDelay) }

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from configPath. Variables from .env files are
// loaded first and ${VAR} references in the file are expanded.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes, normalizes, defaults and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Build()
	}

	for _, w := range normalize(&cfg) {
		fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
	}
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Default()
	example.Capture.NATSURL = "${NATS_URL}"
	example.Metrics.Enabled = true

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
