package config

import "github.com/nats-io/nats.go"

// Default values applied to unset fields.
const (
	DefaultStorePath      = "specreplay.db"
	DefaultCaptureSubject = "specreplay.interactions"
	DefaultCaptureOutput  = "-"
	DefaultMetricsAddr    = ":9090"
	DefaultMetricsPath    = "/metrics"
	DefaultInitialDelay   = "1s"
	DefaultMaxDelay       = "30s"
	DefaultMaxRetries     = 5
)

func applyDefaults(cfg *Config) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}

	if cfg.Capture.NATSURL == "" {
		cfg.Capture.NATSURL = nats.DefaultURL
	}
	if cfg.Capture.Subject == "" {
		cfg.Capture.Subject = DefaultCaptureSubject
	}
	if cfg.Capture.Output == "" {
		cfg.Capture.Output = DefaultCaptureOutput
	}
	if cfg.Capture.ArchiveStream != "" && cfg.Capture.ArchiveSubject == "" {
		cfg.Capture.ArchiveSubject = cfg.Capture.Subject + ".archive"
	}

	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = DefaultMetricsAddr
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}

	if cfg.Retry.Backoff == "" {
		cfg.Retry.Backoff = RetryBackoffLinear
	}
	if cfg.Retry.InitialDelay == "" {
		cfg.Retry.InitialDelay = DefaultInitialDelay
	}
	if cfg.Retry.MaxDelay == "" {
		cfg.Retry.MaxDelay = DefaultMaxDelay
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = DefaultMaxRetries
	}
}
