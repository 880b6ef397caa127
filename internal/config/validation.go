package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/specreplay/internal/foundation"
)

var validator = foundation.NewValidatorChain(
	foundation.Field(func(c *Config) string { return c.Store.Path }, foundation.NotEmpty("store.path")),
	foundation.Field(func(c *Config) string { return c.Capture.Subject }, foundation.NotEmpty("capture.subject")),
	validateSubject,
	validateArchive,
	validateDurations,
	foundation.Field(func(c *Config) int { return c.Retry.MaxRetries }, foundation.InRange("retry.max_retries", 0, 100)),
	validateMetricsPath,
)

// Validate checks a normalized, defaulted configuration.
func Validate(cfg *Config) error {
	return validator.Validate(cfg).ToError()
}

func validateSubject(c *Config) foundation.ValidationResult {
	if strings.ContainsAny(c.Capture.Subject, " \t\r\n") {
		return foundation.Invalid(foundation.NewValidationError("capture.subject", "format", "must not contain whitespace"))
	}
	return foundation.Valid()
}

func validateArchive(c *Config) foundation.ValidationResult {
	if c.Capture.ArchiveStream == "" {
		return foundation.Valid()
	}
	if c.Capture.ArchiveSubject == c.Capture.Subject {
		return foundation.Invalid(foundation.NewValidationError("capture.archive_subject", "conflict", "must differ from capture.subject"))
	}
	if strings.ContainsAny(c.Capture.ArchiveStream, " .*>") {
		return foundation.Invalid(foundation.NewValidationError("capture.archive_stream", "format", "must be a plain stream name"))
	}
	return foundation.Valid()
}

func validateDurations(c *Config) foundation.ValidationResult {
	result := foundation.Valid()
	for _, f := range []struct{ field, raw string }{
		{"retry.initial_delay", c.Retry.InitialDelay},
		{"retry.max_delay", c.Retry.MaxDelay},
	} {
		if d, err := time.ParseDuration(f.raw); err != nil || d <= 0 {
			result = result.Combine(foundation.Invalid(
				foundation.NewValidationError(f.field, "duration", "must be a positive duration like 1s")))
		}
	}
	return result
}

func validateMetricsPath(c *Config) foundation.ValidationResult {
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return foundation.Invalid(foundation.NewValidationError("metrics.path", "format", "must start with /"))
	}
	return foundation.Valid()
}
