package config

import "fmt"

// normalize case-folds enumerations and returns a warning for every value it
// changed or replaced.
func normalize(cfg *Config) []string {
	var warnings []string

	if raw := string(cfg.Logging.Level); raw != "" {
		if lvl := NormalizeLogLevel(raw); string(lvl) != raw {
			if _, known := logLevelNormalizer.Lookup(raw); !known {
				warnings = append(warnings, fmt.Sprintf("logging.level: unknown value %q, using %q", raw, lvl))
			}
			cfg.Logging.Level = lvl
		}
	}
	if raw := string(cfg.Logging.Format); raw != "" {
		if f := NormalizeLogFormat(raw); string(f) != raw {
			if _, known := logFormatNormalizer.Lookup(raw); !known {
				warnings = append(warnings, fmt.Sprintf("logging.format: unknown value %q, using %q", raw, f))
			}
			cfg.Logging.Format = f
		}
	}
	if raw := string(cfg.Retry.Backoff); raw != "" {
		mode := NormalizeRetryBackoff(raw)
		if mode == "" {
			warnings = append(warnings, fmt.Sprintf("retry.backoff: unknown value %q, using %q", raw, RetryBackoffLinear))
			mode = RetryBackoffLinear
		}
		cfg.Retry.Backoff = mode
	}
	return warnings
}
