package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, DefaultStorePath, cfg.Store.Path)
	require.Equal(t, nats.DefaultURL, cfg.Capture.NATSURL)
	require.Equal(t, DefaultCaptureSubject, cfg.Capture.Subject)
	require.Equal(t, "-", cfg.Capture.Output)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, RetryBackoffLinear, cfg.Retry.Backoff)
	require.Equal(t, time.Second, cfg.Retry.InitialDelayDuration())
	require.Equal(t, 30*time.Second, cfg.Retry.MaxDelayDuration())
	require.NoError(t, Validate(cfg))
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("SPECREPLAY_TEST_NATS", "nats://broker:4222")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  path: /var/lib/specreplay/events.db
capture:
  nats_url: ${SPECREPLAY_TEST_NATS}
  subject: traffic.todo
  queue: ingestors
logging:
  level: DEBUG
  format: json
retry:
  backoff: Exponential
  initial_delay: 250ms
  max_retries: 3
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/specreplay/events.db", cfg.Store.Path)
	require.Equal(t, "nats://broker:4222", cfg.Capture.NATSURL)
	require.Equal(t, "traffic.todo", cfg.Capture.Subject)
	require.Equal(t, "ingestors", cfg.Capture.Queue)
	require.Equal(t, LogLevelDebug, cfg.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
	require.Equal(t, RetryBackoffExponential, cfg.Retry.Backoff)
	require.Equal(t, 250*time.Millisecond, cfg.Retry.InitialDelayDuration())
	require.Equal(t, 3, cfg.Retry.MaxRetries)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestParseUnknownEnumsFallBack(t *testing.T) {
	cfg, err := Parse([]byte("logging:\n  level: chatty\nretry:\n  backoff: random\n"))
	require.NoError(t, err)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, RetryBackoffLinear, cfg.Retry.Backoff)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"subject whitespace": "capture:\n  subject: \"a b\"\n",
		"bad duration":       "retry:\n  initial_delay: soon\n",
		"too many retries":   "retry:\n  max_retries: 1000\n",
		"metrics path":       "metrics:\n  enabled: true\n  path: metrics\n",
		"bad yaml":           "store: [",
		"archive subject":    "capture:\n  subject: cap\n  archive_stream: ARCHIVE\n  archive_subject: cap\n",
		"archive stream":     "capture:\n  archive_stream: a.b\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestArchiveSubjectDefaultsFromSubject(t *testing.T) {
	cfg, err := Parse([]byte("capture:\n  subject: traffic\n  archive_stream: TRAFFIC\n"))
	require.NoError(t, err)
	require.Equal(t, "traffic.archive", cfg.Capture.ArchiveSubject)
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specreplay.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	t.Setenv("NATS_URL", "nats://example:4222")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "nats://example:4222", cfg.Capture.NATSURL)
	require.True(t, cfg.Metrics.Enabled)
}

func TestNormalizeHelpers(t *testing.T) {
	require.Equal(t, RetryBackoffFixed, NormalizeRetryBackoff(" FIXED "))
	require.Equal(t, RetryBackoffMode(""), NormalizeRetryBackoff("bogus"))
	require.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	require.Equal(t, LogFormatText, NormalizeLogFormat("yaml"))
	require.Equal(t, LogLevelDebug.SlogLevel().String(), "DEBUG")
}
