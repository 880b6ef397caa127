package commands

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/specreplay/internal/config"
	"git.home.luguber.info/inful/specreplay/internal/eventstore"
	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
)

const defaultConfigPath = "specreplay.yaml"

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"specreplay.yaml" env:"SPECREPLAY_CONFIG"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Override log format (text, json)"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init     InitCmd    `cmd:"" help:"Write a starter configuration file"`
	Append   AppendCmd  `cmd:"" help:"Append RFC events to a specification's log"`
	Replay   ReplayCmd  `cmd:"" help:"Replay a specification and print its state"`
	Specs    SpecsCmd   `cmd:"" help:"List specifications in the event log"`
	GitState GitCmd     `cmd:"" name:"git-state" help:"Record the current git branch and commit for a specification"`
	Ingest   IngestCmd  `cmd:"" help:"Validate one HTTP interaction and print its normalized form"`
	Publish  PublishCmd `cmd:"" help:"Validate an HTTP interaction and publish it to the capture subject"`
	Capture  CaptureCmd `cmd:"" help:"Ingest HTTP interactions from NATS and HTTP"`

	cfg *config.Config
}

// AfterApply runs after flag parsing; loads configuration and sets up logging once.
func (c *CLI) AfterApply(kctx *kong.Context, g *Global) error {
	cfg := config.Default()
	if kctx.Command() != "init" {
		loaded, err := c.loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if c.LogFormat != "" {
		cfg.Logging.Format = config.NormalizeLogFormat(c.LogFormat)
	}
	c.cfg = cfg

	logger := newLogger(cfg.Logging, c.Verbose, os.Stderr)
	slog.SetDefault(logger)
	g.Logger = logger
	if g.Out == nil {
		g.Out = os.Stdout
	}
	return nil
}

// loadConfig reads the config file. A missing file at the default path is
// not an error; defaults are used instead.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.Config == defaultConfigPath {
		if _, err := os.Stat(c.Config); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(c.Config)
}

// Settings returns the loaded configuration, or defaults before AfterApply.
func (c *CLI) Settings() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

func newLogger(lc config.LoggingConfig, verbose bool, w io.Writer) *slog.Logger {
	level := lc.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func openStore(root *CLI) (*eventstore.SQLiteStore, error) {
	return eventstore.NewSQLiteStore(root.Settings().Store.Path)
}

func closeStore(s *eventstore.SQLiteStore) {
	if err := s.Close(); err != nil {
		slog.Warn("Failed to close event store", "error", err)
	}
}

// openInput opens path for reading; "-" is stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open input").
			WithContext("path", path).
			Build()
	}
	return f, nil
}

func readInput(path string) ([]byte, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = in.Close() }()
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read input").
			WithContext("path", path).
			Build()
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

