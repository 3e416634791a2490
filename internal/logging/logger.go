package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"urldeck/internal/config"
)

// LogFileName is the JSON log written inside the configured log directory.
const LogFileName = "urldeck.log"

// DefaultMaxFileBytes is the size at which the log file is rotated to
// <name>.1 when a logger opens it.
const DefaultMaxFileBytes = 10 << 20

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Output receives human-facing records. Defaults to stderr.
	Output io.Writer
	// LogFile, when set, additionally receives every record as JSON.
	LogFile string
	// MaxFileBytes rotates LogFile when it has reached this size. Zero uses
	// DefaultMaxFileBytes; a negative value disables rotation.
	MaxFileBytes int64
	Development  bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New constructs a slog logger using the provided options. The returned
// closer releases the log file and must be closed once logging is done.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	addSource := opts.Development || levelVar.Level() <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var primary slog.Handler
	switch format {
	case "json":
		primary = newJSONHandler(out, levelVar, addSource)
	case "console":
		primary = newConsoleHandler(out, levelVar, addSource)
	default:
		return nil, nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	if strings.TrimSpace(opts.LogFile) == "" {
		return slog.New(primary), nopCloser{}, nil
	}

	maxBytes := opts.MaxFileBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxFileBytes
	}
	file, err := openLogFile(opts.LogFile, maxBytes)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(tee(primary, newJSONHandler(file, levelVar, true))), file, nil
}

// NewFromConfig creates a logger using application config values. Console
// output goes to out; a JSON copy is appended to the log directory.
func NewFromConfig(cfg *config.Config, out io.Writer) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Output: out})
	}
	opts := Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		opts.LogFile = filepath.Join(dir, LogFileName)
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string, maxBytes int64) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	if maxBytes > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() >= maxBytes {
			if err := os.Rename(path, path+".1"); err != nil {
				return nil, fmt.Errorf("rotate log file %s: %w", path, err)
			}
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
