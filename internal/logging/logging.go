// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is below slog.LevelDebug and logs every display server call.
const LevelTrace = slog.Level(-8)

// EnvLevel overrides the level chosen by flags.
const EnvLevel = "DISP_LOG_LEVEL"

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LevelName renders a level the way disp prints it.
func LevelName(l slog.Level) string {
	switch {
	case l <= LevelTrace:
		return "TRACE"
	case l <= slog.LevelDebug:
		return "DEBUG"
	case l <= slog.LevelInfo:
		return "INFO"
	case l <= slog.LevelWarn:
		return "WARNING"
	default:
		return "ERROR"
	}
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(LevelName(l))
	}
	return a
}

// Options selects where and how much to log.
type Options struct {
	Verbose bool
	// FilePath enables a rotated log file next to stderr output.
	FilePath string
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// New builds a text logger. The returned closer releases the log file and
// is never nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	if env := os.Getenv(EnvLevel); env != "" {
		l, err := ParseLevel(env)
		if err != nil {
			return nil, nopCloser{}, fmt.Errorf("%s: %w", EnvLevel, err)
		}
		level = l
	}

	var out io.Writer = os.Stderr
	if opts.Stderr != nil {
		out = opts.Stderr
	}
	var closer io.Closer = nopCloser{}
	if opts.FilePath != "" {
		f, err := OpenRotatingFile(opts.FilePath, DefaultMaxSizeMB, DefaultMaxFiles)
		if err != nil {
			return nil, nopCloser{}, err
		}
		out = io.MultiWriter(out, f)
		closer = f
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	})
	return slog.New(handler), closer, nil
}

// Trace logs at LevelTrace.
func Trace(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
