// Package cli implements the mdbook-wavedrom command-line interface.
//
// Without a subcommand the binary runs as an mdbook preprocessor: it reads
// the host's [context, book] payload from stdin and writes the rewritten
// book to stdout. Because stdout carries the protocol, all logging goes to
// stderr.
//
// # Commands
//
//   - supports: answer the host's renderer check through the exit code
//   - install: register the preprocessor in book.toml and copy the scripts
//   - preview: serve one chapter with its diagrams rendered
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, as does
// MDBOOK_WAVEDROM_LOG=debug for runs started by mdbook itself. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logEnv names the environment variable that sets the log level.
const logEnv = "MDBOOK_WAVEDROM_LOG"

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          appName,
	})
}

// LevelFromEnv returns the level named by MDBOOK_WAVEDROM_LOG, or info
// when it is unset or not a level name.
func LevelFromEnv() log.Level {
	return levelFromString(os.Getenv(logEnv))
}

func levelFromString(s string) log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Installed (12ms)".
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return log.Default()
	}
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
