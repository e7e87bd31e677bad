// Package logging provides a singleton structured logger backed by zerolog.
//
// The TUI owns stdout, so Init sends everything to the log file in the data
// directory. Command-line runs use InitConsole for stderr output instead.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	instance    zerolog.Logger
	once        sync.Once
	initialized bool
)

// Init opens the log file at path and configures the singleton logger.
// Safe to call multiple times; only the first call has any effect.
func Init(path, level string) error {
	var err error
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var f *os.File
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}

		instance = zerolog.New(f).
			Level(parseLevel(level)).
			With().
			Timestamp().
			Logger()
		initialized = true
	})
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	return nil
}

// InitConsole configures the singleton for command-line runs, writing
// human-readable output to stderr.
func InitConsole(level string) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		instance = zerolog.New(out).
			Level(parseLevel(level)).
			With().
			Timestamp().
			Logger()
		initialized = true
	})
}

// Get returns the singleton logger. Before Init it returns a no-op logger,
// so packages can log unconditionally.
func Get() zerolog.Logger {
	if !initialized {
		return zerolog.Nop()
	}
	return instance
}

// Reset tears down the singleton so that the next Init call rebuilds it.
// Intended for use in tests only.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
