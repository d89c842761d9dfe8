// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	Level  string
	Format string // "console" or "json"
	Writer io.Writer
}

var (
	once sync.Once
	root zerolog.Logger
)

// FromEnv builds Options from LOG_LEVEL / LOG_FORMAT.
func FromEnv() Options {
	return Options{
		Level:  strings.ToLower(os.Getenv("LOG_LEVEL")),
		Format: strings.ToLower(os.Getenv("LOG_FORMAT")),
	}
}

// Init builds the root logger. Safe to call more than once; only the first
// call wins.
func Init(opt Options) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339

		var w io.Writer = os.Stdout
		if opt.Writer != nil {
			w = opt.Writer
		}
		if opt.Format != "json" {
			w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}

		root = zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp().Logger()
	})
}

// Get returns the root logger, initializing it from the environment if needed.
func Get() zerolog.Logger {
	Init(FromEnv())
	return root
}

func parseLevel(value string) zerolog.Level {
	switch value {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "", "info":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
