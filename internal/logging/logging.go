// Package logging configures the process-wide zerolog logger.
//
// In stdio MCP mode neither stdout nor stderr may carry log output, so log
// lines go to a rotating file instead.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log destination and verbosity.
type Options struct {
	// File receives log output when non-empty. Required in stdio mode.
	File string
	// Level: debug | info | warn | error. Defaults to info.
	Level string
	// Stderr additionally allows stderr output (SSE mode only).
	Stderr bool
}

// New builds a configured logger. When no destination is usable the logger
// discards everything rather than polluting the MCP transport.
func New(opts Options) zerolog.Logger {
	var writers []io.Writer

	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		})
	}
	if opts.Stderr {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
