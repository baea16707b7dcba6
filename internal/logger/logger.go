package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global logger. The terminal belongs to the UI, so
// output goes to logFile when one is given and is discarded otherwise.
// The returned function closes the log file.
func Setup(level, logFile string) (func(), error) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	var (
		output  io.Writer = io.Discard
		closeFn           = func() {}
	)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return closeFn, err
		}
		output = f
		closeFn = func() { _ = f.Close() }
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Logger()

	return closeFn, nil
}

// SetupConsole logs to stderr in human readable form, used by headless commands.
func SetupConsole(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// ParseLevel converts string level to zerolog.Level
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns a logger with the given component name
func Get(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
