// Package monitoring holds the process-wide diagnostic logger.
package monitoring

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
	Level  string // trace, debug, info, warn, error
	Format string // console or json
	Writer io.Writer
}

// OptionsFromEnv reads EIS_LOG_LEVEL and EIS_LOG_FORMAT, falling back to
// info/console.
func OptionsFromEnv() Options {
	opt := Options{Level: "info", Format: "console"}
	if v := strings.TrimSpace(os.Getenv("EIS_LOG_LEVEL")); v != "" {
		opt.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("EIS_LOG_FORMAT")); v != "" {
		opt.Format = v
	}
	return opt
}

var (
	mu   sync.RWMutex
	root = newLogger(Options{Level: "info", Format: "console"})
)

// Init replaces the root logger. It may be called more than once; the CLI
// calls it after flags are parsed.
func Init(opt Options) {
	l := newLogger(opt)
	mu.Lock()
	root = l
	mu.Unlock()
}

// Logger returns the root logger.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &root
}

// Named returns a child logger tagged with a component field.
func Named(component string) *zerolog.Logger {
	l := Logger().With().Str("component", component).Logger()
	return &l
}

func newLogger(opt Options) zerolog.Logger {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if strings.ToLower(opt.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: opt.Writer != nil}
	}
	return zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logf is the package-level diagnostic logger. It defaults to the root
// logger at info level but may be replaced by SetLogger. Tests or production
// code can redirect or mute it.
var Logf func(format string, v ...interface{}) = defaultLogf

func defaultLogf(format string, v ...interface{}) {
	Logger().Info().Msgf(format, v...)
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
