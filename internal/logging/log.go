// Package logging wraps zerolog with the small printf-style surface used
// across the service. Components take a *Logger built with New; code without
// a logger of its own uses the package-level helpers.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}
}

// Logger is a named zerolog logger.
type Logger struct {
	logger zerolog.Logger
	name   string
}

var (
	outputMu sync.RWMutex
	output   io.Writer = os.Stdout
)

// Setup sets the global level and output format. format is "json" (default)
// or "console". Unknown levels fall back to info.
func Setup(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var w io.Writer = os.Stdout
	if strings.EqualFold(format, "console") {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}
	SetOutput(w)
}

// SetOutput replaces the writer used by loggers created afterwards and by
// the package-level helpers.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	outputMu.Lock()
	output = w
	outputMu.Unlock()
	defaultLogger = newDefault()
}

func currentOutput() io.Writer {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return output
}

// New returns a logger tagged with name.
func New(name string) *Logger {
	return NewWithWriter(name, currentOutput())
}

// NewWithWriter returns a logger tagged with name that writes to w.
func NewWithWriter(name string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		logger: base(name, w).CallerWithSkipFrameCount(3).Logger(),
		name:   name,
	}
}

func base(name string, w io.Writer) zerolog.Context {
	return zerolog.New(w).With().Timestamp().Str("logger", name)
}

// newDefault builds the logger behind the package-level helpers. It carries
// no caller hook; withCaller adds the field.
func newDefault() *Logger {
	return &Logger{logger: base("default", currentOutput()).Logger(), name: "default"}
}

// Nop returns a logger that discards everything. Useful in tests.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop(), name: "nop"}
}

// Zerolog exposes the underlying logger for structured fields.
func (l *Logger) Zerolog() *zerolog.Logger { return &l.logger }

func (l *Logger) Debugf(format string, args ...any) { l.logger.Debug().Msgf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logger.Info().Msgf(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logger.Warn().Msgf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logger.Error().Msgf(format, args...) }

var defaultLogger = newDefault()

func withCaller(e *zerolog.Event) *zerolog.Event {
	if _, file, line, ok := runtime.Caller(2); ok {
		e = e.Str("caller", filepath.Base(file)+":"+strconv.Itoa(line))
	}
	return e
}

func Debugf(format string, args ...any) {
	withCaller(defaultLogger.logger.Debug()).Msgf(format, args...)
}

func Infof(format string, args ...any) {
	withCaller(defaultLogger.logger.Info()).Msgf(format, args...)
}

func Warnf(format string, args ...any) {
	withCaller(defaultLogger.logger.Warn()).Msgf(format, args...)
}

func Errorf(format string, args ...any) {
	withCaller(defaultLogger.logger.Error()).Msgf(format, args...)
}

// Fatalf logs and exits the process with status 1.
func Fatalf(format string, args ...any) {
	withCaller(defaultLogger.logger.Fatal()).Msgf(format, args...)
}
