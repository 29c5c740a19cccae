package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options override the environment-driven defaults of New.
type Options struct {
	// Level is the minimum level; LOG_LEVEL is used when empty.
	Level string
	// Console forces human-readable output, like APP_ENV=dev.
	Console bool
	// File, when set, receives a rotated copy of every JSON log line.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	optsMu  sync.RWMutex
	current Options
	file    io.WriteCloser
)

// Configure sets process-wide logger options. Loggers created before the
// call keep their previous output.
func Configure(o Options) {
	optsMu.Lock()
	defer optsMu.Unlock()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	current = o
	if o.File != "" {
		file = &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
		}
	}
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger using the APP_ENV environment variable
// to determine the output format. All logs include the provided component field.
func NewZerologLogger(component string) Logger {
	optsMu.RLock()
	o, f := current, file
	optsMu.RUnlock()

	var w io.Writer = os.Stdout
	if o.Console || strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if f != nil {
		w = io.MultiWriter(w, f)
	}
	level := o.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	return NewWithWriter(component, w, level)
}

// NewWithWriter creates a ZerologLogger writing JSON lines to w. An empty or
// unknown level keeps debug output enabled.
func NewWithWriter(component string, w io.Writer, level string) *ZerologLogger {
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	if lvl, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		z = z.Level(lvl)
	}
	return &ZerologLogger{log: z}
}

// With returns a child logger carrying an extra field.
func (l *ZerologLogger) With(key string, value any) *ZerologLogger {
	return &ZerologLogger{log: l.log.With().Interface(key, value).Logger()}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
