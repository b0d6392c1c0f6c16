package log

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
)

// ZerologProvider is a LoggerProvider backed by a single zerolog.Logger.
// Level changes apply to every logger already handed out.
type ZerologProvider struct {
	base  zerolog.Logger
	level atomic.Int64
}

// NewZerologProvider creates a provider writing JSON lines to w.
// A nil writer means os.Stderr.
func NewZerologProvider(level Level, w io.Writer) *ZerologProvider {
	if w == nil {
		w = os.Stderr
	}
	p := &ZerologProvider{
		base: zerolog.New(w).Level(zerolog.TraceLevel).With().Timestamp().Logger(),
	}
	p.level.Store(int64(level))
	return p
}

// NewConsoleProvider creates a provider with zerolog's human-readable
// console writer, used when stderr is a terminal.
func NewConsoleProvider(level Level, w io.Writer) *ZerologProvider {
	if w == nil {
		w = os.Stderr
	}
	return NewZerologProvider(level, zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{p: p, logger: p.base}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{p: p, logger: p.base.With().Str(ComponentKey, name).Logger()}
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) {
	p.level.Store(int64(level))
}

// CaptureWarnings routes pkg/errors warnings into this provider. Warnings
// implementing zerolog.LogObjectMarshaler are logged with their fields.
func (p *ZerologProvider) CaptureWarnings() {
	warnLogger := p.base.With().Str(ComponentKey, "warnings").Logger()
	errors.SetZerologWarnFunc(func(w error) {
		if !p.enabled(LevelWarn) {
			return
		}
		ev := warnLogger.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(w.Error())
	})
}

func (p *ZerologProvider) enabled(level Level) bool {
	return int64(level) >= p.level.Load()
}

type zerologLogger struct {
	p      *ZerologProvider
	logger zerolog.Logger
}

func (z *zerologLogger) Debug(msg string, fields ...any) { z.emit(LevelDebug, msg, fields) }
func (z *zerologLogger) Info(msg string, fields ...any)  { z.emit(LevelInfo, msg, fields) }
func (z *zerologLogger) Warn(msg string, fields ...any)  { z.emit(LevelWarn, msg, fields) }
func (z *zerologLogger) Error(msg string, fields ...any) { z.emit(LevelError, msg, fields) }

func (z *zerologLogger) With(fields ...any) Logger {
	return &zerologLogger{p: z.p, logger: z.logger.With().Fields(fields).Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.p.enabled(level)
}

func (z *zerologLogger) emit(level Level, msg string, fields []any) {
	if !z.p.enabled(level) {
		return
	}
	ev := z.logger.WithLevel(toZerologLevel(level))
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(msg)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level >= LevelError:
		return zerolog.ErrorLevel
	case level >= LevelWarn:
		return zerolog.WarnLevel
	case level >= LevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
