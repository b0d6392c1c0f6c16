package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/YuminosukeSato/pumpit/pkg/errors"
)

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// Options configures SetupLogger.
type Options struct {
	Level   string    // "debug", "info", "warn" or "error"
	Output  io.Writer // defaults to os.Stderr; stdout is reserved for the report
	Console bool      // human-readable zerolog output instead of JSON
}

// SetupLogger installs the slog default handler and the global zerolog
// provider, and routes pkg/errors warnings into the provider.
func SetupLogger(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: level <= LevelDebug,
		Level:     slog.Level(level),
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr.Key = "severity"
			case slog.MessageKey:
				attr.Key = "message"
			}
			return attr
		},
	})
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))

	var provider *ZerologProvider
	if opts.Console {
		provider = NewConsoleProvider(level, out)
	} else {
		provider = NewZerologProvider(level, out)
	}
	provider.CaptureWarnings()
	SetProvider(provider)
	return nil
}

// ParseLevel converts a level name into a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.NewValidationError("log-level", "must be one of debug, info, warn, error", level)
	}
}

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
