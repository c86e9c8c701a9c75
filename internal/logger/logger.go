// Package logger builds the zap loggers shared by the binaries.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a textual log level.
type Level string

// Format selects the encoder.
type Format string

const (
	DebugLevel Level = "DEBUG"
	InfoLevel  Level = "INFO"
	WarnLevel  Level = "WARN"
	ErrorLevel Level = "ERROR"

	// FormatConsole is the human-readable zap console encoder.
	FormatConsole Format = "CONSOLE"
	// FormatJSON is structured JSON, one object per line.
	FormatJSON Format = "JSON"
	// FormatPretty is a compact console layout: [LEVEL] [component] message - k=v.
	FormatPretty Format = "PRETTY"
)

// Component names used with For.
const (
	ComponentRepository = "repository"
	ComponentCodec      = "codec"
	ComponentMigrate    = "migrate"
	ComponentStore      = "store"
	ComponentIndex      = "index"
	ComponentCLI        = "cli"
	ComponentMCP        = "mcp"
	ComponentTUI        = "tui"
)

var (
	mu   sync.Mutex
	base *zap.Logger
)

func parseLevel(level Level) zapcore.Level {
	switch strings.ToUpper(string(level)) {
	case string(DebugLevel):
		return zapcore.DebugLevel
	case string(WarnLevel):
		return zapcore.WarnLevel
	case string(ErrorLevel):
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseFormat returns the format named by s, or def when s is empty or unknown.
func ParseFormat(s string, def Format) Format {
	switch f := Format(strings.ToUpper(s)); f {
	case FormatConsole, FormatJSON, FormatPretty:
		return f
	}
	return def
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05 MST"))
}

// New creates a logger writing to w at the given level and format.
func New(level Level, format Format, w io.Writer) *zap.Logger {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch format {
	case FormatConsole, FormatPretty:
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncodeTime = timeEncoder
		cfg.ConsoleSeparator = " | "
		if format == FormatPretty {
			encoder = NewPrettyEncoder(cfg)
		} else {
			encoder = zapcore.NewConsoleEncoder(cfg)
		}
	default:
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(parseLevel(level)))
	return zap.New(core, zap.AddCaller())
}

// Init installs the process-wide logger used by For. Binaries call it once
// after reading configuration; LOGGING_LEVEL and LOGGING_FORMAT override the
// arguments.
func Init(level Level, format Format, w io.Writer) *zap.Logger {
	if v := os.Getenv("LOGGING_LEVEL"); v != "" {
		level = Level(v)
	}
	format = ParseFormat(os.Getenv("LOGGING_FORMAT"), format)

	l := New(level, format, w)
	mu.Lock()
	base = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	return l
}

// For returns a named logger for component. Before Init it discards output.
func For(component string) *zap.SugaredLogger {
	mu.Lock()
	l := base
	mu.Unlock()
	if l == nil {
		return zap.NewNop().Sugar().Named(component)
	}
	return l.Sugar().Named(component)
}

// Sync flushes the process-wide logger.
func Sync() {
	mu.Lock()
	l := base
	mu.Unlock()
	if l != nil {
		_ = l.Sync()
	}
}
