/* pkg/logger/fallback.go */

package logger

import (
	"fmt"
	"os"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var log *zap.Logger

// NewFallbackLogger logs to stderr only. Stdout carries command output.
func NewFallbackLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig(isTerminal(os.Stderr))),
		zapcore.Lock(os.Stderr),
		ParseLogLevel(os.Getenv("LOG_LEVEL")),
	)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// InitializeWithFallback tees console output with a JSON log file, or
// falls back to console only when no log path is writable. The result
// is installed as the zap and otelzap globals.
func InitializeWithFallback() {
	level := ParseLogLevel(os.Getenv("LOG_LEVEL"))

	path, writer, err := FindWritableLogPath(PlatformLogPaths())
	if err != nil {
		fmt.Fprintln(os.Stderr, "⚠️  No writable log path found. Logging to console only.")
		replaceGlobals(NewFallbackLogger())
		return
	}

	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig(isTerminal(os.Stderr))),
			zapcore.Lock(os.Stderr),
			level,
		),
		zapcore.NewCore(zapcore.NewJSONEncoder(DefaultJSONEncoderConfig()), writer, zapcore.DebugLevel),
	)

	replaceGlobals(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)))
	log.Debug("Logger initialized", zap.String("log_level", level.String()), zap.String("log_path", path))
}

// L returns the process logger, initialising the fallback if needed.
func L() *zap.Logger {
	if log == nil {
		replaceGlobals(NewFallbackLogger())
	}
	return log
}

// Sync flushes any buffered log entries. Should be called before the application exits.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}

func replaceGlobals(l *zap.Logger) {
	log = l
	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
