package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// zapLogger adapts a zap.SugaredLogger to the Logger interface.
// Used by the long-running serve mode, where rotated structured logs
// are more useful than stderr lines.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewFileLogger creates a zap-backed Logger writing JSON lines to
// <logDir>/hostbench.log with lumberjack rotation.
func NewFileLogger(logDir string) (Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(logDir, "hostbench.log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	level := zap.InfoLevel
	if os.Getenv("HOSTBENCH_DEBUG") != "" {
		level = zap.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, level)
	return &zapLogger{s: zap.New(core).Sugar()}, nil
}

func (l *zapLogger) Debug(format string, args ...interface{}) { l.s.Debugf(format, args...) }
func (l *zapLogger) Info(format string, args ...interface{})  { l.s.Infof(format, args...) }
func (l *zapLogger) Warn(format string, args ...interface{})  { l.s.Warnf(format, args...) }
func (l *zapLogger) Error(format string, args ...interface{}) { l.s.Errorf(format, args...) }

// Sync flushes buffered log entries. Safe to call on any Logger; only the
// zap-backed implementation buffers.
func Sync(l Logger) {
	if zl, ok := l.(*zapLogger); ok {
		_ = zl.s.Sync()
	}
}
