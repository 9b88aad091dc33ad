// Package logging provides the structured logger used throughout
// pixelbridge's client: a small leveled interface backed by zap, with logs
// rotated to disk by lumberjack.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity levels, ordered least to most severe, matching the shape of the
// level argument accepted by Log.
const (
	Debug int8 = iota
	Info
	Warning
	Error
	Fatal
)

// Logger is the logging capability pixelbridge's components take (driver,
// recorder, config, cmd/pixelbridge). A single implementation may fan out
// to multiple sinks.
type Logger interface {
	SetLevel(level int8)
	Log(level int8, message string, params ...interface{})
}

// Config configures the rotated log file lumberjack writes to.
type Config struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ZapLogger is a Logger backed by a zap.SugaredLogger writing to a
// lumberjack-rotated file.
type ZapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

func toZapLevel(level int8) zapcore.Level {
	switch level {
	case Debug:
		return zapcore.DebugLevel
	case Info:
		return zapcore.InfoLevel
	case Warning:
		return zapcore.WarnLevel
	case Error:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

// New builds a ZapLogger at the given initial level, rotating logs per cfg.
func New(cfg Config, level int8) *ZapLogger {
	sink := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
	atom := zap.NewAtomicLevelAt(toZapLevel(level))
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(sink), atom)
	logger := zap.New(core, zap.AddCaller())
	return &ZapLogger{sugar: logger.Sugar(), level: atom}
}

// SetLevel adjusts the minimum severity logged from this point forward.
func (l *ZapLogger) SetLevel(level int8) { l.level.SetLevel(toZapLevel(level)) }

// Log emits one structured record. params are alternating key/value pairs,
// matching zap's SugaredLogger convention.
func (l *ZapLogger) Log(level int8, message string, params ...interface{}) {
	switch level {
	case Debug:
		l.sugar.Debugw(message, params...)
	case Info:
		l.sugar.Infow(message, params...)
	case Warning:
		l.sugar.Warnw(message, params...)
	case Error:
		l.sugar.Errorw(message, params...)
	default:
		l.sugar.Fatalw(message, params...)
	}
}

// Sync flushes any buffered log entries; callers should defer it after New.
func (l *ZapLogger) Sync() error { return l.sugar.Sync() }
