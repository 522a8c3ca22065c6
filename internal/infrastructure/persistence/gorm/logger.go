package gorm

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// NewLogger routes GORM's query log through zap. level follows the
// application level names: debug logs every statement, warn logs slow
// queries and errors, error logs errors only.
func NewLogger(log *zap.Logger, level string, slowThreshold time.Duration) gormlogger.Interface {
	logLevel := gormlogger.Silent
	switch level {
	case "debug":
		logLevel = gormlogger.Info
	case "info", "warn":
		logLevel = gormlogger.Warn
	case "error":
		logLevel = gormlogger.Error
	}

	return gormlogger.New(
		&logWriter{logger: log.Named("gorm")},
		gormlogger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// logWriter implements GORM's Writer interface
type logWriter struct {
	logger *zap.Logger
}

// Printf implements the Writer interface
func (w *logWriter) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	// Log based on content
	switch {
	case strings.Contains(msg, "SLOW SQL"):
		w.logger.Warn("Slow query", zap.String("message", msg))
	case strings.Contains(msg, "error"), strings.Contains(msg, "ERROR"):
		w.logger.Error("Query error", zap.String("message", msg))
	default:
		w.logger.Debug("Query", zap.String("message", msg))
	}
}
