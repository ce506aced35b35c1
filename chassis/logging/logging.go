package logging

import (
	"io"
	"os"

	"github.com/freundallein/queuewatch/chassis/config"
	"github.com/sirupsen/logrus"
)

const (
	timeFormat = "2006-01-02 15:04:05"
)

var logger = logrus.NewEntry(logrus.New())

// Fields ...
type Fields logrus.Fields

// Init configures the package logger for a module.
// Output goes to stderr, stdout belongs to the console output of the commands.
func Init(module string, appCfg *config.AppConfig) {
	InitWithOutput(module, appCfg.LogLevel, os.Stderr)
}

// InitWithOutput ...
func InitWithOutput(module string, level string, out io.Writer) {
	customFormatter := &logrus.TextFormatter{}
	customFormatter.TimestampFormat = timeFormat
	customFormatter.FullTimestamp = true
	base := logrus.New()
	base.SetFormatter(customFormatter)
	base.SetOutput(out)
	base.SetLevel(ParseLevel(level))
	logger = base.WithFields(logrus.Fields{
		"module": module,
	})
	logger.WithFields(logrus.Fields{
		"event": "init_logger",
	}).Debug("logger initiated")
}

// ParseLevel maps a config level name to a logrus level, info by default.
func ParseLevel(level string) logrus.Level {
	switch level {
	case "error":
		return logrus.ErrorLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// WithFields ...
func WithFields(fields Fields) *logrus.Entry {
	return logger.WithFields(logrus.Fields(fields))
}

// Error ...
func Error(args ...interface{}) {
	logger.Error(args...)
}

// Warn ...
func Warn(args ...interface{}) {
	logger.Warn(args...)
}

// Info ...
func Info(args ...interface{}) {
	logger.Info(args...)
}

// Debug ...
func Debug(args ...interface{}) {
	logger.Debug(args...)
}
