// Package logging holds the process-wide logrus logger used by every package.
package logging

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// DefaultLogger is the base logger. Packages derive their own entry from it
// with the logfields.LogSubsys field set.
var DefaultLogger = initializeDefaultLogger()

func initializeDefaultLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

// SetLogLevel updates the level of DefaultLogger.
func SetLogLevel(level logrus.Level) {
	DefaultLogger.SetLevel(level)
}

// SetLogLevelFromString parses level and applies it to DefaultLogger.
func SetLogLevelFromString(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	SetLogLevel(lvl)
	return nil
}

// ParseLevel converts a textual level ("debug", "info", ...) into a logrus.Level.
func ParseLevel(level string) (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// SetLogFormat switches DefaultLogger between "text" and "json" output.
func SetLogFormat(format string) error {
	switch format {
	case "", "text":
		DefaultLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		DefaultLogger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}
	return nil
}
