package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger constructs the service-wide logrus logger from configuration.
// Production environments get JSON output for log shipping; everything else
// keeps the human-readable text formatter.
func NewLogger(logLevel, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(ParseLogrusLevel(logLevel))

	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// ParseLogrusLevel converts a configured level string to a logrus level,
// defaulting to info on unknown input.
func ParseLogrusLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
