// Package logs configures the global structured logger.  Handlers log the
// real cause of a failure here (query, row id, driver error) while the HTTP
// response only carries an opaque message.
package logs

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the application-wide logger, initialised by Init.
var Logger = logrus.New()

// Init configures level and format from LOG_LEVEL and LOG_FORMAT.  JSON
// output is intended for prod; the default text formatter for local runs.
func Init() {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		Logger.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		Logger.SetLevel(logrus.WarnLevel)
	case "error":
		Logger.SetLevel(logrus.ErrorLevel)
	default:
		Logger.SetLevel(logrus.InfoLevel)
	}
	if os.Getenv("LOG_FORMAT") == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	}
	Logger.SetOutput(os.Stdout)
}

// WithField proxies to the global logger for call sites that only need a
// single field.
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithError proxies to the global logger.
func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}
