// Package logger configures the process-wide structured logger. Importing
// it anywhere is enough to get JSON logs on stdout with ISO 8601 timestamps.
package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func init() {
	log.SetFormatter(&log.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
}

// Info logs at info level with optional structured fields.
func Info(message string, fields map[string]any) {
	log.WithFields(fields).Info(message)
}

// Warn logs at warning level with optional structured fields. Cache and
// queue failures land here: they are operator signals, never caller errors.
func Warn(message string, fields map[string]any) {
	log.WithFields(fields).Warn(message)
}

// Error logs at error level with optional structured fields.
func Error(message string, fields map[string]any) {
	log.WithFields(fields).Error(message)
}

// Fatal logs at fatal level and exits the process.
func Fatal(message string, fields map[string]any) {
	log.WithFields(fields).Fatal(message)
}
