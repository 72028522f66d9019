// Package logging provides the shared structured logger for the application.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// New returns the process-wide logger. Output goes to stderr; when the
// LOG_DIR environment variable is set, a rotating file writer is added.
func New() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()

		level := logrus.InfoLevel
		if os.Getenv("LOG_DEBUG") != "" {
			level = logrus.DebugLevel
		}
		logger.SetLevel(level)

		logger.SetFormatter(&formatter.Formatter{
			TimestampFormat: time.RFC3339,
			HideKeys:        false,
			NoColors:        os.Getenv("LOG_NO_COLOR") != "",
		})

		writers := []io.Writer{os.Stderr}
		if dir := os.Getenv("LOG_DIR"); dir != "" {
			writers = append(writers, &lumberjack.Logger{
				Filename:   filepath.Join(dir, "face-sentry.log"),
				LocalTime:  true,
				Compress:   true,
				MaxSize:    100, // megabytes
				MaxAge:     7,   // days
				MaxBackups: 3,
			})
		}
		logger.SetOutput(io.MultiWriter(writers...))
	})

	return logger
}
