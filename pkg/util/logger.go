package util

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. InitLogger reconfigures it in place.
var Log = logrus.New()

type LogConfig struct {
	Level  string
	Format string
	// File enables a rotating log file next to stdout when set.
	File string
}

func InitLogger(cfg LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if cfg.Format == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}
	Log.SetOutput(out)
}

// LogError logs an error with context
func LogError(message string, err error) {
	if err != nil {
		Log.WithError(err).Error(message)
	}
}

// LogInfo logs an informational message
func LogInfo(message string) {
	Log.Info(message)
}

// LogWarning logs a warning message
func LogWarning(message string) {
	Log.Warn(message)
}

// WithFields returns an entry carrying structured context.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
