// Package logger builds the process logger: logrus text output to stdout, optionally
// mirrored into a rotating log file.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	LogLevel string
	// LogFile enables file output when set
	LogFile      string
	LogFileSize  int
	LogFileCount int
	LogCompress  bool
}

// New creates a logger writing to out, and to the configured log file if any
func New(cfg Config, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(ParseLevel(cfg.LogLevel))

	if cfg.LogFile != "" {
		out = io.MultiWriter(out, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileSize, // megabytes
			MaxBackups: cfg.LogFileCount,
			MaxAge:     28, //days
			Compress:   cfg.LogCompress,
		})
	}
	log.SetOutput(out)
	return log
}

// ParseLevel maps a config level name onto a logrus level; unknown names mean info
func ParseLevel(level string) logrus.Level {
	switch {
	case strings.EqualFold(level, "debug"):
		return logrus.DebugLevel
	case strings.EqualFold(level, "warning"), strings.EqualFold(level, "warn"):
		return logrus.WarnLevel
	case strings.EqualFold(level, "error"):
		return logrus.ErrorLevel
	}
	return logrus.InfoLevel
}
