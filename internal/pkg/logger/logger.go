// Package logger configures logrus for the process and exposes a GORM logger
// that writes through it.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// Options controls where and how much is logged
type Options struct {
	File  string // rotating log file; empty logs to stdout only
	Level string // logrus level name
	JSON  bool
}

// Setup initializes the standard logrus logger. Output goes to stdout and,
// when a file is configured, to a rotating file as well.
func Setup(opts Options) {
	var out io.Writer = os.Stdout
	if opts.File != "" {
		_ = os.MkdirAll(filepath.Dir(opts.File), 0o755)
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 7,
			MaxAge:     7, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
	}
	logrus.SetOutput(out)

	if opts.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// Gorm returns a GORM logger backed by logrus. SQL is logged at Info only in
// debug mode; slow queries and errors are always reported.
func Gorm(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
