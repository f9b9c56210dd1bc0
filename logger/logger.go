package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the standard logrus logger to write to stdout and a
// rotated log file under logDir. Production environments log JSON.
func Init(logDir, level, environment string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "app.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	logrus.SetOutput(io.MultiWriter(os.Stdout, logFile))
	if environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"level": level,
		}).Warn("Invalid log level, using info")
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	return nil
}
