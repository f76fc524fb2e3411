package config

import (
	"os"

	"blogapp/global"

	"github.com/sirupsen/logrus"
)

func initLogger() {
	global.Logger = NewLogger(AppConfig)
}

// NewLogger builds the application logger. Production always logs JSON.
func NewLogger(cfg *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if cfg.IsProd() || cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
