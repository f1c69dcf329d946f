package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

// newLogger builds the diagnostic logger: level from ARX_LOG,
// formatter from ARX_LOG_STYLE ("json" or text, the default).
func newLogger() *logrus.Logger {
	log := logrus.New()

	level := logrus.InfoLevel
	if v := os.Getenv("ARX_LOG"); v != "" {
		if l, err := logrus.ParseLevel(v); err == nil {
			level = l
		}
	}
	log.SetLevel(level)

	if os.Getenv("ARX_LOG_STYLE") == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{})
	}
	return log
}
