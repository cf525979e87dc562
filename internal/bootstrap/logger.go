package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"gopher-classifieds/internal/config"
)

// SetupLogger configures the standard logrus logger from the app section.
func SetupLogger(cfg config.AppConfig) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level failed: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)

	if strings.EqualFold(cfg.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}
	return nil
}
