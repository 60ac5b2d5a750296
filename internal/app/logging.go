package app

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging sets the global logrus level and formatter from cfg and
// directs output to w.
func ConfigureLogging(cfg *Config, w io.Writer) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(w)

	switch cfg.LogFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
