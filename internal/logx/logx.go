// Package logx configures the process logger and hands out component loggers.
package logx

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Init sets level (debug|info|warn|error) and format (text|json) on the standard logger.
// Unknown levels fall back to info, unknown formats to text.
func Init(level, format string) {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(ParseLevel(level))
	logrus.SetFormatter(formatter(format))
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func formatter(format string) logrus.Formatter {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}
}

// For returns a logger tagged with the component name.
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}
