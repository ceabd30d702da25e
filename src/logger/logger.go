package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"series-proxy/src/models"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields are structured values attached to a log line.
type Fields map[string]interface{}

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name  string
	entry *logrus.Entry
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. A nil config logs JSON at info
// level to stdout.
func NewLogger(config *models.MConfig, name string) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	if config != nil {
		base.SetLevel(ParseLevel(config.LogLevel))
		if config.LogFormat == "text" {
			base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
		}
		if config.LogFile != "" {
			base.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   config.LogFile,
				MaxSize:    100, // MB
				MaxBackups: 5,
				MaxAge:     14, // days
				Compress:   true,
			}))
		}
	}

	return &Logger{
		name:  name,
		entry: base.WithField("component", name),
	}
}

// -----------------------------------------------------------------------------

// NewWithOutput builds a logger writing to w, mostly for tests.
func NewWithOutput(w io.Writer, level string, name string) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(ParseLevel(level))
	base.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{name: name, entry: base.WithField("component", name)}
}

// -----------------------------------------------------------------------------

// ParseLevel maps config levels (DEBUG, INFO, WARNING, ERROR) onto logrus.
func ParseLevel(level string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARNING", "WARN":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// -----------------------------------------------------------------------------

// Named returns a logger sharing the same sink under another component name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{name: name, entry: l.entry.WithField("component", name)}
}

// WithFields returns a logger that attaches fields to every line.
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{name: l.name, entry: l.entry.WithFields(logrus.Fields(fields))}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debug(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Info(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.entry.Warn(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Error(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.entry.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
