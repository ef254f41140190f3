package pageseeder

import (
	"io"
	"sort"

	"github.com/hashicorp/go-hclog"
)

// HCLogger adapts an hclog.Logger to Logger.
type HCLogger struct {
	logger hclog.Logger
}

// NewHCLogger wraps logger. A nil logger discards everything.
func NewHCLogger(logger hclog.Logger) *HCLogger {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &HCLogger{logger: logger}
}

// NewDefaultLogger returns a named hclog logger writing to w at the given
// level ("trace", "debug", "info", "warn", "error").
func NewDefaultLogger(w io.Writer, level string, json bool) *HCLogger {
	return NewHCLogger(hclog.New(&hclog.LoggerOptions{
		Name:       "pageseeder",
		Level:      hclog.LevelFromString(level),
		Output:     w,
		JSONFormat: json,
	}))
}

// Debug implements Logger.
func (l *HCLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, pairs(fields)...)
}

// Info implements Logger.
func (l *HCLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, pairs(fields)...)
}

// Warn implements Logger.
func (l *HCLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, pairs(fields)...)
}

// Error implements Logger.
func (l *HCLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, pairs(fields)...)
}

// Named returns a sub-logger.
func (l *HCLogger) Named(name string) *HCLogger {
	return &HCLogger{logger: l.logger.Named(name)}
}

func pairs(fields map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	args := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, fields[k])
	}

	return args
}
