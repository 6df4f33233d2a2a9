package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs a completed HTTP exchange with the scraping service.
func LogRequest(l Logger, method, endpoint string, statusCode int, elapsed time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": statusCode,
		"duration_ms": elapsed.Milliseconds(),
	}

	switch {
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		l.WarnWithFields("HTTP request client error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogFetch logs the outcome of a single media fetch.
func LogFetch(l Logger, shortcode, mediaType, path string, err error) {
	fields := map[string]interface{}{
		"shortcode":  shortcode,
		"media_type": mediaType,
		"path":       path,
	}
	if err != nil {
		l.WithError(err).ErrorWithFields("Download failed", fields)
		return
	}
	l.InfoWithFields("Download completed", fields)
}

// LogRunStatus logs a status transition of a remote actor run.
func LogRunStatus(l Logger, runID, status string, waited time.Duration) {
	l.InfoWithFields("Actor run status", map[string]interface{}{
		"run_id": runID,
		"status": status,
		"waited": waited.Round(time.Second).String(),
	})
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, settings map[string]interface{}) {
	l = l.WithField("component", component)
	if len(settings) > 0 {
		l = l.WithFields(settings)
	}
	l.Debug("Component started")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) Debug(string)                                      {}
func (n nopLogger) Info(string)                                       {}
func (n nopLogger) Warn(string)                                       {}
func (n nopLogger) Error(string)                                      {}
func (n nopLogger) WithField(string, interface{}) Logger              { return n }
func (n nopLogger) WithFields(map[string]interface{}) Logger          { return n }
func (n nopLogger) WithError(error) Logger                            { return n }
func (n nopLogger) WithContext(context.Context) Logger                { return n }
func (n nopLogger) DebugWithFields(string, map[string]interface{})    {}
func (n nopLogger) InfoWithFields(string, map[string]interface{})     {}
func (n nopLogger) WarnWithFields(string, map[string]interface{})     {}
func (n nopLogger) ErrorWithFields(string, map[string]interface{})    {}
func (n nopLogger) GetZerolog() *zerolog.Logger                       { return nil }
