// Package apperr defines the fatal error categories of a collector run.
//
//	ConfigurationError   - the mapping file is missing or unusable, or a
//	                       configuration value is invalid. Exit code 1.
//	ErrRemoteUnavailable - the area listing could not be fetched. Exit code 1.
//
// Per-query fetch failures never surface here; they degrade to missing data.
package apperr

import (
	"errors"
	"fmt"
)

// ErrRemoteUnavailable is returned when the one-time area listing fails.
var ErrRemoteUnavailable = errors.New("remote area listing unavailable")

// ConfigurationError reports a problem with local inputs or settings.
type ConfigurationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error"
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Configf creates a ConfigurationError for path with a formatted reason.
func Configf(path, format string, args ...any) error {
	return &ConfigurationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// IsConfiguration reports whether err is (or wraps) a *ConfigurationError.
func IsConfiguration(err error) bool {
	var c *ConfigurationError
	return errors.As(err, &c)
}
