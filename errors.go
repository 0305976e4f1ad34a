package resilient

import (
	"errors"

	"github.com/vietddude/resilient/internal/core/config"
	"github.com/vietddude/resilient/internal/report"
)

var (
	// ErrUsage is returned when the API is used in a way it does not support.
	ErrUsage = errors.New("resilient: invalid usage")

	// ErrInvalidConfig matches every configuration error.
	ErrInvalidConfig = config.ErrInvalidConfig
)

// ConfigError describes an invalid configuration field.
type ConfigError = config.Error

// PersistenceError is logged when a variable dump could not be written.
// It is never returned.
type PersistenceError = report.PersistenceError

// IsTypeError reports whether err is a configuration value of the wrong type.
func IsTypeError(err error) bool {
	return config.IsKind(err, config.KindType)
}

// IsValueError reports whether err is a configuration value out of range.
func IsValueError(err error) bool {
	return config.IsKind(err, config.KindValue)
}
