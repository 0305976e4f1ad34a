package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every configuration error.
var ErrInvalidConfig = errors.New("invalid retry configuration")

// ErrorKind separates wrong runtime types from out-of-range values.
type ErrorKind int

const (
	KindValue ErrorKind = iota
	KindType
)

func (k ErrorKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// Error is a configuration error for a single field.
type Error struct {
	Kind   ErrorKind
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error on %s: %s", ErrInvalidConfig, e.Kind, e.Field, e.Reason)
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalidConfig
}

// IsKind reports whether err is a configuration error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

func valueError(field, format string, args ...any) error {
	return &Error{Kind: KindValue, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func typeError(field string, want string, got any) error {
	return &Error{Kind: KindType, Field: field, Reason: fmt.Sprintf("expected %s, got %T", want, got)}
}
