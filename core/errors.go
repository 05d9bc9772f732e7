package core

import "github.com/pkg/errors"

var (
	// ErrNotFound is the cause of every "resource does not exist" error.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a known caller lacks the privilege for an action.
	ErrForbidden = errors.New("permission denied")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NotFoundError wraps ErrNotFound with the kind of resource that is missing.
type NotFoundError struct {
	Resource string
}

func (err NotFoundError) Error() string { return err.Resource + " not found" }

func (err NotFoundError) Cause() error { return ErrNotFound }

func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
