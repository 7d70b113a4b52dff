package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrMalformedEvent   = errors.New("malformed event")
	ErrUnknownKey       = errors.New("unknown key")
	ErrMissingRequired  = errors.New("missing required field")
	ErrValidation       = errors.New("validation failed")
	ErrInconsistentData = errors.New("inconsistent data")
	ErrArchConsistency  = errors.New("arch consistency")
	ErrEmit             = errors.New("emit failed")
	ErrUnknownDocument  = errors.New("unknown document")
)

type ModulemdError struct {
	Kind    error
	Message string
	Line    int
	Column  int
	Err     error
}

func (e *ModulemdError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d, column %d)", msg, e.Line, e.Column)
	}
	if e.Err == nil {
		return msg
	} else {
		return fmt.Sprintf("%v: %v", msg, e.Err.Error())
	}
}

func (e *ModulemdError) Unwrap() error {
	return e.Err
}

func (e *ModulemdError) Wrap(err error) {
	e.Err = err
}

// Is matches the error kind. Missing required fields and arch mismatches
// are also validation failures.
func (e *ModulemdError) Is(target error) bool {
	if e.Kind == nil {
		return false
	}
	if (e.Kind == ErrMissingRequired || e.Kind == ErrArchConsistency) && target == ErrValidation {
		return true
	}
	return e.Kind == target
}

func newError(kind error, format string, args ...any) *ModulemdError {
	return &ModulemdError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewMalformedEvent(line, column int, format string, args ...any) *ModulemdError {
	err := newError(ErrMalformedEvent, format, args...)
	err.Line = line
	err.Column = column
	return err
}

func NewUnknownKey(line, column int, key string) *ModulemdError {
	err := newError(ErrUnknownKey, "Unexpected key in map: %s", key)
	err.Line = line
	err.Column = column
	return err
}

func NewMissingRequired(format string, args ...any) *ModulemdError {
	return newError(ErrMissingRequired, format, args...)
}

func NewValidation(format string, args ...any) *ModulemdError {
	return newError(ErrValidation, format, args...)
}

func NewInconsistentData(format string, args ...any) *ModulemdError {
	return newError(ErrInconsistentData, format, args...)
}

func NewArchConsistency(format string, args ...any) *ModulemdError {
	return newError(ErrArchConsistency, format, args...)
}

func NewEmit(format string, args ...any) *ModulemdError {
	return newError(ErrEmit, format, args...)
}

func NewUnknownDocument(format string, args ...any) *ModulemdError {
	return newError(ErrUnknownDocument, format, args...)
}

// IsParseError is true for failures raised while reading events.
func IsParseError(err error) bool {
	return errors.Is(err, ErrMalformedEvent) || errors.Is(err, ErrUnknownKey) || errors.Is(err, ErrUnknownDocument)
}
