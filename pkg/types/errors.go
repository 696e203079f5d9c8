package types

import "fmt"

// ErrorKind classifies fatal conditions.
type ErrorKind string

const (
	ConfigError      ErrorKind = "ConfigError"
	PatternFileError ErrorKind = "PatternFileError"
	InputOpenError   ErrorKind = "InputOpenError"
	ReadError        ErrorKind = "ReadError"
	LogOpenError     ErrorKind = "LogOpenError"
)

// Error carries a kind, the offending value (pattern text, filename or
// numeric argument) and the underlying cause.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Value string
	Err   error
}

// Errorf creates an Error of the given kind.
func Errorf(kind ErrorKind, value string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Value: value, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind around err.
func Wrap(kind ErrorKind, value string, err error, msg string) *Error {
	return &Error{Kind: kind, Value: value, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	s := e.Msg
	if e.Value != "" {
		s += ": " + e.Value
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Fatal reports whether the error ends the whole run rather than only the
// current target.
func (e *Error) Fatal() bool {
	return e.Kind != InputOpenError && e.Kind != ReadError
}
