// Package jsoneerr defines the three error kinds that jsone surfaces to
// callers: SyntaxError, InterpreterError, and TemplateError (spec.md §7).
// Each is a distinct Go type so callers can discriminate with errors.As.
package jsoneerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// SyntaxError reports a malformed expression: bad tokens, an unterminated
// string, trailing input after a full parse, and similar lexical/grammar
// failures.
type SyntaxError struct {
	Message string
	cause   error
}

func (e *SyntaxError) Error() string { return e.Message }
func (e *SyntaxError) Unwrap() error { return e.cause }

// NewSyntaxError builds a SyntaxError with a formatted message.
func NewSyntaxError(format string, args ...any) *SyntaxError {
	return &SyntaxError{Message: fmt.Sprintf(format, args...)}
}

// WrapSyntaxError attaches cause to a new SyntaxError without losing it
// for errors.Unwrap/errors.Is/errors.As.
func WrapSyntaxError(cause error, format string, args ...any) *SyntaxError {
	return &SyntaxError{Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// InterpreterError reports a runtime failure while evaluating an
// expression: type mismatches, unknown identifiers, out-of-bounds
// indexing, bad built-in arguments.
type InterpreterError struct {
	Message string
	cause   error
}

func (e *InterpreterError) Error() string { return e.Message }
func (e *InterpreterError) Unwrap() error { return e.cause }

// NewInterpreterError builds an InterpreterError with a formatted message.
func NewInterpreterError(format string, args ...any) *InterpreterError {
	return &InterpreterError{Message: fmt.Sprintf(format, args...)}
}

// WrapInterpreterError attaches cause to a new InterpreterError.
func WrapInterpreterError(cause error, format string, args ...any) *InterpreterError {
	return &InterpreterError{Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// TemplateError reports malformed template semantics: an unknown `$op`, a
// forbidden sibling key, operator arity mistakes, or misuse of a deletion
// marker in a required position.
type TemplateError struct {
	Message string
	cause   error
}

func (e *TemplateError) Error() string { return e.Message }
func (e *TemplateError) Unwrap() error { return e.cause }

// NewTemplateError builds a TemplateError with a formatted message.
func NewTemplateError(format string, args ...any) *TemplateError {
	return &TemplateError{Message: fmt.Sprintf(format, args...)}
}

// WrapTemplateError attaches cause to a new TemplateError.
func WrapTemplateError(cause error, format string, args ...any) *TemplateError {
	return &TemplateError{Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}
