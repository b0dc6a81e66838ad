package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// ErrorContext is structured detail attached to an error for logs.
type ErrorContext map[string]any

// ClassifiedError is an error with a category, severity and retry strategy.
//
// Package level sentinels are ClassifiedErrors too; WithContext and
// WithCause return decorated copies that still match the sentinel under
// errors.Is.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

func (e *ClassifiedError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s] %s", e.category, e.message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.category, e.message, e.cause)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory      { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity      { return e.severity }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string              { return e.message }

// Context returns the attached detail. Callers must not modify it.
func (e *ClassifiedError) Context() ErrorContext { return e.context }

// WithContext returns a copy of e with key set in its context.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	c := e.derive()
	c.context[key] = value
	return c
}

// WithCause returns a copy of e wrapping cause.
func (e *ClassifiedError) WithCause(cause error) *ClassifiedError {
	c := e.derive()
	c.cause = cause
	return c
}

func (e *ClassifiedError) derive() *ClassifiedError {
	c := *e
	c.context = maps.Clone(e.context)
	if c.context == nil {
		c.context = ErrorContext{}
	}
	return &c
}

// Is matches any ClassifiedError with the same category and message, so a
// decorated copy matches its sentinel.
func (e *ClassifiedError) Is(target error) bool {
	t, ok := target.(*ClassifiedError)
	return ok && t.category == e.category && t.message == e.message
}

// AsClassified returns the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// HasCategory reports whether the first ClassifiedError in err's chain has
// category c.
func HasCategory(err error, c ErrorCategory) bool {
	ce, ok := AsClassified(err)
	return ok && ce.category == c
}

// GetCategory returns the category of err, CategoryInternal for
// unclassified errors.
func GetCategory(err error) ErrorCategory {
	if ce, ok := AsClassified(err); ok {
		return ce.category
	}
	return CategoryInternal
}

// IsRetryable reports whether running the operation again may succeed.
func IsRetryable(err error) bool {
	ce, ok := AsClassified(err)
	return ok && ce.retry == RetryBackoff
}
