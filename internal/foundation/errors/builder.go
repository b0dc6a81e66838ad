package errors

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of category c with that category's default
// severity and retry strategy.
func NewError(c ErrorCategory, message string) *ErrorBuilder {
	p := profileOf(c)
	return &ErrorBuilder{err: ClassifiedError{
		category: c,
		severity: p.severity,
		retry:    p.retry,
		message:  message,
	}}
}

// WrapError starts an error of category c caused by err.
func WrapError(err error, c ErrorCategory, message string) *ErrorBuilder {
	return NewError(c, message).WithCause(err)
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	if b.err.context == nil {
		b.err.context = ErrorContext{}
	}
	b.err.context[key] = value
	return b
}

// Fatal raises the severity so the CLI always logs the error.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

// Retryable marks the error as worth another attempt after a backoff.
func (b *ErrorBuilder) Retryable() *ErrorBuilder {
	b.err.retry = RetryBackoff
	return b
}

// Build returns the error. The builder must not be reused afterwards.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	return &e
}

func ConfigError(message string) *ErrorBuilder     { return NewError(CategoryConfig, message) }
func ValidationError(message string) *ErrorBuilder { return NewError(CategoryValidation, message) }
func NotFoundError(message string) *ErrorBuilder   { return NewError(CategoryNotFound, message) }

func AlreadyExistsError(message string) *ErrorBuilder {
	return NewError(CategoryAlreadyExists, message)
}

// StructuralViolation reports a broken tree invariant. It is never retried.
func StructuralViolation(message string) *ErrorBuilder {
	return NewError(CategoryStructure, message)
}

// PathCollisionError reports a path already taken in its scope; another
// slug may succeed.
func PathCollisionError(message string) *ErrorBuilder {
	return NewError(CategoryPathCollision, message)
}

func PublishError(message string) *ErrorBuilder { return NewError(CategoryPublish, message) }

// ConcurrencyError reports a conflicting writer. The operation is retried
// from a fresh read.
func ConcurrencyError(message string) *ErrorBuilder {
	return NewError(CategoryConcurrency, message)
}

func StoreError(message string) *ErrorBuilder      { return NewError(CategoryStore, message) }
func EventStoreError(message string) *ErrorBuilder { return NewError(CategoryEventStore, message) }
func NotifyError(message string) *ErrorBuilder     { return NewError(CategoryNotify, message) }
func RuntimeError(message string) *ErrorBuilder    { return NewError(CategoryRuntime, message) }
func InternalError(message string) *ErrorBuilder   { return NewError(CategoryInternal, message) }
