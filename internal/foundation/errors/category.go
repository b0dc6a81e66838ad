package errors

// ErrorCategory routes an error to the caller that can act on it.
type ErrorCategory string

const (
	CategoryConfig        ErrorCategory = "config"
	CategoryValidation    ErrorCategory = "validation"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryAlreadyExists ErrorCategory = "already_exists"

	// CategoryStructure marks tree invariant violations such as cyclic moves
	// or exhausted path capacity.
	CategoryStructure     ErrorCategory = "structure"
	CategoryPathCollision ErrorCategory = "path_collision"
	CategoryPublish       ErrorCategory = "publish"

	// CategoryConcurrency is raised when the store detects a conflicting writer.
	CategoryConcurrency ErrorCategory = "concurrency"
	CategoryStore       ErrorCategory = "store"
	CategoryEventStore  ErrorCategory = "eventstore"
	CategoryNotify      ErrorCategory = "notify"
	CategoryRuntime     ErrorCategory = "runtime"
	CategoryInternal    ErrorCategory = "internal"
)

// ErrorSeverity is how far an error reaches.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// RetryStrategy tells the caller whether running the operation again helps.
type RetryStrategy string

const (
	RetryNever RetryStrategy = "never"
	// RetryBackoff: run the whole operation again from a fresh read.
	RetryBackoff RetryStrategy = "backoff"
	// RetryUserAction: only a different input can succeed.
	RetryUserAction RetryStrategy = "user"
)

// profile holds what a category implies unless a builder overrides it.
type profile struct {
	severity ErrorSeverity
	retry    RetryStrategy
	exitCode int
	// opaque categories are summarized on the CLI unless verbose.
	opaque bool
}

var profiles = map[ErrorCategory]profile{
	CategoryConfig:        {severity: SeverityFatal, retry: RetryNever, exitCode: 7},
	CategoryValidation:    {severity: SeverityError, retry: RetryUserAction, exitCode: 2},
	CategoryNotFound:      {severity: SeverityError, retry: RetryNever, exitCode: 4},
	CategoryAlreadyExists: {severity: SeverityError, retry: RetryUserAction, exitCode: 2},
	CategoryStructure:     {severity: SeverityFatal, retry: RetryNever, exitCode: 9, opaque: true},
	CategoryPathCollision: {severity: SeverityError, retry: RetryUserAction, exitCode: 2},
	CategoryPublish:       {severity: SeverityError, retry: RetryUserAction, exitCode: 2},
	CategoryConcurrency:   {severity: SeverityError, retry: RetryBackoff, exitCode: 8},
	CategoryStore:         {severity: SeverityError, retry: RetryNever, exitCode: 12},
	CategoryEventStore:    {severity: SeverityError, retry: RetryNever, exitCode: 12},
	CategoryNotify:        {severity: SeverityWarning, retry: RetryBackoff, exitCode: 8},
	CategoryRuntime:       {severity: SeverityFatal, retry: RetryNever, exitCode: 12},
	CategoryInternal:      {severity: SeverityFatal, retry: RetryNever, exitCode: 10, opaque: true},
}

func profileOf(c ErrorCategory) profile {
	if p, ok := profiles[c]; ok {
		return p
	}
	return profile{severity: SeverityError, retry: RetryNever, exitCode: 1}
}
