package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryDefaults(t *testing.T) {
	tests := []struct {
		builder  *ErrorBuilder
		category ErrorCategory
		severity ErrorSeverity
		retry    RetryStrategy
	}{
		{ConfigError("x"), CategoryConfig, SeverityFatal, RetryNever},
		{ValidationError("x"), CategoryValidation, SeverityError, RetryUserAction},
		{NotFoundError("x"), CategoryNotFound, SeverityError, RetryNever},
		{AlreadyExistsError("x"), CategoryAlreadyExists, SeverityError, RetryUserAction},
		{StructuralViolation("x"), CategoryStructure, SeverityFatal, RetryNever},
		{PathCollisionError("x"), CategoryPathCollision, SeverityError, RetryUserAction},
		{PublishError("x"), CategoryPublish, SeverityError, RetryUserAction},
		{ConcurrencyError("x"), CategoryConcurrency, SeverityError, RetryBackoff},
		{NotifyError("x"), CategoryNotify, SeverityWarning, RetryBackoff},
		{InternalError("x"), CategoryInternal, SeverityFatal, RetryNever},
		{NewError("made_up", "x"), "made_up", SeverityError, RetryNever},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			err := tt.builder.Build()
			assert.Equal(t, tt.category, err.Category())
			assert.Equal(t, tt.severity, err.Severity())
			assert.Equal(t, tt.retry, err.RetryStrategy())
		})
	}
}

func TestBuilderOverrides(t *testing.T) {
	cause := errors.New("disk gone")
	err := WrapError(cause, CategoryStore, "write failed").
		Fatal().
		Retryable().
		WithContext("table", "draft_pages").
		Build()

	assert.Equal(t, SeverityFatal, err.Severity())
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "draft_pages", err.Context()["table"])
	assert.Equal(t, "[store] write failed: disk gone", err.Error())
}

func TestSentinelDecoration(t *testing.T) {
	sentinel := PathCollisionError("path already in use").Build()

	decorated := sentinel.WithContext("path", "home/about")
	caused := decorated.WithCause(errors.New("boom"))

	require.ErrorIs(t, decorated, sentinel)
	require.ErrorIs(t, caused, sentinel)
	assert.Empty(t, sentinel.Context(), "decorating must not touch the sentinel")
	assert.Nil(t, errors.Unwrap(sentinel))
	assert.Equal(t, "home/about", caused.Context()["path"])

	other := PathCollisionError("slug reserved").Build()
	assert.NotErrorIs(t, decorated, other)
}

func TestChainHelpers(t *testing.T) {
	wrapped := fmt.Errorf("publish page 7: %w", ConcurrencyError("database is locked").Build())

	ce, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Equal(t, "database is locked", ce.Message())
	assert.True(t, HasCategory(wrapped, CategoryConcurrency))
	assert.True(t, IsRetryable(wrapped))
	assert.Equal(t, CategoryConcurrency, GetCategory(wrapped))

	plain := errors.New("plain")
	assert.False(t, HasCategory(plain, CategoryInternal))
	assert.False(t, IsRetryable(plain))
	assert.Equal(t, CategoryInternal, GetCategory(plain))
}
