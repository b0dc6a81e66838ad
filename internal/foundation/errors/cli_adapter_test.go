package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", ValidationError("bad slug").Build(), 2},
		{"path collision", PathCollisionError("path taken").Build(), 2},
		{"not found", NotFoundError("page not found").Build(), 4},
		{"config", ConfigError("bad config").Build(), 7},
		{"concurrency", ConcurrencyError("locked").Build(), 8},
		{"structure", StructuralViolation("cyclic move").Build(), 9},
		{"internal", InternalError("bug").Build(), 10},
		{"store", StoreError("disk full").Build(), 12},
		{"unclassified", errors.New("unknown"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestFormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)

	collision := PathCollisionError("path already in use").Build()
	structural := StructuralViolation("cyclic move").Build()

	assert.Empty(t, quiet.FormatError(nil))
	assert.Equal(t, "Error: path already in use", quiet.FormatError(collision))
	assert.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(structural))
	assert.Equal(t, "[structure] cyclic move", verbose.FormatError(structural))
	assert.Equal(t, "Error: boom", quiet.FormatError(errors.New("boom")))
}

func TestHandleError(t *testing.T) {
	var logs, stderr bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.stderr = &stderr
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(nil)
	assert.Equal(t, -1, code, "nil must not exit")

	adapter.HandleError(NotFoundError("page not found").WithContext("page_id", 9).Build())
	assert.Equal(t, 4, code)
	assert.Equal(t, "Error: page not found\n", stderr.String())
	assert.Empty(t, logs.String(), "non-fatal errors are only logged when verbose")

	stderr.Reset()
	adapter.HandleError(ConfigError("no sites configured").Build())
	assert.Equal(t, 7, code)
	assert.Contains(t, logs.String(), "no sites configured")
	assert.Contains(t, logs.String(), "category=config")
}
