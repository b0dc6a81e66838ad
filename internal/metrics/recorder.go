package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultRejected ResultLabel = "rejected" // user-action errors: collisions, invalid transitions
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for page operations. Implementations
// must be safe for concurrent use.
type Recorder interface {
	ObserveOperation(op string, d time.Duration)
	IncOperationResult(op string, result ResultLabel)
	// AddCascade counts pages whose state changed as a side effect of op.
	AddCascade(op string, n int)
	SetTreeViolations(site, scope string, n int)
	IncRetry(op string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveOperation(string, time.Duration)  {}
func (NoopRecorder) IncOperationResult(string, ResultLabel)  {}
func (NoopRecorder) AddCascade(string, int)                  {}
func (NoopRecorder) SetTreeViolations(string, string, int)   {}
func (NoopRecorder) IncRetry(string)                         {}
