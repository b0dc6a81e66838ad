package monitor

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagetree/internal/model"
	"git.home.luguber.info/inful/pagetree/internal/tree"
)

// fakeAuditor reports one numchild violation per site until repaired.
type fakeAuditor struct {
	mu       sync.Mutex
	sites    []string
	broken   map[string]bool
	checks   int
	repairs  int
	checkErr error
}

func (f *fakeAuditor) Sites() []string { return f.sites }

func (f *fakeAuditor) Check(_ context.Context, site string) ([]tree.Violation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks++
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	if !f.broken[site] {
		return nil, nil
	}
	return []tree.Violation{{Scope: model.ScopeDraft, NodeID: 1, Path: "0001", Kind: tree.ViolationNumChild}}, nil
}

func (f *fakeAuditor) Repair(_ context.Context, site string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repairs++
	f.broken[site] = false
	return 1, nil
}

func (f *fakeAuditor) checkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New(nil, time.Second, false, nil)
	require.Error(t, err)
	_, err = New(&fakeAuditor{}, 0, false, nil)
	require.Error(t, err)
}

func TestRunOnceReportsWithoutRepair(t *testing.T) {
	a := &fakeAuditor{sites: []string{"a", "b"}, broken: map[string]bool{"b": true}}
	m, err := New(a, time.Minute, false, nil)
	require.NoError(t, err)

	reports := m.RunOnce(t.Context())
	require.Len(t, reports, 2)
	assert.Empty(t, reports[0].Violations)
	require.Len(t, reports[1].Violations, 1)
	assert.Equal(t, tree.ViolationNumChild, reports[1].Violations[0].Kind)
	assert.Zero(t, a.repairs)
	assert.Equal(t, reports, m.Last())
}

func TestRunOnceRepairs(t *testing.T) {
	a := &fakeAuditor{sites: []string{"a"}, broken: map[string]bool{"a": true}}
	m, err := New(a, time.Minute, true, nil)
	require.NoError(t, err)

	reports := m.RunOnce(t.Context())
	require.Len(t, reports, 1)
	assert.NoError(t, reports[0].Err)
	assert.Empty(t, reports[0].Violations, "violations are re-checked after the repair")
	assert.Equal(t, 1, reports[0].Rewritten)
	assert.Equal(t, 1, a.repairs)
	assert.Equal(t, 2, a.checks)
}

func TestRunOnceKeepsGoingAfterErrors(t *testing.T) {
	boom := stderrors.New("boom")
	a := &fakeAuditor{sites: []string{"a", "b"}, broken: map[string]bool{}, checkErr: boom}
	m, err := New(a, time.Minute, true, nil)
	require.NoError(t, err)

	reports := m.RunOnce(t.Context())
	require.Len(t, reports, 2)
	for _, r := range reports {
		require.ErrorIs(t, r.Err, boom)
	}
	assert.Zero(t, a.repairs)
}

func TestStartRunsImmediately(t *testing.T) {
	a := &fakeAuditor{sites: []string{"a"}, broken: map[string]bool{}}
	m, err := New(a, time.Hour, false, nil)
	require.NoError(t, err)

	require.NoError(t, m.Start(t.Context()))
	t.Cleanup(func() { _ = m.Stop() })

	require.Eventually(t, func() bool { return a.checkCount() > 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestReconfigureReschedulesAndTogglesRepair(t *testing.T) {
	a := &fakeAuditor{sites: []string{"a"}, broken: map[string]bool{"a": true}}
	m, err := New(a, time.Hour, false, nil)
	require.NoError(t, err)

	require.Error(t, m.Reconfigure(t.Context(), 0, true))
	assert.Equal(t, time.Hour, m.Interval(), "a rejected change keeps the old interval")

	require.NoError(t, m.Start(t.Context()))
	t.Cleanup(func() { _ = m.Stop() })
	require.Eventually(t, func() bool { return a.checkCount() > 0 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Reconfigure(t.Context(), 20*time.Millisecond, true))
	assert.Equal(t, 20*time.Millisecond, m.Interval())

	// The hourly schedule would never run again within the test; the new
	// interval does, and with repair enabled it fixes the site.
	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.repairs > 0
	}, 5*time.Second, 10*time.Millisecond)
}
