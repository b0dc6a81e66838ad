package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagetree/internal/config"
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
)

type fakeStream struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeStream) Publish(_ context.Context, subject string, payload []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, payload)
	return &jetstream.PubAck{Stream: "PAGETREE", Sequence: uint64(len(f.subjects))}, nil
}

func TestNATSNotifierPublishesOnSiteSubject(t *testing.T) {
	stream := &fakeStream{}
	n := &NATSNotifier{js: stream, prefix: "pagetree.changes", timeout: time.Second}

	change := Change{OperationID: "op-1", Site: "docs.example", PageID: 4, Kind: KindPublished, Paths: []string{"about", "about/team"}}
	require.NoError(t, n.Notify(t.Context(), change))

	require.Len(t, stream.subjects, 1)
	assert.Equal(t, "pagetree.changes.docs_example.published", stream.subjects[0])

	var got Change
	require.NoError(t, json.Unmarshal(stream.payloads[0], &got))
	assert.Equal(t, change.Paths, got.Paths)
	assert.False(t, got.At.IsZero())
}

func TestNATSNotifierClassifiesPublishFailure(t *testing.T) {
	n := &NATSNotifier{js: &fakeStream{err: stderrors.New("no responders")}, prefix: "p", timeout: time.Second}
	err := n.Notify(t.Context(), Change{Site: "main", Kind: KindDeleted})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotify))
	assert.True(t, errors.IsRetryable(err))
}

func TestNewNATSNotifierRequiresEnabledConfig(t *testing.T) {
	_, err := NewNATSNotifier(&config.Config{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestMemoryNotifier(t *testing.T) {
	var n Notifier = &MemoryNotifier{}
	require.NoError(t, n.Notify(t.Context(), Change{Site: "a", Kind: KindMoved}))
	require.NoError(t, n.Notify(t.Context(), Change{Site: "b", Kind: KindTranslation}))
	changes := n.(*MemoryNotifier).Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, KindTranslation, changes[1].Kind)
	assert.NoError(t, NoopNotifier{}.Notify(t.Context(), Change{}))
}
