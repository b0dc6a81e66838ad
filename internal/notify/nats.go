package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/pagetree/internal/config"
	"git.home.luguber.info/inful/pagetree/internal/foundation/errors"
	"git.home.luguber.info/inful/pagetree/internal/logfields"
)

// streamPublisher is the subset of jetstream.JetStream used for delivery.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSNotifier publishes changes to JetStream on
// <subject_prefix>.<site>.<kind>.
type NATSNotifier struct {
	conn    *nats.Conn
	js      streamPublisher
	prefix  string
	timeout time.Duration
}

// NewNATSNotifier connects to the server named in cfg.
func NewNATSNotifier(cfg *config.Config) (*NATSNotifier, error) {
	if cfg == nil || !cfg.Notify.Enabled {
		return nil, errors.ConfigError("notifications are disabled").Build()
	}

	conn, err := nats.Connect(cfg.Notify.URL, nats.Name("pagetree"))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNotify, "failed to connect to NATS").
			WithContext("url", cfg.Notify.URL).
			Retryable().
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryNotify, "failed to create JetStream context").Build()
	}

	slog.Info("NATS notifier initialized",
		"url", cfg.Notify.URL,
		"subject_prefix", cfg.Notify.SubjectPrefix)

	return &NATSNotifier{
		conn:    conn,
		js:      js,
		prefix:  cfg.Notify.SubjectPrefix,
		timeout: cfg.NotifyTimeout(),
	}, nil
}

// Subject returns the subject a change is published on.
func (n *NATSNotifier) Subject(change Change) string {
	return strings.Join([]string{n.prefix, subjectToken(change.Site), string(change.Kind)}, ".")
}

// Notify publishes change and waits for the stream acknowledgement.
func (n *NATSNotifier) Notify(ctx context.Context, change Change) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	data, err := json.Marshal(change)
	if err != nil {
		return errors.WrapError(err, errors.CategoryNotify, "failed to marshal change").Build()
	}

	subject := n.Subject(change)
	opts := []jetstream.PublishOpt{}
	if change.OperationID != "" {
		opts = append(opts, jetstream.WithMsgID(change.OperationID+"."+string(change.Kind)))
	}
	if _, err := n.js.Publish(ctx, subject, data, opts...); err != nil {
		return errors.WrapError(err, errors.CategoryNotify, "failed to publish change").
			WithContext("subject", subject).
			Retryable().
			Build()
	}

	slog.Debug("Published page change",
		logfields.Site(change.Site),
		logfields.PageID(change.PageID),
		slog.String("subject", subject),
		logfields.Count(len(change.Paths)))
	return nil
}

// Close drains and closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}

// subjectToken replaces characters with special meaning in NATS subjects.
func subjectToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ':
			return '_'
		}
		return r
	}, s)
}
