// Package events publishes build reports to subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// ErrPublishFailed indicates an event that could not be delivered.
var ErrPublishFailed = errors.NetworkError("failed to publish event").Build()

// Publisher delivers events. Publish must not retain v.
type Publisher interface {
	Publish(ctx context.Context, v any) error
	Close() error
}

// NATSPublisher publishes JSON events on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NewNATSPublisher connects to url. Events go to subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		return nil, errors.ConfigError("event subject is required").Build()
	}
	conn, err := nats.Connect(url,
		nats.Name("sitebuilder"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).Build()
	}
	slog.Info("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return NewNATSPublisherFromConn(conn, subject), nil
}

// NewNATSPublisherFromConn publishes over an existing connection, which the
// publisher then owns.
func NewNATSPublisherFromConn(conn *nats.Conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (p *NATSPublisher) WithLogger(logger *slog.Logger) *NATSPublisher {
	p.logger = logger
	return p
}

// Publish marshals v to JSON, publishes it and waits for the server to
// acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, ErrPublishFailed.Message()).
			WithContext("subject", p.subject).Build()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, ErrPublishFailed.Message()).
			WithContext("subject", p.subject).Build()
	}
	p.logger.Debug("Published event", slog.String("subject", p.subject), slog.Int("bytes", len(data)))
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// Recorder keeps published events in memory, for tests and dry runs.
type Recorder struct {
	Events [][]byte
}

// Publish appends the JSON encoding of v.
func (r *Recorder) Publish(_ context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Events = append(r.Events, data)
	return nil
}

// Close is a no-op.
func (r *Recorder) Close() error { return nil }
