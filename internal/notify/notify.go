// Package notify announces finished page builds to interested listeners such
// as a preview server that reloads when a page changes.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// PageBuiltEvent describes one written page.
type PageBuiltEvent struct {
	BuildID         string    `json:"build_id"`
	Page            string    `json:"page"`
	Path            string    `json:"path"`
	Fingerprint     string    `json:"fingerprint"`
	Status          string    `json:"status"`
	MissingMetadata []string  `json:"missing_metadata,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Notifier receives page build events. Implementations must not fail a build:
// errors are returned for logging only.
type Notifier interface {
	PageBuilt(ctx context.Context, event PageBuiltEvent) error
	Close() error
}

// NoopNotifier discards events.
type NoopNotifier struct{}

func (NoopNotifier) PageBuilt(context.Context, PageBuiltEvent) error { return nil }
func (NoopNotifier) Close() error                                    { return nil }

// publisher is the subset of *nats.Conn the notifier uses.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSNotifier publishes events as JSON on a NATS subject.
type NATSNotifier struct {
	conn    publisher
	subject string
}

// NewNATSNotifier connects to url and publishes on subject.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("nats subject is required")
	}
	conn, err := nats.Connect(url,
		nats.Name("docpage"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS notifier connected", "url", url, "subject", subject)
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

// PageBuilt publishes event and waits until the server has received it.
func (n *NATSNotifier) PageBuilt(ctx context.Context, event PageBuiltEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	slog.Debug("Published page built event", "page", event.Page, "subject", n.subject)
	return nil
}

// Close drops the connection.
func (n *NATSNotifier) Close() error {
	n.conn.Close()
	return nil
}
