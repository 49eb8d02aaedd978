// Package events carries idea-collection change notifications between the
// store and stream subscribers, over an in-process NATS server.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/10xdev4u-alt/plan/internal/store"
)

// SubjectIdeaChanges is the subject all idea change events flow through.
const SubjectIdeaChanges = "ideas.changes"

// Type classifies a change event.
type Type string

const (
	TypeInsert Type = "insert"
	TypeUpdate Type = "update"
	TypeDelete Type = "delete"
)

// Event is a single change to the idea collection. Delivery is
// at-least-once with no ordering guarantee; consumers needing a consistent
// view re-read the store.
type Event struct {
	Type Type       `json:"type"`
	Idea store.Idea `json:"idea"`
}

// Bus wraps an embedded NATS server and a client connection to it.
type Bus struct {
	srv    *natsserver.Server
	nc     *nats.Conn
	logger *zap.Logger
}

// NewBus starts an embedded NATS server on a random localhost port and
// connects to it.
func NewBus(logger *zap.Logger) (*Bus, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create nats server: %w", err)
	}
	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		srv.Shutdown()
		return nil, fmt.Errorf("nats server not ready")
	}

	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	logger.Info("change bus started", zap.String("url", srv.ClientURL()))
	return &Bus{srv: srv, nc: nc, logger: logger}, nil
}

// PublishIdeaChange emits a change event. Failures are returned so callers
// can log them, but a missed notification is never fatal: subscribers fall
// back to re-fetching.
func (b *Bus) PublishIdeaChange(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.nc.Publish(SubjectIdeaChanges, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// SubscribeIdeaChanges delivers each change event to handler until the
// returned subscription is unsubscribed. Undecodable messages are dropped
// with a log line.
func (b *Bus) SubscribeIdeaChanges(handler func(Event)) (*nats.Subscription, error) {
	sub, err := b.nc.Subscribe(SubjectIdeaChanges, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			b.logger.Warn("dropping malformed change event", zap.Error(err))
			return
		}
		handler(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}

// Close flushes and tears down the client and the embedded server.
func (b *Bus) Close() {
	if b.nc != nil {
		_ = b.nc.Flush()
		b.nc.Close()
	}
	if b.srv != nil {
		b.srv.Shutdown()
		b.srv.WaitForShutdown()
	}
}
