package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"confide/internal/platform/metrics"
)

// Event is one live update mirrored to the durable stream. Consumers outside
// this process (analytics, moderation tooling) read the stream; connected
// websocket clients are served by the hub and never read from here.
type Event struct {
	Type    string    `json:"type"`
	Topic   string    `json:"topic"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// Mirror consumes events from a channel and produces them to Kafka. The
// inbox is bounded; a full inbox drops the event rather than blocking the
// originating request.
type Mirror struct {
	client  *kgo.Client
	inbox   chan Event
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewMirror returns nil when no brokers are configured; callers treat a nil
// mirror as mirroring disabled.
func NewMirror(brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) (*Mirror, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return &Mirror{
		client:  client,
		inbox:   make(chan Event, 1024),
		logger:  logger,
		metrics: m,
	}, nil
}

// Enqueue hands an event to the mirror without blocking.
func (m *Mirror) Enqueue(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case m.inbox <- e:
	default:
		m.metrics.EventsDropped.Inc()
		m.logger.Warn("stream event dropped, inbox full", "type", e.Type, "topic", e.Topic)
	}
}

// Run drains the inbox until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-m.inbox:
			m.produce(ctx, e)
		}
	}
}

func (m *Mirror) produce(ctx context.Context, e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		m.logger.Error("failed to encode stream event", "type", e.Type, "error", err)
		return
	}
	record := &kgo.Record{Key: []byte(e.Topic), Value: value}
	m.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			m.metrics.EventsDropped.Inc()
			m.logger.Error("failed to produce stream event", "type", e.Type, "error", err)
		}
	})
}

// Close flushes buffered records and releases the client.
func (m *Mirror) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.client.Flush(ctx); err != nil {
		m.logger.Error("failed to flush stream events", "error", err)
	}
	m.client.Close()
}
