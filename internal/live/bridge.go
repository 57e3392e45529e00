package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	platformredis "confide/internal/platform/redis"
)

const channelPrefix = "live:"

// Bridge relays live messages through Redis pub/sub so every instance's hub
// sees every event, whichever instance handled the originating request.
type Bridge struct {
	redis  *platformredis.Client
	hub    *Hub
	logger *slog.Logger
}

// NewBridge returns nil when Redis is not configured; a nil bridge means
// single-instance fan-out straight to the local hub.
func NewBridge(redis *platformredis.Client, hub *Hub, logger *slog.Logger) *Bridge {
	if redis == nil {
		return nil
	}
	return &Bridge{redis: redis, hub: hub, logger: logger}
}

// Publish relays one message to every instance, this one included.
func (b *Bridge) Publish(ctx context.Context, topic string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode live message: %w", err)
	}
	if err := b.redis.Publish(ctx, channelPrefix+topic, payload).Err(); err != nil {
		return fmt.Errorf("publish live message: %w", err)
	}
	return nil
}

// Run subscribes to the live channel pattern and feeds received messages to
// the local hub until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.redis.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case received, ok := <-ch:
			if !ok {
				return nil
			}
			topic := strings.TrimPrefix(received.Channel, channelPrefix)
			var msg Message
			if err := json.Unmarshal([]byte(received.Payload), &msg); err != nil {
				b.logger.Error("failed to decode bridged live message",
					"channel", received.Channel, "error", err)
				continue
			}
			b.hub.Publish(topic, msg)
		}
	}
}
