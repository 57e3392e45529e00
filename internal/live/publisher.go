package live

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"confide/internal/comment"
	"confide/internal/confession"
	"confide/internal/platform/metrics"
	"confide/internal/reaction"
	"confide/internal/stream"
)

// Topic keys. Clients join these explicitly; nothing is delivered to a topic
// nobody asked for.
const (
	// TopicAllConfessions receives every new confession regardless of category.
	TopicAllConfessions = "confessions"
	categoryPrefix      = "category:"
	confessionPrefix    = "confession:"
	reactionPrefix      = "reaction-"
)

func CategoryTopic(category string) string     { return categoryPrefix + category }
func ConfessionTopic(id uuid.UUID) string      { return confessionPrefix + id.String() }
func CommentReactionTopic(id uuid.UUID) string { return reactionPrefix + id.String() }

// Publisher is the single emission point the domain services talk to. Every
// event is fired after the originating mutation committed, fans out through
// the bridge when one is configured (falling back to the local hub), and is
// mirrored to the durable stream when that is configured. All paths are
// best-effort; a publishing failure never fails the mutation.
type Publisher struct {
	hub     *Hub
	bridge  *Bridge
	mirror  *stream.Mirror
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewPublisher(hub *Hub, bridge *Bridge, mirror *stream.Mirror, logger *slog.Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{
		hub:     hub,
		bridge:  bridge,
		mirror:  mirror,
		logger:  logger,
		metrics: m,
	}
}

// ConfessionAdded notifies the confession's category topic and the global
// topic.
func (p *Publisher) ConfessionAdded(c *confession.Confession) {
	if c.Category != "" {
		p.publish(CategoryTopic(c.Category), "confessionAdded", c)
	}
	p.publish(TopicAllConfessions, "newConfession", c)
}

// CommentAdded notifies subscribers watching the parent confession's thread.
func (p *Publisher) CommentAdded(c *comment.Comment) {
	p.publish(ConfessionTopic(c.ConfessionID), "commentAdded", c)
}

// CommentReactionUpdated notifies subscribers watching one comment's
// reactions.
func (p *Publisher) CommentReactionUpdated(commentID, userID uuid.UUID, emoji string, action reaction.Action, oldEmoji string) {
	payload := map[string]any{
		"commentId": commentID,
		"userId":    userID,
		"emoji":     emoji,
		"action":    action,
	}
	if oldEmoji != "" {
		payload["oldEmoji"] = oldEmoji
	}
	p.publish(CommentReactionTopic(commentID), "commentReactionUpdated", payload)
}

func (p *Publisher) publish(topic, msgType string, data any) {
	p.metrics.EventsPublished.WithLabelValues(msgType).Inc()
	msg := Message{Type: msgType, Topic: topic, Data: data}

	if p.bridge != nil {
		if err := p.bridge.Publish(context.Background(), topic, msg); err != nil {
			p.logger.Error("live bridge publish failed, delivering locally",
				"topic", topic, "type", msgType, "error", err)
			p.hub.Publish(topic, msg)
		}
	} else {
		p.hub.Publish(topic, msg)
	}

	if p.mirror != nil {
		p.mirror.Enqueue(stream.Event{Type: msgType, Topic: topic, Payload: data})
	}
}
