package live

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"confide/internal/comment"
	"confide/internal/confession"
	"confide/internal/platform/metrics"
	"confide/internal/reaction"
)

type PublisherSuite struct {
	suite.Suite
	hub       *Hub
	publisher *Publisher
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewForTest()
	s.hub = NewHub(logger, m)
	s.publisher = NewPublisher(s.hub, nil, nil, logger, m)
}

func (s *PublisherSuite) subscribe(topic string) *Client {
	c := NewClient(s.hub, nil, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.hub.Register(c)
	s.hub.Join(c, topic)
	return c
}

func (s *PublisherSuite) drain(c *Client) []Message {
	var out []Message
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func (s *PublisherSuite) TestConfessionAdded() {
	categoryClient := s.subscribe(CategoryTopic("work"))
	globalClient := s.subscribe(TopicAllConfessions)

	s.publisher.ConfessionAdded(&confession.Confession{ID: uuid.New(), Category: "work"})

	got := s.drain(categoryClient)
	s.Require().Len(got, 1)
	s.Equal("confessionAdded", got[0].Type)

	got = s.drain(globalClient)
	s.Require().Len(got, 1)
	s.Equal("newConfession", got[0].Type)
}

func (s *PublisherSuite) TestUncategorizedConfessionSkipsCategoryTopic() {
	emptyCategory := s.subscribe(CategoryTopic(""))
	globalClient := s.subscribe(TopicAllConfessions)

	s.publisher.ConfessionAdded(&confession.Confession{ID: uuid.New()})

	s.Empty(s.drain(emptyCategory))
	s.Len(s.drain(globalClient), 1)
}

func (s *PublisherSuite) TestCommentAdded() {
	confessionID := uuid.New()
	watcher := s.subscribe(ConfessionTopic(confessionID))
	other := s.subscribe(ConfessionTopic(uuid.New()))

	s.publisher.CommentAdded(&comment.Comment{ID: uuid.New(), ConfessionID: confessionID})

	got := s.drain(watcher)
	s.Require().Len(got, 1)
	s.Equal("commentAdded", got[0].Type)
	s.Empty(s.drain(other))
}

func (s *PublisherSuite) TestCommentReactionUpdated() {
	commentID, userID := uuid.New(), uuid.New()
	watcher := s.subscribe(CommentReactionTopic(commentID))

	s.publisher.CommentReactionUpdated(commentID, userID, "❤️", reaction.ActionUpdated, "👍")

	got := s.drain(watcher)
	s.Require().Len(got, 1)
	s.Equal("commentReactionUpdated", got[0].Type)

	payload, ok := got[0].Data.(map[string]any)
	s.Require().True(ok)
	s.Equal(commentID, payload["commentId"])
	s.Equal("❤️", payload["emoji"])
	s.Equal(reaction.ActionUpdated, payload["action"])
	s.Equal("👍", payload["oldEmoji"])
}
