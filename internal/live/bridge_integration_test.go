//go:build integration

package live

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"confide/internal/platform/config"
	"confide/internal/platform/metrics"
	platformredis "confide/internal/platform/redis"
	"confide/pkg/testutil/containers"
)

type BridgeSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	client *platformredis.Client
	cancel context.CancelFunc
	hub    *Hub
	bridge *Bridge
}

func TestBridgeSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(BridgeSuite))
}

func (s *BridgeSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())

	client, err := platformredis.New(config.RedisConfig{
		URL:          s.redis.URL,
		PoolSize:     4,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	s.Require().NoError(err)
	s.client = client
	s.T().Cleanup(func() { _ = client.Close() })
}

func (s *BridgeSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.hub = NewHub(logger, metrics.NewForTest())
	s.bridge = NewBridge(s.client, s.hub, logger)
	s.Require().NotNil(s.bridge)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() { _ = s.bridge.Run(ctx) }()
}

func (s *BridgeSuite) TearDownTest() {
	s.cancel()
	s.hub.Close()
}

// drain waits for the next bridged message on the client's send buffer.
func (s *BridgeSuite) drain(c *Client) (Message, bool) {
	select {
	case msg := <-c.send:
		return msg, true
	case <-time.After(100 * time.Millisecond):
		return Message{}, false
	}
}

func (s *BridgeSuite) subscriber(topic string) *Client {
	c := NewClient(s.hub, nil, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.hub.Register(c)
	s.hub.Join(c, topic)
	return c
}

func (s *BridgeSuite) TestRoundTrip() {
	watcher := s.subscriber("category:work")

	// The pattern subscription is established asynchronously, so publish
	// until the first message lands.
	var got Message
	s.Require().Eventually(func() bool {
		err := s.bridge.Publish(context.Background(),
			"category:work", Message{Type: "confessionAdded", Topic: "category:work"})
		s.Require().NoError(err)
		msg, ok := s.drain(watcher)
		if ok {
			got = msg
		}
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	s.Equal("confessionAdded", got.Type)
	s.Equal("category:work", got.Topic)
}

func (s *BridgeSuite) TestTopicIsolation() {
	watcher := s.subscriber("confession:abc")
	bystander := s.subscriber("confession:xyz")

	s.Require().Eventually(func() bool {
		err := s.bridge.Publish(context.Background(),
			"confession:abc", Message{Type: "commentAdded", Topic: "confession:abc"})
		s.Require().NoError(err)
		_, ok := s.drain(watcher)
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	_, ok := s.drain(bystander)
	s.False(ok)
}
