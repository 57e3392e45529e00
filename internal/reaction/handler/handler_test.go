package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"confide/internal/comment"
	"confide/internal/confession"
	"confide/internal/platform/metrics"
	"confide/internal/reaction"
	dErrors "confide/pkg/domain-errors"
	"confide/pkg/testutil"
)

type noopEvents struct{}

func (noopEvents) CommentReactionUpdated(uuid.UUID, uuid.UUID, string, reaction.Action, string) {}

type ReactionHandlerSuite struct {
	suite.Suite
	router       chi.Router
	confessions  *confession.InMemoryStore
	comments     *comment.InMemoryStore
	confessionID uuid.UUID
	commentID    uuid.UUID
}

func TestReactionHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReactionHandlerSuite))
}

func (s *ReactionHandlerSuite) SetupTest() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.confessions = confession.NewInMemoryStore()
	s.comments = comment.NewInMemoryStore()

	s.confessionID = uuid.New()
	s.Require().NoError(s.confessions.Create(ctx, &confession.Confession{
		ID:        s.confessionID,
		Text:      "reacted to",
		Reactions: map[string]int{},
		CreatedAt: time.Now(),
	}))
	s.commentID = uuid.New()
	s.Require().NoError(s.comments.Create(ctx, &comment.Comment{
		ID:           s.commentID,
		ConfessionID: s.confessionID,
		Text:         "reacted to as well",
		Username:     "GoldIbex777",
		Reactions:    map[string]int{},
		CreatedAt:    time.Now(),
	}))

	service := reaction.NewService(
		reaction.NewInMemoryStore(),
		reaction.NewCounterMaintainer(s.confessions, s.comments),
		noopEvents{},
		logger,
		metrics.NewForTest(),
		reaction.Config{DefaultEmoji: "👍"},
	)

	s.router = chi.NewRouter()
	New(service, logger).Register(s.router)
}

func (s *ReactionHandlerSuite) react(path string, body map[string]any) *reaction.Result {
	s.T().Helper()
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, path, body)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	return testutil.UnmarshalResponse[reaction.Result](s.T(), rr)
}

func (s *ReactionHandlerSuite) TestConfessionReact() {
	userID := uuid.NewString()

	s.Run("first reaction without emoji records the default", func() {
		result := s.react("/api/confessions/react", map[string]any{
			"confessionId": s.confessionID.String(),
			"userId":       userID,
		})
		s.Equal(reaction.ActionAdded, result.Action)
		s.Equal("👍", result.Emoji)
	})

	s.Run("repeating the same emoji is unchanged", func() {
		result := s.react("/api/confessions/react", map[string]any{
			"confessionId": s.confessionID.String(),
			"userId":       userID,
			"emoji":        "👍",
		})
		s.Equal(reaction.ActionUnchanged, result.Action)
	})

	s.Run("aggregate shows one reaction", func() {
		c, err := s.confessions.FindByID(context.Background(), s.confessionID)
		s.Require().NoError(err)
		s.Equal(map[string]int{"👍": 1}, c.Reactions)
	})

	s.Run("missing confessionId is a bad request", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/confessions/react",
			map[string]any{"userId": userID})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("missing userId is a bad request", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/confessions/react",
			map[string]any{"confessionId": s.confessionID.String()})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("unknown confession is not found", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/confessions/react",
			map[string]any{"confessionId": uuid.NewString(), "userId": userID, "emoji": "🔥"})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *ReactionHandlerSuite) TestCommentReact() {
	userID := uuid.NewString()

	result := s.react("/api/comment/react", map[string]any{
		"commentId": s.commentID.String(),
		"userId":    userID,
		"emoji":     "😂",
	})
	s.Equal(reaction.ActionAdded, result.Action)

	result = s.react("/api/comment/react", map[string]any{
		"commentId": s.commentID.String(),
		"userId":    userID,
		"emoji":     "❤️",
	})
	s.Equal(reaction.ActionUpdated, result.Action)
	s.Equal("😂", result.OldEmoji)

	c, err := s.comments.FindByID(context.Background(), s.commentID)
	s.Require().NoError(err)
	s.Equal(map[string]int{"❤️": 1}, c.Reactions)
}

func (s *ReactionHandlerSuite) TestHasReacted() {
	userID := uuid.New()
	s.react("/api/comment/react", map[string]any{
		"commentId": s.commentID.String(),
		"userId":    userID.String(),
		"emoji":     "👍",
	})

	s.Run("reports an active reaction", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet,
			"/api/comment/"+s.commentID.String()+"/reaction/"+userID.String())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertJSONContains(s.T(), rr, "hasReacted", true)
	})

	s.Run("reports no reaction for another user", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet,
			"/api/comment/"+s.commentID.String()+"/reaction/"+uuid.NewString())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		testutil.AssertJSONContains(s.T(), rr, "hasReacted", false)
	})
}
