package comment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"confide/internal/platform/metrics"
	"confide/internal/reaction"
	dErrors "confide/pkg/domain-errors"
	"confide/pkg/platform/sentinel"
)

// fakeConfessions tracks comment counters for known confessions and reports
// ErrNotFound for everything else.
type fakeConfessions struct {
	mu     sync.Mutex
	counts map[uuid.UUID]int
}

func newFakeConfessions() *fakeConfessions {
	return &fakeConfessions{counts: make(map[uuid.UUID]int)}
}

func (f *fakeConfessions) add(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[id] = 0
}

func (f *fakeConfessions) count(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[id]
}

func (f *fakeConfessions) AdjustComments(_ context.Context, id uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.counts[id]; !ok {
		return sentinel.ErrNotFound
	}
	f.counts[id] += delta
	return nil
}

type purgeCall struct {
	kind reaction.SubjectKind
	id   uuid.UUID
}

type fakePurger struct {
	mu    sync.Mutex
	calls []purgeCall
}

func (f *fakePurger) PurgeSubject(_ context.Context, kind reaction.SubjectKind, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, purgeCall{kind, id})
	return nil
}

type commentEvents struct {
	mu    sync.Mutex
	added []*Comment
}

func (e *commentEvents) CommentAdded(c *Comment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.added = append(e.added, c)
}

type CommentServiceSuite struct {
	suite.Suite
	ctx         context.Context
	store       *InMemoryStore
	confessions *fakeConfessions
	purger      *fakePurger
	events      *commentEvents
	service     *Service
}

func TestCommentServiceSuite(t *testing.T) {
	suite.Run(t, new(CommentServiceSuite))
}

func (s *CommentServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemoryStore()
	s.confessions = newFakeConfessions()
	s.purger = &fakePurger{}
	s.events = &commentEvents{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.store, s.confessions, s.purger, s.events, logger, metrics.NewForTest(), 280)
}

func (s *CommentServiceSuite) createComment(confessionID uuid.UUID, authorID *uuid.UUID, text string) *Comment {
	s.T().Helper()
	c, err := s.service.Create(s.ctx, CreateInput{
		ConfessionID: confessionID,
		Text:         text,
		Username:     "BlueFox123",
		AuthorID:     authorID,
	})
	s.Require().NoError(err)
	return c
}

func (s *CommentServiceSuite) TestCreate() {
	confessionID := uuid.New()
	s.confessions.add(confessionID)

	s.Run("creates a comment and bumps the counter", func() {
		c := s.createComment(confessionID, nil, "first!")
		s.Equal(confessionID, c.ConfessionID)
		s.Equal(1, s.confessions.count(confessionID))
		s.Require().Len(s.events.added, 1)
		s.Equal(c.ID, s.events.added[0].ID)
	})

	s.Run("rejects empty text", func() {
		_, err := s.service.Create(s.ctx, CreateInput{
			ConfessionID: confessionID, Text: "   ", Username: "BlueFox123",
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects text over the length bound", func() {
		long := ""
		for range 281 {
			long += "x"
		}
		_, err := s.service.Create(s.ctx, CreateInput{
			ConfessionID: confessionID, Text: long, Username: "BlueFox123",
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects missing username", func() {
		_, err := s.service.Create(s.ctx, CreateInput{
			ConfessionID: confessionID, Text: "hello",
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeBadRequest))
	})

	s.Run("missing confession yields not found and unwinds the comment", func() {
		missing := uuid.New()
		_, err := s.service.Create(s.ctx, CreateInput{
			ConfessionID: missing, Text: "orphan", Username: "BlueFox123",
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))

		page, err := s.service.ListByConfession(s.ctx, missing, 1, 10)
		s.Require().NoError(err)
		s.Zero(page.Total)
	})
}

func (s *CommentServiceSuite) TestEditAuthorGating() {
	confessionID := uuid.New()
	s.confessions.add(confessionID)
	authorID := uuid.New()
	c := s.createComment(confessionID, &authorID, "original")

	s.Run("author can edit", func() {
		edited, err := s.service.Edit(s.ctx, c.ID, authorID, "edited")
		s.Require().NoError(err)
		s.Equal("edited", edited.Text)
	})

	s.Run("another user gets forbidden, not not-found", func() {
		_, err := s.service.Edit(s.ctx, c.ID, uuid.New(), "hijacked")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("anonymous comments cannot be edited", func() {
		anon := s.createComment(confessionID, nil, "anonymous")
		_, err := s.service.Edit(s.ctx, anon.ID, authorID, "nope")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("missing comment yields not found", func() {
		_, err := s.service.Edit(s.ctx, uuid.New(), authorID, "ghost")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *CommentServiceSuite) TestDeleteCascade() {
	confessionID := uuid.New()
	s.confessions.add(confessionID)
	authorID := uuid.New()
	c := s.createComment(confessionID, &authorID, "doomed")
	s.Require().Equal(1, s.confessions.count(confessionID))

	s.Run("wrong author is rejected before anything is touched", func() {
		err := s.service.Delete(s.ctx, c.ID, uuid.New())
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
		s.Empty(s.purger.calls)
	})

	s.Run("delete purges the ledger then removes and decrements", func() {
		s.Require().NoError(s.service.Delete(s.ctx, c.ID, authorID))

		s.Require().Len(s.purger.calls, 1)
		s.Equal(reaction.SubjectComment, s.purger.calls[0].kind)
		s.Equal(c.ID, s.purger.calls[0].id)
		s.Equal(0, s.confessions.count(confessionID))
	})

	s.Run("second delete reports not found", func() {
		err := s.service.Delete(s.ctx, c.ID, authorID)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
		// The counter was not decremented twice.
		s.Equal(0, s.confessions.count(confessionID))
	})
}

func (s *CommentServiceSuite) TestListPagination() {
	confessionID := uuid.New()
	s.confessions.add(confessionID)

	for i := range 25 {
		c := s.createComment(confessionID, nil, fmt.Sprintf("comment %d", i))
		// Spread creation times so newest-first ordering is deterministic.
		c.CreatedAt = time.Now().Add(time.Duration(i) * time.Millisecond)
		s.store.mu.Lock()
		s.store.comments[c.ID].CreatedAt = c.CreatedAt
		s.store.mu.Unlock()
	}

	page, err := s.service.ListByConfession(s.ctx, confessionID, 1, 10)
	s.Require().NoError(err)
	s.Equal(25, page.Total)
	s.Len(page.Comments, 10)
	s.Equal("comment 24", page.Comments[0].Text)

	page, err = s.service.ListByConfession(s.ctx, confessionID, 3, 10)
	s.Require().NoError(err)
	s.Len(page.Comments, 5)
	s.Equal("comment 0", page.Comments[4].Text)

	page, err = s.service.ListByConfession(s.ctx, confessionID, 4, 10)
	s.Require().NoError(err)
	s.Empty(page.Comments)
	s.Equal(25, page.Total)
}

func (s *CommentServiceSuite) TestQuotedPreview() {
	confessionID := uuid.New()
	s.confessions.add(confessionID)
	authorID := uuid.New()

	quoted := s.createComment(confessionID, &authorID, "quote me")
	reply, err := s.service.Create(s.ctx, CreateInput{
		ConfessionID:    confessionID,
		Text:            "replying",
		Username:        "RedOwl456",
		QuotedCommentID: &quoted.ID,
	})
	s.Require().NoError(err)

	s.Run("quote resolves to a preview while the target lives", func() {
		page, err := s.service.ListByConfession(s.ctx, confessionID, 1, 10)
		s.Require().NoError(err)

		found := findComment(page.Comments, reply.ID)
		s.Require().NotNil(found)
		s.Require().NotNil(found.QuotedComment)
		s.Equal("quote me", found.QuotedComment.Text)
		s.Equal("BlueFox123", found.QuotedComment.Username)
	})

	s.Run("dangling quote is omitted, not an error", func() {
		s.Require().NoError(s.service.Delete(s.ctx, quoted.ID, authorID))

		page, err := s.service.ListByConfession(s.ctx, confessionID, 1, 10)
		s.Require().NoError(err)

		found := findComment(page.Comments, reply.ID)
		s.Require().NotNil(found)
		s.NotNil(found.QuotedCommentID)
		s.Nil(found.QuotedComment)
	})
}

func findComment(comments []*Comment, id uuid.UUID) *Comment {
	for _, c := range comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}
