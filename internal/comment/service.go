package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"confide/internal/platform/metrics"
	"confide/internal/reaction"
	dErrors "confide/pkg/domain-errors"
	"confide/pkg/platform/sentinel"
)

// Events is the broadcaster surface this service needs.
type Events interface {
	CommentAdded(c *Comment)
}

// Confessions maintains the parent confession's comment counter.
type Confessions interface {
	AdjustComments(ctx context.Context, id uuid.UUID, delta int) error
}

// Reactions purges a deleted comment's ledger entries.
type Reactions interface {
	PurgeSubject(ctx context.Context, kind reaction.SubjectKind, id uuid.UUID) error
}

type CreateInput struct {
	ConfessionID    uuid.UUID
	Text            string
	Username        string
	AuthorID        *uuid.UUID
	QuotedCommentID *uuid.UUID
}

type Service struct {
	store       Store
	confessions Confessions
	reactions   Reactions
	events      Events
	logger      *slog.Logger
	metrics     *metrics.Metrics
	maxLength   int
}

func NewService(store Store, confessions Confessions, reactions Reactions, events Events, logger *slog.Logger, m *metrics.Metrics, maxLength int) *Service {
	return &Service{
		store:       store,
		confessions: confessions,
		reactions:   reactions,
		events:      events,
		logger:      logger,
		metrics:     m,
		maxLength:   maxLength,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Comment, error) {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "comment text is required")
	}
	if utf8.RuneCountInString(in.Text) > s.maxLength {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("comment text must be under %d characters", s.maxLength))
	}
	if in.Username == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "username is required")
	}

	now := time.Now()
	c := &Comment{
		ID:              uuid.New(),
		ConfessionID:    in.ConfessionID,
		Text:            in.Text,
		Username:        in.Username,
		AuthorID:        in.AuthorID,
		QuotedCommentID: in.QuotedCommentID,
		Reactions:       map[string]int{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "failed to create comment", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to create comment")
	}

	// The counter bump doubles as the existence check on the parent; a
	// missing confession unwinds the comment we just wrote.
	if err := s.confessions.AdjustComments(ctx, in.ConfessionID, +1); err != nil {
		if delErr := s.store.Delete(ctx, c.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to unwind orphan comment",
				"comment_id", c.ID, "error", delErr)
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "confession not found")
		}
		s.logger.ErrorContext(ctx, "failed to bump comments count", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to create comment")
	}

	s.metrics.CommentsCreated.Inc()
	s.events.CommentAdded(c)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Comment, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "comment not found")
		}
		s.logger.ErrorContext(ctx, "failed to get comment", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to get comment")
	}
	return c, nil
}

func (s *Service) ListByConfession(ctx context.Context, confessionID uuid.UUID, page, size int) (*Page, error) {
	comments, total, err := s.store.ListByConfession(ctx, confessionID, page, size)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list comments", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to list comments")
	}
	if comments == nil {
		comments = []*Comment{}
	}
	return &Page{Total: total, Page: page, Size: size, Comments: comments}, nil
}

func (s *Service) Edit(ctx context.Context, id, authorID uuid.UUID, text string) (*Comment, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID == nil || *c.AuthorID != authorID {
		return nil, dErrors.New(dErrors.CodeForbidden, "not allowed to edit this comment")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "comment text is required")
	}
	if utf8.RuneCountInString(text) > s.maxLength {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("comment text must be under %d characters", s.maxLength))
	}
	c.Text = text
	c.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "comment not found")
		}
		s.logger.ErrorContext(ctx, "failed to update comment", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to update comment")
	}
	return c, nil
}

// Delete cascades in a fixed order: ledger purge, comment removal, parent
// counter decrement. A crash between steps leaves a state where re-running
// the delete is safe, since purging an already empty ledger is a no-op.
func (s *Service) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.AuthorID == nil || *c.AuthorID != authorID {
		return dErrors.New(dErrors.CodeForbidden, "not allowed to delete this comment")
	}

	if err := s.reactions.PurgeSubject(ctx, reaction.SubjectComment, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to purge comment reactions", "error", err)
		return dErrors.New(dErrors.CodeInternal, "failed to delete comment")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "comment not found")
		}
		s.logger.ErrorContext(ctx, "failed to delete comment", "error", err)
		return dErrors.New(dErrors.CodeInternal, "failed to delete comment")
	}

	if err := s.confessions.AdjustComments(ctx, c.ConfessionID, -1); err != nil {
		// The confession may already be gone; the comment is deleted either way.
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to decrement comments count",
				"confession_id", c.ConfessionID, "error", err)
		}
	}
	return nil
}
