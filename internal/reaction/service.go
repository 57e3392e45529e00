package reaction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"confide/internal/platform/metrics"
	dErrors "confide/pkg/domain-errors"
	"confide/pkg/platform/sentinel"
)

// Events receives ledger transitions on comments. Confession reactions do
// not fan out; their aggregates are picked up on the next read.
type Events interface {
	CommentReactionUpdated(commentID, userID uuid.UUID, emoji string, action Action, oldEmoji string)
}

type Config struct {
	// DefaultEmoji is assumed when a first reaction arrives without an
	// explicit choice and RequireExplicitEmoji is off.
	DefaultEmoji         string
	RequireExplicitEmoji bool
}

type Service struct {
	store    Store
	counters *CounterMaintainer
	events   Events
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cfg      Config
}

func NewService(store Store, counters *CounterMaintainer, events Events, logger *slog.Logger, m *metrics.Metrics, cfg Config) *Service {
	if cfg.DefaultEmoji == "" {
		cfg.DefaultEmoji = "👍"
	}
	return &Service{
		store:    store,
		counters: counters,
		events:   events,
		logger:   logger,
		metrics:  m,
		cfg:      cfg,
	}
}

// Upsert applies one user's reaction to a subject. An absent emoji on a
// fresh subject adds the default; an absent emoji on an existing record
// removes it; a repeated emoji is a no-op; anything else swaps the record's
// emoji. The counter maintainer is told about every mutation exactly once,
// and events fire only after the aggregate committed.
func (s *Service) Upsert(ctx context.Context, kind SubjectKind, subjectID, userID uuid.UUID, emoji string) (*Result, error) {
	ctx, span := otel.Tracer("reaction").Start(ctx, "reaction.Upsert",
		trace.WithAttributes(
			attribute.String("subject.kind", string(kind)),
			attribute.String("subject.id", subjectID.String()),
		))
	defer span.End()

	if kind != SubjectConfession && kind != SubjectComment {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown subject kind")
	}

	existing, err := s.store.Find(ctx, kind, subjectID, userID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.ErrorContext(ctx, "reaction lookup failed", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to apply reaction")
	}

	var result *Result
	if existing == nil {
		result, err = s.addReaction(ctx, kind, subjectID, userID, emoji)
	} else {
		result, err = s.transitionReaction(ctx, existing, emoji)
	}
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("reaction.action", string(result.Action)))
	s.metrics.ReactionsApplied.WithLabelValues(string(result.Action)).Inc()
	if kind == SubjectComment && result.Action != ActionUnchanged {
		s.events.CommentReactionUpdated(subjectID, userID, result.Emoji, result.Action, result.OldEmoji)
	}
	return result, nil
}

func (s *Service) addReaction(ctx context.Context, kind SubjectKind, subjectID, userID uuid.UUID, emoji string) (*Result, error) {
	if emoji == "" {
		if s.cfg.RequireExplicitEmoji {
			return nil, dErrors.New(dErrors.CodeBadRequest, "emoji is required")
		}
		emoji = s.cfg.DefaultEmoji
	}

	now := time.Now()
	record := &Record{
		SubjectKind: kind,
		SubjectID:   subjectID,
		UserID:      userID,
		Emoji:       emoji,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.store.Create(ctx, record)
	if errors.Is(err, sentinel.ErrConflict) {
		// Lost the creation race; the winner's record exists now, so this
		// attempt becomes an update against it.
		existing, findErr := s.store.Find(ctx, kind, subjectID, userID)
		if findErr != nil {
			s.logger.ErrorContext(ctx, "reaction conflict recovery failed", "error", findErr)
			return nil, dErrors.New(dErrors.CodeInternal, "failed to apply reaction")
		}
		return s.transitionReaction(ctx, existing, emoji)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create reaction", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to apply reaction")
	}

	if err := s.applyDelta(ctx, kind, subjectID, "", emoji); err != nil {
		// Subject vanished between the ledger write and the counter bump;
		// unwind the record so the ledger does not outlive its subject.
		if delErr := s.store.Delete(ctx, kind, subjectID, userID); delErr != nil && !errors.Is(delErr, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to unwind orphan reaction", "error", delErr)
		}
		return nil, err
	}
	return &Result{Action: ActionAdded, Emoji: emoji, Record: record}, nil
}

func (s *Service) transitionReaction(ctx context.Context, existing *Record, emoji string) (*Result, error) {
	kind, subjectID, userID := existing.SubjectKind, existing.SubjectID, existing.UserID

	switch {
	case emoji == "":
		if err := s.store.Delete(ctx, kind, subjectID, userID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to delete reaction", "error", err)
			return nil, dErrors.New(dErrors.CodeInternal, "failed to apply reaction")
		}
		if err := s.applyDelta(ctx, kind, subjectID, existing.Emoji, ""); err != nil {
			return nil, err
		}
		return &Result{Action: ActionRemoved, OldEmoji: existing.Emoji}, nil

	case emoji == existing.Emoji:
		return &Result{Action: ActionUnchanged, Emoji: emoji, Record: existing}, nil

	default:
		now := time.Now()
		if err := s.store.UpdateEmoji(ctx, kind, subjectID, userID, emoji, now); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// Record removed under us; the caller's intent is still a
				// reaction with this emoji, so start over as an add.
				return s.addReaction(ctx, kind, subjectID, userID, emoji)
			}
			s.logger.ErrorContext(ctx, "failed to update reaction", "error", err)
			return nil, dErrors.New(dErrors.CodeInternal, "failed to apply reaction")
		}
		if err := s.applyDelta(ctx, kind, subjectID, existing.Emoji, emoji); err != nil {
			return nil, err
		}
		updated := *existing
		updated.Emoji = emoji
		updated.UpdatedAt = now
		return &Result{Action: ActionUpdated, Emoji: emoji, OldEmoji: existing.Emoji, Record: &updated}, nil
	}
}

func (s *Service) applyDelta(ctx context.Context, kind SubjectKind, subjectID uuid.UUID, oldEmoji, newEmoji string) error {
	err := s.counters.ApplyDelta(ctx, kind, subjectID, oldEmoji, newEmoji)
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, string(kind)+" not found")
	}
	s.logger.ErrorContext(ctx, "failed to adjust reaction aggregate",
		"subject_kind", kind, "subject_id", subjectID, "error", err)
	return dErrors.New(dErrors.CodeInternal, "failed to apply reaction")
}

// Find reports the caller's active reaction, or nil without error when none
// exists. Read paths use it for has-reacted enrichment.
func (s *Service) Find(ctx context.Context, kind SubjectKind, subjectID, userID uuid.UUID) (*Record, error) {
	record, err := s.store.Find(ctx, kind, subjectID, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "reaction lookup failed", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to look up reaction")
	}
	return record, nil
}

// PurgeSubject drops every ledger record for one subject. Called when the
// subject itself is being deleted, so no aggregate adjustment follows.
func (s *Service) PurgeSubject(ctx context.Context, kind SubjectKind, subjectID uuid.UUID) error {
	ctx, span := otel.Tracer("reaction").Start(ctx, "reaction.PurgeSubject",
		trace.WithAttributes(
			attribute.String("subject.kind", string(kind)),
			attribute.String("subject.id", subjectID.String()),
		))
	defer span.End()

	removed, err := s.store.DeleteBySubject(ctx, kind, subjectID)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("reaction.purged", removed))
	return nil
}
