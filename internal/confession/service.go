package confession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"confide/internal/identity"
	"confide/internal/platform/metrics"
	dErrors "confide/pkg/domain-errors"
	"confide/pkg/platform/sentinel"
)

// Events is the broadcaster surface this service needs. Emission is
// best-effort and happens only after the storage mutation committed.
type Events interface {
	ConfessionAdded(c *Confession)
}

// Users resolves author pseudonyms at create time.
type Users interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// CreateInput carries everything a new confession needs.
type CreateInput struct {
	Text     string
	Category string
	Location Point
	Address  string
	AuthorID *uuid.UUID
}

// UpdateInput carries the author-gated edit fields; empty strings leave the
// stored value unchanged, matching the original API.
type UpdateInput struct {
	Text     string
	Category string
}

type Service struct {
	store     Store
	users     Users
	events    Events
	logger    *slog.Logger
	metrics   *metrics.Metrics
	maxLength int
}

func NewService(store Store, users Users, events Events, logger *slog.Logger, m *metrics.Metrics, maxLength int) *Service {
	return &Service{
		store:     store,
		users:     users,
		events:    events,
		logger:    logger,
		metrics:   m,
		maxLength: maxLength,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Confession, error) {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "confession text is required")
	}
	if utf8.RuneCountInString(in.Text) > s.maxLength {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("confession text must be under %d characters", s.maxLength))
	}
	if !govalidator.InRangeFloat64(in.Location.Latitude, -90, 90) ||
		!govalidator.InRangeFloat64(in.Location.Longitude, -180, 180) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "location coordinates out of range")
	}

	var authorUsername string
	if in.AuthorID != nil {
		user, err := s.users.FindByID(ctx, *in.AuthorID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "author not found")
			}
			s.logger.ErrorContext(ctx, "author lookup failed", "error", err)
			return nil, dErrors.New(dErrors.CodeInternal, "failed to create confession")
		}
		authorUsername = user.Username
	}

	now := time.Now()
	c := &Confession{
		ID:             uuid.New(),
		Text:           in.Text,
		Location:       in.Location,
		Address:        in.Address,
		Category:       in.Category,
		AuthorID:       in.AuthorID,
		AuthorUsername: authorUsername,
		Reactions:      map[string]int{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "failed to create confession", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to create confession")
	}

	s.metrics.ConfessionsCreated.Inc()
	s.events.ConfessionAdded(c)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Confession, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "confession not found")
		}
		s.logger.ErrorContext(ctx, "failed to get confession", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to get confession")
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, category string, page, size int) (*Page, error) {
	return s.list(ctx, Filter{Category: category, Page: page, Size: size})
}

func (s *Service) ListByAuthor(ctx context.Context, authorID uuid.UUID, category string, page, size int) (*Page, error) {
	return s.list(ctx, Filter{Category: category, AuthorID: &authorID, Page: page, Size: size})
}

func (s *Service) list(ctx context.Context, f Filter) (*Page, error) {
	confessions, total, err := s.store.List(ctx, f)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list confessions", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to list confessions")
	}
	if confessions == nil {
		confessions = []*Confession{}
	}
	return &Page{Total: total, Page: f.Page, Size: f.Size, Confessions: confessions}, nil
}

func (s *Service) Update(ctx context.Context, id, authorID uuid.UUID, in UpdateInput) (*Confession, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID == nil || *c.AuthorID != authorID {
		return nil, dErrors.New(dErrors.CodeForbidden, "not allowed to update this confession")
	}

	if text := strings.TrimSpace(in.Text); text != "" {
		if utf8.RuneCountInString(text) > s.maxLength {
			return nil, dErrors.New(dErrors.CodeBadRequest,
				fmt.Sprintf("confession text must be under %d characters", s.maxLength))
		}
		c.Text = text
	}
	if in.Category != "" {
		c.Category = in.Category
	}
	c.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "confession not found")
		}
		s.logger.ErrorContext(ctx, "failed to update confession", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to update confession")
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.AuthorID == nil || *c.AuthorID != authorID {
		return dErrors.New(dErrors.CodeForbidden, "not allowed to delete this confession")
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "confession not found")
		}
		s.logger.ErrorContext(ctx, "failed to delete confession", "error", err)
		return dErrors.New(dErrors.CodeInternal, "failed to delete confession")
	}
	return nil
}

func (s *Service) Nearby(ctx context.Context, lon, lat, maxMeters float64) ([]*Confession, error) {
	if !govalidator.InRangeFloat64(lat, -90, 90) || !govalidator.InRangeFloat64(lon, -180, 180) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "location coordinates out of range")
	}
	if maxMeters <= 0 {
		maxMeters = 1000
	}
	confessions, err := s.store.Nearby(ctx, lon, lat, maxMeters)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to query nearby confessions", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to query nearby confessions")
	}
	if confessions == nil {
		confessions = []*Confession{}
	}
	return confessions, nil
}
