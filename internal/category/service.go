package category

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "confide/pkg/domain-errors"
	"confide/pkg/platform/sentinel"
)

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Create(ctx context.Context, name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "category name is required")
	}

	c := &Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "category already exists")
		}
		s.logger.ErrorContext(ctx, "failed to create category", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to create category")
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	categories, err := s.store.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list categories", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to list categories")
	}
	return categories, nil
}
