package comment

import (
	"context"

	"github.com/google/uuid"
)

// Store persists comments. AdjustReaction is the single writer of the
// reactions aggregate and must be atomic under concurrent callers, same
// contract as the confession store.
type Store interface {
	Create(ctx context.Context, c *Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	// ListByConfession returns one page newest-first plus the total count.
	// Quote previews are resolved here so a single listing does not fan out
	// into per-comment lookups.
	ListByConfession(ctx context.Context, confessionID uuid.UUID, page, size int) ([]*Comment, int, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id uuid.UUID) error

	AdjustReaction(ctx context.Context, id uuid.UUID, oldEmoji, newEmoji string) error
}
