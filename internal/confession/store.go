package confession

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows List. Page is 1-based; Size is the page length.
type Filter struct {
	Category string
	AuthorID *uuid.UUID
	Page     int
	Size     int
}

// Store persists confessions. The two Adjust methods are the only writers of
// the denormalized aggregates and must be atomic under concurrent callers:
// implementations either hold the store lock (memory) or issue single-row
// atomic updates (Postgres), never read-modify-write on a loaded copy.
type Store interface {
	Create(ctx context.Context, c *Confession) error
	FindByID(ctx context.Context, id uuid.UUID) (*Confession, error)
	List(ctx context.Context, f Filter) ([]*Confession, int, error)
	Update(ctx context.Context, c *Confession) error
	Delete(ctx context.Context, id uuid.UUID) error
	Nearby(ctx context.Context, lon, lat, maxMeters float64) ([]*Confession, error)

	// AdjustReaction decrements oldEmoji (removing the key at zero) and
	// increments newEmoji (creating it at one); either may be empty.
	AdjustReaction(ctx context.Context, id uuid.UUID, oldEmoji, newEmoji string) error
	// AdjustComments moves commentsCount by delta.
	AdjustComments(ctx context.Context, id uuid.UUID, delta int) error
}
