package category

import "context"

// Store persists categories. Create fails with sentinel.ErrAlreadyUsed on a
// duplicate name; List returns categories sorted by name ascending.
type Store interface {
	Create(ctx context.Context, c *Category) error
	List(ctx context.Context) ([]*Category, error)
}
