package identity

import (
	"context"

	"github.com/google/uuid"
)

// Store persists anonymous users. Create must fail with sentinel.ErrAlreadyUsed
// when the username is taken so the issuer can retry generation.
type Store interface {
	Create(ctx context.Context, user *User) error
	UsernameTaken(ctx context.Context, username string) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}
